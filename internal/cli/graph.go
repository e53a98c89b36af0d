package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/quicksilver/pkg/graph"
)

// graphCommand creates the graph command group.
func (c *CLI) graphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Inspect and convert graph files",
	}

	cmd.AddCommand(c.graphExportCommand())

	return cmd
}

// graphExportCommand creates the "graph export" subcommand.
func (c *CLI) graphExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [graph] [output]",
		Short: "Rewrite a graph file in normalized form",
		Long: `Read a graph file and write it back in normalized form: a header line with
the actual edge count followed by one "source label target ." record per
edge, grouped by label. Comments and blank lines are dropped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := args[0], args[1]

			prog := newProgress(c.Logger)
			g, err := graph.ReadGraphFile(input)
			if err != nil {
				return fmt.Errorf("load graph %s: %w", input, err)
			}
			if err := graph.WriteGraphFile(g, output); err != nil {
				return fmt.Errorf("write graph %s: %w", output, err)
			}
			prog.done("Exported graph")

			printSuccess("Exported %d edges", g.NumEdges())
			printFile(output)
			return nil
		},
	}
}
