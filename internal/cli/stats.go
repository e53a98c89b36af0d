package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/quicksilver/pkg/graph"
)

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		noCache bool
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "stats [graph]",
		Short: "Print per-label statistics of a graph",
		Long: `Print the statistics the estimator keeps for every label: the number of
distinct sources, edges and distinct targets. Labels without edges are
hidden unless --all is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), args[0], all, noCache)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include labels without edges")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runStats prints the label statistics table.
func (c *CLI) runStats(ctx context.Context, graphPath string, all, noCache bool) error {
	eng, err := c.loadEngine(ctx, graphPath, engineOpts{noCache: noCache})
	if err != nil {
		return err
	}

	printSuccess("Loaded %s", StyleValue.Render(graphPath))
	printGraphStats(eng.graph.NumVertices(), eng.graph.NumEdges(), eng.graph.NumLabels(), eng.cached)
	printNewline()

	rows := statsRows(eng.est.Stats(), all)
	if len(rows) == 0 {
		printWarning("Graph has no edges")
		return nil
	}
	fmt.Println(StyleTitle.Render("Label statistics"))
	fmt.Println(renderTable([]string{"label", "sources", "edges", "targets"}, rows))
	return nil
}

// statsRows formats one table row per label.
func statsRows(stats []graph.CardStat, all bool) [][]string {
	var rows [][]string
	for label, st := range stats {
		if st.IsZero() && !all {
			continue
		}
		rows = append(rows, []string{
			fmt.Sprint(label),
			fmt.Sprint(st.NoOut),
			fmt.Sprint(st.NoPaths),
			fmt.Sprint(st.NoIn),
		})
	}
	return rows
}
