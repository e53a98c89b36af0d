package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/quicksilver/pkg/query"
)

// estimateCommand creates the estimate command.
func (c *CLI) estimateCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "estimate [graph] [query]",
		Short: "Estimate the cardinality of a query",
		Long: `Estimate the cardinality of a query from per-label statistics.

The estimate is a triple (sources, paths, targets). Statistics are computed
once per graph file and cached, so repeated estimates skip the scan.`,
		Example: `  quicksilver estimate graph.txt "0+/1-"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEstimate(cmd.Context(), args[0], args[1], noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runEstimate prints the estimate for one query.
func (c *CLI) runEstimate(ctx context.Context, graphPath, text string, noCache bool) error {
	q, err := query.Parse(text)
	if err != nil {
		return err
	}
	eng, err := c.loadEngine(ctx, graphPath, engineOpts{noCache: noCache})
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	stat, err := eng.ev.Estimate(q)
	if err != nil {
		return fmt.Errorf("estimate: %w", err)
	}

	printSuccess("Estimated %s", StyleHighlight.Render(q.String()))
	printGraphStats(eng.graph.NumVertices(), eng.graph.NumEdges(), eng.graph.NumLabels(), eng.cached)
	printKeyValue("sources", fmt.Sprint(stat.NoOut))
	printKeyValue("paths", fmt.Sprint(stat.NoPaths))
	printKeyValue("targets", fmt.Sprint(stat.NoIn))
	printKeyValue("time", prog.elapsed().String())
	return nil
}
