package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/quicksilver/pkg/query"
)

// evaluateOpts holds the command-line flags for the evaluate command.
type evaluateOpts struct {
	explain  bool   // print the executed plan
	estimate bool   // print the estimate next to the result
	strategy string // planning strategy override
	noCache  bool
}

// evaluateCommand creates the evaluate command.
func (c *CLI) evaluateCommand() *cobra.Command {
	var opts evaluateOpts

	cmd := &cobra.Command{
		Use:   "evaluate [graph] [query]",
		Short: "Evaluate a query exactly",
		Long: `Evaluate a query exactly and print the number of distinct result paths.

The join order is chosen by the planner from cached label statistics. Use
--explain to print the plan that was executed.`,
		Example: `  quicksilver evaluate graph.txt "0+/1-/2+" --explain`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEvaluate(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.explain, "explain", false, "print the executed join plan")
	cmd.Flags().BoolVar(&opts.estimate, "estimate", false, "also print the estimate")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "planning strategy: auto, greedy, exhaustive (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runEvaluate evaluates one query and prints the result.
func (c *CLI) runEvaluate(ctx context.Context, graphPath, text string, opts evaluateOpts) error {
	strategy, err := parseStrategyFlag(opts.strategy)
	if err != nil {
		return err
	}
	q, err := query.Parse(text)
	if err != nil {
		return err
	}
	eng, err := c.loadEngine(ctx, graphPath, engineOpts{strategy: strategy, noCache: opts.noCache})
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	stat, err := eng.ev.Evaluate(q)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	elapsed := prog.elapsed()

	printSuccess("Evaluated %s", StyleHighlight.Render(q.String()))
	printGraphStats(eng.graph.NumVertices(), eng.graph.NumEdges(), eng.graph.NumLabels(), eng.cached)
	printKeyValue("paths", StyleNumber.Render(fmt.Sprint(stat.NoPaths)))
	if stat.NoOut > 0 || stat.NoIn > 0 {
		printKeyValue("sources", fmt.Sprint(stat.NoOut))
		printKeyValue("targets", fmt.Sprint(stat.NoIn))
	}
	if opts.estimate {
		est, err := eng.ev.Estimate(q)
		if err != nil {
			return fmt.Errorf("estimate: %w", err)
		}
		printKeyValue("estimate", est.String())
	}
	printKeyValue("time", elapsed.String())

	if opts.explain {
		if plan := eng.ev.LastPlan(); plan != nil {
			printNewline()
			printKeyValue("plan", plan.Root.String())
			printKeyValue("strategy", string(plan.Strategy))
			printKeyValue("cost", fmt.Sprint(plan.Cost))
		}
	}
	return nil
}
