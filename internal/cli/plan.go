package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/quicksilver/pkg/estimator"
	"github.com/matzehuels/quicksilver/pkg/planner"
	"github.com/matzehuels/quicksilver/pkg/query"
)

// planOpts holds the command-line flags for the plan command.
type planOpts struct {
	strategy string // planning strategy override
	dotPath  string // write the plan as Graphviz DOT
	svgPath  string // render the plan to SVG
	noCache  bool
}

// planCommand creates the plan command.
func (c *CLI) planCommand() *cobra.Command {
	var opts planOpts

	cmd := &cobra.Command{
		Use:   "plan [graph] [query]",
		Short: "Show the join plan chosen for a query",
		Long: `Show the join plan chosen for a query without evaluating it.

Every concatenation in the plan is a join; its estimated cardinality is
printed next to it. The plan's cost is the sum of those estimates.

Use --dot or --svg to write the plan as a diagram.`,
		Example: `  quicksilver plan graph.txt "0+/1-/2+/3+" --strategy greedy
  quicksilver plan graph.txt "0+/1-/2+/3+" --svg plan.svg`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "planning strategy: auto, greedy, exhaustive (default from config)")
	cmd.Flags().StringVar(&opts.dotPath, "dot", "", "write the plan as Graphviz DOT to this file")
	cmd.Flags().StringVar(&opts.svgPath, "svg", "", "render the plan as SVG to this file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runPlan plans one query and prints or writes the plan.
func (c *CLI) runPlan(ctx context.Context, graphPath, text string, opts planOpts) error {
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

	plan, err := eng.ev.Plan(q)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	printSuccess("Planned %s", StyleHighlight.Render(q.String()))
	printKeyValue("plan", plan.Root.String())
	printKeyValue("strategy", string(plan.Strategy))
	printKeyValue("cost", fmt.Sprint(plan.Cost))
	printKeyValue("estimate", plan.Estimate.String())
	printNewline()
	fmt.Print(planTree(plan.Root, eng.est))

	dot := planner.ToDOT(plan, planner.DOTOptions{Estimator: eng.est})
	if opts.dotPath != "" {
		if err := os.WriteFile(opts.dotPath, []byte(dot), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.dotPath, err)
		}
		printFile(opts.dotPath)
	}
	if opts.svgPath != "" {
		svg, err := planner.RenderSVG(ctx, dot)
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		if err := os.WriteFile(opts.svgPath, svg, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.svgPath, err)
		}
		printFile(opts.svgPath)
	}
	return nil
}

// planTree draws a join tree with box-drawing characters, annotating joins
// with their estimate:
//
//	⋈ (2, 7, 3)
//	├── 0+
//	└── 1-
func planTree(root *query.Node, est estimator.Estimator) string {
	var b strings.Builder
	writePlanNode(&b, root, "", "", est)
	return b.String()
}

func writePlanNode(b *strings.Builder, n *query.Node, prefix, childPrefix string, est estimator.Estimator) {
	b.WriteString(StyleDim.Render(prefix))
	if n.IsLeaf() {
		b.WriteString(StyleValue.Render(n.Step.String()))
		b.WriteByte('\n')
		return
	}
	b.WriteString(StyleHighlight.Render("⋈"))
	b.WriteString(" " + StyleDim.Render(est.Estimate(n).String()))
	b.WriteByte('\n')
	writePlanNode(b, n.Left, childPrefix+"├── ", childPrefix+"│   ", est)
	writePlanNode(b, n.Right, childPrefix+"└── ", childPrefix+"    ", est)
}

// parseStrategyFlag parses a --strategy flag. The empty string keeps the
// configured strategy.
func parseStrategyFlag(s string) (planner.Strategy, error) {
	if s == "" {
		return "", nil
	}
	return planner.ParseStrategy(s)
}
