package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/quicksilver/pkg/bench"
)

// benchOpts holds the command-line flags for the bench command.
type benchOpts struct {
	mode      string // estimator, evaluator or both
	strategy  string // planning strategy override
	threshold uint64 // greedy threshold override
	exact     bool   // exact endpoint counts
	refresh   bool   // recompute label statistics
	jsonPath  string // write the report as JSON
	details   bool   // print one row per query
	noCache   bool
}

// benchCommand creates the bench command.
func (c *CLI) benchCommand() *cobra.Command {
	var opts benchOpts

	cmd := &cobra.Command{
		Use:   "bench [graph] [workload]",
		Short: "Run a query workload against a graph",
		Long: `Run every query of a workload file against a graph.

A workload has one query per line in the form "source,path,target", for
example "*,0+/1-,*". Blank lines and lines starting with # are skipped.

Modes:
  estimator   estimate every query
  evaluator   evaluate every query exactly
  both        do both and report the q-error of the estimates (default)

Label statistics are cached per graph file. The report is stored in the
cache as well and can be shown again with 'quicksilver report <run-id>'.`,
		Example: `  quicksilver bench graph.txt queries.csv --mode both --json report.json`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBench(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", string(bench.DefaultMode), "what to measure: estimator, evaluator, both")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "planning strategy: auto, greedy, exhaustive (default from config)")
	cmd.Flags().Uint64Var(&opts.threshold, "threshold", 0, "cost above which auto planning is greedy (default from config)")
	cmd.Flags().BoolVar(&opts.exact, "exact", false, "count distinct sources and targets of results")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute label statistics")
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "write the full report as JSON to this file")
	cmd.Flags().BoolVar(&opts.details, "details", false, "print one row per query")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// benchOptions merges flags over the configuration.
func (c *CLI) benchOptions(graphPath, workloadPath string, opts benchOpts) (bench.Options, error) {
	cfg := c.config()

	mode, err := bench.ParseMode(opts.mode)
	if err != nil {
		return bench.Options{}, err
	}
	strategy, err := parseStrategyFlag(opts.strategy)
	if err != nil {
		return bench.Options{}, err
	}
	if strategy == "" {
		strategy = cfg.Strategy()
	}
	threshold := opts.threshold
	if threshold == 0 {
		threshold = cfg.Planner.Threshold
	}

	return bench.Options{
		GraphPath:      graphPath,
		WorkloadPath:   workloadPath,
		Mode:           mode,
		Threshold:      threshold,
		Strategy:       strategy,
		ExactEndpoints: opts.exact || cfg.Evaluator.ExactEndpoints,
		Refresh:        opts.refresh,
		Logger:         c.Logger,
	}, nil
}

// runBench runs the workload and prints the summary.
func (c *CLI) runBench(ctx context.Context, graphPath, workloadPath string, opts benchOpts) error {
	benchOptions, err := c.benchOptions(graphPath, workloadPath, opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Running workload...")
	benchOptions.Progress = func(done, total int) {
		spinner.Update(fmt.Sprintf("Running workload... %d/%d", done, total))
	}
	spinner.Start()
	report, err := runner.Run(ctx, benchOptions)
	if err != nil {
		spinner.StopWithError("Benchmark failed")
		return fmt.Errorf("bench: %w", err)
	}
	spinner.Stop()

	if err := runner.StoreReport(ctx, report); err != nil {
		c.Logger.Warn("failed to store report", "error", err)
	}

	printReport(report, opts.details)

	if opts.jsonPath != "" {
		if err := writeReportFile(report, opts.jsonPath); err != nil {
			return err
		}
		printFile(opts.jsonPath)
	}
	printNewline()
	printNextStep("Show again", fmt.Sprintf("%s report %s", appName, report.RunID))
	return nil
}

// printReport prints the summary of a report and, with details, one row
// per query.
func printReport(report *bench.Report, details bool) {
	sum := report.Summary()

	if sum.Failed > 0 {
		printWarning("Ran %d queries, %d failed", sum.Queries, sum.Failed)
	} else {
		printSuccess("Ran %d queries", sum.Queries)
	}
	printGraphStats(report.Graph.Vertices, report.Graph.Edges, report.Graph.Labels, report.StatsCacheHit)
	printKeyValue("run", report.RunID)
	printKeyValue("mode", string(report.Mode))
	printKeyValue("load", report.LoadTime.Round(time.Microsecond).String())
	printKeyValue("prepare", report.PrepareTime.Round(time.Microsecond).String())
	if report.Mode.Estimates() {
		printKeyValue("estimate", sum.TotalEstimate.Round(time.Microsecond).String())
	}
	if report.Mode.Evaluates() {
		printKeyValue("evaluate", sum.TotalEvaluate.Round(time.Microsecond).String())
	}
	if sum.Compared > 0 {
		printKeyValue("q-error", fmt.Sprintf("mean %.2f · median %.2f · max %.2f",
			sum.MeanQError, sum.MedianError, sum.MaxQError))
	}

	if details && len(report.Results) > 0 {
		printNewline()
		fmt.Println(renderTable(
			[]string{"line", "query", "estimate", "actual", "q-error", "time"},
			resultRows(report.Results),
		))
	}
	for _, res := range report.Results {
		if res.Failed() {
			printDetail("line %d: %s", res.Line, res.Error)
		}
	}
}

// resultRows formats one table row per result.
func resultRows(results []bench.Result) [][]string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		row := []string{fmt.Sprint(res.Line), res.Path, "-", "-", "-", "-"}
		if res.Failed() {
			row[5] = "failed"
			rows = append(rows, row)
			continue
		}
		if res.Estimate != nil {
			row[2] = res.Estimate.String()
		}
		if res.Actual != nil {
			row[3] = fmt.Sprint(res.Actual.NoPaths)
		}
		if q, ok := res.QError(); ok {
			row[4] = fmt.Sprintf("%.2f", q)
		}
		row[5] = (res.EstimateTime + res.EvaluateTime).Round(time.Microsecond).String()
		rows = append(rows, row)
	}
	return rows
}

// writeReportFile writes report as JSON to path.
func writeReportFile(report *bench.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := bench.WriteReport(f, report); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
