package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/quicksilver/pkg/bench"
	"github.com/matzehuels/quicksilver/pkg/errors"
)

// reportCommand creates the report command for showing stored bench runs.
func (c *CLI) reportCommand() *cobra.Command {
	var (
		jsonPath string
		details  bool
	)

	cmd := &cobra.Command{
		Use:   "report [run-id | report.json]",
		Short: "Show the report of an earlier bench run",
		Long: `Show the report of an earlier bench run.

The argument is either a run id printed by 'bench', which is looked up in the
cache, or the path of a report written with 'bench --json'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.loadReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printReport(report, details)
			if jsonPath != "" {
				if err := writeReportFile(report, jsonPath); err != nil {
					return err
				}
				printFile(jsonPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&jsonPath, "json", "", "write the report as JSON to this file")
	cmd.Flags().BoolVar(&details, "details", false, "print one row per query")

	return cmd
}

// loadReport reads a report file if ref names one, and otherwise fetches the
// run from the cache.
func (c *CLI) loadReport(ctx context.Context, ref string) (*bench.Report, error) {
	if f, err := os.Open(ref); err == nil {
		defer f.Close()
		return bench.ReadReport(f)
	}

	runner, err := c.newRunner(false)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	report, err := runner.LoadReport(ctx, ref)
	if errors.Is(err, errors.ErrCodeNotFound) {
		return nil, fmt.Errorf("%s is neither a report file nor a cached run id", ref)
	}
	return report, err
}
