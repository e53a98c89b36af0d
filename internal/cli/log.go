// Package cli implements the quicksilver command-line interface.
//
// This package provides commands for estimating, planning and evaluating
// regular path queries against graph files, running query benchmarks, serving
// the engine over HTTP and managing the statistics cache. The CLI is built
// using cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - bench: Run a workload file and compare estimates to exact results
//   - estimate, evaluate, plan: Work with a single query
//   - stats: Print the per-label statistics of a graph
//   - serve: Expose a graph over HTTP
//   - cache: Manage the statistics and report cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs every planned and evaluated query. Without it the level comes from the
// [log] section of the config file.
//
// # Example
//
//	import "github.com/matzehuels/quicksilver/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// elapsed returns the time since the tracker was created, rounded to
// microseconds.
func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Microsecond)
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Loaded graph (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
