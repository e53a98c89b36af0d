package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/quicksilver/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [graph]",
		Short: "Serve a graph over HTTP",
		Long: `Load a graph and answer queries over HTTP until interrupted.

Endpoints:
  GET  /healthz
  GET  /v1/stats
  POST /v1/estimate   {"query": "0+/1-"}
  POST /v1/evaluate   {"query": "0+/1-"}
  POST /v1/plan       {"query": "0+/1-", "strategy": "greedy"}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe loads the graph and serves it until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, graphPath, addr string, noCache bool) error {
	cfg := c.config()
	if addr == "" {
		addr = cfg.Server.Addr
	}

	spinner := newSpinnerWithContext(ctx, "Loading graph...")
	spinner.Start()
	eng, err := c.loadEngine(ctx, graphPath, engineOpts{noCache: noCache})
	if err != nil {
		spinner.StopWithError("Loading failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Serving %s on %s", graphPath, addr))

	srv := server.New(eng.ev, c.Logger)
	return srv.ListenAndServe(ctx, addr, cfg.Server.ReadTimeout.Duration, cfg.Server.WriteTimeout.Duration)
}
