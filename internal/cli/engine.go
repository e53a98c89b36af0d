package cli

import (
	"context"
	"fmt"

	"github.com/matzehuels/quicksilver/pkg/bench"
	"github.com/matzehuels/quicksilver/pkg/estimator"
	"github.com/matzehuels/quicksilver/pkg/evaluator"
	"github.com/matzehuels/quicksilver/pkg/graph"
	"github.com/matzehuels/quicksilver/pkg/planner"
)

// engine is a loaded graph with a prepared estimator and an evaluator.
type engine struct {
	graph  *graph.Graph
	info   bench.GraphInfo
	est    *estimator.Simple
	ev     *evaluator.Evaluator
	cached bool // statistics came from the cache
}

// engineOpts selects how the evaluator plans.
type engineOpts struct {
	strategy planner.Strategy // empty uses the configured strategy
	noCache  bool
}

// loadEngine loads the graph at path and prepares it for queries, reusing
// cached label statistics where possible.
func (c *CLI) loadEngine(ctx context.Context, path string, opts engineOpts) (*engine, error) {
	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, info, err := runner.LoadGraph(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", path, err)
	}
	est, hit, err := runner.PrepareEstimator(ctx, g, info.Hash, false)
	if err != nil {
		return nil, fmt.Errorf("prepare estimator: %w", err)
	}

	cfg := c.config()
	strategy := opts.strategy
	if strategy == "" {
		strategy = cfg.Strategy()
	}
	ev := evaluator.New(g,
		evaluator.WithThreshold(cfg.Planner.Threshold),
		evaluator.WithStrategy(strategy),
		evaluator.WithExactEndpoints(cfg.Evaluator.ExactEndpoints),
		evaluator.WithLogger(c.Logger),
	)
	ev.AttachEstimator(est)

	return &engine{graph: g, info: info, est: est, ev: ev, cached: hit}, nil
}
