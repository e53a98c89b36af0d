package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/quicksilver/pkg/cache"
	"github.com/matzehuels/quicksilver/pkg/errors"
	"github.com/matzehuels/quicksilver/pkg/estimator"
	"github.com/matzehuels/quicksilver/pkg/evaluator"
	"github.com/matzehuels/quicksilver/pkg/graph"
	"github.com/matzehuels/quicksilver/pkg/observability"
	"github.com/matzehuels/quicksilver/pkg/query"
)

// Cache lifetimes.
const (
	// TTLStats is the default lifetime of statistics tables. They only
	// change when the graph file does, which changes the key.
	TTLStats = 30 * 24 * time.Hour

	// TTLReport keeps stored reports for a week.
	TTLReport = 7 * 24 * time.Hour
)

// Runner executes benchmark runs with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner for different runs; each run builds its
// own graph, estimator and evaluator.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// StatsTTL is the lifetime of cached statistics; zero keeps them until
	// the cache is cleared.
	StatsTTL time.Duration

	// Backoff governs retries of report reads and writes.
	Backoff cache.Backoff
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		StatsTTL: TTLStats,
		Backoff:  cache.DefaultBackoff,
	}
}

// LoadGraph reads the graph file at path and returns it together with a
// description that includes the file hash.
func (r *Runner) LoadGraph(ctx context.Context, path string) (*graph.Graph, GraphInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, GraphInfo{}, err
	}

	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, GraphInfo{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, GraphInfo{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	digest := cache.NewDigest(f)
	g, header, err := graph.ReadGraphHeader(digest)
	if err != nil {
		return nil, GraphInfo{}, err
	}
	if header.NumEdges != uint64(g.NumEdges()) {
		r.Logger.Warn("edge count differs from header",
			"declared", header.NumEdges,
			"read", g.NumEdges())
	}

	hash, err := digest.Sum()
	if err != nil {
		return nil, GraphInfo{}, fmt.Errorf("hash %s: %w", path, err)
	}

	info := GraphInfo{
		Path:     path,
		Hash:     hash,
		Vertices: g.NumVertices(),
		Edges:    g.NumEdges(),
		Labels:   g.NumLabels(),
	}
	r.Logger.Info("loaded graph",
		"vertices", info.Vertices,
		"edges", info.Edges,
		"labels", info.Labels,
		"duration", time.Since(start))
	return g, info, nil
}

// PrepareEstimator returns a prepared estimator for g. The statistics table
// is looked up in the cache under graphHash first and stored after a miss.
// With refresh set the cache is not read. The boolean reports a cache hit.
func (r *Runner) PrepareEstimator(ctx context.Context, g *graph.Graph, graphHash string, refresh bool) (*estimator.Simple, bool, error) {
	est := estimator.NewSimple(g)
	key := r.Keyer.StatsKey(graphHash)

	if !refresh && graphHash != "" {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("stats cache unavailable", "error", err)
		}
		if err == nil && hit {
			var stats []graph.CardStat
			if json.Unmarshal(data, &stats) == nil && est.LoadStats(stats) == nil {
				observability.Cache().OnCacheHit(ctx, "stats")
				r.Logger.Debug("loaded label statistics from cache", "labels", len(stats))
				return est, true, nil
			}
			// stale or corrupt entry: recompute and overwrite
		}
		observability.Cache().OnCacheMiss(ctx, "stats")
	}

	start := time.Now()
	est.Prepare()
	r.Logger.Info("prepared estimator",
		"labels", g.NumLabels(),
		"duration", time.Since(start))

	if graphHash != "" {
		data, err := json.Marshal(est.Stats())
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "encode statistics")
		}
		if err := r.Cache.Set(ctx, key, data, r.StatsTTL); err != nil {
			r.Logger.Warn("failed to cache label statistics", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "stats", len(data))
		}
	}
	return est, false, nil
}

// Run executes a complete benchmark run. Per-query failures are recorded in
// the report; setup failures and context cancellation return an error.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	// per-run copy so that opts.Logger does not leak into other runs
	run := *r
	run.Logger = opts.Logger
	return run.execute(ctx, opts)
}

func (r *Runner) execute(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Mode:      opts.Mode,
	}
	r.Logger.Debug("starting run", "id", report.RunID, "mode", opts.Mode)

	// Stage 1: graph and estimator
	loadStart := time.Now()
	g, info, err := r.LoadGraph(ctx, opts.GraphPath)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	report.Graph = info
	report.LoadTime = time.Since(loadStart)

	entries, err := query.ReadWorkloadFile(opts.WorkloadPath)
	if err != nil {
		return nil, fmt.Errorf("read workload: %w", err)
	}
	if len(entries) == 0 {
		r.Logger.Warn("workload contains no queries", "path", opts.WorkloadPath)
	}

	prepareStart := time.Now()
	est, hit, err := r.PrepareEstimator(ctx, g, info.Hash, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("prepare estimator: %w", err)
	}
	report.PrepareTime = time.Since(prepareStart)
	report.StatsCacheHit = hit

	ev := evaluator.New(g,
		evaluator.WithThreshold(opts.Threshold),
		evaluator.WithStrategy(opts.Strategy),
		evaluator.WithExactEndpoints(opts.ExactEndpoints),
		evaluator.WithLogger(r.Logger),
	)
	ev.AttachEstimator(est)

	// Stage 2: workload
	report.Results = make([]Result, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := r.runQuery(ev, entry, opts.Mode)
		if res.Failed() {
			r.Logger.Warn("query failed", "line", res.Line, "path", res.Path, "error", res.Error)
		}
		report.Results = append(report.Results, res)
		if opts.Progress != nil {
			opts.Progress(len(report.Results), len(entries))
		}
	}

	r.Logger.Info("finished workload", "summary", report.Summary().String())
	return report, nil
}

// runQuery runs one workload entry with ev.
func (r *Runner) runQuery(ev *evaluator.Evaluator, entry query.Entry, mode Mode) Result {
	res := Result{
		Line:   entry.Line,
		Source: entry.Source,
		Path:   entry.Path,
		Target: entry.Target,
	}

	q, err := query.Parse(entry.Path)
	if err != nil {
		res.Error = errors.UserMessage(err)
		return res
	}
	res.Query = q.String()

	if mode.Estimates() {
		start := time.Now()
		stat, err := ev.Estimate(q)
		res.EstimateTime = time.Since(start)
		if err != nil {
			res.Error = errors.UserMessage(err)
			return res
		}
		res.Estimate = &stat
	}

	if mode.Evaluates() {
		start := time.Now()
		stat, err := ev.Evaluate(q)
		res.EvaluateTime = time.Since(start)
		if err != nil {
			res.Error = errors.UserMessage(err)
			return res
		}
		res.Actual = &stat
		if plan := ev.LastPlan(); plan != nil {
			res.Plan = plan.Root.String()
			res.Strategy = string(plan.Strategy)
		}
	}

	r.Logger.Debug("ran query",
		"line", res.Line,
		"query", res.Query,
		"estimate", res.Estimate,
		"actual", res.Actual)
	return res
}

// StoreReport saves report in the cache under its run id.
func (r *Runner) StoreReport(ctx context.Context, report *Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode report")
	}
	return r.Backoff.Retry(ctx, func() error {
		return r.Cache.Set(ctx, r.Keyer.ReportKey(report.RunID), data, TTLReport)
	})
}

// LoadReport fetches a report stored with StoreReport. It returns a
// NOT_FOUND error if no report with that id is cached.
func (r *Runner) LoadReport(ctx context.Context, runID string) (*Report, error) {
	var (
		data []byte
		hit  bool
	)
	err := r.Backoff.Retry(ctx, func() error {
		var err error
		data, hit, err = r.Cache.Get(ctx, r.Keyer.ReportKey(runID))
		return err
	})
	if err != nil {
		return nil, err
	}
	if !hit {
		return nil, errors.New(errors.ErrCodeNotFound, "no report for run %s", runID)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode report %s", runID)
	}
	return &report, nil
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger defaults the run's logger to the runner's.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
