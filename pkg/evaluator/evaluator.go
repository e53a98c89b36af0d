package evaluator

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/quicksilver/pkg/errors"
	"github.com/matzehuels/quicksilver/pkg/estimator"
	"github.com/matzehuels/quicksilver/pkg/executor"
	"github.com/matzehuels/quicksilver/pkg/graph"
	"github.com/matzehuels/quicksilver/pkg/observability"
	"github.com/matzehuels/quicksilver/pkg/planner"
	"github.com/matzehuels/quicksilver/pkg/query"
)

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithThreshold sets the planner's greedy/exhaustive switching threshold.
func WithThreshold(threshold uint64) Option {
	return func(e *Evaluator) { e.threshold = threshold }
}

// WithStrategy forces a planning strategy instead of the threshold rule.
func WithStrategy(s planner.Strategy) Option {
	return func(e *Evaluator) { e.strategy = s }
}

// WithExactEndpoints makes Evaluate count distinct sources and targets of
// the result. By default only the path count is reported and NoOut and NoIn
// are zero.
func WithExactEndpoints(exact bool) Option {
	return func(e *Evaluator) { e.exact = exact }
}

// WithLogger sets the logger that receives the chosen plan of every query at
// debug level. The default discards all output.
func WithLogger(l *log.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// Evaluator executes path queries against one graph.
type Evaluator struct {
	graph     *graph.Graph
	est       estimator.Estimator
	planner   *planner.Planner
	threshold uint64
	strategy  planner.Strategy
	exact     bool
	logger    *log.Logger

	lastPlan *planner.Plan
}

// New creates an Evaluator for g.
func New(g *graph.Graph, opts ...Option) *Evaluator {
	e := &Evaluator{
		graph:     g,
		threshold: planner.DefaultThreshold,
		strategy:  planner.StrategyAuto,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the evaluated graph.
func (e *Evaluator) Graph() *graph.Graph { return e.graph }

// AttachEstimator enables query planning with est. Call Prepare afterwards
// unless est is already prepared.
func (e *Evaluator) AttachEstimator(est estimator.Estimator) {
	e.est = est
	e.planner = planner.New(est, planner.WithThreshold(e.threshold))
}

// Planner returns the planner built by AttachEstimator, or nil.
func (e *Evaluator) Planner() *planner.Planner { return e.planner }

// Estimator returns the attached estimator, or nil.
func (e *Evaluator) Estimator() estimator.Estimator { return e.est }

// Prepare prepares the attached estimator. It does nothing without one.
func (e *Evaluator) Prepare() {
	if e.est != nil {
		e.est.Prepare()
	}
}

// LastPlan returns the plan chosen for the most recent Evaluate or
// EvaluateSet call, or nil if no estimator is attached or the call failed.
func (e *Evaluator) LastPlan() *planner.Plan { return e.lastPlan }

// Evaluate computes the cardinality of q's result. NoPaths is exact; NoOut
// and NoIn are zero unless WithExactEndpoints is set.
//
// It returns an EMPTY_QUERY error for an empty tree and an INVALID_QUERY error
// when q is malformed or uses a label the graph does not have.
func (e *Evaluator) Evaluate(q *query.Node) (graph.CardStat, error) {
	start := time.Now()
	rs, err := e.EvaluateSet(q)
	if err != nil {
		observability.Engine().OnEvaluate(q.String(), 0, time.Since(start), err)
		return graph.CardStat{}, err
	}

	var stat graph.CardStat
	if e.exact {
		stat = executor.SummarizeExact(rs)
	} else {
		stat = executor.Summarize(rs)
	}
	observability.Engine().OnEvaluate(q.String(), stat.NoPaths, time.Since(start), nil)
	return stat, nil
}

// EvaluateSet computes the result pairs of q, sorted by (source, target)
// and free of duplicates. Errors are those of Evaluate.
func (e *Evaluator) EvaluateSet(q *query.Node) (executor.ResultSet, error) {
	e.lastPlan = nil
	plan, err := e.Plan(q)
	if err != nil {
		return nil, err
	}

	root := q
	if plan != nil {
		root = plan.Root
		e.lastPlan = plan
		e.logger.Debug("planned query", "query", q, "plan", plan.Root,
			"strategy", plan.Strategy, "cost", plan.Cost)
	}
	rs := e.eval(root)
	if root.IsLeaf() {
		// joins already dedup; a bare step may carry parallel edges
		rs = executor.Distinct(rs)
	}
	return rs, nil
}

// Plan validates q and returns the join order Evaluate would execute. It
// returns a nil plan without error when no estimator is attached.
func (e *Evaluator) Plan(q *query.Node) (*planner.Plan, error) {
	if err := query.Validate(q, e.graph.NumLabels()); err != nil {
		return nil, err
	}
	if e.planner == nil {
		return nil, nil
	}
	return e.planner.OptimizeWith(q, e.strategy)
}

// Estimate validates q and returns the attached estimator's prediction. It
// returns an UNSUPPORTED error when no estimator is attached.
func (e *Evaluator) Estimate(q *query.Node) (graph.CardStat, error) {
	if e.est == nil {
		return graph.CardStat{}, errors.New(errors.ErrCodeUnsupported, "no estimator attached")
	}
	if err := query.Validate(q, e.graph.NumLabels()); err != nil {
		return graph.CardStat{}, err
	}
	start := time.Now()
	stat := e.est.Estimate(q)
	observability.Engine().OnEstimate(q.String(), stat.NoPaths, time.Since(start))
	return stat, nil
}

// eval executes a validated tree bottom-up.
func (e *Evaluator) eval(n *query.Node) executor.ResultSet {
	if n.IsLeaf() {
		return executor.Project(n.Step.Label, n.Step.Dir == query.Inverse, e.graph)
	}
	return executor.Join(e.eval(n.Left), e.eval(n.Right))
}
