package planner

import (
	"fmt"
	"time"

	"github.com/matzehuels/quicksilver/pkg/errors"
	"github.com/matzehuels/quicksilver/pkg/estimator"
	"github.com/matzehuels/quicksilver/pkg/graph"
	"github.com/matzehuels/quicksilver/pkg/observability"
	"github.com/matzehuels/quicksilver/pkg/query"
)

// DefaultThreshold is the cost above which Optimize plans greedily.
const DefaultThreshold uint64 = 1_000_000

// MaxAutoExhaustiveLeaves bounds planning time under StrategyAuto: longer
// queries are planned greedily whatever their estimate, since an estimate
// that truncated to zero would otherwise always pass the threshold.
const MaxAutoExhaustiveLeaves = 16

// MaxExhaustiveLeaves is the longest query Exhaustive plans when asked for
// explicitly. OptimizeWith rejects longer ones.
const MaxExhaustiveLeaves = 256

// Strategy names a planning algorithm.
type Strategy string

const (
	// StrategyAuto picks greedy or exhaustive by cost threshold.
	StrategyAuto Strategy = "auto"
	// StrategyGreedy always plans with Greedy.
	StrategyGreedy Strategy = "greedy"
	// StrategyExhaustive always plans with Exhaustive.
	StrategyExhaustive Strategy = "exhaustive"
)

// ParseStrategy converts a strategy name. The empty string means auto.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyGreedy, StrategyExhaustive:
		return Strategy(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput,
		"unknown strategy %q (want auto, greedy or exhaustive)", s)
}

// Plan is the result of an optimization.
type Plan struct {
	// Root is the chosen join tree. Its leaves are the leaf nodes of the
	// input query, in the same order.
	Root *query.Node

	// Strategy is the algorithm that produced the plan; never StrategyAuto.
	Strategy Strategy

	// Cost is the sum of the estimated path counts of all joins in Root.
	Cost uint64

	// Estimate is the estimated cardinality of the whole query.
	Estimate graph.CardStat
}

// String returns a one-line description for logging.
func (p *Plan) String() string {
	return fmt.Sprintf("%s [%s, cost %d, estimate %s]", p.Root, p.Strategy, p.Cost, p.Estimate)
}

// Option configures a Planner.
type Option func(*Planner)

// WithThreshold sets the cost above which Optimize switches to greedy
// planning. The cost of a query is its step count times its estimated path
// count.
func WithThreshold(threshold uint64) Option {
	return func(p *Planner) { p.threshold = threshold }
}

// Planner builds join plans from cardinality estimates. It holds no state
// between calls; a Planner is safe for concurrent use if its estimator is.
type Planner struct {
	est       estimator.Estimator
	threshold uint64
}

// New creates a Planner using est as cost oracle. est must be prepared before
// the first call to Optimize.
func New(est estimator.Estimator, opts ...Option) *Planner {
	p := &Planner{est: est, threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Threshold returns the configured switching threshold.
func (p *Planner) Threshold() uint64 { return p.threshold }

// Optimize plans q with the threshold rule. See OptimizeWith.
func (p *Planner) Optimize(q *query.Node) (*Plan, error) {
	return p.OptimizeWith(q, StrategyAuto)
}

// OptimizeWith plans q with the given strategy. It returns an EMPTY_QUERY
// error when q has no steps.
//
// q must only use labels known to the estimator; see query.Validate.
func (p *Planner) OptimizeWith(q *query.Node, strategy Strategy) (*Plan, error) {
	leaves := query.Leaves(q)
	if len(leaves) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyQuery, "query has no steps")
	}

	start := time.Now()
	est := p.est.Estimate(q)
	if strategy == StrategyAuto {
		strategy = p.Choose(len(leaves), est)
	}

	var plan *Plan
	switch strategy {
	case StrategyGreedy:
		plan = p.Greedy(leaves)
	case StrategyExhaustive:
		if len(leaves) > MaxExhaustiveLeaves {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"exhaustive planning supports at most %d steps, query has %d", MaxExhaustiveLeaves, len(leaves))
		}
		plan = p.Exhaustive(leaves)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown strategy %q", strategy)
	}
	plan.Estimate = est

	observability.Engine().OnPlan(q.String(), string(plan.Strategy), len(leaves), plan.Cost, time.Since(start))
	return plan, nil
}

// Choose applies the threshold rule: greedy when leafCount times the
// estimated path count exceeds the threshold or leafCount exceeds
// MaxAutoExhaustiveLeaves, exhaustive otherwise.
func (p *Planner) Choose(leafCount int, est graph.CardStat) Strategy {
	if leafCount > MaxAutoExhaustiveLeaves || uint64(leafCount)*uint64(est.NoPaths) > p.threshold {
		return StrategyGreedy
	}
	return StrategyExhaustive
}

// =============================================================================
// Shared helpers
// =============================================================================

// subtree is a partial plan covering the leaves lo..hi (inclusive).
type subtree struct {
	node   *query.Node
	lo, hi int
}

func initialSubtrees(leaves []*query.Node) []subtree {
	trees := make([]subtree, len(leaves))
	for i, leaf := range leaves {
		trees[i] = subtree{node: leaf, lo: i, hi: i}
	}
	return trees
}

// merge returns a new list in which trees[i] and trees[i+1] are replaced by
// their concatenation. trees is not modified.
func merge(trees []subtree, i int) []subtree {
	out := make([]subtree, 0, len(trees)-1)
	out = append(out, trees[:i]...)
	out = append(out, subtree{
		node: query.Concat(trees[i].node, trees[i+1].node),
		lo:   trees[i].lo,
		hi:   trees[i+1].hi,
	})
	return append(out, trees[i+2:]...)
}

type span struct{ lo, hi int }

// spanCosts memoizes estimated path counts by leaf span. The estimate of a
// concatenation depends only on its step sequence, not on its bracketing,
// so every join covering the same leaves shares one entry. A spanCosts lives
// for one planning call.
type spanCosts struct {
	est  estimator.Estimator
	memo map[span]uint32
}

func newSpanCosts(est estimator.Estimator) *spanCosts {
	return &spanCosts{est: est, memo: make(map[span]uint32)}
}

// join returns the estimated path count of joining a and b.
func (c *spanCosts) join(a, b subtree) uint32 {
	key := span{a.lo, b.hi}
	if paths, ok := c.memo[key]; ok {
		return paths
	}
	paths := c.est.Estimate(query.Concat(a.node, b.node)).NoPaths
	c.memo[key] = paths
	return paths
}
