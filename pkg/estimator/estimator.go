package estimator

import (
	"github.com/matzehuels/quicksilver/pkg/graph"
	"github.com/matzehuels/quicksilver/pkg/query"
)

// Estimator predicts result cardinalities for path queries.
//
// Prepare must be called once before Estimate. Estimate must be a pure
// function of the query and the prepared statistics: calling it twice with
// the same tree returns the same CardStat.
type Estimator interface {
	Prepare()
	Estimate(q *query.Node) graph.CardStat
}

// Ensure Simple implements Estimator.
var _ Estimator = (*Simple)(nil)
