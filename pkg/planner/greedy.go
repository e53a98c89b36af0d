package planner

import "github.com/matzehuels/quicksilver/pkg/query"

// Greedy plans leaves by repeatedly joining the adjacent pair with the
// smallest estimated path count, ties going to the leftmost pair. A round
// stops scanning as soon as it finds a pair estimated empty.
//
// It returns nil for an empty leaf list.
func (p *Planner) Greedy(leaves []*query.Node) *Plan {
	if len(leaves) == 0 {
		return nil
	}

	costs := newSpanCosts(p.est)
	trees := initialSubtrees(leaves)
	var total uint64

	for len(trees) > 1 {
		best := 0
		bestScore := costs.join(trees[0], trees[1])
		for i := 1; i < len(trees)-1 && bestScore > 0; i++ {
			if score := costs.join(trees[i], trees[i+1]); score < bestScore {
				best, bestScore = i, score
			}
		}
		total += uint64(bestScore)
		trees = merge(trees, best)
	}

	return &Plan{Root: trees[0].node, Strategy: StrategyGreedy, Cost: total}
}
