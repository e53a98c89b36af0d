package planner

import "github.com/matzehuels/quicksilver/pkg/query"

// Exhaustive plans leaves by searching every bracketing of leaves for the one
// with the smallest cost. The cost of a join depends only on the leaves it
// covers, so the cheapest tree over a span lo..hi is the cheapest pair of
// subtrees lo..k and k+1..hi plus the span's own estimate. Exhaustive fills
// that table span by span, narrowest first, in O(n³) time and O(n²) estimates.
//
// Among equally cheap plans the most left-deep one wins: for every span the
// rightmost split point is tried first and only a strictly cheaper split
// replaces it.
//
// It returns nil for an empty leaf list.
func (p *Planner) Exhaustive(leaves []*query.Node) *Plan {
	n := len(leaves)
	if n == 0 {
		return nil
	}

	costs := newSpanCosts(p.est)
	best := make([][]bestTree, n)
	for lo := range best {
		best[lo] = make([]bestTree, n)
		best[lo][lo] = bestTree{tree: subtree{node: leaves[lo], lo: lo, hi: lo}}
	}

	for width := 1; width < n; width++ {
		for lo := 0; lo+width < n; lo++ {
			hi := lo + width
			split, sum := hi-1, best[lo][hi-1].sum+best[hi][hi].sum
			for k := hi - 2; k >= lo; k-- {
				if s := best[lo][k].sum + best[k+1][hi].sum; s < sum {
					split, sum = k, s
				}
			}
			left, right := best[lo][split].tree, best[split+1][hi].tree
			best[lo][hi] = bestTree{
				tree: subtree{node: query.Concat(left.node, right.node), lo: lo, hi: hi},
				sum:  sum + uint64(costs.join(left, right)),
			}
		}
	}

	root := best[0][n-1]
	return &Plan{Root: root.tree.node, Strategy: StrategyExhaustive, Cost: root.sum}
}

// bestTree is the cheapest subtree found for one span and its total cost.
type bestTree struct {
	tree subtree
	sum  uint64
}
