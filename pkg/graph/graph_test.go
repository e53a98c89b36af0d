package graph

import (
	"slices"
	"testing"

	"github.com/matzehuels/quicksilver/pkg/errors"
)

// exampleGraph builds the 10-vertex, 2-label graph used across the engine tests.
func exampleGraph(t *testing.T) *Graph {
	t.Helper()
	g := New(10, 2)
	edges := []struct{ from, to, label uint32 }{
		{1, 2, 0}, {3, 2, 0}, {4, 9, 0},
		{2, 4, 1}, {2, 4, 1}, {2, 5, 1}, {2, 8, 1}, {9, 8, 1},
		{1, 3, 1}, {1, 4, 1}, {1, 5, 1},
	}
	for _, e := range edges {
		if err := g.AddEdge(e.from, e.to, e.label); err != nil {
			t.Fatalf("AddEdge(%d, %d, %d) error: %v", e.from, e.to, e.label, err)
		}
	}
	return g
}

func TestAddEdge(t *testing.T) {
	g := exampleGraph(t)

	if g.NumEdges() != 11 {
		t.Errorf("NumEdges() = %d, want 11", g.NumEdges())
	}
	if len(g.Edges(0)) != 3 {
		t.Errorf("len(Edges(0)) = %d, want 3", len(g.Edges(0)))
	}
	if len(g.Edges(1)) != 8 {
		t.Errorf("len(Edges(1)) = %d, want 8 (duplicates kept)", len(g.Edges(1)))
	}

	want := []Pair{{1, 2}, {3, 2}, {4, 9}}
	if !slices.Equal(g.Edges(0), want) {
		t.Errorf("Edges(0) = %v, want %v (insertion order)", g.Edges(0), want)
	}
}

func TestAddEdgeOutOfRange(t *testing.T) {
	tests := []struct {
		name            string
		from, to, label uint32
	}{
		{"source", 10, 1, 0},
		{"target", 1, 10, 0},
		{"label", 1, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(10, 2)
			err := g.AddEdge(tt.from, tt.to, tt.label)
			if !errors.Is(err, errors.ErrCodeInvalidGraph) {
				t.Fatalf("AddEdge() error = %v, want %s", err, errors.ErrCodeInvalidGraph)
			}
			if g.NumEdges() != 0 {
				t.Errorf("NumEdges() = %d, want 0 after rejected edge", g.NumEdges())
			}
		})
	}
}

func TestEdgesPanicsOnUnknownLabel(t *testing.T) {
	g := New(4, 1)
	defer func() {
		if recover() == nil {
			t.Error("Edges(5) did not panic")
		}
	}()
	g.Edges(5)
}

func TestUsedLabels(t *testing.T) {
	g := New(5, 4)
	_ = g.AddEdge(0, 1, 1)
	_ = g.AddEdge(1, 2, 3)

	if got := g.UsedLabels(); !slices.Equal(got, []uint32{1, 3}) {
		t.Errorf("UsedLabels() = %v, want [1 3]", got)
	}
}

func TestSortAndDedup(t *testing.T) {
	pairs := []Pair{{2, 4}, {1, 5}, {2, 4}, {1, 3}, {9, 8}, {1, 5}}

	SortPairs(pairs)
	got := Dedup(pairs)

	want := []Pair{{1, 3}, {1, 5}, {2, 4}, {9, 8}}
	if !slices.Equal(got, want) {
		t.Errorf("Dedup(SortPairs()) = %v, want %v", got, want)
	}
}

func TestSortByDst(t *testing.T) {
	pairs := []Pair{{1, 9}, {2, 3}, {3, 5}}
	SortByDst(pairs)

	for i := 1; i < len(pairs); i++ {
		if pairs[i-1].Dst > pairs[i].Dst {
			t.Fatalf("SortByDst() not sorted: %v", pairs)
		}
	}
}

func TestCardStatReverse(t *testing.T) {
	c := CardStat{NoOut: 3, NoPaths: 3, NoIn: 2}
	r := c.Reverse()

	if r != (CardStat{NoOut: 2, NoPaths: 3, NoIn: 3}) {
		t.Errorf("Reverse() = %v, want (2, 3, 3)", r)
	}
	if r.Reverse() != c {
		t.Errorf("Reverse().Reverse() = %v, want %v", r.Reverse(), c)
	}
	if c.String() != "(3, 3, 2)" {
		t.Errorf("String() = %q, want %q", c.String(), "(3, 3, 2)")
	}
}
