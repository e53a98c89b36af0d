package query

import (
	"strconv"
	"strings"

	"github.com/matzehuels/quicksilver/pkg/errors"
)

// Direction selects which way a step traverses its edges.
type Direction uint8

const (
	// Forward follows edges from source to target ("+").
	Forward Direction = iota
	// Inverse follows edges from target to source ("-").
	Inverse
)

// String returns the query syntax for the direction.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "+"
	case Inverse:
		return "-"
	}
	return "?" + strconv.Itoa(int(d))
}

// Valid reports whether d is Forward or Inverse.
func (d Direction) Valid() bool { return d == Forward || d == Inverse }

// Step is a single labeled hop of a path query.
type Step struct {
	Label uint32
	Dir   Direction
}

// String returns the query syntax for the step, e.g. "3-".
func (s Step) String() string {
	return strconv.FormatUint(uint64(s.Label), 10) + s.Dir.String()
}

// Node is a node of a path-query tree: either a leaf carrying a Step or a
// concatenation of a left and a right sub-path.
//
// The zero value is a leaf for "0+". Use Leaf and Concat to build trees.
type Node struct {
	Step  Step
	Left  *Node
	Right *Node
}

// Leaf returns a leaf node for step.
func Leaf(step Step) *Node { return &Node{Step: step} }

// Concat returns a node that evaluates left and then right.
func Concat(left, right *Node) *Node { return &Node{Left: left, Right: right} }

// IsConcat reports whether n is a concatenation node.
func (n *Node) IsConcat() bool { return n.Left != nil || n.Right != nil }

// IsLeaf reports whether n is a leaf.
func (n *Node) IsLeaf() bool { return !n.IsConcat() }

// String prints the tree fully bracketed, e.g. "((0+/1-)/2+)".
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	if n.IsLeaf() {
		b.WriteString(n.Step.String())
		return
	}
	b.WriteByte('(')
	n.Left.write(b)
	b.WriteByte('/')
	n.Right.write(b)
	b.WriteByte(')')
}

// Steps returns the left-to-right step sequence of the tree rooted at n.
// A nil tree has no steps.
func Steps(n *Node) []Step {
	var steps []Step
	walkLeaves(n, func(leaf *Node) { steps = append(steps, leaf.Step) })
	return steps
}

// Leaves returns the leaf nodes of the tree rooted at n in left-to-right order.
func Leaves(n *Node) []*Node {
	var leaves []*Node
	walkLeaves(n, func(leaf *Node) { leaves = append(leaves, leaf) })
	return leaves
}

func walkLeaves(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	if n.IsLeaf() {
		fn(n)
		return
	}
	walkLeaves(n.Left, fn)
	walkLeaves(n.Right, fn)
}

// Depth returns the height of the tree; a single leaf has depth 1.
func Depth(n *Node) int {
	if n == nil {
		return 0
	}
	if n.IsLeaf() {
		return 1
	}
	return 1 + max(Depth(n.Left), Depth(n.Right))
}

// Validate checks that the tree rooted at n is well formed and only uses
// labels below numLabels. It returns EMPTY_QUERY for a nil tree and
// INVALID_QUERY naming the offending node otherwise.
func Validate(n *Node, numLabels uint32) error {
	if n == nil {
		return errors.New(errors.ErrCodeEmptyQuery, "query has no steps")
	}
	return validate(n, numLabels)
}

func validate(n *Node, numLabels uint32) error {
	if n.IsConcat() {
		if n.Left == nil || n.Right == nil {
			return errors.New(errors.ErrCodeInvalidQuery, "concatenation %s is missing an operand", n)
		}
		if err := validate(n.Left, numLabels); err != nil {
			return err
		}
		return validate(n.Right, numLabels)
	}
	if !n.Step.Dir.Valid() {
		return errors.New(errors.ErrCodeInvalidQuery, "step %s has an unknown direction", n.Step)
	}
	if n.Step.Label >= numLabels {
		return errors.New(errors.ErrCodeInvalidQuery, "step %s uses unknown label %d (graph has %d labels)",
			n.Step, n.Step.Label, numLabels)
	}
	return nil
}
