package planner

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/quicksilver/pkg/estimator"
	"github.com/matzehuels/quicksilver/pkg/query"
)

// DOTOptions configures plan diagrams.
type DOTOptions struct {
	// Estimator, when set, annotates every join with its estimated
	// cardinality.
	Estimator estimator.Estimator
}

// ToDOT converts a plan to Graphviz DOT source. Joins are drawn as ellipses
// above their two inputs and steps as boxes, so the leaves read left to right
// in query order.
func ToDOT(plan *Plan, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph plan {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("  node [fontname=\"Helvetica\", fontsize=14];\n")
	fmt.Fprintf(&buf, "  label=%q;\n", fmt.Sprintf("%s plan, cost %d", plan.Strategy, plan.Cost))
	buf.WriteString("  labelloc=t;\n")
	buf.WriteString("\n")

	w := dotWriter{buf: &buf, est: opts.Estimator}
	w.node(plan.Root)

	buf.WriteString("}\n")
	return buf.String()
}

type dotWriter struct {
	buf  *bytes.Buffer
	est  estimator.Estimator
	next int
}

// node writes n and its subtree and returns n's DOT id.
func (w *dotWriter) node(n *query.Node) string {
	id := fmt.Sprintf("n%d", w.next)
	w.next++

	if n.IsLeaf() {
		fmt.Fprintf(w.buf, "  %s [shape=box, style=\"rounded,filled\", fillcolor=white, label=%q];\n", id, n.Step.String())
		return id
	}

	label := "⋈"
	if w.est != nil {
		label += "\n" + w.est.Estimate(n).String()
	}
	fmt.Fprintf(w.buf, "  %s [shape=ellipse, style=filled, fillcolor=lightgrey, label=%q];\n", id, label)

	left := w.node(n.Left)
	right := w.node(n.Right)
	fmt.Fprintf(w.buf, "  %s -> %s;\n", id, left)
	fmt.Fprintf(w.buf, "  %s -> %s;\n", id, right)
	return id
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
