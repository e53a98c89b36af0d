package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/quicksilver/pkg/errors"
)

// maxLineSize bounds a single line of a graph file.
const maxLineSize = 1 << 20

// Header is the first line of a graph file.
type Header struct {
	NumVertices uint32
	NumEdges    uint64 // advisory; the actual edge count may differ
	NumLabels   uint32
}

// =============================================================================
// Graph File API
// =============================================================================

// ReadGraphFile reads an edge-list file and returns the loaded graph.
// A missing file yields a FILE_NOT_FOUND error; malformed content yields
// INVALID_GRAPH with the offending line number.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	g, _, err := readGraphFrom(f)
	return g, err
}

// ReadGraph decodes an edge-list graph from r.
// Use ReadGraphFile for files or pass strings.NewReader for in-memory data.
func ReadGraph(r io.Reader) (*Graph, error) {
	g, _, err := readGraphFrom(r)
	return g, err
}

// ReadGraphHeader decodes a graph like ReadGraph and also returns the header
// as declared in the input, so callers can report a mismatching edge count.
func ReadGraphHeader(r io.Reader) (*Graph, Header, error) {
	return readGraphFrom(r)
}

// WriteGraphFile writes g to path in edge-list format.
// The file is created with 0644 permissions.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteGraph(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteGraph writes g to w in edge-list format. Edges are written label by
// label in insertion order, so ReadGraph(WriteGraph(g)) reproduces g exactly.
func WriteGraph(g *Graph, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d,%d,%d\n", g.NumVertices(), g.NumEdges(), g.NumLabels())
	for l := uint32(0); l < g.NumLabels(); l++ {
		for _, e := range g.Edges(l) {
			fmt.Fprintf(bw, "%d %d %d .\n", e.Src, l, e.Dst)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	return nil
}

// =============================================================================
// Internal Implementation
// =============================================================================

func readGraphFrom(r io.Reader) (*Graph, Header, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	var (
		g      *Graph
		header Header
		lineNo int
	)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if g == nil {
			h, err := parseHeader(line)
			if err != nil {
				return nil, header, errors.Wrap(errors.ErrCodeInvalidGraph, err, "line %d", lineNo)
			}
			header = h
			g = New(h.NumVertices, h.NumLabels)
			continue
		}

		src, label, dst, err := parseEdge(line)
		if err != nil {
			return nil, header, errors.Wrap(errors.ErrCodeInvalidGraph, err, "line %d", lineNo)
		}
		if err := g.AddEdge(src, dst, label); err != nil {
			return nil, header, errors.Wrap(errors.ErrCodeInvalidGraph, err, "line %d", lineNo)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, header, errors.Wrap(errors.ErrCodeInvalidGraph, err, "read graph")
	}
	if g == nil {
		return nil, header, errors.New(errors.ErrCodeInvalidGraph, "missing header line (noVertices,noEdges,noLabels)")
	}
	return g, header, nil
}

func parseHeader(line string) (Header, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return Header{}, fmt.Errorf("header %q: want noVertices,noEdges,noLabels", line)
	}
	v, err := parseID(parts[0])
	if err != nil {
		return Header{}, fmt.Errorf("header vertices: %w", err)
	}
	e, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return Header{}, fmt.Errorf("header edges: %w", err)
	}
	l, err := parseID(parts[2])
	if err != nil {
		return Header{}, fmt.Errorf("header labels: %w", err)
	}
	return Header{NumVertices: v, NumEdges: e, NumLabels: l}, nil
}

func parseEdge(line string) (src, label, dst uint32, err error) {
	fields := strings.Fields(line)
	switch {
	case len(fields) == 4 && fields[3] == ".":
		fields = fields[:3]
	case len(fields) == 3 && strings.HasSuffix(fields[2], "."):
		fields[2] = strings.TrimSuffix(fields[2], ".")
	}
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("edge %q: want subject predicate object", line)
	}
	if src, err = parseID(fields[0]); err != nil {
		return 0, 0, 0, fmt.Errorf("subject: %w", err)
	}
	if label, err = parseID(fields[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("predicate: %w", err)
	}
	if dst, err = parseID(fields[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("object: %w", err)
	}
	return src, label, dst, nil
}

func parseID(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}
