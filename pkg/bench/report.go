package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"time"

	"github.com/matzehuels/quicksilver/pkg/graph"
)

// Report is the outcome of one benchmark run. It is JSON-serializable.
type Report struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Mode      Mode      `json:"mode"`
	Graph     GraphInfo `json:"graph"`

	LoadTime      time.Duration `json:"load_time_ns"`
	PrepareTime   time.Duration `json:"prepare_time_ns"`
	StatsCacheHit bool          `json:"stats_cache_hit"`

	Results []Result `json:"results"`
}

// GraphInfo describes the benchmarked graph.
type GraphInfo struct {
	Path     string `json:"path"`
	Hash     string `json:"hash"`
	Vertices uint32 `json:"vertices"`
	Edges    int    `json:"edges"`
	Labels   uint32 `json:"labels"`
}

// Result is the outcome of one workload query.
type Result struct {
	Line   int    `json:"line"`
	Source string `json:"source"`
	Path   string `json:"path"`
	Target string `json:"target"`

	// Query is the parsed query in canonical form; Plan the executed join
	// tree. Both are empty if parsing failed.
	Query    string `json:"query,omitempty"`
	Plan     string `json:"plan,omitempty"`
	Strategy string `json:"strategy,omitempty"`

	Estimate     *graph.CardStat `json:"estimate,omitempty"`
	Actual       *graph.CardStat `json:"actual,omitempty"`
	EstimateTime time.Duration   `json:"estimate_time_ns,omitempty"`
	EvaluateTime time.Duration   `json:"evaluate_time_ns,omitempty"`

	Error string `json:"error,omitempty"`
}

// Failed reports whether the query could not be run.
func (r Result) Failed() bool { return r.Error != "" }

// QError returns the q-error of the path count estimate: the factor by which
// the estimate is off, max(est/act, act/est), with both counts clamped to at
// least 1. It returns false unless both estimate and actual are present.
func (r Result) QError() (float64, bool) {
	if r.Estimate == nil || r.Actual == nil {
		return 0, false
	}
	est := math.Max(float64(r.Estimate.NoPaths), 1)
	act := math.Max(float64(r.Actual.NoPaths), 1)
	return math.Max(est/act, act/est), true
}

// Summary aggregates a report.
type Summary struct {
	Queries       int           `json:"queries"`
	Failed        int           `json:"failed"`
	TotalEstimate time.Duration `json:"total_estimate_ns"`
	TotalEvaluate time.Duration `json:"total_evaluate_ns"`

	// Q-error statistics over queries with both an estimate and a result.
	Compared    int     `json:"compared"`
	MeanQError  float64 `json:"mean_q_error"`
	MedianError float64 `json:"median_q_error"`
	MaxQError   float64 `json:"max_q_error"`
}

// Summary computes aggregate statistics over the results.
func (r *Report) Summary() Summary {
	s := Summary{Queries: len(r.Results)}
	var qerrs []float64
	for _, res := range r.Results {
		if res.Failed() {
			s.Failed++
			continue
		}
		s.TotalEstimate += res.EstimateTime
		s.TotalEvaluate += res.EvaluateTime
		if q, ok := res.QError(); ok {
			qerrs = append(qerrs, q)
		}
	}
	s.Compared = len(qerrs)
	if len(qerrs) > 0 {
		var sum float64
		for _, q := range qerrs {
			sum += q
			s.MaxQError = math.Max(s.MaxQError, q)
		}
		s.MeanQError = sum / float64(len(qerrs))
		s.MedianError = median(qerrs)
	}
	return s
}

// String formats the summary on one line.
func (s Summary) String() string {
	out := fmt.Sprintf("%d queries, %d failed, estimate %s, evaluate %s",
		s.Queries, s.Failed, s.TotalEstimate, s.TotalEvaluate)
	if s.Compared > 0 {
		out += fmt.Sprintf(", q-error mean %.2f median %.2f max %.2f", s.MeanQError, s.MedianError, s.MaxQError)
	}
	return out
}

func median(xs []float64) float64 {
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// WriteReport encodes r as indented JSON.
func WriteReport(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// ReadReport decodes a report written by WriteReport.
func ReadReport(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}
