package bench

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/quicksilver/pkg/errors"
	"github.com/matzehuels/quicksilver/pkg/planner"
)

// Mode selects what a run measures.
type Mode string

const (
	// ModeEstimator only estimates every query.
	ModeEstimator Mode = "estimator"
	// ModeEvaluator only evaluates every query.
	ModeEvaluator Mode = "evaluator"
	// ModeBoth estimates and evaluates every query and reports the error of
	// the estimate.
	ModeBoth Mode = "both"
)

// DefaultMode is used when Options.Mode is empty.
const DefaultMode = ModeBoth

// ParseMode converts a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeEstimator, ModeEvaluator, ModeBoth:
		return Mode(s), nil
	case "":
		return DefaultMode, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput,
		"invalid mode: %q (must be one of: estimator, evaluator, both)", s)
}

// Estimates reports whether the mode runs the estimator.
func (m Mode) Estimates() bool { return m == ModeEstimator || m == ModeBoth }

// Evaluates reports whether the mode runs the evaluator.
func (m Mode) Evaluates() bool { return m == ModeEvaluator || m == ModeBoth }

// Options configures a benchmark run.
type Options struct {
	GraphPath    string `json:"graph_path"`
	WorkloadPath string `json:"workload_path"`
	Mode         Mode   `json:"mode"`

	// Planner and evaluator settings.
	Threshold      uint64           `json:"threshold,omitempty"`
	Strategy       planner.Strategy `json:"strategy,omitempty"`
	ExactEndpoints bool             `json:"exact_endpoints,omitempty"`

	// Refresh recomputes label statistics even if they are cached.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	// Progress, when set, is called after each query with the number of
	// queries run so far and the workload size.
	Progress func(done, total int) `json:"-"`
}

// ValidateAndSetDefaults checks required fields and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if err := errors.ValidatePath(o.GraphPath); err != nil {
		return err
	}
	if err := errors.ValidatePath(o.WorkloadPath); err != nil {
		return err
	}
	mode, err := ParseMode(string(o.Mode))
	if err != nil {
		return err
	}
	o.Mode = mode

	strategy, err := planner.ParseStrategy(string(o.Strategy))
	if err != nil {
		return err
	}
	o.Strategy = strategy

	if o.Threshold == 0 {
		o.Threshold = planner.DefaultThreshold
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}
