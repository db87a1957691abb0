package history

import "fmt"

// Comparator reports whether candidate is at least as good as best.
type Comparator func(candidate, best float64) bool

// MaxComparator treats larger values as better (accuracy-style
// metrics).
func MaxComparator(candidate, best float64) bool { return candidate >= best }

// MinComparator treats smaller values as better (loss-style metrics).
func MinComparator(candidate, best float64) bool { return candidate <= best }

// ScalarHistory is a float64 history that also tracks the best value
// seen under its comparator.
type ScalarHistory struct {
	GenericHistory[float64]
	cmp     Comparator
	best    float64
	hasBest bool
}

// NewMaxScalar tracks a metric where larger is better.
func NewMaxScalar(name string) *ScalarHistory {
	return NewScalar(name, MaxComparator)
}

// NewMinScalar tracks a metric where smaller is better.
func NewMinScalar(name string) *ScalarHistory {
	return NewScalar(name, MinComparator)
}

// NewScalar creates a scalar history with the default window size.
func NewScalar(name string, cmp Comparator) *ScalarHistory {
	return NewScalarSized(name, cmp, DefaultMaxSize)
}

// NewScalarSized creates a scalar history with an explicit window
// size. Sizes below one panic.
func NewScalarSized(name string, cmp Comparator, maxSize int) *ScalarHistory {
	return &ScalarHistory{
		GenericHistory: *NewGenericSized[float64](name, maxSize),
		cmp:            cmp,
	}
}

// Add records a value and refreshes the best value. It shadows the
// embedded Add so best tracking cannot be skipped.
func (h *ScalarHistory) Add(step int, value float64) {
	h.GenericHistory.Add(step, value)
	if !h.hasBest || h.cmp(value, h.best) {
		h.best = value
		h.hasBest = true
	}
}

// Best returns the best value seen so far.
func (h *ScalarHistory) Best() (float64, error) {
	if !h.hasBest {
		return 0, fmt.Errorf("%w: %q has no values", ErrEmptyHistory, h.Name())
	}
	return h.best, nil
}

// Better reports whether candidate is at least as good as reference
// under this history's comparator.
func (h *ScalarHistory) Better(candidate, reference float64) bool {
	return h.cmp(candidate, reference)
}
