package metrics

import (
	"errors"
	"fmt"

	"github.com/gravigo-ml/gravigo/internal/meters"
)

// ErrEmptyMetric is returned when a metric value is requested before
// any observation was recorded.
var ErrEmptyMetric = errors.New("metrics: empty metric")

// Metric accumulates prediction/target pairs and reduces them to a
// single scalar.
type Metric interface {
	// Name identifies the metric in logs and histories.
	Name() string

	// Update records one example.
	Update(pred, target []float64)

	// Value returns the reduced metric over everything recorded since
	// the last Reset.
	Value() (float64, error)

	// Reset discards all recorded observations.
	Reset()
}

// CategoricalAccuracy is the fraction of examples whose predicted
// class (argmax of the prediction) matches the target class (argmax of
// the one-hot target).
type CategoricalAccuracy struct {
	name string
	avg  *meters.Average
}

// NewCategoricalAccuracy creates an accuracy metric reported under the
// given name.
func NewCategoricalAccuracy(name string) *CategoricalAccuracy {
	return &CategoricalAccuracy{name: name, avg: meters.NewAverage()}
}

func (m *CategoricalAccuracy) Name() string { return m.name }

func (m *CategoricalAccuracy) Update(pred, target []float64) {
	if argmax(pred) == argmax(target) {
		m.avg.Update(1)
	} else {
		m.avg.Update(0)
	}
}

func (m *CategoricalAccuracy) Value() (float64, error) {
	v, err := m.avg.Average()
	if err != nil {
		return 0, fmt.Errorf("%w: %q has no observations", ErrEmptyMetric, m.name)
	}
	return v, nil
}

func (m *CategoricalAccuracy) Reset() { m.avg.Reset() }

// SquaredError is the mean squared error averaged over examples, each
// example contributing the mean over its output components.
type SquaredError struct {
	name string
	avg  *meters.Average
}

// NewSquaredError creates a squared error metric reported under the
// given name.
func NewSquaredError(name string) *SquaredError {
	return &SquaredError{name: name, avg: meters.NewAverage()}
}

func (m *SquaredError) Name() string { return m.name }

func (m *SquaredError) Update(pred, target []float64) {
	n := len(pred)
	if len(target) < n {
		n = len(target)
	}
	if n == 0 {
		return
	}
	var sum float64
	for i := 0; i < n; i++ {
		diff := pred[i] - target[i]
		sum += diff * diff
	}
	m.avg.Update(sum / float64(n))
}

func (m *SquaredError) Value() (float64, error) {
	v, err := m.avg.Average()
	if err != nil {
		return 0, fmt.Errorf("%w: %q has no observations", ErrEmptyMetric, m.name)
	}
	return v, nil
}

func (m *SquaredError) Reset() { m.avg.Reset() }

// argmax returns the index of the largest component, preferring the
// earliest on ties. An empty slice maps to -1.
func argmax(v []float64) int {
	best := -1
	bestV := 0.0
	for i, x := range v {
		if best == -1 || x > bestV {
			best = i
			bestV = x
		}
	}
	return best
}
