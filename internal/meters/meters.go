package meters

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyMeter is returned when reading an aggregate from a meter
// that has seen no values.
var ErrEmptyMeter = errors.New("meters: empty meter")

// DefaultEMAAlpha is the smoothing factor used when none is given.
const DefaultEMAAlpha = 0.98

// DefaultScalarWindow bounds the recent values kept by a Scalar meter.
const DefaultScalarWindow = 100

// Average accumulates a running, optionally example-weighted, mean.
type Average struct {
	count int
	total float64
}

// NewAverage creates an empty average meter.
func NewAverage() *Average { return &Average{} }

// Update records one observation.
func (m *Average) Update(value float64) { m.UpdateN(value, 1) }

// UpdateN records a value that already averages n examples, weighting
// it accordingly.
func (m *Average) UpdateN(value float64, n int) {
	m.total += value * float64(n)
	m.count += n
}

// Count returns the number of examples seen.
func (m *Average) Count() int { return m.count }

// Sum returns the weighted total.
func (m *Average) Sum() float64 { return m.total }

// Average returns the mean of all observations.
func (m *Average) Average() (float64, error) {
	if m.count == 0 {
		return 0, fmt.Errorf("%w: average of no values", ErrEmptyMeter)
	}
	return m.total / float64(m.count), nil
}

// Reset clears the meter for reuse.
func (m *Average) Reset() {
	m.count = 0
	m.total = 0
}

// MovingAverage averages the most recent values in a bounded window.
type MovingAverage struct {
	window int
	values []float64
}

// NewMovingAverage panics when the window is not positive.
func NewMovingAverage(window int) *MovingAverage {
	if window < 1 {
		panic(fmt.Sprintf("moving average window must be positive, got %d", window))
	}
	return &MovingAverage{window: window}
}

// Update records one observation, evicting the oldest when full.
func (m *MovingAverage) Update(value float64) {
	m.values = append(m.values, value)
	if len(m.values) > m.window {
		m.values = m.values[1:]
	}
}

// Average returns the mean of the windowed values.
func (m *MovingAverage) Average() (float64, error) {
	if len(m.values) == 0 {
		return 0, fmt.Errorf("%w: moving average of no values", ErrEmptyMeter)
	}
	var total float64
	for _, v := range m.values {
		total += v
	}
	return total / float64(len(m.values)), nil
}

// Reset clears the window.
func (m *MovingAverage) Reset() { m.values = m.values[:0] }

// ExponentialMovingAverage smooths observations with
// s = alpha*s + (1-alpha)*value.
type ExponentialMovingAverage struct {
	alpha    float64
	count    int
	smoothed float64
}

// NewEMA creates a smoother with the default alpha.
func NewEMA() *ExponentialMovingAverage { return NewEMAWithAlpha(DefaultEMAAlpha) }

// NewEMAWithAlpha panics when alpha is outside (0, 1).
func NewEMAWithAlpha(alpha float64) *ExponentialMovingAverage {
	if alpha <= 0 || alpha >= 1 {
		panic(fmt.Sprintf("ema alpha must be in (0, 1), got %g", alpha))
	}
	return &ExponentialMovingAverage{alpha: alpha}
}

// Update records one observation. The first observation seeds the
// smoothed value directly.
func (m *ExponentialMovingAverage) Update(value float64) {
	if m.count == 0 {
		m.smoothed = value
	} else {
		m.smoothed = m.alpha*m.smoothed + (1-m.alpha)*value
	}
	m.count++
}

// Count returns the number of observations.
func (m *ExponentialMovingAverage) Count() int { return m.count }

// Value returns the smoothed average.
func (m *ExponentialMovingAverage) Value() (float64, error) {
	if m.count == 0 {
		return 0, fmt.Errorf("%w: smoothed average of no values", ErrEmptyMeter)
	}
	return m.smoothed, nil
}

// Reset clears the smoother.
func (m *ExponentialMovingAverage) Reset() {
	m.count = 0
	m.smoothed = 0
}

// Scalar tracks count, total, extrema and a bounded tail of recent
// values for a stream of scalars.
type Scalar struct {
	window int
	count  int
	total  float64
	min    float64
	max    float64
	recent []float64
}

// NewScalar creates a scalar meter with the default recent window.
func NewScalar() *Scalar { return NewScalarSized(DefaultScalarWindow) }

// NewScalarSized panics when the window is not positive.
func NewScalarSized(window int) *Scalar {
	if window < 1 {
		panic(fmt.Sprintf("scalar meter window must be positive, got %d", window))
	}
	return &Scalar{window: window, min: math.Inf(1), max: math.Inf(-1)}
}

// Update records one observation.
func (m *Scalar) Update(value float64) {
	m.count++
	m.total += value
	m.min = math.Min(m.min, value)
	m.max = math.Max(m.max, value)
	m.recent = append(m.recent, value)
	if len(m.recent) > m.window {
		m.recent = m.recent[1:]
	}
}

// Count returns the number of observations.
func (m *Scalar) Count() int { return m.count }

// Sum returns the total of all observations.
func (m *Scalar) Sum() float64 { return m.total }

// Min returns the smallest observation.
func (m *Scalar) Min() (float64, error) {
	if m.count == 0 {
		return 0, fmt.Errorf("%w: min of no values", ErrEmptyMeter)
	}
	return m.min, nil
}

// Max returns the largest observation.
func (m *Scalar) Max() (float64, error) {
	if m.count == 0 {
		return 0, fmt.Errorf("%w: max of no values", ErrEmptyMeter)
	}
	return m.max, nil
}

// Average returns the mean of all observations, not only the recent
// window.
func (m *Scalar) Average() (float64, error) {
	if m.count == 0 {
		return 0, fmt.Errorf("%w: average of no values", ErrEmptyMeter)
	}
	return m.total / float64(m.count), nil
}

// Recent returns a copy of the recent values, oldest first.
func (m *Scalar) Recent() []float64 {
	out := make([]float64, len(m.recent))
	copy(out, m.recent)
	return out
}

// Reset clears the meter for reuse.
func (m *Scalar) Reset() {
	m.count = 0
	m.total = 0
	m.min = math.Inf(1)
	m.max = math.Inf(-1)
	m.recent = m.recent[:0]
}
