package events

import "fmt"

// Condition decides whether a conditional handler fires.
type Condition interface {
	Evaluate() bool
	Equal(other Condition) bool
}

// EpochCounter exposes the current epoch of a training engine.
type EpochCounter interface {
	Epoch() int
}

// IterationCounter exposes the current iteration of a training engine.
type IterationCounter interface {
	Iteration() int
}

// PeriodicCondition is true on its first evaluation and then on every
// freq-th one after that.
type PeriodicCondition struct {
	freq  int
	calls int
}

// NewPeriodic panics when freq is not positive; factories validate
// config-provided frequencies before constructing conditions.
func NewPeriodic(freq int) *PeriodicCondition {
	if freq < 1 {
		panic(fmt.Sprintf("periodic condition frequency must be positive, got %d", freq))
	}
	return &PeriodicCondition{freq: freq}
}

// Evaluate implements Condition.
func (c *PeriodicCondition) Evaluate() bool {
	ok := c.calls%c.freq == 0
	c.calls++
	return ok
}

// Equal implements Condition. Only the frequency is compared; the call
// counter is runtime state.
func (c *PeriodicCondition) Equal(other Condition) bool {
	o, ok := other.(*PeriodicCondition)
	return ok && c.freq == o.freq
}

// EpochPeriodicCondition is true when the engine's epoch is a multiple
// of freq.
type EpochPeriodicCondition struct {
	counter EpochCounter
	freq    int
}

// NewEpochPeriodic panics when freq is not positive.
func NewEpochPeriodic(counter EpochCounter, freq int) *EpochPeriodicCondition {
	if freq < 1 {
		panic(fmt.Sprintf("epoch condition frequency must be positive, got %d", freq))
	}
	return &EpochPeriodicCondition{counter: counter, freq: freq}
}

// Evaluate implements Condition.
func (c *EpochPeriodicCondition) Evaluate() bool {
	return c.counter.Epoch()%c.freq == 0
}

// Equal implements Condition.
func (c *EpochPeriodicCondition) Equal(other Condition) bool {
	o, ok := other.(*EpochPeriodicCondition)
	return ok && c.freq == o.freq && c.counter == o.counter
}

// IterationPeriodicCondition is true when the engine's iteration is a
// multiple of freq.
type IterationPeriodicCondition struct {
	counter IterationCounter
	freq    int
}

// NewIterationPeriodic panics when freq is not positive.
func NewIterationPeriodic(counter IterationCounter, freq int) *IterationPeriodicCondition {
	if freq < 1 {
		panic(fmt.Sprintf("iteration condition frequency must be positive, got %d", freq))
	}
	return &IterationPeriodicCondition{counter: counter, freq: freq}
}

// Evaluate implements Condition.
func (c *IterationPeriodicCondition) Evaluate() bool {
	return c.counter.Iteration()%c.freq == 0
}

// Equal implements Condition.
func (c *IterationPeriodicCondition) Equal(other Condition) bool {
	o, ok := other.(*IterationPeriodicCondition)
	return ok && c.freq == o.freq && c.counter == o.counter
}
