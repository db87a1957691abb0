package history

import (
	"errors"
	"fmt"
)

// ErrEmptyHistory is returned when reading from a history that has
// seen no values.
var ErrEmptyHistory = errors.New("history: empty history")

// DefaultMaxSize bounds the recent-entry window unless overridden.
const DefaultMaxSize = 10

// Entry is one recorded observation.
type Entry[T any] struct {
	Step  int
	Value T
}

// GenericHistory keeps the most recent entries of any value type.
type GenericHistory[T any] struct {
	name    string
	maxSize int
	recent  []Entry[T]
}

// NewGeneric creates a history with the default window size.
func NewGeneric[T any](name string) *GenericHistory[T] {
	return NewGenericSized[T](name, DefaultMaxSize)
}

// NewGenericSized creates a history with an explicit window size.
// Sizes below one are programmer errors and panic.
func NewGenericSized[T any](name string, maxSize int) *GenericHistory[T] {
	if maxSize < 1 {
		panic(fmt.Sprintf("history max size must be positive, got %d", maxSize))
	}
	return &GenericHistory[T]{name: name, maxSize: maxSize}
}

// Name returns the metric name this history tracks.
func (h *GenericHistory[T]) Name() string { return h.name }

// Len returns the number of retained entries.
func (h *GenericHistory[T]) Len() int { return len(h.recent) }

// Add records a value for a step, evicting the oldest entry when the
// window is full.
func (h *GenericHistory[T]) Add(step int, value T) {
	h.recent = append(h.recent, Entry[T]{Step: step, Value: value})
	if len(h.recent) > h.maxSize {
		h.recent = h.recent[1:]
	}
}

// Last returns the most recent value.
func (h *GenericHistory[T]) Last() (T, error) {
	var zero T
	if len(h.recent) == 0 {
		return zero, fmt.Errorf("%w: %q has no values", ErrEmptyHistory, h.name)
	}
	return h.recent[len(h.recent)-1].Value, nil
}

// Recent returns a copy of the retained entries, oldest first.
func (h *GenericHistory[T]) Recent() []Entry[T] {
	out := make([]Entry[T], len(h.recent))
	copy(out, h.recent)
	return out
}
