package tracker

import (
	"context"
	"fmt"
)

// StepKind names the counter a metric step refers to.
type StepKind string

const (
	KindEpoch     StepKind = "epoch"
	KindIteration StepKind = "iteration"
)

// Step locates a metric emission on the training timeline.
type Step struct {
	Kind  StepKind
	Value int
}

// EpochStep builds a step keyed to an epoch counter.
func EpochStep(epoch int) Step { return Step{Kind: KindEpoch, Value: epoch} }

// IterationStep builds a step keyed to an iteration counter.
func IterationStep(iteration int) Step { return Step{Kind: KindIteration, Value: iteration} }

// String returns the step in "kind=value" form for logs.
func (s Step) String() string { return fmt.Sprintf("%s=%d", s.Kind, s.Value) }

// Tracker receives the parameters and metrics of one experiment run.
type Tracker interface {
	// Start opens the tracking session.
	Start(ctx context.Context) error

	// LogParams records run parameters, typically once after Start.
	LogParams(params map[string]any)

	// LogMetrics records metric values at a step.
	LogMetrics(step Step, metrics map[string]float64)

	// End closes the tracking session.
	End(ctx context.Context) error
}

// Noop is a tracker that discards everything.
type Noop struct{}

// NewNoop creates a tracker that does nothing.
func NewNoop() *Noop { return &Noop{} }

func (*Noop) Start(context.Context) error { return nil }

func (*Noop) LogParams(map[string]any) {}

func (*Noop) LogMetrics(Step, map[string]float64) {}

func (*Noop) End(context.Context) error { return nil }
