package lrmonitor

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/decode"
	"github.com/gravigo-ml/gravigo/internal/engine"
	"github.com/gravigo-ml/gravigo/internal/events"
	"github.com/gravigo-ml/gravigo/internal/registry"
	"github.com/gravigo-ml/gravigo/internal/tracker"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Handler kinds this package registers.
const (
	EpochKind     = "epoch_lr_monitor"
	IterationKind = "iteration_lr_monitor"
)

// Config holds the sampling frequency.
type Config struct {
	// Freq is the number of epochs (or iterations) between samples.
	Freq int `conf:"freq,optional"`
}

// EpochMonitor records the optimizer learning rate at the start of
// every Freq-th training epoch.
type EpochMonitor struct {
	freq int
}

// NewEpoch creates an epoch-based learning rate monitor.
func NewEpoch(freq int) (*EpochMonitor, error) {
	if freq < 1 {
		return nil, fmt.Errorf("epoch lr monitor freq must be positive, got %d", freq)
	}
	return &EpochMonitor{freq: freq}, nil
}

// Attach implements engine.Handler.
func (m *EpochMonitor) Attach(_ context.Context, e engine.Engine) error {
	e.AddUniqueEventHandler(events.TrainEpochStarted, events.NewConditional(
		&epochRecord{monitor: m, engine: e},
		events.NewEpochPeriodic(e, m.freq),
	))
	return nil
}

type epochRecord struct {
	monitor *EpochMonitor
	engine  engine.Engine
}

// Handle implements events.Handler.
func (r *epochRecord) Handle(ctx context.Context) error {
	r.engine.LogMetrics(ctx, tracker.EpochStep(r.engine.Epoch()), map[string]float64{
		"epoch/optimizer.lr": r.engine.Optimizer().LR(),
	})
	return nil
}

// Equal implements events.Handler.
func (r *epochRecord) Equal(other events.Handler) bool {
	o, ok := other.(*epochRecord)
	return ok && o.monitor == r.monitor && o.engine == r.engine
}

// IterationMonitor records the optimizer learning rate at the start
// of every Freq-th training iteration.
type IterationMonitor struct {
	freq int
}

// NewIteration creates an iteration-based learning rate monitor.
func NewIteration(freq int) (*IterationMonitor, error) {
	if freq < 1 {
		return nil, fmt.Errorf("iteration lr monitor freq must be positive, got %d", freq)
	}
	return &IterationMonitor{freq: freq}, nil
}

// Attach implements engine.Handler.
func (m *IterationMonitor) Attach(_ context.Context, e engine.Engine) error {
	e.AddUniqueEventHandler(events.TrainIterationStarted, events.NewConditional(
		&iterationRecord{monitor: m, engine: e},
		events.NewIterationPeriodic(e, m.freq),
	))
	return nil
}

type iterationRecord struct {
	monitor *IterationMonitor
	engine  engine.Engine
}

// Handle implements events.Handler.
func (r *iterationRecord) Handle(ctx context.Context) error {
	r.engine.LogMetrics(ctx, tracker.IterationStep(r.engine.Iteration()), map[string]float64{
		"iteration/optimizer.lr": r.engine.Optimizer().LR(),
	})
	return nil
}

// Equal implements events.Handler.
func (r *iterationRecord) Equal(other events.Handler) bool {
	o, ok := other.(*iterationRecord)
	return ok && o.monitor == r.monitor && o.engine == r.engine
}

// Register registers the epoch and iteration LR monitor factories.
func (m *Module) Register(r *registry.Registry) {
	r.Handlers.Register(EpochKind, func(node cty.Value) (engine.Handler, error) {
		cfg := Config{Freq: 1}
		if err := decode.Decode(node, &cfg); err != nil {
			return nil, fmt.Errorf("epoch lr monitor config: %w", err)
		}
		return NewEpoch(cfg.Freq)
	})
	r.Handlers.Register(IterationKind, func(node cty.Value) (engine.Handler, error) {
		cfg := Config{Freq: 10}
		if err := decode.Decode(node, &cfg); err != nil {
			return nil, fmt.Errorf("iteration lr monitor config: %w", err)
		}
		return NewIteration(cfg.Freq)
	})
}
