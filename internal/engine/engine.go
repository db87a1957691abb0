package engine

import (
	"context"

	"github.com/gravigo-ml/gravigo/internal/data"
	"github.com/gravigo-ml/gravigo/internal/events"
	"github.com/gravigo-ml/gravigo/internal/history"
	"github.com/gravigo-ml/gravigo/internal/loops"
	"github.com/gravigo-ml/gravigo/internal/nn"
	"github.com/gravigo-ml/gravigo/internal/optim"
	"github.com/gravigo-ml/gravigo/internal/tracker"
)

// Engine runs an experiment and exposes its moving parts to handlers.
// Epoch and iteration counters start at -1 and point at the most
// recently started epoch/iteration once training begins.
type Engine interface {
	Epoch() int
	Iteration() int
	MaxEpochs() int
	IncrementEpoch()
	IncrementIteration()

	// Train runs the full training schedule.
	Train(ctx context.Context) error

	// Eval runs a standalone evaluation pass.
	Eval(ctx context.Context) error

	FireEvent(ctx context.Context, name string) error
	AddEventHandler(event string, h events.Handler)
	AddUniqueEventHandler(event string, h events.Handler) bool
	HasEventHandler(event string, h events.Handler) bool

	// LogMetric records a scalar at the current epoch and forwards it
	// to the tracker.
	LogMetric(ctx context.Context, name string, value float64)

	// LogMetrics records scalars at an explicit step.
	LogMetrics(ctx context.Context, step tracker.Step, values map[string]float64)

	History(name string) *history.ScalarHistory
	Histories() map[string]*history.ScalarHistory
	AddHistory(h *history.ScalarHistory)

	AddModule(ctx context.Context, name string, module any)
	Module(name string) (any, error)
	HasModule(name string) bool
	RemoveModule(name string) error

	Model() *nn.Model
	Optimizer() optim.Optimizer
	LRScheduler() optim.LRScheduler
	DataSource() data.Source

	// Terminate asks the engine to stop after the current epoch.
	Terminate()
	ShouldTerminate() bool
}

// Loop runs one epoch against an engine.
type Loop interface {
	Run(ctx context.Context, e loops.Engine) error
}

// Components bundles everything a concrete engine drives.
type Components struct {
	Model       *nn.Model
	Optimizer   optim.Optimizer
	LRScheduler optim.LRScheduler
	Source      data.Source
	Tracker     tracker.Tracker
	TrainLoop   Loop
	EvalLoop    Loop
}
