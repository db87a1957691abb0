package testutil

import (
	"context"
	"fmt"

	"github.com/gravigo-ml/gravigo/internal/data"
	"github.com/gravigo-ml/gravigo/internal/engine"
	"github.com/gravigo-ml/gravigo/internal/events"
	"github.com/gravigo-ml/gravigo/internal/history"
	"github.com/gravigo-ml/gravigo/internal/nn"
	"github.com/gravigo-ml/gravigo/internal/optim"
	"github.com/gravigo-ml/gravigo/internal/tracker"
)

// Engine is a minimal engine.Engine for handler and runner tests.
// Events go through a real manager and logged metrics land in both the
// histories and the Logged slice; counters and components are plain
// fields the test sets directly.
type Engine struct {
	CurrentEpoch     int
	CurrentIteration int
	Epochs           int

	NetModel  *nn.Model
	Opt       optim.Optimizer
	Scheduler optim.LRScheduler
	Source    data.Source

	Events     *events.Manager
	HistoryMap map[string]*history.ScalarHistory
	Logged     []LoggedMetrics
	Terminated bool

	TrainCalls int
	EvalCalls  int
	TrainErr   error
	EvalErr    error

	modules map[string]any
}

var _ engine.Engine = (*Engine)(nil)

// LoggedMetrics records a single LogMetrics call.
type LoggedMetrics struct {
	Step   tracker.Step
	Values map[string]float64
}

// NewEngine creates a fake engine with counters at -1 and no
// components attached.
func NewEngine() *Engine {
	return &Engine{
		CurrentEpoch:     -1,
		CurrentIteration: -1,
		Events:           events.NewManager(),
		HistoryMap:       make(map[string]*history.ScalarHistory),
		modules:          make(map[string]any),
	}
}

// Epoch implements engine.Engine.
func (e *Engine) Epoch() int { return e.CurrentEpoch }

// Iteration implements engine.Engine.
func (e *Engine) Iteration() int { return e.CurrentIteration }

// MaxEpochs implements engine.Engine.
func (e *Engine) MaxEpochs() int { return e.Epochs }

// IncrementEpoch implements engine.Engine.
func (e *Engine) IncrementEpoch() { e.CurrentEpoch++ }

// IncrementIteration implements engine.Engine.
func (e *Engine) IncrementIteration() { e.CurrentIteration++ }

// Train implements engine.Engine. The fake only counts the call.
func (e *Engine) Train(context.Context) error {
	e.TrainCalls++
	return e.TrainErr
}

// Eval implements engine.Engine. The fake only counts the call.
func (e *Engine) Eval(context.Context) error {
	e.EvalCalls++
	return e.EvalErr
}

// FireEvent implements engine.Engine.
func (e *Engine) FireEvent(ctx context.Context, name string) error {
	return e.Events.Fire(ctx, name)
}

// AddEventHandler implements engine.Engine.
func (e *Engine) AddEventHandler(event string, h events.Handler) {
	e.Events.Add(event, h)
}

// AddUniqueEventHandler implements engine.Engine.
func (e *Engine) AddUniqueEventHandler(event string, h events.Handler) bool {
	return e.Events.AddUnique(event, h)
}

// HasEventHandler implements engine.Engine.
func (e *Engine) HasEventHandler(event string, h events.Handler) bool {
	return e.Events.Has(event, h)
}

// LogMetric implements engine.Engine.
func (e *Engine) LogMetric(ctx context.Context, name string, value float64) {
	e.LogMetrics(ctx, tracker.EpochStep(e.CurrentEpoch), map[string]float64{name: value})
}

// LogMetrics implements engine.Engine.
func (e *Engine) LogMetrics(_ context.Context, step tracker.Step, values map[string]float64) {
	copied := make(map[string]float64, len(values))
	for name, value := range values {
		e.History(name).Add(step.Value, value)
		copied[name] = value
	}
	e.Logged = append(e.Logged, LoggedMetrics{Step: step, Values: copied})
}

// History implements engine.Engine.
func (e *Engine) History(name string) *history.ScalarHistory {
	h, ok := e.HistoryMap[name]
	if !ok {
		h = history.NewMaxScalar(name)
		e.HistoryMap[name] = h
	}
	return h
}

// Histories implements engine.Engine.
func (e *Engine) Histories() map[string]*history.ScalarHistory {
	out := make(map[string]*history.ScalarHistory, len(e.HistoryMap))
	for name, h := range e.HistoryMap {
		out[name] = h
	}
	return out
}

// AddHistory implements engine.Engine.
func (e *Engine) AddHistory(h *history.ScalarHistory) { e.HistoryMap[h.Name()] = h }

// AddModule implements engine.Engine.
func (e *Engine) AddModule(_ context.Context, name string, module any) { e.modules[name] = module }

// Module implements engine.Engine.
func (e *Engine) Module(name string) (any, error) {
	m, ok := e.modules[name]
	if !ok {
		return nil, fmt.Errorf("module %q is not registered", name)
	}
	return m, nil
}

// HasModule implements engine.Engine.
func (e *Engine) HasModule(name string) bool {
	_, ok := e.modules[name]
	return ok
}

// RemoveModule implements engine.Engine.
func (e *Engine) RemoveModule(name string) error {
	if _, ok := e.modules[name]; !ok {
		return fmt.Errorf("module %q is not registered", name)
	}
	delete(e.modules, name)
	return nil
}

// Model implements engine.Engine.
func (e *Engine) Model() *nn.Model { return e.NetModel }

// Optimizer implements engine.Engine.
func (e *Engine) Optimizer() optim.Optimizer { return e.Opt }

// LRScheduler implements engine.Engine.
func (e *Engine) LRScheduler() optim.LRScheduler { return e.Scheduler }

// DataSource implements engine.Engine.
func (e *Engine) DataSource() data.Source { return e.Source }

// Terminate implements engine.Engine.
func (e *Engine) Terminate() { e.Terminated = true }

// ShouldTerminate implements engine.Engine.
func (e *Engine) ShouldTerminate() bool { return e.Terminated }
