package engine

import (
	"context"
	"fmt"

	"github.com/gravigo-ml/gravigo/internal/ctxlog"
	"github.com/gravigo-ml/gravigo/internal/data"
	"github.com/gravigo-ml/gravigo/internal/events"
	"github.com/gravigo-ml/gravigo/internal/history"
	"github.com/gravigo-ml/gravigo/internal/nn"
	"github.com/gravigo-ml/gravigo/internal/optim"
	"github.com/gravigo-ml/gravigo/internal/tracker"
)

// Config carries the schedule settings of a BasicEngine.
type Config struct {
	// MaxEpochs is the number of epochs Train runs.
	MaxEpochs int

	// EvalInterval runs the evaluation loop every EvalInterval epochs.
	// 0 disables evaluation during training.
	EvalInterval int
}

// BasicEngine is the standard epoch-driven engine. It is not safe for
// concurrent use.
type BasicEngine struct {
	cfg Config

	epoch      int
	iteration  int
	terminated bool

	model  *nn.Model
	opt    optim.Optimizer
	sched  optim.LRScheduler
	source data.Source
	trk    tracker.Tracker

	trainLoop Loop
	evalLoop  Loop

	manager   *events.Manager
	histories map[string]*history.ScalarHistory
	modules   *ModuleManager
}

// NewBasic creates a BasicEngine from its components. A nil tracker
// defaults to the noop tracker and a nil scheduler to the noop
// scheduler.
func NewBasic(cfg Config, c Components) (*BasicEngine, error) {
	if cfg.MaxEpochs < 1 {
		return nil, fmt.Errorf("engine max epochs must be positive, got %d", cfg.MaxEpochs)
	}
	if cfg.EvalInterval < 0 {
		return nil, fmt.Errorf("engine eval interval must not be negative, got %d", cfg.EvalInterval)
	}
	if c.Model == nil {
		return nil, fmt.Errorf("engine requires a model")
	}
	if c.Optimizer == nil {
		return nil, fmt.Errorf("engine requires an optimizer")
	}
	if c.Source == nil {
		return nil, fmt.Errorf("engine requires a data source")
	}
	if c.TrainLoop == nil {
		return nil, fmt.Errorf("engine requires a training loop")
	}
	if c.EvalLoop == nil {
		return nil, fmt.Errorf("engine requires an evaluation loop")
	}
	if c.Tracker == nil {
		c.Tracker = tracker.NewNoop()
	}
	if c.LRScheduler == nil {
		c.LRScheduler = optim.NewNoOpLR()
	}
	return &BasicEngine{
		cfg:       cfg,
		epoch:     -1,
		iteration: -1,
		model:     c.Model,
		opt:       c.Optimizer,
		sched:     c.LRScheduler,
		source:    c.Source,
		trk:       c.Tracker,
		trainLoop: c.TrainLoop,
		evalLoop:  c.EvalLoop,
		manager:   events.NewManager(),
		histories: make(map[string]*history.ScalarHistory),
		modules:   NewModuleManager(),
	}, nil
}

func (e *BasicEngine) Epoch() int { return e.epoch }

func (e *BasicEngine) Iteration() int { return e.iteration }

func (e *BasicEngine) MaxEpochs() int { return e.cfg.MaxEpochs }

func (e *BasicEngine) IncrementEpoch() { e.epoch++ }

func (e *BasicEngine) IncrementIteration() { e.iteration++ }

// Train fires started, then per epoch: epoch_started, a training
// epoch, an evaluation epoch when due, epoch_completed. It stops after
// MaxEpochs epochs or when terminated, then fires completed.
func (e *BasicEngine) Train(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	e.terminated = false

	logger.Info("Training started.", "maxEpochs", e.cfg.MaxEpochs, "evalInterval", e.cfg.EvalInterval)
	if err := e.FireEvent(ctx, events.Started); err != nil {
		return err
	}

	for e.epoch+1 < e.cfg.MaxEpochs && !e.terminated {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.IncrementEpoch()
		logger.Debug("Epoch started.", "epoch", e.epoch)

		if err := e.FireEvent(ctx, events.EpochStarted); err != nil {
			return err
		}
		if err := e.trainLoop.Run(ctx, e); err != nil {
			return fmt.Errorf("training epoch %d: %w", e.epoch, err)
		}
		if e.shouldEval() {
			if err := e.evalLoop.Run(ctx, e); err != nil {
				return fmt.Errorf("evaluating epoch %d: %w", e.epoch, err)
			}
		}
		if err := e.FireEvent(ctx, events.EpochCompleted); err != nil {
			return err
		}
	}

	if e.terminated {
		logger.Info("Training terminated early.", "epoch", e.epoch)
	}
	if err := e.FireEvent(ctx, events.Completed); err != nil {
		return err
	}
	logger.Info("Training completed.", "epochs", e.epoch+1, "iterations", e.iteration+1)
	return nil
}

func (e *BasicEngine) shouldEval() bool {
	return e.cfg.EvalInterval > 0 && (e.epoch+1)%e.cfg.EvalInterval == 0
}

// Eval fires started, runs one evaluation epoch, and fires completed.
func (e *BasicEngine) Eval(ctx context.Context) error {
	e.terminated = false
	if err := e.FireEvent(ctx, events.Started); err != nil {
		return err
	}
	if err := e.evalLoop.Run(ctx, e); err != nil {
		return fmt.Errorf("evaluation: %w", err)
	}
	return e.FireEvent(ctx, events.Completed)
}

func (e *BasicEngine) FireEvent(ctx context.Context, name string) error {
	return e.manager.Fire(ctx, name)
}

func (e *BasicEngine) AddEventHandler(event string, h events.Handler) {
	e.manager.Add(event, h)
}

func (e *BasicEngine) AddUniqueEventHandler(event string, h events.Handler) bool {
	return e.manager.AddUnique(event, h)
}

func (e *BasicEngine) HasEventHandler(event string, h events.Handler) bool {
	return e.manager.Has(event, h)
}

func (e *BasicEngine) LogMetric(ctx context.Context, name string, value float64) {
	e.LogMetrics(ctx, tracker.EpochStep(e.epoch), map[string]float64{name: value})
}

func (e *BasicEngine) LogMetrics(ctx context.Context, step tracker.Step, values map[string]float64) {
	ctxlog.FromContext(ctx).Debug("Logging metrics.", "step", step.String(), "count", len(values))
	for name, value := range values {
		e.History(name).Add(step.Value, value)
	}
	e.trk.LogMetrics(step, values)
}

// History returns the scalar history registered under name, creating
// a max-tracking one on first use. Components that track minima (loss
// histories) register theirs up front via AddHistory.
func (e *BasicEngine) History(name string) *history.ScalarHistory {
	if h, ok := e.histories[name]; ok {
		return h
	}
	h := history.NewMaxScalar(name)
	e.histories[name] = h
	return h
}

// Histories returns a copy of the history registry.
func (e *BasicEngine) Histories() map[string]*history.ScalarHistory {
	out := make(map[string]*history.ScalarHistory, len(e.histories))
	for name, h := range e.histories {
		out[name] = h
	}
	return out
}

// AddHistory registers a history under its own name, replacing any
// existing one.
func (e *BasicEngine) AddHistory(h *history.ScalarHistory) {
	e.histories[h.Name()] = h
}

func (e *BasicEngine) AddModule(ctx context.Context, name string, module any) {
	e.modules.Add(ctx, name, module)
}

func (e *BasicEngine) Module(name string) (any, error) { return e.modules.Get(name) }

func (e *BasicEngine) HasModule(name string) bool { return e.modules.Has(name) }

func (e *BasicEngine) RemoveModule(name string) error { return e.modules.Remove(name) }

func (e *BasicEngine) Model() *nn.Model { return e.model }

func (e *BasicEngine) Optimizer() optim.Optimizer { return e.opt }

func (e *BasicEngine) LRScheduler() optim.LRScheduler { return e.sched }

func (e *BasicEngine) DataSource() data.Source { return e.source }

func (e *BasicEngine) Terminate() { e.terminated = true }

func (e *BasicEngine) ShouldTerminate() bool { return e.terminated }
