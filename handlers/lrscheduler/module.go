package lrscheduler

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/engine"
	"github.com/gravigo-ml/gravigo/internal/events"
	"github.com/gravigo-ml/gravigo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Kind is the handler kind this package registers.
const Kind = "epoch_lr_scheduler"

// Updater advances the engine's LR scheduler once per training epoch.
type Updater struct{}

// New creates the updater.
func New() *Updater { return &Updater{} }

// Attach implements engine.Handler.
func (u *Updater) Attach(_ context.Context, e engine.Engine) error {
	e.AddUniqueEventHandler(events.TrainEpochCompleted, &step{updater: u, engine: e})
	return nil
}

type step struct {
	updater *Updater
	engine  engine.Engine
}

// Handle implements events.Handler.
func (s *step) Handle(context.Context) error {
	s.engine.LRScheduler().Step(s.engine.Epoch())
	return nil
}

// Equal implements events.Handler.
func (s *step) Equal(other events.Handler) bool {
	o, ok := other.(*step)
	return ok && o.updater == s.updater && o.engine == s.engine
}

// Register registers the epoch_lr_scheduler factory. The handler has
// no settings beyond its kind.
func (m *Module) Register(r *registry.Registry) {
	r.Handlers.Register(Kind, func(cty.Value) (engine.Handler, error) {
		return New(), nil
	})
}
