// Package runner drives a full experiment run: it brings up resources
// and the tracker around the engine, attaches the configured handlers
// and hands control to the engine's training or evaluation schedule.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/gravigo-ml/gravigo/internal/ctxlog"
	"github.com/gravigo-ml/gravigo/internal/engine"
	"github.com/gravigo-ml/gravigo/internal/rsrc"
	"github.com/gravigo-ml/gravigo/internal/tracker"
)

// Runner executes one experiment run.
type Runner interface {
	Run(ctx context.Context) error
}

// Options bundles everything a runner drives besides the engine. The
// tracker must be the instance the engine logs metrics through.
type Options struct {
	Tracker   tracker.Tracker
	Handlers  []engine.Handler
	Resources []rsrc.Resource
	Params    map[string]any
}

type base struct {
	engine    engine.Engine
	trk       tracker.Tracker
	handlers  []engine.Handler
	resources []rsrc.Resource
	params    map[string]any
}

func newBase(e engine.Engine, opts Options) (base, error) {
	if e == nil {
		return base{}, errors.New("runner requires an engine")
	}
	trk := opts.Tracker
	if trk == nil {
		trk = tracker.NewNoop()
	}
	return base{
		engine:    e,
		trk:       trk,
		handlers:  opts.Handlers,
		resources: opts.Resources,
		params:    opts.Params,
	}, nil
}

// run wraps exec with the shared lifecycle. label prefixes errors so
// training and evaluation failures read differently.
func (b *base) run(ctx context.Context, label string, exec func(context.Context) error) error {
	logger := ctxlog.FromContext(ctx)

	stop, err := rsrc.StartAll(ctx, b.resources)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	defer stop(ctx)

	if err := b.trk.Start(ctx); err != nil {
		return fmt.Errorf("%s: starting tracker: %w", label, err)
	}
	defer func() {
		if err := b.trk.End(ctx); err != nil {
			logger.Warn("Ending tracker failed.", "error", err)
		}
	}()

	if len(b.params) > 0 {
		b.trk.LogParams(b.params)
	}

	for i, h := range b.handlers {
		if err := h.Attach(ctx, b.engine); err != nil {
			return fmt.Errorf("%s: attaching handler %d: %w", label, i, err)
		}
	}

	if err := exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	return nil
}

// Training runs the engine's full training schedule.
type Training struct {
	base
}

// NewTraining creates a training runner.
func NewTraining(e engine.Engine, opts Options) (*Training, error) {
	b, err := newBase(e, opts)
	if err != nil {
		return nil, err
	}
	return &Training{base: b}, nil
}

// Run implements Runner.
func (r *Training) Run(ctx context.Context) error {
	ctxlog.FromContext(ctx).Info("Starting training run.")
	return r.run(ctx, "training run", r.engine.Train)
}

// Evaluation runs a standalone evaluation pass.
type Evaluation struct {
	base
}

// NewEvaluation creates an evaluation runner.
func NewEvaluation(e engine.Engine, opts Options) (*Evaluation, error) {
	b, err := newBase(e, opts)
	if err != nil {
		return nil, err
	}
	return &Evaluation{base: b}, nil
}

// Run implements Runner.
func (r *Evaluation) Run(ctx context.Context) error {
	ctxlog.FromContext(ctx).Info("Starting evaluation run.")
	return r.run(ctx, "evaluation run", r.engine.Eval)
}
