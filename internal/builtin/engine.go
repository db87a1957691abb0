package builtin

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/decode"
	"github.com/gravigo-ml/gravigo/internal/engine"
	"github.com/gravigo-ml/gravigo/internal/registry"
)

// Engines registers the engine kinds shipped with the binary.
type Engines struct{}

// Register implements registry.Module.
func (m *Engines) Register(r *registry.Registry) {
	r.Engines.Register("basic", newBasicEngine)
}

// newBasicEngine builds the epoch-driven engine. An absent
// eval_interval means evaluating every epoch; an explicit zero
// disables evaluation.
func newBasicEngine(node cty.Value, c engine.Components) (engine.Engine, error) {
	cfg := struct {
		State struct {
			MaxEpochs int `conf:"max_epochs"`
		} `conf:"state"`
		EvalInterval int `conf:"eval_interval,optional"`
	}{}
	cfg.EvalInterval = 1
	if err := decode.Decode(node, &cfg); err != nil {
		return nil, fmt.Errorf("basic engine config: %w", err)
	}
	return engine.NewBasic(engine.Config{
		MaxEpochs:    cfg.State.MaxEpochs,
		EvalInterval: cfg.EvalInterval,
	}, c)
}
