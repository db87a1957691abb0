package builtin

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/decode"
	"github.com/gravigo-ml/gravigo/internal/optim"
	"github.com/gravigo-ml/gravigo/internal/registry"
)

// Schedulers registers the LR scheduler kinds shipped with the
// binary.
type Schedulers struct{}

// Register implements registry.Module.
func (m *Schedulers) Register(r *registry.Registry) {
	r.Schedulers.Register("inverse_sqrt", func(_ cty.Value, opt optim.Optimizer) (optim.LRScheduler, error) {
		return optim.NewInverseSquareRootLR(opt), nil
	})
	r.Schedulers.Register("step", newStepDecay)
	r.Schedulers.Register("noop", func(cty.Value, optim.Optimizer) (optim.LRScheduler, error) {
		return optim.NewNoOpLR(), nil
	})
}

func newStepDecay(node cty.Value, opt optim.Optimizer) (optim.LRScheduler, error) {
	cfg := struct {
		Gamma    float64 `conf:"gamma,optional"`
		StepSize int     `conf:"step_size,optional"`
	}{Gamma: 0.1, StepSize: 10}
	if err := decode.Decode(node, &cfg); err != nil {
		return nil, fmt.Errorf("step scheduler config: %w", err)
	}
	return optim.NewStepDecayLR(opt, cfg.Gamma, cfg.StepSize)
}
