package builtin

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/decode"
	"github.com/gravigo-ml/gravigo/internal/optim"
	"github.com/gravigo-ml/gravigo/internal/registry"
)

// Optimizers registers the optimizer kinds shipped with the binary.
type Optimizers struct{}

// Register implements registry.Module.
func (m *Optimizers) Register(r *registry.Registry) {
	r.Optimizers.Register("sgd", newSGD)
	r.Optimizers.Register("noop", func(cty.Value, []*optim.Parameter) (optim.Optimizer, error) {
		return optim.NewNoOp(), nil
	})
}

func newSGD(node cty.Value, params []*optim.Parameter) (optim.Optimizer, error) {
	cfg := struct {
		LR          float64 `conf:"lr,optional"`
		Momentum    float64 `conf:"momentum,optional"`
		WeightDecay float64 `conf:"weight_decay,optional"`
	}{LR: 0.01}
	if err := decode.Decode(node, &cfg); err != nil {
		return nil, fmt.Errorf("sgd config: %w", err)
	}
	return optim.NewSGD(params, cfg.LR, cfg.Momentum, cfg.WeightDecay)
}
