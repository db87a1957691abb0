package builtin

import (
	"fmt"
	"math/rand"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/decode"
	"github.com/gravigo-ml/gravigo/internal/nn"
	"github.com/gravigo-ml/gravigo/internal/registry"
)

// Networks registers the network kinds shipped with the binary.
type Networks struct{}

// Register implements registry.Module.
func (m *Networks) Register(r *registry.Registry) {
	r.Networks.Register("linear", newLinear)
	r.Networks.Register("mlp", newMLP)
}

func newLinear(node cty.Value, rng *rand.Rand) (nn.Network, error) {
	cfg := struct {
		In  int `conf:"in"`
		Out int `conf:"out"`
	}{}
	if err := decode.Decode(node, &cfg); err != nil {
		return nil, fmt.Errorf("linear network config: %w", err)
	}
	return nn.NewLinear(cfg.In, cfg.Out, rng)
}

func newMLP(node cty.Value, rng *rand.Rand) (nn.Network, error) {
	cfg := struct {
		In     int   `conf:"in"`
		Hidden []int `conf:"hidden"`
		Out    int   `conf:"out"`
	}{}
	if err := decode.Decode(node, &cfg); err != nil {
		return nil, fmt.Errorf("mlp network config: %w", err)
	}
	return nn.NewMLP(cfg.In, cfg.Hidden, cfg.Out, rng)
}
