package builtin

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/nn"
	"github.com/gravigo-ml/gravigo/internal/registry"
)

// Criterions registers the loss criterion kinds shipped with the
// binary. Neither takes settings beyond its kind.
type Criterions struct{}

// Register implements registry.Module.
func (m *Criterions) Register(r *registry.Registry) {
	r.Criterions.Register("mse", func(cty.Value) (nn.Criterion, error) {
		return nn.NewMSE(), nil
	})
	r.Criterions.Register("cross_entropy", func(cty.Value) (nn.Criterion, error) {
		return nn.NewCrossEntropy(), nil
	})
}
