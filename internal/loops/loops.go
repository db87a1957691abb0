package loops

import (
	"context"

	"github.com/gravigo-ml/gravigo/internal/data"
	"github.com/gravigo-ml/gravigo/internal/nn"
	"github.com/gravigo-ml/gravigo/internal/optim"
)

// Engine is the slice of the training engine a loop needs. The engine
// package's implementations satisfy it.
type Engine interface {
	Iteration() int
	IncrementIteration()
	FireEvent(ctx context.Context, name string) error
	LogMetric(ctx context.Context, name string, value float64)
	Model() *nn.Model
	Optimizer() optim.Optimizer
	DataSource() data.Source
}

// clipGradients clamps every gradient component to [-limit, limit].
func clipGradients(params []*optim.Parameter, limit float64) {
	for _, p := range params {
		for i, g := range p.Grad {
			if g > limit {
				p.Grad[i] = limit
			} else if g < -limit {
				p.Grad[i] = -limit
			}
		}
	}
}
