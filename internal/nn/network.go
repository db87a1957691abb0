package nn

import (
	"github.com/gravigo-ml/gravigo/internal/optim"
)

// Network is a differentiable function from a feature vector to an
// output vector. Implementations cache whatever forward state their
// backward pass needs, so a Network is not safe for concurrent use.
type Network interface {
	// Forward computes the network output for a single example.
	Forward(in []float64) []float64

	// Backward propagates the gradient of the loss with respect to the
	// network output, accumulates parameter gradients, and returns the
	// gradient with respect to the input. It must be called after
	// Forward on the same example.
	Backward(gradOut []float64) []float64

	// InFeatures returns the input vector length Forward expects.
	InFeatures() int

	// OutFeatures returns the output vector length Forward produces.
	OutFeatures() int

	// Parameters returns the trainable parameters in a stable order.
	Parameters() []*optim.Parameter

	// ZeroGrad clears all accumulated parameter gradients.
	ZeroGrad()
}
