package nn

import (
	"fmt"
	"math"

	"github.com/gravigo-ml/gravigo/internal/optim"
)

// Output is the result of running the model on a single example.
type Output struct {
	Loss        float64
	Predictions []float64
}

// Model couples a network with the criterion used to train it.
type Model struct {
	network   Network
	criterion Criterion
}

// NewModel creates a model from a network and a criterion.
func NewModel(network Network, criterion Criterion) *Model {
	if network == nil {
		panic("model requires a network")
	}
	if criterion == nil {
		panic("model requires a criterion")
	}
	return &Model{network: network, criterion: criterion}
}

// Network returns the underlying network.
func (m *Model) Network() Network { return m.network }

// TrainStep runs a forward pass, scores it, and accumulates parameter
// gradients through a backward pass. A non-finite loss skips the
// backward pass and leaves the gradients untouched; callers decide how
// to count the skip.
func (m *Model) TrainStep(features, target []float64) (Output, error) {
	pred := m.network.Forward(features)
	loss, grad, err := m.criterion.Loss(pred, target)
	if err != nil {
		return Output{}, fmt.Errorf("model loss: %w", err)
	}
	if !math.IsNaN(loss) && !math.IsInf(loss, 0) {
		m.network.Backward(grad)
	}
	return Output{Loss: loss, Predictions: pred}, nil
}

// EvalStep runs a forward pass and scores it without touching
// gradients.
func (m *Model) EvalStep(features, target []float64) (Output, error) {
	pred := m.network.Forward(features)
	loss, _, err := m.criterion.Loss(pred, target)
	if err != nil {
		return Output{}, fmt.Errorf("model loss: %w", err)
	}
	return Output{Loss: loss, Predictions: pred}, nil
}

// Parameters returns the network's trainable parameters.
func (m *Model) Parameters() []*optim.Parameter {
	return m.network.Parameters()
}

// ZeroGrad clears all accumulated gradients.
func (m *Model) ZeroGrad() {
	m.network.ZeroGrad()
}

// ScaleGrad multiplies every accumulated gradient by f. Training loops
// use it to average per-example gradients over a batch before the
// optimizer step.
func (m *Model) ScaleGrad(f float64) {
	for _, p := range m.network.Parameters() {
		for i := range p.Grad {
			p.Grad[i] *= f
		}
	}
}
