package nn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/gravigo-ml/gravigo/internal/optim"
)

// MLP is a multi-layer perceptron: a chain of linear layers with a
// tanh activation after every hidden layer and a linear output head.
type MLP struct {
	layers []*Linear

	// hidden[i] is the tanh output feeding layers[i+1], cached by
	// Forward for the backward pass.
	hidden [][]float64
}

// NewMLP creates a perceptron mapping inFeatures to outFeatures
// through the given hidden layer sizes. At least one hidden layer is
// required; use Linear directly for a purely affine network.
func NewMLP(inFeatures int, hiddenSizes []int, outFeatures int, rng *rand.Rand) (*MLP, error) {
	if len(hiddenSizes) == 0 {
		return nil, fmt.Errorf("mlp needs at least one hidden layer")
	}
	sizes := make([]int, 0, len(hiddenSizes)+2)
	sizes = append(sizes, inFeatures)
	sizes = append(sizes, hiddenSizes...)
	sizes = append(sizes, outFeatures)

	m := &MLP{
		layers: make([]*Linear, 0, len(sizes)-1),
		hidden: make([][]float64, len(sizes)-2),
	}
	for i := 0; i < len(sizes)-1; i++ {
		layer, err := NewLinear(sizes[i], sizes[i+1], rng)
		if err != nil {
			return nil, fmt.Errorf("mlp layer %d: %w", i, err)
		}
		for _, p := range layer.Parameters() {
			p.Name = fmt.Sprintf("layers.%d.%s", i, p.Name)
		}
		m.layers = append(m.layers, layer)
	}
	return m, nil
}

// InFeatures returns the expected input vector length.
func (m *MLP) InFeatures() int { return m.layers[0].InFeatures() }

// OutFeatures returns the produced output vector length.
func (m *MLP) OutFeatures() int { return m.layers[len(m.layers)-1].OutFeatures() }

func (m *MLP) Forward(in []float64) []float64 {
	cur := in
	for i, layer := range m.layers {
		cur = layer.Forward(cur)
		if i < len(m.layers)-1 {
			act := make([]float64, len(cur))
			for j, z := range cur {
				act[j] = math.Tanh(z)
			}
			m.hidden[i] = act
			cur = act
		}
	}
	return cur
}

func (m *MLP) Backward(gradOut []float64) []float64 {
	grad := gradOut
	for i := len(m.layers) - 1; i >= 0; i-- {
		grad = m.layers[i].Backward(grad)
		if i > 0 {
			act := m.hidden[i-1]
			for j, a := range act {
				grad[j] *= 1 - a*a
			}
		}
	}
	return grad
}

func (m *MLP) Parameters() []*optim.Parameter {
	params := make([]*optim.Parameter, 0, len(m.layers)*2)
	for _, layer := range m.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

func (m *MLP) ZeroGrad() {
	for _, layer := range m.layers {
		layer.ZeroGrad()
	}
}
