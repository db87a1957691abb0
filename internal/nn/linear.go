package nn

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/gravigo-ml/gravigo/internal/optim"
)

// Linear is a fully connected layer computing out = W*in + b. The
// weight matrix is stored row-major in a single flat parameter so the
// optimizer sees one contiguous slice per tensor.
type Linear struct {
	inFeatures  int
	outFeatures int

	weight *optim.Parameter
	bias   *optim.Parameter

	lastIn []float64
}

// NewLinear creates a linear layer with weights drawn uniformly from
// [-1/sqrt(in), 1/sqrt(in)] and biases initialized to zero. The random
// source determines the weights, so equal seeds produce equal layers.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) (*Linear, error) {
	if inFeatures < 1 {
		return nil, fmt.Errorf("linear input size must be positive, got %d", inFeatures)
	}
	if outFeatures < 1 {
		return nil, fmt.Errorf("linear output size must be positive, got %d", outFeatures)
	}
	l := &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      optim.NewParameter("weight", inFeatures*outFeatures),
		bias:        optim.NewParameter("bias", outFeatures),
	}
	limit := 1.0 / math.Sqrt(float64(inFeatures))
	for i := range l.weight.Value {
		l.weight.Value[i] = (rng.Float64()*2 - 1) * limit
	}
	return l, nil
}

// InFeatures returns the expected input vector length.
func (l *Linear) InFeatures() int { return l.inFeatures }

// OutFeatures returns the produced output vector length.
func (l *Linear) OutFeatures() int { return l.outFeatures }

func (l *Linear) Forward(in []float64) []float64 {
	if len(in) != l.inFeatures {
		panic(fmt.Sprintf("linear layer expects %d inputs, got %d", l.inFeatures, len(in)))
	}
	l.lastIn = in
	out := make([]float64, l.outFeatures)
	for o := 0; o < l.outFeatures; o++ {
		sum := l.bias.Value[o]
		row := l.weight.Value[o*l.inFeatures : (o+1)*l.inFeatures]
		for i, x := range in {
			sum += row[i] * x
		}
		out[o] = sum
	}
	return out
}

func (l *Linear) Backward(gradOut []float64) []float64 {
	if l.lastIn == nil {
		panic("linear layer backward called before forward")
	}
	if len(gradOut) != l.outFeatures {
		panic(fmt.Sprintf("linear layer expects %d output gradients, got %d", l.outFeatures, len(gradOut)))
	}
	gradIn := make([]float64, l.inFeatures)
	for o, g := range gradOut {
		l.bias.Grad[o] += g
		row := l.weight.Value[o*l.inFeatures : (o+1)*l.inFeatures]
		gradRow := l.weight.Grad[o*l.inFeatures : (o+1)*l.inFeatures]
		for i, x := range l.lastIn {
			gradRow[i] += g * x
			gradIn[i] += g * row[i]
		}
	}
	return gradIn
}

func (l *Linear) Parameters() []*optim.Parameter {
	return []*optim.Parameter{l.weight, l.bias}
}

func (l *Linear) ZeroGrad() {
	l.weight.ZeroGrad()
	l.bias.ZeroGrad()
}
