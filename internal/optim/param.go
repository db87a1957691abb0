package optim

// Parameter is one vector of learnable weights with its gradient
// accumulator. Value and Grad always have equal length.
type Parameter struct {
	Name  string
	Value []float64
	Grad  []float64
}

// NewParameter allocates a zero-valued parameter.
func NewParameter(name string, size int) *Parameter {
	return &Parameter{
		Name:  name,
		Value: make([]float64, size),
		Grad:  make([]float64, size),
	}
}

// ZeroGrad clears the gradient accumulator.
func (p *Parameter) ZeroGrad() {
	for i := range p.Grad {
		p.Grad[i] = 0
	}
}
