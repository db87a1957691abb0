package optim

import "fmt"

// Optimizer updates parameters from their accumulated gradients.
type Optimizer interface {
	// Step applies one update from the current gradients.
	Step()
	// ZeroGrad clears all parameter gradients.
	ZeroGrad()
	// LR returns the current learning rate.
	LR() float64
	// SetLR replaces the learning rate; schedulers call this.
	SetLR(lr float64)
}

// SGD is stochastic gradient descent with optional momentum and L2
// weight decay.
type SGD struct {
	params      []*Parameter
	lr          float64
	momentum    float64
	weightDecay float64
	velocity    [][]float64
}

// NewSGD validates the hyperparameters and captures the parameter set.
func NewSGD(params []*Parameter, lr, momentum, weightDecay float64) (*SGD, error) {
	if lr <= 0 {
		return nil, fmt.Errorf("sgd learning rate must be positive, got %g", lr)
	}
	if momentum < 0 || momentum >= 1 {
		return nil, fmt.Errorf("sgd momentum must be in [0, 1), got %g", momentum)
	}
	if weightDecay < 0 {
		return nil, fmt.Errorf("sgd weight decay must not be negative, got %g", weightDecay)
	}
	s := &SGD{
		params:      params,
		lr:          lr,
		momentum:    momentum,
		weightDecay: weightDecay,
	}
	if momentum > 0 {
		s.velocity = make([][]float64, len(params))
		for i, p := range params {
			s.velocity[i] = make([]float64, len(p.Value))
		}
	}
	return s, nil
}

// Step implements Optimizer.
func (s *SGD) Step() {
	for i, p := range s.params {
		for j := range p.Value {
			g := p.Grad[j] + s.weightDecay*p.Value[j]
			if s.momentum > 0 {
				s.velocity[i][j] = s.momentum*s.velocity[i][j] + g
				g = s.velocity[i][j]
			}
			p.Value[j] -= s.lr * g
		}
	}
}

// ZeroGrad implements Optimizer.
func (s *SGD) ZeroGrad() {
	for _, p := range s.params {
		p.ZeroGrad()
	}
}

// LR implements Optimizer.
func (s *SGD) LR() float64 { return s.lr }

// SetLR implements Optimizer.
func (s *SGD) SetLR(lr float64) { s.lr = lr }

// NoOp is an optimizer that never updates anything. Useful for
// evaluation-only engines and tests.
type NoOp struct {
	lr float64
}

// NewNoOp creates a no-op optimizer.
func NewNoOp() *NoOp { return &NoOp{} }

// Step implements Optimizer.
func (n *NoOp) Step() {}

// ZeroGrad implements Optimizer.
func (n *NoOp) ZeroGrad() {}

// LR implements Optimizer.
func (n *NoOp) LR() float64 { return n.lr }

// SetLR implements Optimizer.
func (n *NoOp) SetLR(lr float64) { n.lr = lr }
