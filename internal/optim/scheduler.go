package optim

import (
	"fmt"
	"math"
)

// LRScheduler adjusts an optimizer's learning rate as epochs advance.
type LRScheduler interface {
	// Step recomputes the learning rate for the given epoch.
	Step(epoch int)
}

// InverseSquareRootLR scales the base rate by 1/sqrt(1+epoch).
type InverseSquareRootLR struct {
	opt    Optimizer
	baseLR float64
}

// NewInverseSquareRootLR captures the optimizer's current rate as the
// base rate.
func NewInverseSquareRootLR(opt Optimizer) *InverseSquareRootLR {
	return &InverseSquareRootLR{opt: opt, baseLR: opt.LR()}
}

// Step implements LRScheduler. Epochs below zero are clamped so the
// pre-training state keeps the base rate.
func (s *InverseSquareRootLR) Step(epoch int) {
	if epoch < 0 {
		epoch = 0
	}
	s.opt.SetLR(s.baseLR / math.Sqrt(float64(1+epoch)))
}

// StepDecayLR multiplies the base rate by gamma every stepSize epochs.
type StepDecayLR struct {
	opt      Optimizer
	baseLR   float64
	gamma    float64
	stepSize int
}

// NewStepDecayLR validates gamma and the step size and captures the
// optimizer's current rate as the base rate.
func NewStepDecayLR(opt Optimizer, gamma float64, stepSize int) (*StepDecayLR, error) {
	if gamma <= 0 {
		return nil, fmt.Errorf("step decay gamma must be positive, got %g", gamma)
	}
	if stepSize < 1 {
		return nil, fmt.Errorf("step decay step size must be positive, got %d", stepSize)
	}
	return &StepDecayLR{opt: opt, baseLR: opt.LR(), gamma: gamma, stepSize: stepSize}, nil
}

// Step implements LRScheduler.
func (s *StepDecayLR) Step(epoch int) {
	if epoch < 0 {
		epoch = 0
	}
	decays := epoch / s.stepSize
	s.opt.SetLR(s.baseLR * math.Pow(s.gamma, float64(decays)))
}

// NoOpLR leaves the learning rate alone.
type NoOpLR struct{}

// NewNoOpLR creates a scheduler that never changes the rate.
func NewNoOpLR() *NoOpLR { return &NoOpLR{} }

// Step implements LRScheduler.
func (*NoOpLR) Step(int) {}
