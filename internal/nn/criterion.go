package nn

import (
	"fmt"
	"math"
)

// Criterion scores a prediction against a target and supplies the
// gradient of that score with respect to the prediction.
type Criterion interface {
	// Loss returns the scalar loss and the gradient of the loss with
	// respect to each prediction component.
	Loss(pred, target []float64) (float64, []float64, error)
}

// MSE is the mean squared error over the output components.
type MSE struct{}

// NewMSE creates a mean squared error criterion.
func NewMSE() *MSE { return &MSE{} }

func (*MSE) Loss(pred, target []float64) (float64, []float64, error) {
	if len(pred) != len(target) {
		return 0, nil, fmt.Errorf("mse: prediction has %d components, target has %d", len(pred), len(target))
	}
	n := float64(len(pred))
	grad := make([]float64, len(pred))
	var loss float64
	for i, p := range pred {
		diff := p - target[i]
		loss += diff * diff / n
		grad[i] = 2 * diff / n
	}
	return loss, grad, nil
}

// CrossEntropy applies a softmax to the prediction and computes the
// negative log-likelihood against a one-hot target. The combined
// gradient is softmax(pred) - target.
type CrossEntropy struct{}

// NewCrossEntropy creates a softmax cross-entropy criterion.
func NewCrossEntropy() *CrossEntropy { return &CrossEntropy{} }

func (*CrossEntropy) Loss(pred, target []float64) (float64, []float64, error) {
	if len(pred) != len(target) {
		return 0, nil, fmt.Errorf("cross entropy: prediction has %d components, target has %d", len(pred), len(target))
	}
	probs := softmax(pred)
	grad := make([]float64, len(pred))
	var loss float64
	for i, p := range probs {
		grad[i] = p - target[i]
		if target[i] != 0 {
			loss -= target[i] * math.Log(math.Max(p, 1e-12))
		}
	}
	return loss, grad, nil
}

// softmax computes exp(v_i)/sum(exp(v_j)) with the usual max shift for
// numerical stability.
func softmax(v []float64) []float64 {
	maxV := math.Inf(-1)
	for _, x := range v {
		if x > maxV {
			maxV = x
		}
	}
	out := make([]float64, len(v))
	var sum float64
	for i, x := range v {
		e := math.Exp(x - maxV)
		out[i] = e
		sum += e
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
