package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravigo-ml/gravigo/internal/optim"
)

func TestLinear(t *testing.T) {
	newLayer := func(t *testing.T) *Linear {
		t.Helper()
		l, err := NewLinear(2, 1, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		copy(l.Parameters()[0].Value, []float64{1, 2})
		copy(l.Parameters()[1].Value, []float64{0.5})
		return l
	}

	// Test the affine map with fixed weights.
	t.Run("forward computes weighted sum plus bias", func(t *testing.T) {
		l := newLayer(t)
		out := l.Forward([]float64{3, 4})
		assert.InDeltaSlice(t, []float64{11.5}, out, 1e-12)
	})

	// Test gradient accumulation against hand-computed values.
	t.Run("backward accumulates parameter gradients", func(t *testing.T) {
		l := newLayer(t)
		l.Forward([]float64{3, 4})

		gradIn := l.Backward([]float64{2})
		assert.InDeltaSlice(t, []float64{6, 8}, l.Parameters()[0].Grad, 1e-12)
		assert.InDeltaSlice(t, []float64{2}, l.Parameters()[1].Grad, 1e-12)
		assert.InDeltaSlice(t, []float64{2, 4}, gradIn, 1e-12)

		// A second backward pass adds on top.
		l.Backward([]float64{2})
		assert.InDeltaSlice(t, []float64{12, 16}, l.Parameters()[0].Grad, 1e-12)
	})

	t.Run("zero grad clears accumulators", func(t *testing.T) {
		l := newLayer(t)
		l.Forward([]float64{3, 4})
		l.Backward([]float64{2})

		l.ZeroGrad()
		assert.Equal(t, []float64{0, 0}, l.Parameters()[0].Grad)
		assert.Equal(t, []float64{0}, l.Parameters()[1].Grad)
	})

	// Test that initialization depends only on the random source.
	t.Run("equal seeds produce equal weights", func(t *testing.T) {
		a, err := NewLinear(4, 3, rand.New(rand.NewSource(42)))
		require.NoError(t, err)
		b, err := NewLinear(4, 3, rand.New(rand.NewSource(42)))
		require.NoError(t, err)
		c, err := NewLinear(4, 3, rand.New(rand.NewSource(43)))
		require.NoError(t, err)

		assert.Equal(t, a.Parameters()[0].Value, b.Parameters()[0].Value)
		assert.NotEqual(t, a.Parameters()[0].Value, c.Parameters()[0].Value)
	})

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := NewLinear(0, 1, rand.New(rand.NewSource(1)))
		assert.ErrorContains(t, err, "input size must be positive")

		_, err = NewLinear(1, 0, rand.New(rand.NewSource(1)))
		assert.ErrorContains(t, err, "output size must be positive")
	})

	t.Run("panics on mismatched input length", func(t *testing.T) {
		l := newLayer(t)
		assert.Panics(t, func() { l.Forward([]float64{1, 2, 3}) })
	})
}

func TestMLP(t *testing.T) {
	t.Run("wires layer sizes and parameter names", func(t *testing.T) {
		m, err := NewMLP(3, []int{4}, 2, rand.New(rand.NewSource(5)))
		require.NoError(t, err)
		assert.Equal(t, 3, m.InFeatures())
		assert.Equal(t, 2, m.OutFeatures())

		out := m.Forward([]float64{0.1, 0.2, 0.3})
		assert.Len(t, out, 2)

		params := m.Parameters()
		require.Len(t, params, 4)
		assert.Equal(t, "layers.0.weight", params[0].Name)
		assert.Equal(t, "layers.0.bias", params[1].Name)
		assert.Equal(t, "layers.1.weight", params[2].Name)
		assert.Equal(t, "layers.1.bias", params[3].Name)
	})

	t.Run("requires a hidden layer", func(t *testing.T) {
		_, err := NewMLP(3, nil, 2, rand.New(rand.NewSource(5)))
		assert.ErrorContains(t, err, "at least one hidden layer")
	})

	// Test end to end that gradient descent on the MLP reduces the
	// loss on a fixed example.
	t.Run("gradient descent reduces the loss", func(t *testing.T) {
		m, err := NewMLP(2, []int{6}, 1, rand.New(rand.NewSource(9)))
		require.NoError(t, err)
		mse := NewMSE()
		opt, err := optim.NewSGD(m.Parameters(), 0.1, 0, 0)
		require.NoError(t, err)

		features := []float64{0.5, -0.25}
		target := []float64{0.8}

		lossAt := func() float64 {
			loss, _, lerr := mse.Loss(m.Forward(features), target)
			require.NoError(t, lerr)
			return loss
		}

		initial := lossAt()
		for i := 0; i < 50; i++ {
			m.ZeroGrad()
			pred := m.Forward(features)
			_, grad, lerr := mse.Loss(pred, target)
			require.NoError(t, lerr)
			m.Backward(grad)
			opt.Step()
		}
		assert.Less(t, lossAt(), initial)
	})
}

func TestMSE(t *testing.T) {
	t.Run("computes mean squared error and gradient", func(t *testing.T) {
		loss, grad, err := NewMSE().Loss([]float64{1, 2}, []float64{0, 2})
		require.NoError(t, err)
		assert.InDelta(t, 0.5, loss, 1e-12)
		assert.InDeltaSlice(t, []float64{1, 0}, grad, 1e-12)
	})

	t.Run("errors on length mismatch", func(t *testing.T) {
		_, _, err := NewMSE().Loss([]float64{1}, []float64{1, 2})
		assert.ErrorContains(t, err, "prediction has 1 components, target has 2")
	})
}

func TestCrossEntropy(t *testing.T) {
	t.Run("computes softmax negative log likelihood", func(t *testing.T) {
		loss, grad, err := NewCrossEntropy().Loss([]float64{0, 0}, []float64{1, 0})
		require.NoError(t, err)
		assert.InDelta(t, math.Log(2), loss, 1e-12)
		assert.InDeltaSlice(t, []float64{-0.5, 0.5}, grad, 1e-12)
	})

	t.Run("shifts large logits before exponentiating", func(t *testing.T) {
		loss, _, err := NewCrossEntropy().Loss([]float64{1000, 1000}, []float64{0, 1})
		require.NoError(t, err)
		assert.InDelta(t, math.Log(2), loss, 1e-9)
	})

	t.Run("errors on length mismatch", func(t *testing.T) {
		_, _, err := NewCrossEntropy().Loss([]float64{1, 2}, []float64{1})
		assert.ErrorContains(t, err, "prediction has 2 components, target has 1")
	})
}

// nanCriterion always reports a NaN loss.
type nanCriterion struct{}

func (nanCriterion) Loss(pred, _ []float64) (float64, []float64, error) {
	return math.NaN(), make([]float64, len(pred)), nil
}

func TestModel(t *testing.T) {
	newModel := func(t *testing.T) *Model {
		t.Helper()
		net, err := NewLinear(2, 1, rand.New(rand.NewSource(3)))
		require.NoError(t, err)
		return NewModel(net, NewMSE())
	}

	t.Run("train step accumulates gradients", func(t *testing.T) {
		m := newModel(t)
		out, err := m.TrainStep([]float64{1, 2}, []float64{5})
		require.NoError(t, err)
		assert.Len(t, out.Predictions, 1)
		assert.NotZero(t, out.Loss)
		assert.NotZero(t, m.Parameters()[0].Grad[0])
	})

	t.Run("eval step leaves gradients untouched", func(t *testing.T) {
		m := newModel(t)
		out, err := m.EvalStep([]float64{1, 2}, []float64{5})
		require.NoError(t, err)
		assert.NotZero(t, out.Loss)
		assert.Equal(t, []float64{0, 0}, m.Parameters()[0].Grad)
	})

	t.Run("non-finite loss skips the backward pass", func(t *testing.T) {
		net, err := NewLinear(2, 1, rand.New(rand.NewSource(3)))
		require.NoError(t, err)
		m := NewModel(net, nanCriterion{})

		out, err := m.TrainStep([]float64{1, 2}, []float64{5})
		require.NoError(t, err)
		assert.True(t, math.IsNaN(out.Loss))
		assert.Equal(t, []float64{0, 0}, m.Parameters()[0].Grad)
	})

	t.Run("scale grad averages accumulated gradients", func(t *testing.T) {
		m := newModel(t)
		_, err := m.TrainStep([]float64{1, 2}, []float64{5})
		require.NoError(t, err)
		_, err = m.TrainStep([]float64{1, 2}, []float64{5})
		require.NoError(t, err)

		before := m.Parameters()[0].Grad[0]
		m.ScaleGrad(0.5)
		assert.InDelta(t, before/2, m.Parameters()[0].Grad[0], 1e-12)
	})

	t.Run("panics without a network or criterion", func(t *testing.T) {
		assert.Panics(t, func() { NewModel(nil, NewMSE()) })
		assert.Panics(t, func() { NewModel(&Linear{}, nil) })
	})
}
