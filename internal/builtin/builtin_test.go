package builtin

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/data"
	"github.com/gravigo-ml/gravigo/internal/engine"
	"github.com/gravigo-ml/gravigo/internal/loops"
	"github.com/gravigo-ml/gravigo/internal/nn"
	"github.com/gravigo-ml/gravigo/internal/optim"
	"github.com/gravigo-ml/gravigo/internal/registry"
	"github.com/gravigo-ml/gravigo/internal/tracker"
)

func newRegistry() *registry.Registry {
	r := registry.New()
	r.Apply(&Engines{}, &Networks{}, &Criterions{}, &Metrics{}, &Optimizers{}, &Schedulers{}, &Sources{}, &Trackers{})
	return r
}

func testComponents(t *testing.T) engine.Components {
	t.Helper()
	net, err := nn.NewLinear(1, 1, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	train, err := loops.NewTraining(0)
	require.NoError(t, err)
	return engine.Components{
		Model:     nn.NewModel(net, nn.NewMSE()),
		Optimizer: optim.NewNoOp(),
		Source:    data.NewDatasetSource(),
		TrainLoop: train,
		EvalLoop:  loops.NewEvaluation(nil),
	}
}

func TestEngines(t *testing.T) {
	r := newRegistry()
	factory, err := r.Engines.Lookup("basic")
	require.NoError(t, err)

	t.Run("builds from state.max_epochs", func(t *testing.T) {
		e, err := factory(cty.ObjectVal(map[string]cty.Value{
			"kind": cty.StringVal("basic"),
			"state": cty.ObjectVal(map[string]cty.Value{
				"max_epochs": cty.NumberIntVal(3),
			}),
		}), testComponents(t))
		require.NoError(t, err)
		assert.Equal(t, 3, e.MaxEpochs())
	})

	t.Run("accepts a disabled eval interval", func(t *testing.T) {
		_, err := factory(cty.ObjectVal(map[string]cty.Value{
			"kind": cty.StringVal("basic"),
			"state": cty.ObjectVal(map[string]cty.Value{
				"max_epochs": cty.NumberIntVal(1),
			}),
			"eval_interval": cty.NumberIntVal(0),
		}), testComponents(t))
		assert.NoError(t, err)
	})

	t.Run("rejects non-positive max epochs", func(t *testing.T) {
		_, err := factory(cty.ObjectVal(map[string]cty.Value{
			"kind": cty.StringVal("basic"),
			"state": cty.ObjectVal(map[string]cty.Value{
				"max_epochs": cty.NumberIntVal(0),
			}),
		}), testComponents(t))
		assert.ErrorContains(t, err, "engine max epochs must be positive")
	})
}

func TestNetworks(t *testing.T) {
	r := newRegistry()
	rng := rand.New(rand.NewSource(1))

	t.Run("linear", func(t *testing.T) {
		factory, err := r.Networks.Lookup("linear")
		require.NoError(t, err)

		net, err := factory(cty.ObjectVal(map[string]cty.Value{
			"kind": cty.StringVal("linear"),
			"in":   cty.NumberIntVal(2),
			"out":  cty.NumberIntVal(1),
		}), rng)
		require.NoError(t, err)
		linear, ok := net.(*nn.Linear)
		require.True(t, ok)
		assert.Equal(t, 2, linear.InFeatures())
		assert.Equal(t, 1, linear.OutFeatures())
	})

	t.Run("mlp", func(t *testing.T) {
		factory, err := r.Networks.Lookup("mlp")
		require.NoError(t, err)

		net, err := factory(cty.ObjectVal(map[string]cty.Value{
			"kind":   cty.StringVal("mlp"),
			"in":     cty.NumberIntVal(4),
			"hidden": cty.TupleVal([]cty.Value{cty.NumberIntVal(3)}),
			"out":    cty.NumberIntVal(2),
		}), rng)
		require.NoError(t, err)
		assert.IsType(t, &nn.MLP{}, net)
	})

	t.Run("missing size errors", func(t *testing.T) {
		factory, err := r.Networks.Lookup("linear")
		require.NoError(t, err)

		_, err = factory(cty.ObjectVal(map[string]cty.Value{
			"kind": cty.StringVal("linear"),
			"out":  cty.NumberIntVal(1),
		}), rng)
		require.ErrorContains(t, err, "linear network config")
		assert.ErrorContains(t, err, `missing required config key "in"`)
	})
}

func TestCriterions(t *testing.T) {
	r := newRegistry()
	node := cty.ObjectVal(map[string]cty.Value{"kind": cty.StringVal("mse")})

	mse, err := r.Criterions.Lookup("mse")
	require.NoError(t, err)
	c, err := mse(node)
	require.NoError(t, err)
	assert.IsType(t, &nn.MSE{}, c)

	ce, err := r.Criterions.Lookup("cross_entropy")
	require.NoError(t, err)
	c, err = ce(node)
	require.NoError(t, err)
	assert.IsType(t, &nn.CrossEntropy{}, c)
}

func TestMetrics(t *testing.T) {
	r := newRegistry()

	t.Run("default names", func(t *testing.T) {
		factory, err := r.Metrics.Lookup("categorical_accuracy")
		require.NoError(t, err)
		m, err := factory(cty.ObjectVal(map[string]cty.Value{"kind": cty.StringVal("categorical_accuracy")}))
		require.NoError(t, err)
		assert.Equal(t, "eval/accuracy", m.Name())

		factory, err = r.Metrics.Lookup("squared_error")
		require.NoError(t, err)
		m, err = factory(cty.ObjectVal(map[string]cty.Value{"kind": cty.StringVal("squared_error")}))
		require.NoError(t, err)
		assert.Equal(t, "eval/sq_err", m.Name())
	})

	t.Run("custom name", func(t *testing.T) {
		factory, err := r.Metrics.Lookup("categorical_accuracy")
		require.NoError(t, err)
		m, err := factory(cty.ObjectVal(map[string]cty.Value{
			"kind": cty.StringVal("categorical_accuracy"),
			"name": cty.StringVal("eval/top1"),
		}))
		require.NoError(t, err)
		assert.Equal(t, "eval/top1", m.Name())
	})
}

func TestOptimizers(t *testing.T) {
	r := newRegistry()
	params := []*optim.Parameter{optim.NewParameter("weight", 2)}

	t.Run("sgd reads lr", func(t *testing.T) {
		factory, err := r.Optimizers.Lookup("sgd")
		require.NoError(t, err)
		opt, err := factory(cty.ObjectVal(map[string]cty.Value{
			"kind": cty.StringVal("sgd"),
			"lr":   cty.NumberFloatVal(0.5),
		}), params)
		require.NoError(t, err)
		assert.Equal(t, 0.5, opt.LR())
	})

	t.Run("sgd defaults lr", func(t *testing.T) {
		factory, err := r.Optimizers.Lookup("sgd")
		require.NoError(t, err)
		opt, err := factory(cty.ObjectVal(map[string]cty.Value{"kind": cty.StringVal("sgd")}), params)
		require.NoError(t, err)
		assert.Equal(t, 0.01, opt.LR())
	})

	t.Run("noop", func(t *testing.T) {
		factory, err := r.Optimizers.Lookup("noop")
		require.NoError(t, err)
		opt, err := factory(cty.ObjectVal(map[string]cty.Value{"kind": cty.StringVal("noop")}), nil)
		require.NoError(t, err)
		assert.IsType(t, &optim.NoOp{}, opt)
	})
}

func TestSchedulers(t *testing.T) {
	r := newRegistry()
	opt := optim.NewNoOp()

	t.Run("kinds build", func(t *testing.T) {
		for kind, want := range map[string]any{
			"inverse_sqrt": &optim.InverseSquareRootLR{},
			"noop":         &optim.NoOpLR{},
		} {
			factory, err := r.Schedulers.Lookup(kind)
			require.NoError(t, err)
			s, err := factory(cty.ObjectVal(map[string]cty.Value{"kind": cty.StringVal(kind)}), opt)
			require.NoError(t, err)
			assert.IsType(t, want, s)
		}
	})

	t.Run("step decay reads its settings", func(t *testing.T) {
		factory, err := r.Schedulers.Lookup("step")
		require.NoError(t, err)
		s, err := factory(cty.ObjectVal(map[string]cty.Value{
			"kind":      cty.StringVal("step"),
			"gamma":     cty.NumberFloatVal(0.5),
			"step_size": cty.NumberIntVal(2),
		}), opt)
		require.NoError(t, err)
		assert.IsType(t, &optim.StepDecayLR{}, s)
	})

	t.Run("step decay rejects a zero step size", func(t *testing.T) {
		factory, err := r.Schedulers.Lookup("step")
		require.NoError(t, err)
		_, err = factory(cty.ObjectVal(map[string]cty.Value{
			"kind":      cty.StringVal("step"),
			"step_size": cty.NumberIntVal(0),
		}), opt)
		assert.ErrorContains(t, err, "step decay step size must be positive")
	})
}

func TestSources(t *testing.T) {
	r := newRegistry()
	factory, err := r.Sources.Lookup("synthetic")
	require.NoError(t, err)

	t.Run("builds train and eval splits", func(t *testing.T) {
		src, err := factory(cty.ObjectVal(map[string]cty.Value{
			"kind":         cty.StringVal("synthetic"),
			"num_examples": cty.NumberIntVal(8),
			"num_classes":  cty.NumberIntVal(2),
			"feature_size": cty.NumberIntVal(3),
			"batch_size":   cty.NumberIntVal(4),
		}), 42)
		require.NoError(t, err)

		ds, ok := src.(*data.DatasetSource)
		require.True(t, ok)
		assert.Equal(t, []string{"eval", "train"}, ds.IDs())

		train, err := src.Loader(context.Background(), data.TrainID)
		require.NoError(t, err)
		assert.Equal(t, 2, train.NumBatches())

		eval, err := src.Loader(context.Background(), data.EvalID)
		require.NoError(t, err)
		assert.Equal(t, 2, eval.NumBatches())
	})

	t.Run("eval batch size can differ", func(t *testing.T) {
		src, err := factory(cty.ObjectVal(map[string]cty.Value{
			"kind":            cty.StringVal("synthetic"),
			"num_examples":    cty.NumberIntVal(8),
			"num_classes":     cty.NumberIntVal(2),
			"feature_size":    cty.NumberIntVal(3),
			"batch_size":      cty.NumberIntVal(4),
			"eval_batch_size": cty.NumberIntVal(8),
		}), 42)
		require.NoError(t, err)

		eval, err := src.Loader(context.Background(), data.EvalID)
		require.NoError(t, err)
		assert.Equal(t, 1, eval.NumBatches())
	})

	t.Run("requires the dataset shape", func(t *testing.T) {
		_, err := factory(cty.ObjectVal(map[string]cty.Value{
			"kind": cty.StringVal("synthetic"),
		}), 42)
		require.ErrorContains(t, err, "synthetic source config")
		assert.ErrorContains(t, err, `missing required config key "num_examples"`)
	})
}

func TestTrackers(t *testing.T) {
	r := newRegistry()

	t.Run("noop and log", func(t *testing.T) {
		factory, err := r.Trackers.Lookup("noop")
		require.NoError(t, err)
		trk, err := factory(cty.ObjectVal(map[string]cty.Value{"kind": cty.StringVal("noop")}), "exp", nil)
		require.NoError(t, err)
		assert.IsType(t, &tracker.Noop{}, trk)

		factory, err = r.Trackers.Lookup("log")
		require.NoError(t, err)
		trk, err = factory(cty.ObjectVal(map[string]cty.Value{"kind": cty.StringVal("log")}), "exp", nil)
		require.NoError(t, err)
		assert.IsType(t, &tracker.Log{}, trk)
	})

	t.Run("socketio requires a url", func(t *testing.T) {
		factory, err := r.Trackers.Lookup("socketio")
		require.NoError(t, err)
		_, err = factory(cty.ObjectVal(map[string]cty.Value{"kind": cty.StringVal("socketio")}), "exp", nil)
		require.ErrorContains(t, err, "socketio tracker config")
		assert.ErrorContains(t, err, `missing required config key "url"`)
	})

	t.Run("socketio parses the timeout", func(t *testing.T) {
		factory, err := r.Trackers.Lookup("socketio")
		require.NoError(t, err)

		trk, err := factory(cty.ObjectVal(map[string]cty.Value{
			"kind":    cty.StringVal("socketio"),
			"url":     cty.StringVal("http://localhost:9000/socket.io"),
			"timeout": cty.StringVal("5s"),
		}), "exp", nil)
		require.NoError(t, err)
		assert.IsType(t, &tracker.SocketIO{}, trk)

		_, err = factory(cty.ObjectVal(map[string]cty.Value{
			"kind":    cty.StringVal("socketio"),
			"url":     cty.StringVal("http://localhost:9000/socket.io"),
			"timeout": cty.StringVal("soon"),
		}), "exp", nil)
		assert.ErrorContains(t, err, "parsing timeout")
	})
}
