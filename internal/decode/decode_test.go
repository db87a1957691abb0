package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/conf"
)

type optimizerConfig struct {
	Kind        string  `conf:"kind"`
	LR          float64 `conf:"lr"`
	Momentum    float64 `conf:"momentum,optional"`
	WeightDecay float64 `conf:"weight_decay,optional"`
}

type networkConfig struct {
	Kind   string  `conf:"kind"`
	Hidden []int64 `conf:"hidden,optional"`
}

type modelConfig struct {
	Network networkConfig `conf:"network"`
	Raw     cty.Value     `conf:"criterion"`
}

func parse(t *testing.T, src string) cty.Value {
	t.Helper()
	v, err := conf.ParseYAML([]byte(src), "test.yaml")
	require.NoError(t, err)
	return v
}

func TestDecode(t *testing.T) {
	t.Run("tagged scalars", func(t *testing.T) {
		v := parse(t, "kind: sgd\nlr: 0.01\nmomentum: 0.9\n")
		var got optimizerConfig
		require.NoError(t, Decode(v, &got))
		assert.Equal(t, optimizerConfig{Kind: "sgd", LR: 0.01, Momentum: 0.9}, got)
	})

	t.Run("optional fields stay zero", func(t *testing.T) {
		v := parse(t, "kind: sgd\nlr: 0.1\n")
		var got optimizerConfig
		require.NoError(t, Decode(v, &got))
		assert.Zero(t, got.Momentum)
		assert.Zero(t, got.WeightDecay)
	})

	t.Run("missing required key", func(t *testing.T) {
		v := parse(t, "kind: sgd\n")
		var got optimizerConfig
		err := Decode(v, &got)
		require.Error(t, err)
		assert.ErrorContains(t, err, `missing required config key "lr"`)
	})

	t.Run("explicit null counts as missing", func(t *testing.T) {
		v := parse(t, "kind: sgd\nlr: null\n")
		var got optimizerConfig
		err := Decode(v, &got)
		assert.ErrorContains(t, err, `missing required config key "lr"`)
	})

	t.Run("nested structs recurse", func(t *testing.T) {
		v := parse(t, "network:\n  kind: mlp\n  hidden: [64, 32]\ncriterion:\n  kind: mse\n")
		var got modelConfig
		require.NoError(t, Decode(v, &got))
		assert.Equal(t, "mlp", got.Network.Kind)
		assert.Equal(t, []int64{64, 32}, got.Network.Hidden)
	})

	t.Run("cty fields receive the raw node", func(t *testing.T) {
		v := parse(t, "network:\n  kind: linear\ncriterion:\n  kind: cross_entropy\n  weight: 0.5\n")
		var got modelConfig
		require.NoError(t, Decode(v, &got))
		assert.Equal(t, cty.StringVal("cross_entropy"), got.Raw.GetAttr("kind"))
		assert.Equal(t, cty.NumberFloatVal(0.5), got.Raw.GetAttr("weight"))
	})

	t.Run("slice of structs", func(t *testing.T) {
		type metricConfig struct {
			Kind string `conf:"kind"`
			Name string `conf:"name"`
		}
		type metricsConfig struct {
			Metrics []metricConfig `conf:"metrics"`
		}
		v := parse(t, "metrics:\n  - kind: accuracy\n    name: acc\n  - kind: squared_error\n    name: sqerr\n")
		var got metricsConfig
		require.NoError(t, Decode(v, &got))
		require.Len(t, got.Metrics, 2)
		assert.Equal(t, metricConfig{Kind: "accuracy", Name: "acc"}, got.Metrics[0])
		assert.Equal(t, metricConfig{Kind: "squared_error", Name: "sqerr"}, got.Metrics[1])
	})

	t.Run("optional pointer struct stays nil", func(t *testing.T) {
		type sched struct {
			Kind string `conf:"kind"`
		}
		type cfg struct {
			LRScheduler *sched `conf:"lr_scheduler,optional"`
		}
		var got cfg
		require.NoError(t, Decode(parse(t, "other: 1\n"), &got))
		assert.Nil(t, got.LRScheduler)

		require.NoError(t, Decode(parse(t, "lr_scheduler:\n  kind: step\n"), &got))
		require.NotNil(t, got.LRScheduler)
		assert.Equal(t, "step", got.LRScheduler.Kind)
	})

	t.Run("type mismatch", func(t *testing.T) {
		v := parse(t, "kind: sgd\nlr: not-a-number\n")
		var got optimizerConfig
		err := Decode(v, &got)
		require.Error(t, err)
		assert.ErrorContains(t, err, `decoding "lr"`)
	})

	t.Run("non-pointer target", func(t *testing.T) {
		var got optimizerConfig
		err := Decode(parse(t, "kind: sgd\n"), got)
		assert.ErrorContains(t, err, "non-nil pointer")
	})
}
