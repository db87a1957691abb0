package paramanalyzer

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/ctxlog"
	"github.com/gravigo-ml/gravigo/internal/events"
	"github.com/gravigo-ml/gravigo/internal/nn"
	"github.com/gravigo-ml/gravigo/internal/registry"
	"github.com/gravigo-ml/gravigo/internal/testutil"
)

func loggedCtx() (context.Context, *testutil.SafeBuffer) {
	buf := &testutil.SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger), buf
}

// newModelEngine returns a fake engine whose model has a weight of
// [1 3] and a bias of [2].
func newModelEngine(t *testing.T) *testutil.Engine {
	t.Helper()
	net, err := nn.NewLinear(2, 1, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	e := testutil.NewEngine()
	e.NetModel = nn.NewModel(net, nn.NewMSE())
	params := e.NetModel.Parameters()
	copy(params[0].Value, []float64{1, 3})
	copy(params[1].Value, []float64{2})
	return e
}

func TestAnalyzer(t *testing.T) {
	t.Run("logs a summary per parameter at startup", func(t *testing.T) {
		a, err := New(1)
		require.NoError(t, err)
		e := newModelEngine(t)
		require.NoError(t, a.Attach(context.Background(), e))

		ctx, buf := loggedCtx()
		require.NoError(t, e.FireEvent(ctx, events.Started))

		out := buf.String()
		assert.Contains(t, out, "Analyzing model parameters.")
		assert.Contains(t, out, "name=weight")
		assert.Contains(t, out, "count=2")
		assert.Contains(t, out, "mean=2")
		assert.Contains(t, out, "min=1")
		assert.Contains(t, out, "max=3")
		assert.Contains(t, out, "std=1")
		assert.Contains(t, out, "name=bias")
	})

	t.Run("honors the epoch frequency", func(t *testing.T) {
		a, err := New(2)
		require.NoError(t, err)
		e := newModelEngine(t)
		require.NoError(t, a.Attach(context.Background(), e))

		ctx, buf := loggedCtx()
		for epoch := 0; epoch < 4; epoch++ {
			e.CurrentEpoch = epoch
			require.NoError(t, e.FireEvent(ctx, events.TrainEpochCompleted))
		}

		assert.Equal(t, 2, strings.Count(buf.String(), "Analyzing model parameters."))
	})

	t.Run("attaches once per event", func(t *testing.T) {
		a, err := New(1)
		require.NoError(t, err)
		e := newModelEngine(t)

		require.NoError(t, a.Attach(context.Background(), e))
		require.NoError(t, a.Attach(context.Background(), e))
		assert.Equal(t, 1, e.Events.Count(events.Started))
		assert.Equal(t, 1, e.Events.Count(events.TrainEpochCompleted))
	})

	t.Run("rejects non-positive freq", func(t *testing.T) {
		_, err := New(0)
		assert.ErrorContains(t, err, "parameter analyzer freq must be positive")
	})
}

func TestSummarize(t *testing.T) {
	t.Run("computes the statistics", func(t *testing.T) {
		s := summarize([]float64{1, 2, 3, 4})
		assert.Equal(t, 4, s.count)
		assert.InDelta(t, 2.5, s.mean, 1e-12)
		assert.Equal(t, 1.0, s.min)
		assert.Equal(t, 4.0, s.max)
		assert.InDelta(t, 1.118033988749895, s.std, 1e-12)
	})

	t.Run("single value has zero spread", func(t *testing.T) {
		s := summarize([]float64{7})
		assert.Equal(t, 1, s.count)
		assert.Equal(t, 7.0, s.mean)
		assert.Equal(t, 0.0, s.std)
	})

	t.Run("empty input stays zero", func(t *testing.T) {
		assert.Equal(t, summary{}, summarize(nil))
	})
}

func TestModule(t *testing.T) {
	t.Run("registers the model_parameter_analyzer kind", func(t *testing.T) {
		r := registry.New()
		r.Apply(&Module{})

		factory, err := r.Handlers.Lookup(Kind)
		require.NoError(t, err)

		h, err := factory(cty.ObjectVal(map[string]cty.Value{"kind": cty.StringVal(Kind)}))
		require.NoError(t, err)
		assert.NotNil(t, h)
	})

	t.Run("rejects a zero freq from config", func(t *testing.T) {
		r := registry.New()
		r.Apply(&Module{})
		factory, err := r.Handlers.Lookup(Kind)
		require.NoError(t, err)

		_, err = factory(cty.ObjectVal(map[string]cty.Value{
			"kind": cty.StringVal(Kind),
			"freq": cty.NumberIntVal(0),
		}))
		assert.ErrorContains(t, err, "parameter analyzer freq must be positive")
	})
}
