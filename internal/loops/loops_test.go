package loops

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravigo-ml/gravigo/internal/ctxlog"
	"github.com/gravigo-ml/gravigo/internal/data"
	"github.com/gravigo-ml/gravigo/internal/events"
	"github.com/gravigo-ml/gravigo/internal/metrics"
	"github.com/gravigo-ml/gravigo/internal/nn"
	"github.com/gravigo-ml/gravigo/internal/optim"
)

// logBuffer collects log output from the loop and its goroutines.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// fixedDataset serves a handful of hard-coded examples.
type fixedDataset struct {
	features [][]float64
	targets  [][]float64
}

func (d *fixedDataset) Len() int { return len(d.features) }

func (d *fixedDataset) At(i int) (features, target []float64) {
	return d.features[i], d.targets[i]
}

// fakeEngine records events and metrics for loop assertions.
type fakeEngine struct {
	iteration int
	model     *nn.Model
	opt       optim.Optimizer
	source    data.Source

	events  []string
	metrics map[string]float64
	fireErr map[string]error
}

func newFakeEngine(t *testing.T, net nn.Network, criterion nn.Criterion, source data.Source) *fakeEngine {
	t.Helper()
	model := nn.NewModel(net, criterion)
	opt, err := optim.NewSGD(model.Parameters(), 0.1, 0, 0)
	require.NoError(t, err)
	return &fakeEngine{
		iteration: -1,
		model:     model,
		opt:       opt,
		source:    source,
		metrics:   make(map[string]float64),
		fireErr:   make(map[string]error),
	}
}

func (e *fakeEngine) Iteration() int { return e.iteration }

func (e *fakeEngine) IncrementIteration() { e.iteration++ }

func (e *fakeEngine) FireEvent(_ context.Context, name string) error {
	e.events = append(e.events, name)
	return e.fireErr[name]
}

func (e *fakeEngine) LogMetric(_ context.Context, name string, value float64) {
	e.metrics[name] = value
}

func (e *fakeEngine) Model() *nn.Model { return e.model }

func (e *fakeEngine) Optimizer() optim.Optimizer { return e.opt }

func (e *fakeEngine) DataSource() data.Source { return e.source }

func sourceWith(datasets map[string]*fixedDataset, batchSize int) data.Source {
	s := data.NewDatasetSource()
	for id, ds := range datasets {
		ds := ds
		s.Add(id, data.CreatorFunc(func(context.Context) (data.Dataset, error) {
			return ds, nil
		}), data.LoaderSettings{BatchSize: batchSize})
	}
	return s
}

func loggedCtx() (context.Context, *logBuffer) {
	buf := &logBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger), buf
}

func newLinearEngine(t *testing.T, datasets map[string]*fixedDataset, batchSize int) *fakeEngine {
	t.Helper()
	net, err := nn.NewLinear(1, 1, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return newFakeEngine(t, net, nn.NewMSE(), sourceWith(datasets, batchSize))
}

func TestTraining(t *testing.T) {
	trainData := &fixedDataset{
		features: [][]float64{{1}, {2}, {3}, {4}},
		targets:  [][]float64{{2}, {4}, {6}, {8}},
	}

	t.Run("runs an epoch and logs metrics", func(t *testing.T) {
		e := newLinearEngine(t, map[string]*fixedDataset{data.TrainID: trainData}, 2)
		loop, err := NewTraining(0)
		require.NoError(t, err)

		ctx, _ := loggedCtx()
		require.NoError(t, loop.Run(ctx, e))

		perBatch := []string{
			events.TrainIterationStarted,
			events.TrainForwardCompleted,
			events.TrainBackwardCompleted,
			events.TrainIterationCompleted,
		}
		want := []string{events.TrainEpochStarted}
		want = append(want, perBatch...)
		want = append(want, perBatch...)
		want = append(want, events.TrainEpochCompleted)
		assert.Equal(t, want, e.events)

		assert.Equal(t, 1, e.Iteration())
		assert.Equal(t, 2.0, e.metrics["train/num_batches"])
		assert.Contains(t, e.metrics, "train/loss_avg")
		assert.Contains(t, e.metrics, "train/epoch_time_sec")
	})

	// Test that the optimizer step actually moves the parameters.
	t.Run("parameters move during training", func(t *testing.T) {
		e := newLinearEngine(t, map[string]*fixedDataset{data.TrainID: trainData}, 2)
		loop, err := NewTraining(0)
		require.NoError(t, err)

		before := e.model.Parameters()[0].Value[0]
		ctx, _ := loggedCtx()
		require.NoError(t, loop.Run(ctx, e))
		assert.NotEqual(t, before, e.model.Parameters()[0].Value[0])
	})

	t.Run("nan loss skips the optimizer step", func(t *testing.T) {
		nanData := &fixedDataset{
			features: [][]float64{{1}},
			targets:  [][]float64{{math.NaN()}},
		}
		e := newLinearEngine(t, map[string]*fixedDataset{data.TrainID: nanData}, 1)
		loop, err := NewTraining(0)
		require.NoError(t, err)

		before := e.model.Parameters()[0].Value[0]
		ctx, buf := loggedCtx()
		require.NoError(t, loop.Run(ctx, e))

		assert.Equal(t, before, e.model.Parameters()[0].Value[0])
		assert.Contains(t, buf.String(), "NaN loss, skipping optimizer step.")
		assert.NotContains(t, e.events, events.TrainBackwardCompleted)
		assert.Contains(t, e.events, events.TrainIterationCompleted)
		assert.NotContains(t, e.metrics, "train/loss_avg")
		assert.Equal(t, 1.0, e.metrics["train/num_batches"])
	})

	t.Run("gradient clipping bounds the update", func(t *testing.T) {
		p := optim.NewParameter("w", 3)
		copy(p.Grad, []float64{5, -7, 0.1})
		clipGradients([]*optim.Parameter{p}, 0.5)
		assert.Equal(t, []float64{0.5, -0.5, 0.1}, p.Grad)
	})

	t.Run("event errors abort the epoch", func(t *testing.T) {
		e := newLinearEngine(t, map[string]*fixedDataset{data.TrainID: trainData}, 2)
		e.fireErr[events.TrainEpochStarted] = assert.AnError
		loop, err := NewTraining(0)
		require.NoError(t, err)

		ctx, _ := loggedCtx()
		assert.ErrorIs(t, loop.Run(ctx, e), assert.AnError)
	})

	t.Run("cancelled context aborts between batches", func(t *testing.T) {
		e := newLinearEngine(t, map[string]*fixedDataset{data.TrainID: trainData}, 1)
		loop, err := NewTraining(0)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, loop.Run(ctx, e), context.Canceled)
	})

	t.Run("early exit releases the batch producer", func(t *testing.T) {
		e := newLinearEngine(t, map[string]*fixedDataset{data.TrainID: trainData}, 1)
		e.fireErr[events.TrainIterationStarted] = assert.AnError
		loop, err := NewTraining(0)
		require.NoError(t, err)

		before := runtime.NumGoroutine()
		ctx, _ := loggedCtx()
		for range 20 {
			require.ErrorIs(t, loop.Run(ctx, e), assert.AnError)
		}
		require.Eventually(t, func() bool {
			return runtime.NumGoroutine() <= before+1
		}, time.Second, 10*time.Millisecond, "batch producer goroutines must exit with the epoch")
	})

	t.Run("rejects a negative clip value", func(t *testing.T) {
		_, err := NewTraining(-1)
		assert.ErrorContains(t, err, "clip value must not be negative")
	})

	t.Run("missing train dataset is an error", func(t *testing.T) {
		e := newLinearEngine(t, map[string]*fixedDataset{}, 2)
		loop, err := NewTraining(0)
		require.NoError(t, err)

		ctx, _ := loggedCtx()
		assert.ErrorIs(t, loop.Run(ctx, e), data.ErrLoaderNotFound)
	})
}

func TestEvaluation(t *testing.T) {
	evalData := &fixedDataset{
		features: [][]float64{{0.9, 0.1}, {0.2, 0.8}},
		targets:  [][]float64{{1, 0}, {0, 1}},
	}

	newEvalEngine := func(t *testing.T, datasets map[string]*fixedDataset) *fakeEngine {
		t.Helper()
		net, err := nn.NewLinear(2, 2, rand.New(rand.NewSource(2)))
		require.NoError(t, err)
		return newFakeEngine(t, net, nn.NewMSE(), sourceWith(datasets, 2))
	}

	t.Run("evaluates and logs metrics without gradients", func(t *testing.T) {
		e := newEvalEngine(t, map[string]*fixedDataset{data.EvalID: evalData})
		loop := NewEvaluation([]metrics.Metric{metrics.NewCategoricalAccuracy("eval/accuracy")})

		ctx, _ := loggedCtx()
		require.NoError(t, loop.Run(ctx, e))

		assert.Equal(t, []string{
			events.EvalEpochStarted,
			events.EvalIterationStarted,
			events.EvalIterationCompleted,
			events.EvalEpochCompleted,
		}, e.events)
		assert.Contains(t, e.metrics, "eval/loss_avg")
		assert.Contains(t, e.metrics, "eval/accuracy")
		assert.Equal(t, []float64{0, 0, 0, 0}, e.model.Parameters()[0].Grad)
		assert.Equal(t, -1, e.Iteration())
	})

	t.Run("missing eval dataset is a no-op", func(t *testing.T) {
		e := newEvalEngine(t, map[string]*fixedDataset{})
		loop := NewEvaluation(nil)

		ctx, buf := loggedCtx()
		require.NoError(t, loop.Run(ctx, e))
		assert.Empty(t, e.events)
		assert.Contains(t, buf.String(), "No eval dataset, skipping evaluation.")
	})

	t.Run("metrics reset between epochs", func(t *testing.T) {
		e := newEvalEngine(t, map[string]*fixedDataset{data.EvalID: evalData})
		acc := metrics.NewCategoricalAccuracy("eval/accuracy")
		loop := NewEvaluation([]metrics.Metric{acc})

		ctx, _ := loggedCtx()
		require.NoError(t, loop.Run(ctx, e))
		first := e.metrics["eval/accuracy"]

		// Pollute the metric; the next run must reset it.
		acc.Update([]float64{1, 0}, []float64{0, 1})
		acc.Update([]float64{1, 0}, []float64{0, 1})

		require.NoError(t, loop.Run(ctx, e))
		assert.Equal(t, first, e.metrics["eval/accuracy"])
	})

	t.Run("event errors abort the epoch", func(t *testing.T) {
		e := newEvalEngine(t, map[string]*fixedDataset{data.EvalID: evalData})
		e.fireErr[events.EvalEpochStarted] = assert.AnError
		loop := NewEvaluation(nil)

		ctx, _ := loggedCtx()
		assert.ErrorIs(t, loop.Run(ctx, e), assert.AnError)
	})

	t.Run("early exit releases the batch producer", func(t *testing.T) {
		net, err := nn.NewLinear(2, 2, rand.New(rand.NewSource(2)))
		require.NoError(t, err)
		e := newFakeEngine(t, net, nn.NewMSE(), sourceWith(map[string]*fixedDataset{data.EvalID: evalData}, 1))
		e.fireErr[events.EvalIterationStarted] = assert.AnError
		loop := NewEvaluation(nil)

		before := runtime.NumGoroutine()
		ctx, _ := loggedCtx()
		for range 20 {
			require.ErrorIs(t, loop.Run(ctx, e), assert.AnError)
		}
		require.Eventually(t, func() bool {
			return runtime.NumGoroutine() <= before+1
		}, time.Second, 10*time.Millisecond, "batch producer goroutines must exit with the epoch")
	})
}
