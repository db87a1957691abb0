package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravigo-ml/gravigo/internal/engine"
	"github.com/gravigo-ml/gravigo/internal/rsrc"
	"github.com/gravigo-ml/gravigo/internal/testutil"
	"github.com/gravigo-ml/gravigo/internal/tracker"
)

// seqEngine appends to a shared sequence so tests can assert ordering
// across the engine, tracker, resources and handlers.
type seqEngine struct {
	*testutil.Engine
	seq *[]string
}

func (e *seqEngine) Train(context.Context) error {
	*e.seq = append(*e.seq, "train")
	return nil
}

func (e *seqEngine) Eval(context.Context) error {
	*e.seq = append(*e.seq, "eval")
	return nil
}

type recordingTracker struct {
	seq      *[]string
	startErr error
	endErr   error
	params   map[string]any
}

func (t *recordingTracker) Start(context.Context) error {
	*t.seq = append(*t.seq, "tracker start")
	return t.startErr
}

func (t *recordingTracker) LogParams(params map[string]any) {
	t.params = params
	*t.seq = append(*t.seq, "params")
}

func (t *recordingTracker) LogMetrics(tracker.Step, map[string]float64) {}

func (t *recordingTracker) End(context.Context) error {
	*t.seq = append(*t.seq, "tracker end")
	return t.endErr
}

type recordingResource struct {
	seq      *[]string
	startErr error
}

func (r *recordingResource) Start(context.Context) error {
	if r.startErr != nil {
		return r.startErr
	}
	*r.seq = append(*r.seq, "resource start")
	return nil
}

func (r *recordingResource) Stop(context.Context) error {
	*r.seq = append(*r.seq, "resource stop")
	return nil
}

type recordingHandler struct {
	seq *[]string
	err error
}

func (h *recordingHandler) Attach(context.Context, engine.Engine) error {
	if h.err != nil {
		return h.err
	}
	*h.seq = append(*h.seq, "attach")
	return nil
}

func TestTraining(t *testing.T) {
	t.Run("runs the lifecycle in order", func(t *testing.T) {
		var seq []string
		e := &seqEngine{Engine: testutil.NewEngine(), seq: &seq}
		trk := &recordingTracker{seq: &seq}
		r, err := NewTraining(e, Options{
			Tracker:   trk,
			Handlers:  []engine.Handler{&recordingHandler{seq: &seq}},
			Resources: []rsrc.Resource{&recordingResource{seq: &seq}},
			Params:    map[string]any{"run.name": "exp", "run.seed": int64(42)},
		})
		require.NoError(t, err)

		require.NoError(t, r.Run(context.Background()))
		assert.Equal(t, []string{
			"resource start",
			"tracker start",
			"params",
			"attach",
			"train",
			"tracker end",
			"resource stop",
		}, seq)
		assert.Equal(t, map[string]any{"run.name": "exp", "run.seed": int64(42)}, trk.params)
	})

	t.Run("tracker start failure stops resources", func(t *testing.T) {
		var seq []string
		e := &seqEngine{Engine: testutil.NewEngine(), seq: &seq}
		r, err := NewTraining(e, Options{
			Tracker:   &recordingTracker{seq: &seq, startErr: errors.New("no server")},
			Resources: []rsrc.Resource{&recordingResource{seq: &seq}},
		})
		require.NoError(t, err)

		err = r.Run(context.Background())
		assert.ErrorContains(t, err, "training run: starting tracker: no server")
		assert.Equal(t, []string{"resource start", "tracker start", "resource stop"}, seq)
	})

	t.Run("resource start failure aborts before the tracker", func(t *testing.T) {
		var seq []string
		e := &seqEngine{Engine: testutil.NewEngine(), seq: &seq}
		r, err := NewTraining(e, Options{
			Tracker:   &recordingTracker{seq: &seq},
			Resources: []rsrc.Resource{&recordingResource{seq: &seq, startErr: errors.New("boom")}},
		})
		require.NoError(t, err)

		err = r.Run(context.Background())
		assert.ErrorContains(t, err, "training run: starting resource 0: boom")
		assert.NotContains(t, seq, "tracker start")
	})

	t.Run("handler attach failure skips training", func(t *testing.T) {
		var seq []string
		e := &seqEngine{Engine: testutil.NewEngine(), seq: &seq}
		r, err := NewTraining(e, Options{
			Tracker:  &recordingTracker{seq: &seq},
			Handlers: []engine.Handler{&recordingHandler{seq: &seq, err: errors.New("bad handler")}},
		})
		require.NoError(t, err)

		err = r.Run(context.Background())
		assert.ErrorContains(t, err, "training run: attaching handler 0: bad handler")
		assert.NotContains(t, seq, "train")
		assert.Contains(t, seq, "tracker end")
	})

	t.Run("training failure still unwinds", func(t *testing.T) {
		var seq []string
		fake := testutil.NewEngine()
		fake.TrainErr = errors.New("diverged")
		r, err := NewTraining(fake, Options{
			Tracker:   &recordingTracker{seq: &seq},
			Resources: []rsrc.Resource{&recordingResource{seq: &seq}},
		})
		require.NoError(t, err)

		err = r.Run(context.Background())
		assert.ErrorContains(t, err, "training run: diverged")
		assert.Equal(t, []string{"resource start", "tracker start", "tracker end", "resource stop"}, seq)
	})

	t.Run("tracker end failure is not fatal", func(t *testing.T) {
		var seq []string
		e := &seqEngine{Engine: testutil.NewEngine(), seq: &seq}
		r, err := NewTraining(e, Options{
			Tracker: &recordingTracker{seq: &seq, endErr: errors.New("flush failed")},
		})
		require.NoError(t, err)

		assert.NoError(t, r.Run(context.Background()))
	})

	t.Run("defaults to the noop tracker", func(t *testing.T) {
		fake := testutil.NewEngine()
		r, err := NewTraining(fake, Options{})
		require.NoError(t, err)

		require.NoError(t, r.Run(context.Background()))
		assert.Equal(t, 1, fake.TrainCalls)
	})

	t.Run("requires an engine", func(t *testing.T) {
		_, err := NewTraining(nil, Options{})
		assert.ErrorContains(t, err, "runner requires an engine")
	})
}

func TestEvaluation(t *testing.T) {
	t.Run("runs the engine evaluation", func(t *testing.T) {
		var seq []string
		e := &seqEngine{Engine: testutil.NewEngine(), seq: &seq}
		r, err := NewEvaluation(e, Options{Tracker: &recordingTracker{seq: &seq}})
		require.NoError(t, err)

		require.NoError(t, r.Run(context.Background()))
		assert.Equal(t, []string{"tracker start", "eval", "tracker end"}, seq)
	})

	t.Run("wraps evaluation failures", func(t *testing.T) {
		fake := testutil.NewEngine()
		fake.EvalErr = errors.New("no data")
		r, err := NewEvaluation(fake, Options{})
		require.NoError(t, err)

		assert.ErrorContains(t, r.Run(context.Background()), "evaluation run: no data")
	})

	t.Run("requires an engine", func(t *testing.T) {
		_, err := NewEvaluation(nil, Options{})
		assert.ErrorContains(t, err, "runner requires an engine")
	})
}
