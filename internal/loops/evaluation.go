package loops

import (
	"context"
	"errors"
	"fmt"

	"github.com/gravigo-ml/gravigo/internal/ctxlog"
	"github.com/gravigo-ml/gravigo/internal/data"
	"github.com/gravigo-ml/gravigo/internal/events"
	"github.com/gravigo-ml/gravigo/internal/meters"
	"github.com/gravigo-ml/gravigo/internal/metrics"
)

// Evaluation runs one epoch over the eval loader without touching
// gradients, feeding the attached metrics and the loss meter. A source
// without an eval dataset makes the loop a no-op.
type Evaluation struct {
	metrics []metrics.Metric
}

// NewEvaluation creates an evaluation loop over the given metrics.
func NewEvaluation(ms []metrics.Metric) *Evaluation {
	return &Evaluation{metrics: ms}
}

// Run executes one evaluation epoch.
func (l *Evaluation) Run(ctx context.Context, e Engine) error {
	logger := ctxlog.FromContext(ctx)

	loader, err := e.DataSource().Loader(ctx, data.EvalID)
	if errors.Is(err, data.ErrLoaderNotFound) {
		logger.Info("No eval dataset, skipping evaluation.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("evaluation loop: %w", err)
	}

	fire := func(name string) error { return e.FireEvent(ctx, name) }
	if err := fire(events.EvalEpochStarted); err != nil {
		return err
	}

	model := e.Model()
	lossMeter := meters.NewAverage()
	for _, m := range l.metrics {
		m.Reset()
	}

	// The batch producer blocks on its channel; cancelling the epoch
	// context releases it when the loop returns early.
	batchCtx, stop := context.WithCancel(ctx)
	defer stop()

	for batch := range loader.Batches(batchCtx) {
		if err := fire(events.EvalIterationStarted); err != nil {
			return err
		}
		for i := range batch.Features {
			out, err := model.EvalStep(batch.Features[i], batch.Targets[i])
			if err != nil {
				return fmt.Errorf("eval iteration: %w", err)
			}
			lossMeter.Update(out.Loss)
			for _, m := range l.metrics {
				m.Update(out.Predictions, batch.Targets[i])
			}
		}
		if err := fire(events.EvalIterationCompleted); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if avg, err := lossMeter.Average(); err == nil {
		e.LogMetric(ctx, "eval/loss_avg", avg)
	}
	for _, m := range l.metrics {
		v, err := m.Value()
		if err != nil {
			logger.Debug("Metric has no observations, skipping.", "metric", m.Name())
			continue
		}
		e.LogMetric(ctx, m.Name(), v)
	}

	return fire(events.EvalEpochCompleted)
}
