package loops

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gravigo-ml/gravigo/internal/ctxlog"
	"github.com/gravigo-ml/gravigo/internal/data"
	"github.com/gravigo-ml/gravigo/internal/events"
	"github.com/gravigo-ml/gravigo/internal/meters"
)

// Training runs one epoch over the train loader: per batch it zeroes
// the gradients, accumulates per-example forward/backward passes,
// averages the gradients, optionally clips them, and steps the
// optimizer. A batch with a NaN loss is skipped after a warning.
type Training struct {
	clipValue float64
}

// NewTraining creates a training loop. clipValue > 0 clamps every
// gradient component to [-clipValue, clipValue] before the optimizer
// step; 0 disables clipping.
func NewTraining(clipValue float64) (*Training, error) {
	if clipValue < 0 {
		return nil, fmt.Errorf("training clip value must not be negative, got %g", clipValue)
	}
	return &Training{clipValue: clipValue}, nil
}

// Run executes one training epoch.
func (l *Training) Run(ctx context.Context, e Engine) error {
	logger := ctxlog.FromContext(ctx)

	loader, err := e.DataSource().Loader(ctx, data.TrainID)
	if err != nil {
		return fmt.Errorf("training loop: %w", err)
	}

	fire := func(name string) error { return e.FireEvent(ctx, name) }
	if err := fire(events.TrainEpochStarted); err != nil {
		return err
	}

	model := e.Model()
	opt := e.Optimizer()
	lossMeter := meters.NewAverage()
	start := time.Now()
	numBatches := 0

	// The batch producer blocks on its channel; cancelling the epoch
	// context releases it when the loop returns early.
	batchCtx, stop := context.WithCancel(ctx)
	defer stop()

	for batch := range loader.Batches(batchCtx) {
		e.IncrementIteration()
		if err := fire(events.TrainIterationStarted); err != nil {
			return err
		}

		opt.ZeroGrad()
		var lossSum float64
		for i := range batch.Features {
			out, err := model.TrainStep(batch.Features[i], batch.Targets[i])
			if err != nil {
				return fmt.Errorf("train iteration %d: %w", e.Iteration(), err)
			}
			lossSum += out.Loss
		}
		batchLoss := lossSum / float64(batch.Size())
		if err := fire(events.TrainForwardCompleted); err != nil {
			return err
		}

		if math.IsNaN(batchLoss) {
			logger.Warn("NaN loss, skipping optimizer step.", "iteration", e.Iteration())
			if err := fire(events.TrainIterationCompleted); err != nil {
				return err
			}
			numBatches++
			continue
		}

		lossMeter.Update(batchLoss)
		model.ScaleGrad(1 / float64(batch.Size()))
		if l.clipValue > 0 {
			clipGradients(model.Parameters(), l.clipValue)
		}
		if err := fire(events.TrainBackwardCompleted); err != nil {
			return err
		}

		opt.Step()
		if err := fire(events.TrainIterationCompleted); err != nil {
			return err
		}
		numBatches++
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if avg, err := lossMeter.Average(); err == nil {
		e.LogMetric(ctx, "train/loss_avg", avg)
	}
	e.LogMetric(ctx, "train/epoch_time_sec", time.Since(start).Seconds())
	e.LogMetric(ctx, "train/num_batches", float64(numBatches))

	return fire(events.TrainEpochCompleted)
}
