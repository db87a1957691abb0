package data

import (
	"context"
	"fmt"
	"math/rand"
)

// Loader slices a dataset into batches and streams them over a
// channel. When shuffling is enabled the example order is
// re-permuted on every Batches call with the loader's own random
// source, so a fixed seed yields a reproducible order across epochs.
// A Loader is not safe for concurrent use.
type Loader struct {
	dataset   Dataset
	batchSize int
	shuffle   bool
	rng       *rand.Rand
}

// NewLoader creates a loader over the dataset.
func NewLoader(dataset Dataset, batchSize int, shuffle bool, seed int64) (*Loader, error) {
	if dataset == nil {
		return nil, fmt.Errorf("loader requires a dataset")
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("loader batch size must be positive, got %d", batchSize)
	}
	return &Loader{
		dataset:   dataset,
		batchSize: batchSize,
		shuffle:   shuffle,
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

// Dataset returns the dataset the loader batches over.
func (l *Loader) Dataset() Dataset { return l.dataset }

// NumBatches returns the number of batches one pass over the dataset
// produces, counting a trailing partial batch.
func (l *Loader) NumBatches() int {
	return (l.dataset.Len() + l.batchSize - 1) / l.batchSize
}

// Batches streams one pass over the dataset. The channel is closed
// after the last batch, or early when ctx is cancelled.
func (l *Loader) Batches(ctx context.Context) <-chan Batch {
	order := make([]int, l.dataset.Len())
	for i := range order {
		order[i] = i
	}
	if l.shuffle {
		l.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	out := make(chan Batch)
	go func() {
		defer close(out)
		for start := 0; start < len(order); start += l.batchSize {
			end := start + l.batchSize
			if end > len(order) {
				end = len(order)
			}
			batch := Batch{
				Features: make([][]float64, 0, end-start),
				Targets:  make([][]float64, 0, end-start),
			}
			for _, idx := range order[start:end] {
				features, target := l.dataset.At(idx)
				batch.Features = append(batch.Features, features)
				batch.Targets = append(batch.Targets, target)
			}
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
