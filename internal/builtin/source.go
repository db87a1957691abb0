package builtin

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/gravigo-ml/gravigo/internal/data"
	"github.com/gravigo-ml/gravigo/internal/decode"
	"github.com/gravigo-ml/gravigo/internal/randseed"
	"github.com/gravigo-ml/gravigo/internal/registry"
)

// Sources registers the data source kinds shipped with the binary.
type Sources struct{}

// Register implements registry.Module.
func (m *Sources) Register(r *registry.Registry) {
	r.Sources.Register("synthetic", newSynthetic)
}

// newSynthetic builds a source with a train and an eval split of the
// synthetic classification dataset. Dataset and shuffle seeds are
// derived from the configured seed, or from defaultSeed when the node
// carries none.
func newSynthetic(node cty.Value, defaultSeed int64) (data.Source, error) {
	cfg := struct {
		NumExamples   int     `conf:"num_examples"`
		NumClasses    int     `conf:"num_classes"`
		FeatureSize   int     `conf:"feature_size"`
		NoiseStd      float64 `conf:"noise_std,optional"`
		Seed          int64   `conf:"seed,optional"`
		BatchSize     int     `conf:"batch_size,optional"`
		EvalBatchSize int     `conf:"eval_batch_size,optional"`
		Shuffle       bool    `conf:"shuffle,optional"`
	}{NoiseStd: 0.2, Seed: defaultSeed, BatchSize: 32, Shuffle: true}
	if err := decode.Decode(node, &cfg); err != nil {
		return nil, fmt.Errorf("synthetic source config: %w", err)
	}
	if cfg.EvalBatchSize == 0 {
		cfg.EvalBatchSize = cfg.BatchSize
	}

	seq := randseed.NewSequence(cfg.Seed)
	trainSeed := seq.Next()
	evalSeed := seq.Next()
	shuffleSeed := seq.Next()

	src := data.NewDatasetSource()
	src.Add(data.TrainID, data.NewCachingCreator(data.CreatorFunc(func(context.Context) (data.Dataset, error) {
		return data.NewSyntheticClassification(cfg.NumExamples, cfg.NumClasses, cfg.FeatureSize, cfg.NoiseStd, trainSeed)
	})), data.LoaderSettings{
		BatchSize: cfg.BatchSize,
		Shuffle:   cfg.Shuffle,
		Seed:      shuffleSeed,
	})
	src.Add(data.EvalID, data.NewCachingCreator(data.CreatorFunc(func(context.Context) (data.Dataset, error) {
		return data.NewSyntheticClassification(cfg.NumExamples, cfg.NumClasses, cfg.FeatureSize, cfg.NoiseStd, evalSeed)
	})), data.LoaderSettings{
		BatchSize: cfg.EvalBatchSize,
	})
	return src, nil
}
