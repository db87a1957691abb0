package data

import (
	"fmt"
	"math/rand"
)

// Batch is a group of examples presented to the model together.
type Batch struct {
	Features [][]float64
	Targets  [][]float64
}

// Size returns the number of examples in the batch.
func (b Batch) Size() int { return len(b.Features) }

// Dataset is an indexed collection of examples. The slices returned by
// At are owned by the dataset and must not be mutated.
type Dataset interface {
	Len() int
	At(i int) (features, target []float64)
}

// SyntheticClassification is an in-memory classification dataset.
// Each example picks a class, places its features on that class's
// one-hot hypercube vertex and perturbs every component with Gaussian
// noise. Targets are one-hot over the classes. Generation is
// deterministic for a given seed.
type SyntheticClassification struct {
	features [][]float64
	targets  [][]float64

	numClasses  int
	featureSize int
}

// NewSyntheticClassification generates numExamples examples with the
// given shape. featureSize must be at least numClasses so every class
// has its own vertex.
func NewSyntheticClassification(numExamples, numClasses, featureSize int, noiseStd float64, seed int64) (*SyntheticClassification, error) {
	if numExamples < 1 {
		return nil, fmt.Errorf("synthetic dataset needs at least one example, got %d", numExamples)
	}
	if numClasses < 1 {
		return nil, fmt.Errorf("synthetic dataset needs at least one class, got %d", numClasses)
	}
	if featureSize < numClasses {
		return nil, fmt.Errorf("synthetic dataset feature size must be at least the number of classes, got %d < %d", featureSize, numClasses)
	}
	if noiseStd < 0 {
		return nil, fmt.Errorf("synthetic dataset noise std must not be negative, got %g", noiseStd)
	}

	rng := rand.New(rand.NewSource(seed))
	d := &SyntheticClassification{
		features:    make([][]float64, numExamples),
		targets:     make([][]float64, numExamples),
		numClasses:  numClasses,
		featureSize: featureSize,
	}
	for i := 0; i < numExamples; i++ {
		class := rng.Intn(numClasses)
		features := make([]float64, featureSize)
		features[class] = 1
		for j := range features {
			features[j] += rng.NormFloat64() * noiseStd
		}
		target := make([]float64, numClasses)
		target[class] = 1
		d.features[i] = features
		d.targets[i] = target
	}
	return d, nil
}

// Len returns the number of examples.
func (d *SyntheticClassification) Len() int { return len(d.features) }

// At returns the i-th example.
func (d *SyntheticClassification) At(i int) (features, target []float64) {
	return d.features[i], d.targets[i]
}

// NumClasses returns the target vector length.
func (d *SyntheticClassification) NumClasses() int { return d.numClasses }

// FeatureSize returns the feature vector length.
func (d *SyntheticClassification) FeatureSize() int { return d.featureSize }
