// Package randseed derives per-component seeds from a single run
// seed so that every random consumer (weight init, dataset
// generation, shuffling) is reproducible without sharing one
// generator.
package randseed

import "math/rand"

// Derive returns a 64-bit seed pseudo-randomly derived from base.
// Equal bases yield equal results.
func Derive(base int64) int64 {
	return int64(rand.New(rand.NewSource(base)).Uint64())
}

// Sequence hands out a deterministic stream of seeds rooted at a base
// seed, one per component.
type Sequence struct {
	rng *rand.Rand
}

// NewSequence creates a seed stream rooted at base.
func NewSequence(base int64) *Sequence {
	return &Sequence{rng: rand.New(rand.NewSource(base))}
}

// Next returns the next seed in the stream.
func (s *Sequence) Next() int64 {
	return int64(s.rng.Uint64())
}
