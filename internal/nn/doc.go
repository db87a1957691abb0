// Package nn contains the small neural-network building blocks the
// training engine drives: feed-forward networks with explicit
// backward passes, loss criterions, and the Model that couples the
// two.
//
// Networks operate on single examples ([]float64 in, []float64 out);
// batching, gradient averaging and optimizer stepping are the training
// loop's concern. All initialization is deterministic given a seeded
// random source.
package nn
