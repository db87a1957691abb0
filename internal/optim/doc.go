// Package optim holds the learnable-parameter model and the
// optimizers and learning-rate schedulers that drive it.
//
// A Parameter couples a flat value vector with its gradient
// accumulator; networks expose their parameters and the training loop
// hands them to an optimizer. Schedulers adjust the optimizer's
// learning rate between epochs.
package optim
