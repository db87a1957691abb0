// Package loops implements the inner training and evaluation loops
// the engine drives once per epoch. Loops stream batches from the
// engine's data source, fire the per-iteration events and log their
// epoch metrics through the engine.
package loops
