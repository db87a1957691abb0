// Package engine drives an experiment run. The engine owns the model,
// optimizer, scheduler and data source, counts epochs and iterations,
// fires lifecycle events, and records metric histories forwarded to
// the experiment tracker. Training and evaluation epochs are delegated
// to the loops package.
package engine
