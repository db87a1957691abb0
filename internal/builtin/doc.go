// Package builtin registers the component factories shipped with the
// binary: engines, networks, criterions, metrics, optimizers, LR
// schedulers, data sources and trackers. Lifecycle handlers live in
// their own packages under handlers/.
package builtin
