// Package metrics provides evaluation metrics accumulated over a
// stream of prediction/target pairs. Metrics reset at epoch
// boundaries and report a single scalar value.
package metrics
