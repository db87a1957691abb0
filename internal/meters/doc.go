// Package meters provides streaming aggregates for per-batch values:
// plain averages, bounded moving averages, exponential moving averages
// and a min/max tracking scalar meter. Meters are cheap to reset and
// are recycled across epochs by the loops.
package meters
