// Package data provides datasets, lazy dataset creators, batching
// loaders and the data sources that hand loaders to the training
// engine. Loaders stream batches over a channel from a producer
// goroutine and stop early when the context is cancelled.
package data
