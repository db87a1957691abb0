// Package registry maps the kind strings that appear in experiment
// configs to the Go factories that build the corresponding components.
//
// Each component category (engine, network, optimizer, ...) has its
// own Set. During application startup the core modules populate the
// registry; building an experiment then looks up one factory per
// configured kind and hands it the raw config node to decode. A kind
// that cannot be resolved fails fast with the registered alternatives
// listed.
package registry
