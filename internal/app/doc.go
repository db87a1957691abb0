// Package app contains the core application logic. It composes the
// experiment configuration, builds the configured components through
// the registry, and drives a run, decoupled from any specific
// entrypoint like a CLI.
package app
