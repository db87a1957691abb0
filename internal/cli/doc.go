// Package cli defines the gravigo subcommands, validates user input,
// and handles process-level concerns like exit codes. It translates
// CLI flags and override arguments into the application's internal
// configuration.
package cli
