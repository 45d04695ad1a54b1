// Package cli defines the Cobra command tree for the subagent CLI. Each file
// in this package registers one top-level command (init, validate, version,
// config) with the root command. Commands delegate to internal packages for
// business logic and only handle flag parsing, output formatting and exit
// status.
package cli
