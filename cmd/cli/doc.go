// Package cli constructs the aigit command-line interface, wiring the Cobra
// command hierarchy, the layered configuration loader, and the structured
// loggers shared by every subcommand.
package cli
