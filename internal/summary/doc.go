// Package summary describes working tree changes and outgoing commits in plain language, and backs the status and
// push commands.
package summary
