// Package shared defines the collaborator interfaces and validated value types
// used across the merge, commit, and summary workflows.
package shared
