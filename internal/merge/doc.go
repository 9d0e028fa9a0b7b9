// Package merge drives a git merge through conflict resolution to a merge commit, rolling the repository back to its
// pre-merge state whenever resolution cannot complete.
package merge
