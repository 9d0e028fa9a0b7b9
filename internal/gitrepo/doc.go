// Package gitrepo contains the git operations behind the merge, commit, and
// summary workflows.
//
// RepositoryManager drives the git executable for every mutation and for
// porcelain queries, while Inspector reads repository metadata in process
// through go-git.
package gitrepo
