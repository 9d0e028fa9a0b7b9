package shared

import (
	"context"
	"io/fs"

	"github.com/temirov/aigit/internal/execshell"
)

const (
	// OriginRemoteNameConstant identifies the default remote fetched from and pushed to.
	OriginRemoteNameConstant = "origin"
)

// GitExecutor exposes the subset of shell execution used by repository services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// FileSystem exposes the file operations needed to rewrite conflicted files in place.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}

// MergeOutcome captures the result of a `git merge` invocation that may legitimately stop on conflicts.
type MergeOutcome struct {
	Succeeded     bool
	StandardError string
}

// GitRepositoryManager exposes the repository-level git operations shared by the merge and commit workflows.
type GitRepositoryManager interface {
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	GetUpstreamBranch(executionContext context.Context, repositoryPath string) (string, error)
	HeadCommitHash(executionContext context.Context, repositoryPath string) (string, error)
}
