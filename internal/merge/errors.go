package merge

import (
	"errors"
	"fmt"
	"strings"
)

const (
	worktreeNotCleanMessageConstant       = "working tree has uncommitted changes"
	mergeFailedBeforeResolutionConstant   = "merge failed before conflict resolution"
	noConflictedFilesMessageConstant      = "merge failed, but no conflicted files were detected"
	upstreamMissingMessageConstant        = "current branch has no upstream branch"
	rollbackFailedMessageConstant         = "failed to restore the pre-merge state"
	repositoryMissingMessageConstant      = "merge repository not configured"
	resolverMissingMessageConstant        = "merge conflict resolver not configured"
	referenceRequiredMessageConstant      = "merge reference must be provided"
	repositoryPathRequiredMessageConstant = "repository path must be provided"
	unresolvedConflictsTemplateConstant   = "AI left unresolved conflicts in: %s"
	unresolvedConflictsSeparatorConstant  = ", "
)

// ErrWorktreeNotClean indicates uncommitted changes were present before the merge started.
var ErrWorktreeNotClean = errors.New(worktreeNotCleanMessageConstant)

// ErrMergeFailedBeforeResolution indicates git failed to merge without entering a conflict state.
var ErrMergeFailedBeforeResolution = errors.New(mergeFailedBeforeResolutionConstant)

// ErrNoConflictedFiles indicates a conflicting merge that reported no unmerged paths.
var ErrNoConflictedFiles = errors.New(noConflictedFilesMessageConstant)

// ErrUpstreamMissing indicates the current branch tracks no remote branch to pull from.
var ErrUpstreamMissing = errors.New(upstreamMissingMessageConstant)

// ErrRollbackFailed indicates that neither aborting nor resetting the merge succeeded.
var ErrRollbackFailed = errors.New(rollbackFailedMessageConstant)

// ErrRepositoryNotConfigured indicates the service was built without a repository.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrResolverNotConfigured indicates the service was built without a conflict resolver.
var ErrResolverNotConfigured = errors.New(resolverMissingMessageConstant)

// ErrReferenceRequired indicates the options named nothing to merge.
var ErrReferenceRequired = errors.New(referenceRequiredMessageConstant)

// ErrRepositoryPathRequired indicates the options named no repository.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// UnresolvedConflictsError lists the paths still unmerged after every conflicted file was resolved and staged.
type UnresolvedConflictsError struct {
	Paths []string
}

// Error lists the unresolved paths.
func (conflictsError UnresolvedConflictsError) Error() string {
	return fmt.Sprintf(unresolvedConflictsTemplateConstant, strings.Join(conflictsError.Paths, unresolvedConflictsSeparatorConstant))
}
