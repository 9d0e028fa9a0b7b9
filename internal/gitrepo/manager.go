package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/aigit/internal/execshell"
	"github.com/temirov/aigit/internal/shared"
)

const (
	gitExecutorMissingMessageConstant     = "git executor not configured"
	repositoryPathRequiredMessageConstant = "repository path must be provided"
	gitStatusSubcommandConstant           = "status"
	gitPorcelainFlagConstant              = "--porcelain"
	gitUntrackedFilesNoFlagConstant       = "--untracked-files=no"
	gitShortFlagConstant                  = "--short"
	gitBranchFlagConstant                 = "--branch"
	gitRevParseSubcommandConstant         = "rev-parse"
	gitAbbrevRefFlagConstant              = "--abbrev-ref"
	gitSymbolicFullNameFlagConstant       = "--symbolic-full-name"
	gitQuietFlagConstant                  = "-q"
	gitVerifyFlagConstant                 = "--verify"
	gitHeadReferenceConstant              = "HEAD"
	gitMergeHeadReferenceConstant         = "MERGE_HEAD"
	gitUpstreamReferenceConstant          = "@{u}"
	gitFetchSubcommandConstant            = "fetch"
	gitPruneFlagConstant                  = "--prune"
	gitMergeSubcommandConstant            = "merge"
	gitNoEditFlagConstant                 = "--no-edit"
	gitAbortFlagConstant                  = "--abort"
	gitResetSubcommandConstant            = "reset"
	gitMergeFlagConstant                  = "--merge"
	gitDiffSubcommandConstant             = "diff"
	gitNameOnlyFlagConstant               = "--name-only"
	gitUnmergedFilterFlagConstant         = "--diff-filter=U"
	gitNullTerminatedFlagConstant         = "-z"
	gitCachedFlagConstant                 = "--cached"
	gitNoRenamesFlagConstant              = "--no-renames"
	gitNoColorFlagConstant                = "--no-color"
	gitNoExternalDiffFlagConstant         = "--no-ext-diff"
	gitStatFlagConstant                   = "--stat"
	gitAddSubcommandConstant              = "add"
	gitAllFlagConstant                    = "-A"
	gitPathspecSeparatorConstant          = "--"
	gitRemoveSubcommandConstant           = "rm"
	gitRecursiveFlagConstant              = "-r"
	gitIgnoreUnmatchFlagConstant          = "--ignore-unmatch"
	gitCurrentDirectoryPathspecConstant   = "."
	gitCommitSubcommandConstant           = "commit"
	gitMessageFlagConstant                = "-m"
	gitLogSubcommandConstant              = "log"
	gitOnelineFormatFlagConstant          = "--format=%h %s"
	gitRevisionRangeTemplateConstant      = "%s..%s"
	gitPushSubcommandConstant             = "push"
	gitSetUpstreamFlagConstant            = "-u"
	nullSeparatorConstant                 = "\x00"
	cleanCheckErrorTemplateConstant       = "failed to check worktree status: %w"
	currentBranchErrorTemplateConstant    = "failed to resolve current branch: %w"
	upstreamErrorTemplateConstant         = "failed to resolve upstream branch: %w"
	headHashErrorTemplateConstant         = "failed to resolve HEAD commit: %w"
	headCheckErrorTemplateConstant        = "failed to check HEAD commit: %w"
	fetchErrorTemplateConstant            = "failed to fetch from %s: %w"
	mergeErrorTemplateConstant            = "failed to run merge of %s: %w"
	mergeCheckErrorTemplateConstant       = "failed to check merge state: %w"
	conflictListingErrorTemplateConstant  = "failed to list conflicted files: %w"
	abortMergeErrorTemplateConstant       = "failed to abort merge: %w"
	resetMergeErrorTemplateConstant       = "failed to reset merge state: %w"
	stageErrorTemplateConstant            = "failed to stage changes: %w"
	unstageErrorTemplateConstant          = "failed to unstage changes: %w"
	stagedListingErrorTemplateConstant    = "failed to list staged files: %w"
	stagedDiffErrorTemplateConstant       = "failed to read staged diff: %w"
	workingTreeDiffErrorTemplateConstant  = "failed to read working tree diff: %w"
	statusSummaryErrorTemplateConstant    = "failed to read working tree status: %w"
	commitErrorTemplateConstant           = "failed to create commit: %w"
	mergeCommitErrorTemplateConstant      = "failed to create merge commit: %w"
	outgoingLogErrorTemplateConstant      = "failed to list outgoing commits: %w"
	pushErrorTemplateConstant             = "failed to push: %w"
	detachedHeadBranchNameConstant        = "HEAD"
	detachedHeadMessageConstant           = "repository is in detached HEAD state"
	emptyStandardOutputValueConstant      = ""
	outgoingStatSeparatorConstant         = "\n"
	statusLineHeaderPrefixConstant        = "##"
)

// ErrGitExecutorNotConfigured indicates the repository manager was constructed without a git executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRepositoryPathRequired indicates an operation received an empty repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrDetachedHead indicates an operation needs a branch but HEAD is detached.
var ErrDetachedHead = errors.New(detachedHeadMessageConstant)

// RepositoryManager runs the git plumbing behind the merge, commit, and summary workflows.
type RepositoryManager struct {
	executor shared.GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager around the provided executor.
func NewRepositoryManager(executor shared.GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// CheckCleanWorktree reports whether tracked files have no staged or unstaged modifications.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	output, statusError := manager.run(executionContext, repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant, gitUntrackedFilesNoFlagConstant)
	if statusError != nil {
		return false, fmt.Errorf(cleanCheckErrorTemplateConstant, statusError)
	}
	return len(strings.TrimSpace(output)) == 0, nil
}

// GetCurrentBranch returns the checked out branch name or ErrDetachedHead.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	output, branchError := manager.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant)
	if branchError != nil {
		return "", fmt.Errorf(currentBranchErrorTemplateConstant, branchError)
	}
	branchName := strings.TrimSpace(output)
	if branchName == detachedHeadBranchNameConstant {
		return "", ErrDetachedHead
	}
	return branchName, nil
}

// GetUpstreamBranch returns the remote-tracking branch of the current branch, or an empty string when none is configured.
func (manager *RepositoryManager) GetUpstreamBranch(executionContext context.Context, repositoryPath string) (string, error) {
	output, upstreamError := manager.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitSymbolicFullNameFlagConstant, gitUpstreamReferenceConstant)
	if upstreamError != nil {
		if isCommandFailure(upstreamError) {
			return "", nil
		}
		return "", fmt.Errorf(upstreamErrorTemplateConstant, upstreamError)
	}
	return strings.TrimSpace(output), nil
}

// HeadCommitHash returns the full hash of HEAD.
func (manager *RepositoryManager) HeadCommitHash(executionContext context.Context, repositoryPath string) (string, error) {
	output, hashError := manager.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitHeadReferenceConstant)
	if hashError != nil {
		return "", fmt.Errorf(headHashErrorTemplateConstant, hashError)
	}
	return strings.TrimSpace(output), nil
}

// HasHeadCommit reports whether the repository has at least one commit.
func (manager *RepositoryManager) HasHeadCommit(executionContext context.Context, repositoryPath string) (bool, error) {
	exists, checkError := manager.verifyReference(executionContext, repositoryPath, gitHeadReferenceConstant)
	if checkError != nil {
		return false, fmt.Errorf(headCheckErrorTemplateConstant, checkError)
	}
	return exists, nil
}

// Fetch updates remote-tracking references from the named remote.
func (manager *RepositoryManager) Fetch(executionContext context.Context, repositoryPath string, remoteName string) error {
	if _, fetchError := manager.run(executionContext, repositoryPath, gitFetchSubcommandConstant, gitPruneFlagConstant, remoteName); fetchError != nil {
		return fmt.Errorf(fetchErrorTemplateConstant, remoteName, fetchError)
	}
	return nil
}

// Merge merges the reference into the current branch. A non-zero exit is reported through MergeOutcome rather than as
// an error because git uses it for conflicts.
func (manager *RepositoryManager) Merge(executionContext context.Context, repositoryPath string, reference string) (shared.MergeOutcome, error) {
	_, mergeError := manager.run(executionContext, repositoryPath, gitMergeSubcommandConstant, gitNoEditFlagConstant, reference)
	if mergeError == nil {
		return shared.MergeOutcome{Succeeded: true}, nil
	}
	var failedError execshell.CommandFailedError
	if errors.As(mergeError, &failedError) {
		return shared.MergeOutcome{Succeeded: false, StandardError: strings.TrimSpace(failedError.Result.StandardError)}, nil
	}
	return shared.MergeOutcome{}, fmt.Errorf(mergeErrorTemplateConstant, reference, mergeError)
}

// IsMergeInProgress reports whether MERGE_HEAD exists.
func (manager *RepositoryManager) IsMergeInProgress(executionContext context.Context, repositoryPath string) (bool, error) {
	inProgress, checkError := manager.verifyReference(executionContext, repositoryPath, gitMergeHeadReferenceConstant)
	if checkError != nil {
		return false, fmt.Errorf(mergeCheckErrorTemplateConstant, checkError)
	}
	return inProgress, nil
}

// ListConflictedFiles returns unmerged paths in git's path order.
func (manager *RepositoryManager) ListConflictedFiles(executionContext context.Context, repositoryPath string) ([]string, error) {
	output, listingError := manager.run(executionContext, repositoryPath, gitDiffSubcommandConstant, gitNameOnlyFlagConstant, gitUnmergedFilterFlagConstant, gitNullTerminatedFlagConstant)
	if listingError != nil {
		return nil, fmt.Errorf(conflictListingErrorTemplateConstant, listingError)
	}
	return splitNullTerminated(output), nil
}

// AbortMerge runs `git merge --abort`.
func (manager *RepositoryManager) AbortMerge(executionContext context.Context, repositoryPath string) error {
	if _, abortError := manager.run(executionContext, repositoryPath, gitMergeSubcommandConstant, gitAbortFlagConstant); abortError != nil {
		return fmt.Errorf(abortMergeErrorTemplateConstant, abortError)
	}
	return nil
}

// ResetMerge runs `git reset --merge`.
func (manager *RepositoryManager) ResetMerge(executionContext context.Context, repositoryPath string) error {
	if _, resetError := manager.run(executionContext, repositoryPath, gitResetSubcommandConstant, gitMergeFlagConstant); resetError != nil {
		return fmt.Errorf(resetMergeErrorTemplateConstant, resetError)
	}
	return nil
}

// StageFiles stages additions, modifications, and deletions of exactly the given paths.
func (manager *RepositoryManager) StageFiles(executionContext context.Context, repositoryPath string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	arguments := append([]string{gitAddSubcommandConstant, gitAllFlagConstant, gitPathspecSeparatorConstant}, paths...)
	if _, stageError := manager.run(executionContext, repositoryPath, arguments...); stageError != nil {
		return fmt.Errorf(stageErrorTemplateConstant, stageError)
	}
	return nil
}

// StageAll stages every change in the working tree.
func (manager *RepositoryManager) StageAll(executionContext context.Context, repositoryPath string) error {
	if _, stageError := manager.run(executionContext, repositoryPath, gitAddSubcommandConstant, gitAllFlagConstant); stageError != nil {
		return fmt.Errorf(stageErrorTemplateConstant, stageError)
	}
	return nil
}

// UnstageAll empties the staging area without touching the working tree. Repositories without commits have no HEAD
// to reset to, so the index entries are removed instead.
func (manager *RepositoryManager) UnstageAll(executionContext context.Context, repositoryPath string) error {
	hasHead, checkError := manager.HasHeadCommit(executionContext, repositoryPath)
	if checkError != nil {
		return fmt.Errorf(unstageErrorTemplateConstant, checkError)
	}

	arguments := []string{gitResetSubcommandConstant, gitQuietFlagConstant}
	if !hasHead {
		arguments = []string{gitRemoveSubcommandConstant, gitRecursiveFlagConstant, gitCachedFlagConstant, gitQuietFlagConstant, gitIgnoreUnmatchFlagConstant, gitCurrentDirectoryPathspecConstant}
	}
	if _, unstageError := manager.run(executionContext, repositoryPath, arguments...); unstageError != nil {
		return fmt.Errorf(unstageErrorTemplateConstant, unstageError)
	}
	return nil
}

// ListStagedFiles returns the staged paths in git's path order. Renames are reported as a deletion and an addition so
// that every path can be staged on its own.
func (manager *RepositoryManager) ListStagedFiles(executionContext context.Context, repositoryPath string) ([]string, error) {
	output, listingError := manager.run(executionContext, repositoryPath, gitDiffSubcommandConstant, gitCachedFlagConstant, gitNameOnlyFlagConstant, gitNoRenamesFlagConstant, gitNullTerminatedFlagConstant)
	if listingError != nil {
		return nil, fmt.Errorf(stagedListingErrorTemplateConstant, listingError)
	}
	return splitNullTerminated(output), nil
}

// StagedDiffStat returns the `--stat` summary of the staged changes.
func (manager *RepositoryManager) StagedDiffStat(executionContext context.Context, repositoryPath string) (string, error) {
	output, diffError := manager.run(executionContext, repositoryPath, gitDiffSubcommandConstant, gitCachedFlagConstant, gitNoColorFlagConstant, gitStatFlagConstant)
	if diffError != nil {
		return "", fmt.Errorf(stagedDiffErrorTemplateConstant, diffError)
	}
	return output, nil
}

// StagedPatch returns the full patch of the staged changes.
func (manager *RepositoryManager) StagedPatch(executionContext context.Context, repositoryPath string) (string, error) {
	output, diffError := manager.run(executionContext, repositoryPath, gitDiffSubcommandConstant, gitCachedFlagConstant, gitNoColorFlagConstant, gitNoExternalDiffFlagConstant, gitNoRenamesFlagConstant)
	if diffError != nil {
		return "", fmt.Errorf(stagedDiffErrorTemplateConstant, diffError)
	}
	return output, nil
}

// WorkingTreePatch returns the patch of every tracked change relative to HEAD, staged or not.
func (manager *RepositoryManager) WorkingTreePatch(executionContext context.Context, repositoryPath string) (string, error) {
	hasHead, checkError := manager.HasHeadCommit(executionContext, repositoryPath)
	if checkError != nil {
		return "", fmt.Errorf(workingTreeDiffErrorTemplateConstant, checkError)
	}
	arguments := []string{gitDiffSubcommandConstant, gitNoColorFlagConstant, gitNoExternalDiffFlagConstant}
	if hasHead {
		arguments = append(arguments, gitHeadReferenceConstant)
	} else {
		arguments = append(arguments, gitCachedFlagConstant)
	}
	output, diffError := manager.run(executionContext, repositoryPath, arguments...)
	if diffError != nil {
		return "", fmt.Errorf(workingTreeDiffErrorTemplateConstant, diffError)
	}
	return output, nil
}

// StatusSummary returns `git status --short --branch` output, including untracked files.
func (manager *RepositoryManager) StatusSummary(executionContext context.Context, repositoryPath string) (string, error) {
	output, statusError := manager.run(executionContext, repositoryPath, gitStatusSubcommandConstant, gitShortFlagConstant, gitBranchFlagConstant)
	if statusError != nil {
		return "", fmt.Errorf(statusSummaryErrorTemplateConstant, statusError)
	}
	return output, nil
}

// HasWorkingTreeChanges reports whether StatusSummary output lists any path besides the branch header.
func HasWorkingTreeChanges(statusSummary string) bool {
	for _, line := range strings.Split(statusSummary, outgoingStatSeparatorConstant) {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, statusLineHeaderPrefixConstant) {
			continue
		}
		return true
	}
	return false
}

// Commit records the staged changes with the given message.
func (manager *RepositoryManager) Commit(executionContext context.Context, repositoryPath string, message string) error {
	if _, commitError := manager.run(executionContext, repositoryPath, gitCommitSubcommandConstant, gitMessageFlagConstant, message); commitError != nil {
		return fmt.Errorf(commitErrorTemplateConstant, commitError)
	}
	return nil
}

// CommitMerge concludes an in-progress merge with git's prepared message.
func (manager *RepositoryManager) CommitMerge(executionContext context.Context, repositoryPath string) error {
	if _, commitError := manager.run(executionContext, repositoryPath, gitCommitSubcommandConstant, gitNoEditFlagConstant); commitError != nil {
		return fmt.Errorf(mergeCommitErrorTemplateConstant, commitError)
	}
	return nil
}

// OutgoingCommits returns one `<short hash> <subject>` line per commit reachable from HEAD but not from upstream,
// followed by the combined diff stat.
func (manager *RepositoryManager) OutgoingCommits(executionContext context.Context, repositoryPath string, upstream string) (string, error) {
	revisionRange := fmt.Sprintf(gitRevisionRangeTemplateConstant, upstream, gitHeadReferenceConstant)
	logOutput, logError := manager.run(executionContext, repositoryPath, gitLogSubcommandConstant, gitNoColorFlagConstant, gitOnelineFormatFlagConstant, revisionRange)
	if logError != nil {
		return "", fmt.Errorf(outgoingLogErrorTemplateConstant, logError)
	}
	if len(strings.TrimSpace(logOutput)) == 0 {
		return emptyStandardOutputValueConstant, nil
	}
	statOutput, statError := manager.run(executionContext, repositoryPath, gitDiffSubcommandConstant, gitNoColorFlagConstant, gitStatFlagConstant, revisionRange)
	if statError != nil {
		return "", fmt.Errorf(outgoingLogErrorTemplateConstant, statError)
	}
	return strings.TrimRight(logOutput, outgoingStatSeparatorConstant) + outgoingStatSeparatorConstant + outgoingStatSeparatorConstant + statOutput, nil
}

// Push pushes the current branch. When setUpstream is true the branch is published to the remote and tracked.
func (manager *RepositoryManager) Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string, setUpstream bool) error {
	arguments := []string{gitPushSubcommandConstant}
	if setUpstream {
		arguments = append(arguments, gitSetUpstreamFlagConstant, remoteName, branchName)
	}
	if _, pushError := manager.run(executionContext, repositoryPath, arguments...); pushError != nil {
		return fmt.Errorf(pushErrorTemplateConstant, pushError)
	}
	return nil
}

func (manager *RepositoryManager) verifyReference(executionContext context.Context, repositoryPath string, reference string) (bool, error) {
	_, verifyError := manager.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitQuietFlagConstant, gitVerifyFlagConstant, reference)
	if verifyError == nil {
		return true, nil
	}
	if isCommandFailure(verifyError) {
		return false, nil
	}
	return false, verifyError
}

func (manager *RepositoryManager) run(executionContext context.Context, repositoryPath string, arguments ...string) (string, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return "", ErrRepositoryPathRequired
	}
	result, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: trimmedRepositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	return result.StandardOutput, nil
}

func isCommandFailure(executionError error) bool {
	var failedError execshell.CommandFailedError
	return errors.As(executionError, &failedError)
}

func splitNullTerminated(output string) []string {
	paths := make([]string, 0)
	for _, path := range strings.Split(output, nullSeparatorConstant) {
		trimmedPath := strings.TrimRight(path, "\r\n")
		if len(strings.TrimSpace(trimmedPath)) == 0 {
			continue
		}
		paths = append(paths, trimmedPath)
	}
	return paths
}
