package merge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/aigit/internal/shared"
)

const (
	cleanCheckErrorTemplateConstant      = "failed to inspect working tree: %w"
	fetchErrorTemplateConstant           = "failed to fetch before merging: %w"
	mergeErrorTemplateConstant           = "failed to merge %s: %w"
	mergeFailedDetailTemplateConstant    = "%w: %s"
	mergeCheckErrorTemplateConstant      = "failed to detect merge state: %w"
	conflictListingErrorTemplateConstant = "failed to list conflicted files: %w"
	stageResolvedErrorTemplateConstant   = "failed to stage resolved file %s: %w"
	commitMergeErrorTemplateConstant     = "failed to commit merge: %w"
	headHashErrorTemplateConstant        = "failed to read merge commit: %w"
	upstreamErrorTemplateConstant        = "failed to read upstream branch: %w"
	rollbackErrorTemplateConstant        = "%w: %w"
	mergeStartedLogMessageConstant       = "merging"
	conflictsDetectedLogMessageConstant  = "merge stopped on conflicts"
	fileResolvedLogMessageConstant       = "conflicted file resolved"
	abortFailedLogMessageConstant        = "merge abort failed, resetting"
	mergeRolledBackLogMessageConstant    = "merge rolled back"
	logFieldRepositoryConstant           = "repository"
	logFieldReferenceConstant            = "reference"
	logFieldRemoteConstant               = "remote"
	logFieldFilesConstant                = "files"
	logFieldFileConstant                 = "file"
	upstreamRemoteSeparatorConstant      = "/"
)

// Outcome describes how a merge completed.
type Outcome string

// Merge outcomes.
const (
	OutcomeClean    Outcome = "clean"
	OutcomeResolved Outcome = "resolved"
)

// Repository exposes the git operations a merge run needs.
type Repository interface {
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	GetUpstreamBranch(executionContext context.Context, repositoryPath string) (string, error)
	Fetch(executionContext context.Context, repositoryPath string, remoteName string) error
	Merge(executionContext context.Context, repositoryPath string, reference string) (shared.MergeOutcome, error)
	IsMergeInProgress(executionContext context.Context, repositoryPath string) (bool, error)
	ListConflictedFiles(executionContext context.Context, repositoryPath string) ([]string, error)
	AbortMerge(executionContext context.Context, repositoryPath string) error
	ResetMerge(executionContext context.Context, repositoryPath string) error
	StageFiles(executionContext context.Context, repositoryPath string, paths []string) error
	CommitMerge(executionContext context.Context, repositoryPath string) error
	HeadCommitHash(executionContext context.Context, repositoryPath string) (string, error)
}

// FileResolver rewrites one conflicted file with every conflict block resolved, or leaves it untouched on failure.
type FileResolver interface {
	ResolveFile(executionContext context.Context, fileSystem shared.FileSystem, repositoryPath string, relativePath string) error
}

// Dependencies enumerates collaborators required by the service.
type Dependencies struct {
	Repository Repository
	Resolver   FileResolver
	FileSystem shared.FileSystem
	Logger     *zap.Logger
}

// Options configure a merge run.
type Options struct {
	RepositoryPath string
	Reference      string
	// Remote is fetched before merging when not empty.
	Remote string
}

// PullOptions configure a merge of the current branch's upstream.
type PullOptions struct {
	RepositoryPath string
}

// Result captures a successful merge.
type Result struct {
	Reference     string
	Outcome       Outcome
	ResolvedFiles []string
	CommitHash    string
}

// Service merges references and resolves their conflicts.
type Service struct {
	repository Repository
	resolver   FileResolver
	fileSystem shared.FileSystem
	logger     *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if dependencies.Resolver == nil {
		return nil, ErrResolverNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repository: dependencies.Repository, resolver: dependencies.Resolver, fileSystem: dependencies.FileSystem, logger: logger}, nil
}

// Pull merges the upstream of the current branch after fetching its remote.
func (service *Service) Pull(executionContext context.Context, options PullOptions) (Result, error) {
	repositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(repositoryPath) == 0 {
		return Result{}, ErrRepositoryPathRequired
	}
	upstream, upstreamError := service.repository.GetUpstreamBranch(executionContext, repositoryPath)
	if upstreamError != nil {
		return Result{}, fmt.Errorf(upstreamErrorTemplateConstant, upstreamError)
	}
	if len(upstream) == 0 {
		return Result{}, ErrUpstreamMissing
	}
	remoteName, _, _ := strings.Cut(upstream, upstreamRemoteSeparatorConstant)
	return service.Merge(executionContext, Options{RepositoryPath: repositoryPath, Reference: upstream, Remote: remoteName})
}

// Merge merges the reference into the current branch. Conflicts are resolved file by file and committed as one merge
// commit. Any failure after git entered the conflict state rolls the repository back before the error is returned.
func (service *Service) Merge(executionContext context.Context, options Options) (Result, error) {
	repositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(repositoryPath) == 0 {
		return Result{}, ErrRepositoryPathRequired
	}
	if len(strings.TrimSpace(options.Reference)) == 0 {
		return Result{}, ErrReferenceRequired
	}
	referenceName, referenceError := shared.NewReferenceName(options.Reference)
	if referenceError != nil {
		return Result{}, referenceError
	}
	reference := referenceName.String()
	remoteName := strings.TrimSpace(options.Remote)
	if len(remoteName) > 0 {
		validatedRemote, remoteError := shared.NewRemoteName(remoteName)
		if remoteError != nil {
			return Result{}, remoteError
		}
		remoteName = validatedRemote.String()
	}

	tracker := newStateTracker(service.logger)

	clean, cleanError := service.repository.CheckCleanWorktree(executionContext, repositoryPath)
	if cleanError != nil {
		return Result{}, fmt.Errorf(cleanCheckErrorTemplateConstant, cleanError)
	}
	if !clean {
		return Result{}, ErrWorktreeNotClean
	}

	tracker.transition(StateFetching)
	if len(remoteName) > 0 {
		if fetchError := service.repository.Fetch(executionContext, repositoryPath, remoteName); fetchError != nil {
			return Result{}, fmt.Errorf(fetchErrorTemplateConstant, fetchError)
		}
	}

	tracker.transition(StateMerging)
	service.logger.Info(mergeStartedLogMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath), zap.String(logFieldReferenceConstant, reference), zap.String(logFieldRemoteConstant, remoteName))
	mergeOutcome, mergeError := service.repository.Merge(executionContext, repositoryPath, reference)
	if mergeError != nil {
		return Result{}, service.rollback(executionContext, tracker, repositoryPath, fmt.Errorf(mergeErrorTemplateConstant, reference, mergeError))
	}
	if mergeOutcome.Succeeded {
		tracker.transition(StateCleanMerge)
		commitHash, hashError := service.repository.HeadCommitHash(executionContext, repositoryPath)
		if hashError != nil {
			return Result{}, fmt.Errorf(headHashErrorTemplateConstant, hashError)
		}
		return Result{Reference: reference, Outcome: OutcomeClean, CommitHash: commitHash}, nil
	}

	inProgress, checkError := service.repository.IsMergeInProgress(executionContext, repositoryPath)
	if checkError != nil {
		return Result{}, service.rollback(executionContext, tracker, repositoryPath, fmt.Errorf(mergeCheckErrorTemplateConstant, checkError))
	}
	if !inProgress {
		return Result{}, fmt.Errorf(mergeFailedDetailTemplateConstant, ErrMergeFailedBeforeResolution, mergeOutcome.StandardError)
	}

	tracker.transition(StateConflictDetected)
	resolvedFiles, resolutionError := service.resolveConflicts(executionContext, tracker, repositoryPath)
	if resolutionError != nil {
		return Result{}, service.rollback(executionContext, tracker, repositoryPath, resolutionError)
	}

	if commitError := service.repository.CommitMerge(executionContext, repositoryPath); commitError != nil {
		return Result{}, service.rollback(executionContext, tracker, repositoryPath, fmt.Errorf(commitMergeErrorTemplateConstant, commitError))
	}
	tracker.transition(StateCommitted)

	commitHash, hashError := service.repository.HeadCommitHash(executionContext, repositoryPath)
	if hashError != nil {
		return Result{}, fmt.Errorf(headHashErrorTemplateConstant, hashError)
	}
	return Result{Reference: reference, Outcome: OutcomeResolved, ResolvedFiles: resolvedFiles, CommitHash: commitHash}, nil
}

func (service *Service) resolveConflicts(executionContext context.Context, tracker *stateTracker, repositoryPath string) ([]string, error) {
	conflictedFiles, listingError := service.repository.ListConflictedFiles(executionContext, repositoryPath)
	if listingError != nil {
		return nil, fmt.Errorf(conflictListingErrorTemplateConstant, listingError)
	}
	if len(conflictedFiles) == 0 {
		return nil, ErrNoConflictedFiles
	}
	service.logger.Info(conflictsDetectedLogMessageConstant, zap.Strings(logFieldFilesConstant, conflictedFiles))

	tracker.transition(StateResolving)
	resolvedFiles := make([]string, 0, len(conflictedFiles))
	for _, conflictedFile := range conflictedFiles {
		if resolveError := service.resolver.ResolveFile(executionContext, service.fileSystem, repositoryPath, conflictedFile); resolveError != nil {
			return nil, resolveError
		}
		if stageError := service.repository.StageFiles(executionContext, repositoryPath, []string{conflictedFile}); stageError != nil {
			return nil, fmt.Errorf(stageResolvedErrorTemplateConstant, conflictedFile, stageError)
		}
		service.logger.Info(fileResolvedLogMessageConstant, zap.String(logFieldFileConstant, conflictedFile))
		resolvedFiles = append(resolvedFiles, conflictedFile)
	}

	remainingFiles, recheckError := service.repository.ListConflictedFiles(executionContext, repositoryPath)
	if recheckError != nil {
		return nil, fmt.Errorf(conflictListingErrorTemplateConstant, recheckError)
	}
	if len(remainingFiles) > 0 {
		return nil, UnresolvedConflictsError{Paths: remainingFiles}
	}
	return resolvedFiles, nil
}

// rollback restores the pre-merge state with `merge --abort`, falling back to `reset --merge`. The rollback runs even
// when the execution context was canceled.
func (service *Service) rollback(executionContext context.Context, tracker *stateTracker, repositoryPath string, cause error) error {
	rollbackContext := context.WithoutCancel(executionContext)

	abortError := service.repository.AbortMerge(rollbackContext, repositoryPath)
	if abortError != nil {
		service.logger.Warn(abortFailedLogMessageConstant, zap.Error(abortError))
		if resetError := service.repository.ResetMerge(rollbackContext, repositoryPath); resetError != nil {
			return errors.Join(cause, fmt.Errorf(rollbackErrorTemplateConstant, ErrRollbackFailed, errors.Join(abortError, resetError)))
		}
	}

	tracker.transition(StateAborted)
	service.logger.Info(mergeRolledBackLogMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath))
	return cause
}
