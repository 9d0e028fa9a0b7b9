package commitplan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/aigit/internal/commitmsg"
	"github.com/temirov/aigit/internal/completion"
)

const (
	repositoryMissingMessageConstant      = "commit repository not configured"
	repositoryPathRequiredMessageConstant = "repository path must be provided"
	nothingStagedMessageConstant          = "nothing staged to commit"
	stageAllErrorTemplateConstant         = "failed to stage all changes: %w"
	stagedListErrorTemplateConstant       = "failed to list staged files: %w"
	singleMessageErrorTemplateConstant    = "failed to generate commit message: %w"
	singleCommitErrorTemplateConstant     = "failed to commit staged changes: %w"
	planErrorTemplateConstant             = "failed to plan commits: %w"
	commitStartedLogMessageConstant       = "committing staged changes"
	logFieldRepositoryConstant            = "repository"
	logFieldStagedFilesConstant           = "staged_files"
	logFieldSegmentedConstant             = "segmented"
)

// ErrRepositoryNotConfigured indicates the service or executor was built without a repository.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrRepositoryPathRequired indicates the options named no repository.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrNothingStaged indicates the staging area was empty.
var ErrNothingStaged = errors.New(nothingStagedMessageConstant)

// ServiceRepository is the repository surface the commit service needs.
type ServiceRepository interface {
	Repository
	commitmsg.DiffSource
	StageAll(executionContext context.Context, repositoryPath string) error
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Repository ServiceRepository
	Gateway    completion.Gateway
	Logger     *zap.Logger
}

// Options configure a commit run.
type Options struct {
	RepositoryPath string
	// StageAll stages every working tree change before committing.
	StageAll bool
	// Segment splits the staged changes into several commits through the planner.
	Segment bool
	Diff    commitmsg.DiffOptions
}

// Result captures the commits created by a run.
type Result struct {
	Commits []CreatedCommit
	// Fallback is true when segmentation was requested but a single commit was made instead.
	Fallback bool
}

// Service commits the staged changes with generated messages.
type Service struct {
	repository ServiceRepository
	generator  *commitmsg.Generator
	planner    *Planner
	executor   *Executor
	logger     *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	generator := commitmsg.NewGenerator(dependencies.Gateway, logger)
	planner, plannerError := NewPlanner(dependencies.Gateway, generator, logger)
	if plannerError != nil {
		return nil, plannerError
	}
	executor, executorError := NewExecutor(dependencies.Repository, logger)
	if executorError != nil {
		return nil, executorError
	}

	return &Service{repository: dependencies.Repository, generator: generator, planner: planner, executor: executor, logger: logger}, nil
}

// Commit records the staged changes as one commit, or as one commit per planned group when segmentation is enabled.
func (service *Service) Commit(executionContext context.Context, options Options) (Result, error) {
	repositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(repositoryPath) == 0 {
		return Result{}, ErrRepositoryPathRequired
	}

	if options.StageAll {
		if stageError := service.repository.StageAll(executionContext, repositoryPath); stageError != nil {
			return Result{}, fmt.Errorf(stageAllErrorTemplateConstant, stageError)
		}
	}

	stagedFiles, listError := service.repository.ListStagedFiles(executionContext, repositoryPath)
	if listError != nil {
		return Result{}, fmt.Errorf(stagedListErrorTemplateConstant, listError)
	}
	if len(stagedFiles) == 0 {
		return Result{}, ErrNothingStaged
	}

	diffText, diffError := commitmsg.CollectStagedDiff(executionContext, service.repository, repositoryPath, options.Diff)
	if diffError != nil {
		return Result{}, diffError
	}

	service.logger.Debug(
		commitStartedLogMessageConstant,
		zap.String(logFieldRepositoryConstant, repositoryPath),
		zap.Int(logFieldStagedFilesConstant, len(stagedFiles)),
		zap.Bool(logFieldSegmentedConstant, options.Segment),
	)

	if !options.Segment {
		createdCommit, commitError := service.commitSingle(executionContext, repositoryPath, stagedFiles, diffText)
		if commitError != nil {
			return Result{}, commitError
		}
		return Result{Commits: []CreatedCommit{createdCommit}}, nil
	}

	plan, planError := service.planner.Plan(executionContext, PlanInput{StagedFiles: stagedFiles, Diff: diffText})
	if planError != nil {
		return Result{}, fmt.Errorf(planErrorTemplateConstant, planError)
	}
	createdCommits, executionError := service.executor.Execute(executionContext, repositoryPath, plan)
	if executionError != nil {
		return Result{Commits: createdCommits, Fallback: plan.Fallback}, executionError
	}
	return Result{Commits: createdCommits, Fallback: plan.Fallback}, nil
}

func (service *Service) commitSingle(executionContext context.Context, repositoryPath string, stagedFiles []string, diffText string) (CreatedCommit, error) {
	message, messageError := service.generator.Generate(executionContext, commitmsg.MessageInput{Files: stagedFiles, Diff: diffText})
	if messageError != nil {
		return CreatedCommit{}, fmt.Errorf(singleMessageErrorTemplateConstant, messageError)
	}
	if commitError := service.repository.Commit(executionContext, repositoryPath, message); commitError != nil {
		return CreatedCommit{}, fmt.Errorf(singleCommitErrorTemplateConstant, commitError)
	}
	commitHash, hashError := service.repository.HeadCommitHash(executionContext, repositoryPath)
	if hashError != nil {
		return CreatedCommit{}, fmt.Errorf(singleCommitErrorTemplateConstant, hashError)
	}
	return CreatedCommit{Hash: commitHash, Message: message, Files: stagedFiles}, nil
}
