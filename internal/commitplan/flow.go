package commitplan

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	planProducedNoCommitsMessageConstant = "AI commit plan did not produce committable changes"
	groupStepErrorTemplateConstant       = "commit group %d of %d (%q): %w"
	restageErrorTemplateConstant         = "failed to restore staged files: %w"
	groupSkippedLogMessageConstant       = "commit group staged nothing, skipping"
	groupCommittedLogMessageConstant     = "commit group committed"
	logFieldGroupOrdinalConstant         = "group"
	logFieldCommitHashConstant           = "commit"
	logFieldFilesConstant                = "files"
)

// ErrPlanProducedNoCommits indicates that no group of a plan resulted in a commit.
var ErrPlanProducedNoCommits = errors.New(planProducedNoCommitsMessageConstant)

// Repository exposes the staging and commit operations a plan is executed with.
type Repository interface {
	UnstageAll(executionContext context.Context, repositoryPath string) error
	StageFiles(executionContext context.Context, repositoryPath string, paths []string) error
	ListStagedFiles(executionContext context.Context, repositoryPath string) ([]string, error)
	Commit(executionContext context.Context, repositoryPath string, message string) error
	HeadCommitHash(executionContext context.Context, repositoryPath string) (string, error)
}

// CreatedCommit records one commit produced from a plan group.
type CreatedCommit struct {
	Hash    string
	Message string
	Files   []string
}

// Executor commits plan groups one after another.
type Executor struct {
	repository Repository
	logger     *zap.Logger
}

// NewExecutor constructs an Executor.
func NewExecutor(repository Repository, logger *zap.Logger) (*Executor, error) {
	if repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{repository: repository, logger: logger}, nil
}

// Execute commits each group in plan order: the index is emptied, exactly the group's files are staged, and a commit
// is created when anything was staged. When no group commits, the plan's files are staged again and
// ErrPlanProducedNoCommits is returned. When a group fails, the files of that group and of every later group are
// staged again before the error is returned.
func (executor *Executor) Execute(executionContext context.Context, repositoryPath string, plan Plan) ([]CreatedCommit, error) {
	createdCommits := make([]CreatedCommit, 0, len(plan.Groups))
	for groupIndex, group := range plan.Groups {
		wrapStepError := func(stepError error) error {
			groupError := fmt.Errorf(groupStepErrorTemplateConstant, groupIndex+1, len(plan.Groups), group.Message, stepError)
			return executor.restage(executionContext, repositoryPath, Plan{Groups: plan.Groups[groupIndex:]}, groupError)
		}

		if unstageError := executor.repository.UnstageAll(executionContext, repositoryPath); unstageError != nil {
			return createdCommits, wrapStepError(unstageError)
		}
		if stageError := executor.repository.StageFiles(executionContext, repositoryPath, group.Files); stageError != nil {
			return createdCommits, wrapStepError(stageError)
		}
		stagedFiles, listError := executor.repository.ListStagedFiles(executionContext, repositoryPath)
		if listError != nil {
			return createdCommits, wrapStepError(listError)
		}
		if len(stagedFiles) == 0 {
			executor.logger.Info(groupSkippedLogMessageConstant, zap.Int(logFieldGroupOrdinalConstant, groupIndex+1), zap.Strings(logFieldFilesConstant, group.Files))
			continue
		}

		if commitError := executor.repository.Commit(executionContext, repositoryPath, group.Message); commitError != nil {
			return createdCommits, wrapStepError(commitError)
		}
		commitHash, hashError := executor.repository.HeadCommitHash(executionContext, repositoryPath)
		if hashError != nil {
			return createdCommits, wrapStepError(hashError)
		}

		executor.logger.Debug(groupCommittedLogMessageConstant, zap.Int(logFieldGroupOrdinalConstant, groupIndex+1), zap.String(logFieldCommitHashConstant, commitHash))
		createdCommits = append(createdCommits, CreatedCommit{Hash: commitHash, Message: group.Message, Files: stagedFiles})
	}

	if len(createdCommits) == 0 {
		return nil, executor.restage(executionContext, repositoryPath, plan, ErrPlanProducedNoCommits)
	}
	return createdCommits, nil
}

// restage stages the files of the given plan again and returns cause, joined with the staging failure if any.
func (executor *Executor) restage(executionContext context.Context, repositoryPath string, remaining Plan, cause error) error {
	restageContext := context.WithoutCancel(executionContext)
	if restageError := executor.repository.StageFiles(restageContext, repositoryPath, remaining.Files()); restageError != nil {
		return errors.Join(cause, fmt.Errorf(restageErrorTemplateConstant, restageError))
	}
	return cause
}
