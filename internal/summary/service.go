package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/aigit/internal/gitrepo"
	"github.com/temirov/aigit/internal/shared"
)

const (
	repositoryMissingMessageConstant      = "summary repository not configured"
	repositoryPathRequiredMessageConstant = "repository path must be provided"
	statusErrorTemplateConstant           = "failed to read status: %w"
	patchErrorTemplateConstant            = "failed to read working tree changes: %w"
	branchErrorTemplateConstant           = "failed to determine branch to push: %w"
	upstreamErrorTemplateConstant         = "failed to read upstream branch: %w"
	outgoingErrorTemplateConstant         = "failed to list outgoing commits: %w"
	pushErrorTemplateConstant             = "failed to push %s: %w"
	summaryUnavailableLogMessageConstant  = "change summary unavailable"
	pushingLogMessageConstant             = "pushing"
	logFieldBranchConstant                = "branch"
	logFieldRemoteConstant                = "remote"
	logFieldSetUpstreamConstant           = "set_upstream"
)

// ErrRepositoryNotConfigured indicates the service was built without a repository.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrRepositoryPathRequired indicates the options named no repository.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// Repository exposes the git operations the status and push flows need.
type Repository interface {
	StatusSummary(executionContext context.Context, repositoryPath string) (string, error)
	WorkingTreePatch(executionContext context.Context, repositoryPath string) (string, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	GetUpstreamBranch(executionContext context.Context, repositoryPath string) (string, error)
	OutgoingCommits(executionContext context.Context, repositoryPath string, upstream string) (string, error)
	Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string, setUpstream bool) error
}

// Dependencies enumerates collaborators required by the service. A nil Summarizer disables summaries.
type Dependencies struct {
	Repository Repository
	Summarizer *Summarizer
	Logger     *zap.Logger
}

// StatusOptions configure a status report.
type StatusOptions struct {
	RepositoryPath string
	Summarize      bool
}

// StatusResult captures the status report.
type StatusResult struct {
	Status string
	// Summary is empty when nothing changed, summaries are disabled, or the model produced none.
	Summary string
}

// PushOptions configure a push.
type PushOptions struct {
	RepositoryPath string
	// Remote receives branches that have no upstream yet.
	Remote    string
	Summarize bool
}

// PushResult captures a completed push.
type PushResult struct {
	Branch      string
	Upstream    string
	Remote      string
	SetUpstream bool
	Outgoing    string
	Summary     string
}

// Service reports status and pushes with plain-language summaries.
type Service struct {
	repository Repository
	summarizer *Summarizer
	logger     *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repository: dependencies.Repository, summarizer: dependencies.Summarizer, logger: logger}, nil
}

// Status returns the short status and, when anything changed, a summary of the changes.
func (service *Service) Status(executionContext context.Context, options StatusOptions) (StatusResult, error) {
	repositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(repositoryPath) == 0 {
		return StatusResult{}, ErrRepositoryPathRequired
	}

	status, statusError := service.repository.StatusSummary(executionContext, repositoryPath)
	if statusError != nil {
		return StatusResult{}, fmt.Errorf(statusErrorTemplateConstant, statusError)
	}
	result := StatusResult{Status: status}
	if !options.Summarize || service.summarizer == nil || !gitrepo.HasWorkingTreeChanges(status) {
		return result, nil
	}

	patch, patchError := service.repository.WorkingTreePatch(executionContext, repositoryPath)
	if patchError != nil {
		return StatusResult{}, fmt.Errorf(patchErrorTemplateConstant, patchError)
	}
	summaryText, summaryError := service.summarizer.SummarizeWorkingTree(executionContext, status, patch)
	if summaryError != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return StatusResult{}, contextError
		}
		service.logger.Warn(summaryUnavailableLogMessageConstant, zap.Error(summaryError))
		return result, nil
	}
	result.Summary = summaryText
	return result, nil
}

// Push summarizes the commits the upstream lacks and pushes the current branch. A branch without upstream is pushed
// to options.Remote and starts tracking it.
func (service *Service) Push(executionContext context.Context, options PushOptions) (PushResult, error) {
	repositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(repositoryPath) == 0 {
		return PushResult{}, ErrRepositoryPathRequired
	}

	branchName, branchError := service.repository.GetCurrentBranch(executionContext, repositoryPath)
	if branchError != nil {
		return PushResult{}, fmt.Errorf(branchErrorTemplateConstant, branchError)
	}
	upstream, upstreamError := service.repository.GetUpstreamBranch(executionContext, repositoryPath)
	if upstreamError != nil {
		return PushResult{}, fmt.Errorf(upstreamErrorTemplateConstant, upstreamError)
	}

	validatedRemote, remoteError := shared.NewRemoteName(options.Remote)
	if remoteError != nil {
		return PushResult{}, remoteError
	}
	remoteName := validatedRemote.String()
	result := PushResult{Branch: branchName, Upstream: upstream, Remote: remoteName, SetUpstream: len(upstream) == 0}

	if !result.SetUpstream {
		outgoing, outgoingError := service.repository.OutgoingCommits(executionContext, repositoryPath, upstream)
		if outgoingError != nil {
			return PushResult{}, fmt.Errorf(outgoingErrorTemplateConstant, outgoingError)
		}
		result.Outgoing = outgoing
		if options.Summarize && service.summarizer != nil && len(strings.TrimSpace(outgoing)) > 0 {
			summaryText, summaryError := service.summarizer.SummarizeOutgoing(executionContext, outgoing)
			if summaryError != nil {
				if contextError := executionContext.Err(); contextError != nil {
					return PushResult{}, contextError
				}
				service.logger.Warn(summaryUnavailableLogMessageConstant, zap.Error(summaryError))
			}
			result.Summary = summaryText
		}
	}

	service.logger.Info(pushingLogMessageConstant, zap.String(logFieldBranchConstant, branchName), zap.String(logFieldRemoteConstant, remoteName), zap.Bool(logFieldSetUpstreamConstant, result.SetUpstream))
	if pushError := service.repository.Push(executionContext, repositoryPath, remoteName, branchName, result.SetUpstream); pushError != nil {
		return result, fmt.Errorf(pushErrorTemplateConstant, branchName, pushError)
	}
	return result, nil
}
