package gitrepo

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const (
	notRepositoryMessageConstant          = "not inside a git repository"
	bareRepositoryMessageConstant         = "bare repositories have no working tree"
	repositoryDiscoveryErrorTemplateConst = "%w: %s"
	repositoryOpenErrorTemplateConstant   = "failed to open repository at %s: %w"
	headReadErrorTemplateConstant         = "failed to read HEAD: %w"
	absolutePathErrorTemplateConstant     = "failed to resolve path %s: %w"
)

// ErrNotRepository indicates the start path is not inside a git working tree.
var ErrNotRepository = errors.New(notRepositoryMessageConstant)

// ErrBareRepository indicates the discovered repository has no working tree to operate on.
var ErrBareRepository = errors.New(bareRepositoryMessageConstant)

// HeadSummary describes the commit HEAD points to.
type HeadSummary struct {
	// BranchName is empty when HEAD is detached.
	BranchName string
	// CommitHash is empty when the repository has no commits yet.
	CommitHash string
}

// Inspector reads repository metadata in process, without spawning git.
type Inspector struct{}

// NewInspector constructs an Inspector.
func NewInspector() Inspector {
	return Inspector{}
}

// DiscoverRoot walks up from startPath and returns the working tree root of the enclosing repository.
func (inspector Inspector) DiscoverRoot(startPath string) (string, error) {
	repository, absoluteStartPath, openError := inspector.open(startPath)
	if openError != nil {
		return "", openError
	}
	worktree, worktreeError := repository.Worktree()
	if worktreeError != nil {
		if errors.Is(worktreeError, git.ErrIsBareRepository) {
			return "", ErrBareRepository
		}
		return "", fmt.Errorf(repositoryOpenErrorTemplateConstant, absoluteStartPath, worktreeError)
	}
	return worktree.Filesystem.Root(), nil
}

// Head summarizes HEAD of the repository enclosing repositoryPath.
func (inspector Inspector) Head(repositoryPath string) (HeadSummary, error) {
	repository, _, openError := inspector.open(repositoryPath)
	if openError != nil {
		return HeadSummary{}, openError
	}

	headReference, headError := repository.Head()
	if headError != nil {
		if errors.Is(headError, plumbing.ErrReferenceNotFound) {
			return inspector.unbornHead(repository)
		}
		return HeadSummary{}, fmt.Errorf(headReadErrorTemplateConstant, headError)
	}

	summary := HeadSummary{CommitHash: headReference.Hash().String()}
	if headReference.Name().IsBranch() {
		summary.BranchName = headReference.Name().Short()
	}
	return summary, nil
}

// unbornHead reports the branch a repository without commits will create on its first commit.
func (inspector Inspector) unbornHead(repository *git.Repository) (HeadSummary, error) {
	symbolicHead, referenceError := repository.Storer.Reference(plumbing.HEAD)
	if referenceError != nil {
		return HeadSummary{}, fmt.Errorf(headReadErrorTemplateConstant, referenceError)
	}
	if symbolicHead.Type() != plumbing.SymbolicReference {
		return HeadSummary{}, nil
	}
	return HeadSummary{BranchName: symbolicHead.Target().Short()}, nil
}

func (inspector Inspector) open(startPath string) (*git.Repository, string, error) {
	trimmedStartPath := strings.TrimSpace(startPath)
	if len(trimmedStartPath) == 0 {
		return nil, "", ErrRepositoryPathRequired
	}
	absoluteStartPath, absoluteError := filepath.Abs(trimmedStartPath)
	if absoluteError != nil {
		return nil, "", fmt.Errorf(absolutePathErrorTemplateConstant, trimmedStartPath, absoluteError)
	}

	repository, openError := git.PlainOpenWithOptions(absoluteStartPath, &git.PlainOpenOptions{DetectDotGit: true, EnableDotGitCommonDir: true})
	if openError != nil {
		if errors.Is(openError, git.ErrRepositoryNotExists) {
			return nil, absoluteStartPath, fmt.Errorf(repositoryDiscoveryErrorTemplateConst, ErrNotRepository, absoluteStartPath)
		}
		return nil, absoluteStartPath, fmt.Errorf(repositoryOpenErrorTemplateConstant, absoluteStartPath, openError)
	}
	return repository, absoluteStartPath, nil
}
