// Package dependencies resolves default collaborators for command builders that were not given explicit ones.
package dependencies

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/aigit/internal/completion"
	"github.com/temirov/aigit/internal/execshell"
	"github.com/temirov/aigit/internal/filesystem"
	"github.com/temirov/aigit/internal/gitrepo"
	"github.com/temirov/aigit/internal/shared"
	"github.com/temirov/aigit/internal/ui"
	"github.com/temirov/aigit/internal/utils"
)

const workingDirectoryErrorTemplateConstant = "unable to determine working directory: %w"

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default. When humanReadableLogging is
// enabled each git subprocess is narrated through consoleLogger.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, consoleLogger *zap.Logger, humanReadableLogging bool) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	var observer execshell.CommandEventObserver
	if humanReadableLogging {
		observer = ui.NewConsoleCommandEventLogger(consoleLogger)
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), observer)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveRepositoryManager returns the provided repository manager or constructs one from the executor.
func ResolveRepositoryManager(existing *gitrepo.RepositoryManager, executor shared.GitExecutor) (*gitrepo.RepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManager(executor)
}

// ResolveGateway returns the provided gateway or builds one for the configured provider.
func ResolveGateway(executionContext context.Context, existing completion.Gateway, configuration completion.Configuration, logger *zap.Logger) (completion.Gateway, error) {
	if existing != nil {
		return existing, nil
	}
	client, creationError := completion.NewGateway(executionContext, configuration, logger)
	if creationError != nil {
		return nil, creationError
	}
	return client, nil
}

// ResolveRepositoryPath returns the repository recorded on the command context, or the root of the repository
// enclosing the working directory.
func ResolveRepositoryPath(executionContext context.Context) (string, error) {
	if repositoryPath, available := utils.NewCommandContextAccessor().RepositoryPath(executionContext); available {
		validatedPath, validationError := shared.NewRepositoryPath(repositoryPath)
		if validationError != nil {
			return "", validationError
		}
		return validatedPath.String(), nil
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}
	return gitrepo.NewInspector().DiscoverRoot(workingDirectory)
}
