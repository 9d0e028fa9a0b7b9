package merge

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/aigit/internal/completion"
	"github.com/temirov/aigit/internal/conflicts"
	"github.com/temirov/aigit/internal/dependencies"
	"github.com/temirov/aigit/internal/shared"
)

const (
	mergeCommandUseConstant               = "merge <reference>"
	mergeCommandShortDescriptionConstant  = "Merge a reference, resolving conflicts automatically"
	mergeCommandLongDescriptionConstant   = "merge fetches the configured remote, merges the reference into the current branch, and resolves conflicted files with the smart model. When any conflict cannot be resolved the merge is rolled back."
	pullCommandUseConstant                = "pull"
	pullCommandShortDescriptionConstant   = "Fetch and merge the upstream branch, resolving conflicts automatically"
	pullCommandLongDescriptionConstant    = "pull merges the upstream of the current branch after fetching its remote. Conflicts are resolved the same way merge resolves them."
	mergeArgumentsMessageConstant         = "merge requires exactly one reference"
	pullArgumentsMessageConstant          = "pull does not accept positional arguments"
	commandExecutionErrorTemplateConstant = "%s failed: %w"
	mergeCommandNameConstant              = "merge"
	pullCommandNameConstant               = "pull"
	flagRemoteNameConstant                = "remote"
	flagRemoteDescriptionConstant         = "Remote to fetch before merging"
	flagNoFetchNameConstant               = "no-fetch"
	flagNoFetchDescriptionConstant        = "Merge without fetching first"
	cleanReportTemplateConstant           = "Merged %s cleanly (%s)\n"
	resolvedReportTemplateConstant        = "Merged %s with %d AI-resolved file(s) (%s)\n"
	resolvedFileReportTemplateConstant    = "  %s\n"
	shortHashLengthConstant               = 7
)

var (
	errMergeArguments = errors.New(mergeArgumentsMessageConstant)
	errPullArguments  = errors.New(pullArgumentsMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current merge configuration.
type ConfigurationProvider func() CommandConfiguration

// ConflictsConfigurationProvider returns the current conflict resolution configuration.
type ConflictsConfigurationProvider func() conflicts.Configuration

// CompletionConfigurationProvider returns the current completion provider setup.
type CompletionConfigurationProvider func() completion.Configuration

// CommandBuilder assembles the merge command.
type CommandBuilder struct {
	LoggerProvider                  LoggerProvider
	ConsoleLoggerProvider           LoggerProvider
	HumanReadableLoggingProvider    func() bool
	ConfigurationProvider           ConfigurationProvider
	ConflictsConfigurationProvider  ConflictsConfigurationProvider
	CompletionConfigurationProvider CompletionConfigurationProvider
	GitExecutor                     shared.GitExecutor
	Repository                      Repository
	FileSystem                      shared.FileSystem
	Gateway                         completion.Gateway
}

// Build constructs the merge command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   mergeCommandUseConstant,
		Short: mergeCommandShortDescriptionConstant,
		Long:  mergeCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagRemoteNameConstant, "", flagRemoteDescriptionConstant)
	command.Flags().Bool(flagNoFetchNameConstant, false, flagNoFetchDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errMergeArguments
	}

	service, repositoryPath, setupError := builder.prepare(command)
	if setupError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, mergeCommandNameConstant, setupError)
	}

	result, mergeError := service.Merge(command.Context(), Options{
		RepositoryPath: repositoryPath,
		Reference:      arguments[0],
		Remote:         builder.resolveRemote(command),
	})
	if mergeError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, mergeCommandNameConstant, mergeError)
	}
	reportResult(shared.NewWriterReporter(command.OutOrStdout()), result)
	return nil
}

func (builder *CommandBuilder) resolveRemote(command *cobra.Command) string {
	noFetchValue, _ := command.Flags().GetBool(flagNoFetchNameConstant)
	if noFetchValue {
		return ""
	}
	remoteValue, _ := command.Flags().GetString(flagRemoteNameConstant)
	if trimmedRemote := strings.TrimSpace(remoteValue); len(trimmedRemote) > 0 {
		return trimmedRemote
	}
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration().Remote
	}
	return builder.ConfigurationProvider().Sanitize().Remote
}

func (builder *CommandBuilder) prepare(command *cobra.Command) (*Service, string, error) {
	return serviceFactory{
		loggerProvider:                  builder.LoggerProvider,
		consoleLoggerProvider:           builder.ConsoleLoggerProvider,
		humanReadableLoggingProvider:    builder.HumanReadableLoggingProvider,
		conflictsConfigurationProvider:  builder.ConflictsConfigurationProvider,
		completionConfigurationProvider: builder.CompletionConfigurationProvider,
		gitExecutor:                     builder.GitExecutor,
		repository:                      builder.Repository,
		fileSystem:                      builder.FileSystem,
		gateway:                         builder.Gateway,
	}.build(command)
}

// PullCommandBuilder assembles the pull command.
type PullCommandBuilder struct {
	LoggerProvider                  LoggerProvider
	ConsoleLoggerProvider           LoggerProvider
	HumanReadableLoggingProvider    func() bool
	ConflictsConfigurationProvider  ConflictsConfigurationProvider
	CompletionConfigurationProvider CompletionConfigurationProvider
	GitExecutor                     shared.GitExecutor
	Repository                      Repository
	FileSystem                      shared.FileSystem
	Gateway                         completion.Gateway
}

// Build constructs the pull command.
func (builder *PullCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   pullCommandUseConstant,
		Short: pullCommandShortDescriptionConstant,
		Long:  pullCommandLongDescriptionConstant,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *PullCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errPullArguments
	}

	service, repositoryPath, setupError := builder.prepare(command)
	if setupError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, pullCommandNameConstant, setupError)
	}

	result, pullError := service.Pull(command.Context(), PullOptions{RepositoryPath: repositoryPath})
	if pullError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, pullCommandNameConstant, pullError)
	}
	reportResult(shared.NewWriterReporter(command.OutOrStdout()), result)
	return nil
}

func (builder *PullCommandBuilder) prepare(command *cobra.Command) (*Service, string, error) {
	return serviceFactory{
		loggerProvider:                  builder.LoggerProvider,
		consoleLoggerProvider:           builder.ConsoleLoggerProvider,
		humanReadableLoggingProvider:    builder.HumanReadableLoggingProvider,
		conflictsConfigurationProvider:  builder.ConflictsConfigurationProvider,
		completionConfigurationProvider: builder.CompletionConfigurationProvider,
		gitExecutor:                     builder.GitExecutor,
		repository:                      builder.Repository,
		fileSystem:                      builder.FileSystem,
		gateway:                         builder.Gateway,
	}.build(command)
}

type serviceFactory struct {
	loggerProvider                  LoggerProvider
	consoleLoggerProvider           LoggerProvider
	humanReadableLoggingProvider    func() bool
	conflictsConfigurationProvider  ConflictsConfigurationProvider
	completionConfigurationProvider CompletionConfigurationProvider
	gitExecutor                     shared.GitExecutor
	repository                      Repository
	fileSystem                      shared.FileSystem
	gateway                         completion.Gateway
}

func (factory serviceFactory) build(command *cobra.Command) (*Service, string, error) {
	executionContext := command.Context()
	logger := resolveLogger(factory.loggerProvider)

	repositoryPath, pathError := dependencies.ResolveRepositoryPath(executionContext)
	if pathError != nil {
		return nil, "", pathError
	}

	repository := factory.repository
	if repository == nil {
		humanReadable := factory.humanReadableLoggingProvider != nil && factory.humanReadableLoggingProvider()
		executor, executorError := dependencies.ResolveGitExecutor(factory.gitExecutor, logger, resolveLogger(factory.consoleLoggerProvider), humanReadable)
		if executorError != nil {
			return nil, "", executorError
		}
		manager, managerError := dependencies.ResolveRepositoryManager(nil, executor)
		if managerError != nil {
			return nil, "", managerError
		}
		repository = manager
	}

	completionConfiguration := completion.DefaultSettings().Configuration(os.LookupEnv)
	if factory.completionConfigurationProvider != nil {
		completionConfiguration = factory.completionConfigurationProvider()
	}
	gateway, gatewayError := dependencies.ResolveGateway(executionContext, factory.gateway, completionConfiguration, logger)
	if gatewayError != nil {
		return nil, "", gatewayError
	}

	conflictsConfiguration := conflicts.DefaultConfiguration()
	if factory.conflictsConfigurationProvider != nil {
		conflictsConfiguration = factory.conflictsConfigurationProvider()
	}
	resolver, resolverError := conflicts.NewResolver(gateway, conflictsConfiguration.ResolverOptions(), logger)
	if resolverError != nil {
		return nil, "", resolverError
	}

	service, serviceError := NewService(Dependencies{
		Repository: repository,
		Resolver:   resolver,
		FileSystem: dependencies.ResolveFileSystem(factory.fileSystem),
		Logger:     logger,
	})
	if serviceError != nil {
		return nil, "", serviceError
	}
	return service, repositoryPath, nil
}

func reportResult(reporter shared.Reporter, result Result) {
	if result.Outcome == OutcomeClean {
		reporter.Printf(cleanReportTemplateConstant, result.Reference, shortHash(result.CommitHash))
		return
	}
	reporter.Printf(resolvedReportTemplateConstant, result.Reference, len(result.ResolvedFiles), shortHash(result.CommitHash))
	for _, resolvedFile := range result.ResolvedFiles {
		reporter.Printf(resolvedFileReportTemplateConstant, resolvedFile)
	}
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func shortHash(commitHash string) string {
	if len(commitHash) <= shortHashLengthConstant {
		return commitHash
	}
	return commitHash[:shortHashLengthConstant]
}
