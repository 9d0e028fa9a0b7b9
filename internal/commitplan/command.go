package commitplan

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/aigit/internal/completion"
	"github.com/temirov/aigit/internal/dependencies"
	"github.com/temirov/aigit/internal/shared"
)

const (
	commandUseConstant                    = "commit"
	commandShortDescriptionConstant       = "Commit staged changes with generated messages"
	commandLongDescriptionConstant        = "commit writes commit messages for the staged changes. By default the changes are split into logically grouped commits; --single records one commit."
	commandExecutionErrorTemplateConstant = "commit failed: %w"
	unexpectedArgumentsMessageConstant    = "commit does not accept positional arguments"
	flagAllNameConstant                   = "all"
	flagAllShorthandConstant              = "a"
	flagAllDescriptionConstant            = "Stage every change in the working tree before committing"
	flagSingleNameConstant                = "single"
	flagSingleDescriptionConstant         = "Record all staged changes as one commit"
	commitReportTemplateConstant          = "%s %s\n"
	fallbackLogMessageConstant            = "commit plan unavailable, recorded a single commit"
	shortHashLengthConstant               = 7
)

var errUnexpectedArguments = errors.New(unexpectedArgumentsMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current commit configuration.
type ConfigurationProvider func() CommandConfiguration

// CompletionConfigurationProvider returns the current completion provider setup.
type CompletionConfigurationProvider func() completion.Configuration

// CommandBuilder assembles the commit command.
type CommandBuilder struct {
	LoggerProvider                  LoggerProvider
	ConsoleLoggerProvider           LoggerProvider
	HumanReadableLoggingProvider    func() bool
	ConfigurationProvider           ConfigurationProvider
	CompletionConfigurationProvider CompletionConfigurationProvider
	GitExecutor                     shared.GitExecutor
	Repository                      ServiceRepository
	Gateway                         completion.Gateway
}

// Build constructs the commit command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().BoolP(flagAllNameConstant, flagAllShorthandConstant, false, flagAllDescriptionConstant)
	command.Flags().Bool(flagSingleNameConstant, false, flagSingleDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errUnexpectedArguments
	}

	executionContext := command.Context()
	logger := resolveLogger(builder.LoggerProvider)

	repositoryPath, pathError := dependencies.ResolveRepositoryPath(executionContext)
	if pathError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, pathError)
	}

	repository, repositoryError := builder.resolveRepository(logger)
	if repositoryError != nil {
		return repositoryError
	}

	gateway, gatewayError := dependencies.ResolveGateway(executionContext, builder.Gateway, builder.resolveCompletionConfiguration(), logger)
	if gatewayError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, gatewayError)
	}

	service, serviceError := NewService(ServiceDependencies{Repository: repository, Gateway: gateway, Logger: logger})
	if serviceError != nil {
		return serviceError
	}

	result, commitError := service.Commit(executionContext, builder.parseOptions(command, repositoryPath))
	reporter := shared.NewWriterReporter(command.OutOrStdout())
	for _, createdCommit := range result.Commits {
		reporter.Printf(commitReportTemplateConstant, shortHash(createdCommit.Hash), createdCommit.Message)
	}
	if commitError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, commitError)
	}
	if result.Fallback {
		logger.Info(fallbackLogMessageConstant)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, repositoryPath string) Options {
	configuration := builder.resolveConfiguration()
	stageAllValue, _ := command.Flags().GetBool(flagAllNameConstant)
	singleValue, _ := command.Flags().GetBool(flagSingleNameConstant)

	return Options{
		RepositoryPath: repositoryPath,
		StageAll:       stageAllValue,
		Segment:        configuration.Segment && !singleValue,
		Diff:           configuration.DiffOptions(),
	}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveCompletionConfiguration() completion.Configuration {
	if builder.CompletionConfigurationProvider == nil {
		return completion.DefaultSettings().Configuration(os.LookupEnv)
	}
	return builder.CompletionConfigurationProvider()
}

func (builder *CommandBuilder) resolveRepository(logger *zap.Logger) (ServiceRepository, error) {
	if builder.Repository != nil {
		return builder.Repository, nil
	}
	humanReadable := builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider()
	executor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, resolveLogger(builder.ConsoleLoggerProvider), humanReadable)
	if executorError != nil {
		return nil, executorError
	}
	return dependencies.ResolveRepositoryManager(nil, executor)
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
