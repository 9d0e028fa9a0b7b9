package summary

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/aigit/internal/completion"
	"github.com/temirov/aigit/internal/dependencies"
	"github.com/temirov/aigit/internal/shared"
)

const (
	statusCommandUseConstant              = "status"
	statusCommandShortDescriptionConstant = "Show the working tree status with a summary of the changes"
	pushCommandUseConstant                = "push"
	pushCommandShortDescriptionConstant   = "Summarize outgoing commits and push the current branch"
	pushCommandLongDescriptionConstant    = "push summarizes the commits the upstream does not have yet and pushes the current branch. A branch without upstream is published to the configured remote and starts tracking it."
	statusArgumentsMessageConstant        = "status does not accept positional arguments"
	pushArgumentsMessageConstant          = "push does not accept positional arguments"
	commandExecutionErrorTemplateConstant = "%s failed: %w"
	flagNoSummaryNameConstant             = "no-summary"
	flagNoSummaryDescriptionConstant      = "Skip the generated summary"
	flagRemoteNameConstant                = "remote"
	flagRemoteDescriptionConstant         = "Remote for branches without upstream"
	summaryHeadingTemplateConstant        = "\nSummary:\n%s\n"
	outgoingHeadingTemplateConstant       = "Outgoing commits:\n%s\n"
	pushedUpstreamTemplateConstant        = "Pushed %s to %s\n"
	pushedNewUpstreamTemplateConstant     = "Pushed %s to %s and set it as upstream\n"
	gatewayUnavailableLogMessageConstant  = "summaries disabled, completion provider unavailable"
)

var (
	errStatusArguments = errors.New(statusArgumentsMessageConstant)
	errPushArguments   = errors.New(pushArgumentsMessageConstant)
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current summary configuration.
type ConfigurationProvider func() CommandConfiguration

// CompletionConfigurationProvider returns the current completion provider setup.
type CompletionConfigurationProvider func() completion.Configuration

// StatusCommandBuilder assembles the status command.
type StatusCommandBuilder struct {
	LoggerProvider                  LoggerProvider
	ConsoleLoggerProvider           LoggerProvider
	HumanReadableLoggingProvider    func() bool
	ConfigurationProvider           ConfigurationProvider
	CompletionConfigurationProvider CompletionConfigurationProvider
	GitExecutor                     shared.GitExecutor
	Repository                      Repository
	Gateway                         completion.Gateway
}

// Build constructs the status command.
func (builder *StatusCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   statusCommandUseConstant,
		Short: statusCommandShortDescriptionConstant,
		RunE:  builder.run,
	}
	command.Flags().Bool(flagNoSummaryNameConstant, false, flagNoSummaryDescriptionConstant)
	return command, nil
}

func (builder *StatusCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errStatusArguments
	}

	summarize := summariesRequested(command, builder.ConfigurationProvider)
	service, repositoryPath, setupError := builder.factory().build(command, summarize)
	if setupError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, statusCommandUseConstant, setupError)
	}

	result, statusError := service.Status(command.Context(), StatusOptions{RepositoryPath: repositoryPath, Summarize: summarize})
	if statusError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, statusCommandUseConstant, statusError)
	}

	reporter := shared.NewWriterReporter(command.OutOrStdout())
	reporter.Printf("%s", result.Status)
	if len(result.Summary) > 0 {
		reporter.Printf(summaryHeadingTemplateConstant, result.Summary)
	}
	return nil
}

func (builder *StatusCommandBuilder) factory() serviceFactory {
	return serviceFactory{
		loggerProvider:                  builder.LoggerProvider,
		consoleLoggerProvider:           builder.ConsoleLoggerProvider,
		humanReadableLoggingProvider:    builder.HumanReadableLoggingProvider,
		configurationProvider:           builder.ConfigurationProvider,
		completionConfigurationProvider: builder.CompletionConfigurationProvider,
		gitExecutor:                     builder.GitExecutor,
		repository:                      builder.Repository,
		gateway:                         builder.Gateway,
	}
}

// PushCommandBuilder assembles the push command.
type PushCommandBuilder struct {
	LoggerProvider                  LoggerProvider
	ConsoleLoggerProvider           LoggerProvider
	HumanReadableLoggingProvider    func() bool
	ConfigurationProvider           ConfigurationProvider
	CompletionConfigurationProvider CompletionConfigurationProvider
	GitExecutor                     shared.GitExecutor
	Repository                      Repository
	Gateway                         completion.Gateway
}

// Build constructs the push command.
func (builder *PushCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   pushCommandUseConstant,
		Short: pushCommandShortDescriptionConstant,
		Long:  pushCommandLongDescriptionConstant,
		RunE:  builder.run,
	}
	command.Flags().Bool(flagNoSummaryNameConstant, false, flagNoSummaryDescriptionConstant)
	command.Flags().String(flagRemoteNameConstant, "", flagRemoteDescriptionConstant)
	return command, nil
}

func (builder *PushCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errPushArguments
	}

	summarize := summariesRequested(command, builder.ConfigurationProvider)
	service, repositoryPath, setupError := builder.factory().build(command, summarize)
	if setupError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, pushCommandUseConstant, setupError)
	}

	remoteName, _ := command.Flags().GetString(flagRemoteNameConstant)
	if len(strings.TrimSpace(remoteName)) == 0 {
		remoteName = resolveConfiguration(builder.ConfigurationProvider).PushRemote
	}

	result, pushError := service.Push(command.Context(), PushOptions{RepositoryPath: repositoryPath, Remote: remoteName, Summarize: summarize})
	reporter := shared.NewWriterReporter(command.OutOrStdout())
	switch {
	case len(result.Summary) > 0:
		reporter.Printf(outgoingHeadingTemplateConstant, result.Summary)
	case len(strings.TrimSpace(result.Outgoing)) > 0:
		reporter.Printf(outgoingHeadingTemplateConstant, strings.TrimRight(result.Outgoing, "\n"))
	}
	if pushError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, pushCommandUseConstant, pushError)
	}

	if result.SetUpstream {
		reporter.Printf(pushedNewUpstreamTemplateConstant, result.Branch, result.Remote)
		return nil
	}
	reporter.Printf(pushedUpstreamTemplateConstant, result.Branch, result.Upstream)
	return nil
}

func (builder *PushCommandBuilder) factory() serviceFactory {
	return serviceFactory{
		loggerProvider:                  builder.LoggerProvider,
		consoleLoggerProvider:           builder.ConsoleLoggerProvider,
		humanReadableLoggingProvider:    builder.HumanReadableLoggingProvider,
		configurationProvider:           builder.ConfigurationProvider,
		completionConfigurationProvider: builder.CompletionConfigurationProvider,
		gitExecutor:                     builder.GitExecutor,
		repository:                      builder.Repository,
		gateway:                         builder.Gateway,
	}
}

type serviceFactory struct {
	loggerProvider                  LoggerProvider
	consoleLoggerProvider           LoggerProvider
	humanReadableLoggingProvider    func() bool
	configurationProvider           ConfigurationProvider
	completionConfigurationProvider CompletionConfigurationProvider
	gitExecutor                     shared.GitExecutor
	repository                      Repository
	gateway                         completion.Gateway
}

// build assembles the service. An unavailable completion provider disables summaries instead of failing the command.
func (factory serviceFactory) build(command *cobra.Command, summarize bool) (*Service, string, error) {
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

	var summarizer *Summarizer
	if summarize {
		completionConfiguration := completion.DefaultSettings().Configuration(os.LookupEnv)
		if factory.completionConfigurationProvider != nil {
			completionConfiguration = factory.completionConfigurationProvider()
		}
		gateway, gatewayError := dependencies.ResolveGateway(executionContext, factory.gateway, completionConfiguration, logger)
		if gatewayError != nil {
			logger.Warn(gatewayUnavailableLogMessageConstant, zap.Error(gatewayError))
		} else {
			summarizer = NewSummarizer(gateway, resolveConfiguration(factory.configurationProvider).MaxPromptCharacters)
		}
	}

	service, serviceError := NewService(Dependencies{Repository: repository, Summarizer: summarizer, Logger: logger})
	if serviceError != nil {
		return nil, "", serviceError
	}
	return service, repositoryPath, nil
}

func summariesRequested(command *cobra.Command, provider ConfigurationProvider) bool {
	noSummaryValue, _ := command.Flags().GetBool(flagNoSummaryNameConstant)
	return !noSummaryValue && resolveConfiguration(provider).Enabled
}

func resolveConfiguration(provider ConfigurationProvider) CommandConfiguration {
	if provider == nil {
		return DefaultCommandConfiguration()
	}
	return provider().Sanitize()
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
