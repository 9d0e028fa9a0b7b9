package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/aigit/internal/commitplan"
	"github.com/temirov/aigit/internal/completion"
	"github.com/temirov/aigit/internal/conflicts"
	"github.com/temirov/aigit/internal/gitrepo"
	"github.com/temirov/aigit/internal/merge"
	"github.com/temirov/aigit/internal/summary"
	"github.com/temirov/aigit/internal/utils"
)

const (
	applicationNameConstant                 = "aigit"
	applicationShortDescriptionConstant     = "Git with generated commit messages, commit plans, conflict resolutions, and change summaries"
	applicationLongDescriptionConstant      = "aigit wraps everyday git operations and asks a language model for the text a developer would otherwise write by hand: commit messages, commit groupings, merge conflict resolutions, and summaries of pending changes."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	repositoryFlagNameConstant              = "repository"
	repositoryFlagShorthandConstant         = "C"
	repositoryFlagUsageConstant             = "Run as if aigit was started in this directory."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	aiConfigurationKeyConstant              = "ai"
	toolsConfigurationKeyConstant           = "tools"
	commitConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".commit"
	mergeConfigurationKeyConstant           = toolsConfigurationKeyConstant + ".merge"
	conflictsConfigurationKeyConstant       = toolsConfigurationKeyConstant + ".conflicts"
	summaryConfigurationKeyConstant         = toolsConfigurationKeyConstant + ".summary"
	environmentPrefixConstant               = "AIGIT"
	environmentFileNameConstant             = ".env"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	defaultConfigurationSearchPathConstant  = "."
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationProviderFieldConstant      = "provider"
	environmentFilesFieldConstant           = "environment_files"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	repositoryErrorTemplateConstant         = "unable to locate repository: %w"
	loggerNotInitializedMessageConstant     = "logger not initialized"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	AI     completion.Settings            `mapstructure:"ai"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool family.
type ApplicationToolsConfiguration struct {
	Commit    commitplan.CommandConfiguration `mapstructure:"commit"`
	Merge     merge.CommandConfiguration      `mapstructure:"merge"`
	Conflicts conflicts.Configuration         `mapstructure:"conflicts"`
	Summary   summary.CommandConfiguration    `mapstructure:"summary"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	consoleLogger          *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	repositoryFlagValue    string
	commandContextAccessor utils.CommandContextAccessor
	environmentLookup      completion.EnvironmentLookup
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())
	configurationLoader.SetEnvironmentFiles(environmentFileNameConstant)

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		environmentLookup:      os.LookupEnv,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVarP(&application.repositoryFlagValue, repositoryFlagNameConstant, repositoryFlagShorthandConstant, "", repositoryFlagUsageConstant)

	commitBuilder := commitplan.CommandBuilder{
		LoggerProvider:                  application.diagnosticLogger,
		ConsoleLoggerProvider:           application.progressLogger,
		HumanReadableLoggingProvider:    application.humanReadableLoggingEnabled,
		CompletionConfigurationProvider: application.completionConfiguration,
		ConfigurationProvider: func() commitplan.CommandConfiguration {
			return application.configuration.Tools.Commit
		},
	}
	application.addCommand(cobraCommand, commitBuilder.Build)

	mergeBuilder := merge.CommandBuilder{
		LoggerProvider:                  application.diagnosticLogger,
		ConsoleLoggerProvider:           application.progressLogger,
		HumanReadableLoggingProvider:    application.humanReadableLoggingEnabled,
		CompletionConfigurationProvider: application.completionConfiguration,
		ConfigurationProvider: func() merge.CommandConfiguration {
			return application.configuration.Tools.Merge
		},
		ConflictsConfigurationProvider: application.conflictsConfiguration,
	}
	application.addCommand(cobraCommand, mergeBuilder.Build)

	pullBuilder := merge.PullCommandBuilder{
		LoggerProvider:                  application.diagnosticLogger,
		ConsoleLoggerProvider:           application.progressLogger,
		HumanReadableLoggingProvider:    application.humanReadableLoggingEnabled,
		CompletionConfigurationProvider: application.completionConfiguration,
		ConflictsConfigurationProvider:  application.conflictsConfiguration,
	}
	application.addCommand(cobraCommand, pullBuilder.Build)

	statusBuilder := summary.StatusCommandBuilder{
		LoggerProvider:                  application.diagnosticLogger,
		ConsoleLoggerProvider:           application.progressLogger,
		HumanReadableLoggingProvider:    application.humanReadableLoggingEnabled,
		CompletionConfigurationProvider: application.completionConfiguration,
		ConfigurationProvider:           application.summaryConfiguration,
	}
	application.addCommand(cobraCommand, statusBuilder.Build)

	pushBuilder := summary.PushCommandBuilder{
		LoggerProvider:                  application.diagnosticLogger,
		ConsoleLoggerProvider:           application.progressLogger,
		HumanReadableLoggingProvider:    application.humanReadableLoggingEnabled,
		CompletionConfigurationProvider: application.completionConfiguration,
		ConfigurationProvider:           application.summaryConfiguration,
	}
	application.addCommand(cobraCommand, pushBuilder.Build)

	configurationBuilder := ConfigurationCommandBuilder{
		LoggerProvider: application.diagnosticLogger,
		SettingsProvider: func() map[string]any {
			return application.configurationMetadata.Settings
		},
	}
	application.addCommand(cobraCommand, configurationBuilder.Build)

	application.rootCommand = cobraCommand

	return application
}

// Command exposes the root Cobra command so callers can adjust arguments and output streams.
func (application *Application) Command() *cobra.Command {
	return application.rootCommand
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) addCommand(rootCommand *cobra.Command, build func() (*cobra.Command, error)) {
	command, buildError := build()
	if buildError == nil {
		rootCommand.AddCommand(command)
	}
}

// configurationDefaults returns the defaults every configuration key falls back to.
func configurationDefaults() map[string]any {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.DefaultLogFormat(os.Stderr)),
	}
	defaultSets := []map[string]any{
		completion.DefaultConfigurationValues(aiConfigurationKeyConstant),
		commitplan.DefaultConfigurationValues(commitConfigurationKeyConstant),
		merge.DefaultConfigurationValues(mergeConfigurationKeyConstant),
		conflicts.DefaultConfigurationValues(conflictsConfigurationKeyConstant),
		summary.DefaultConfigurationValues(summaryConfigurationKeyConstant),
	}
	for _, defaultSet := range defaultSets {
		for configurationKey, configurationValue := range defaultSet {
			defaultValues[configurationKey] = configurationValue
		}
	}
	return defaultValues
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, configurationDefaults(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogLevel))),
		utils.LogFormat(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogFormat))),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	application.consoleLogger = loggerOutputs.ConsoleLogger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.Strings(environmentFilesFieldConstant, application.configurationMetadata.EnvironmentFilesUsed),
		zap.String(configurationProviderFieldConstant, application.configuration.AI.Provider),
	)

	if command == nil {
		return nil
	}

	updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
		command.Context(),
		application.configurationMetadata.ConfigFileUsed,
	)
	if len(strings.TrimSpace(application.repositoryFlagValue)) > 0 {
		repositoryRoot, discoveryError := gitrepo.NewInspector().DiscoverRoot(application.repositoryFlagValue)
		if discoveryError != nil {
			return fmt.Errorf(repositoryErrorTemplateConstant, discoveryError)
		}
		updatedContext = application.commandContextAccessor.WithRepositoryPath(updatedContext, repositoryRoot)
	}
	command.SetContext(updatedContext)
	if rootCommand := command.Root(); rootCommand != nil {
		rootCommand.SetContext(updatedContext)
	}

	return nil
}

func (application *Application) diagnosticLogger() *zap.Logger {
	return application.logger
}

func (application *Application) progressLogger() *zap.Logger {
	return application.consoleLogger
}

func (application *Application) completionConfiguration() completion.Configuration {
	return application.configuration.AI.Configuration(application.environmentLookup)
}

func (application *Application) conflictsConfiguration() conflicts.Configuration {
	return application.configuration.Tools.Conflicts
}

func (application *Application) summaryConfiguration() summary.CommandConfiguration {
	return application.configuration.Tools.Summary
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}
	return command.Help()
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return application.syncLoggerInstance(application.consoleLogger)
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

// configurationSearchPaths lists the working directory followed by the user configuration directory.
func configurationSearchPaths() []string {
	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, applicationNameConstant))
	}
	return searchPaths
}
