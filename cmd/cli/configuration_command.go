package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/aigit/internal/filesystem"
	"github.com/temirov/aigit/internal/shared"
)

const (
	configurationCommandUseConstant              = "config"
	configurationCommandShortDescriptionConstant = "Inspect and create aigit configuration files"
	configurationInitUseConstant                 = "init"
	configurationInitShortDescriptionConstant    = "Write the effective configuration to a YAML file"
	configurationInitLongDescriptionConstant     = "init writes every resolved configuration key, including defaults and environment overrides, to a YAML file. The API key is never written."
	configurationPathFlagNameConstant            = "path"
	configurationPathFlagDefaultConstant         = "config.yaml"
	configurationPathFlagUsageConstant           = "Destination of the generated configuration file."
	configurationForceFlagNameConstant           = "force"
	configurationForceFlagUsageConstant          = "Overwrite the destination when it already exists."
	configurationWrittenTemplateConstant         = "Wrote configuration to %s\n"
	configurationWrittenLogMessageConstant       = "configuration file written"
	configurationPathFieldConstant               = "path"
	configurationExistsTemplateConstant          = "%w: %s"
	configurationStatErrorTemplateConstant       = "unable to inspect %s: %w"
	configurationMarshalErrorTemplateConstant    = "unable to encode configuration: %w"
	configurationWriteErrorTemplateConstant      = "unable to write %s: %w"
	configurationFileExistsMessageConstant       = "configuration file already exists (use --force to overwrite)"
	apiKeySettingNameConstant                    = "api_key"
	configurationFilePermissionsConstant         = fs.FileMode(0o600)
)

// ErrConfigurationFileExists indicates that config init refused to overwrite an existing file.
var ErrConfigurationFileExists = errors.New(configurationFileExistsMessageConstant)

// ConfigurationCommandBuilder assembles the config command group. Without resolved settings, config init writes the
// embedded defaults.
type ConfigurationCommandBuilder struct {
	LoggerProvider   func() *zap.Logger
	SettingsProvider func() map[string]any
	FileSystem       shared.FileSystem
}

// Build constructs the config command and its init subcommand.
func (builder *ConfigurationCommandBuilder) Build() (*cobra.Command, error) {
	configurationCommand := &cobra.Command{
		Use:   configurationCommandUseConstant,
		Short: configurationCommandShortDescriptionConstant,
	}

	initCommand := &cobra.Command{
		Use:   configurationInitUseConstant,
		Short: configurationInitShortDescriptionConstant,
		Long:  configurationInitLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runInit,
	}
	initCommand.Flags().String(configurationPathFlagNameConstant, configurationPathFlagDefaultConstant, configurationPathFlagUsageConstant)
	initCommand.Flags().Bool(configurationForceFlagNameConstant, false, configurationForceFlagUsageConstant)

	configurationCommand.AddCommand(initCommand)
	return configurationCommand, nil
}

func (builder *ConfigurationCommandBuilder) runInit(command *cobra.Command, arguments []string) error {
	destinationPath, _ := command.Flags().GetString(configurationPathFlagNameConstant)
	destinationPath = strings.TrimSpace(destinationPath)
	if len(destinationPath) == 0 {
		destinationPath = configurationPathFlagDefaultConstant
	}
	overwrite, _ := command.Flags().GetBool(configurationForceFlagNameConstant)

	fileSystem := builder.FileSystem
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}

	if !overwrite {
		_, statError := fileSystem.Stat(destinationPath)
		switch {
		case statError == nil:
			return fmt.Errorf(configurationExistsTemplateConstant, ErrConfigurationFileExists, destinationPath)
		case !errors.Is(statError, fs.ErrNotExist):
			return fmt.Errorf(configurationStatErrorTemplateConstant, destinationPath, statError)
		}
	}

	var settings map[string]any
	if builder.SettingsProvider != nil {
		settings = builder.SettingsProvider()
	}
	if len(settings) == 0 {
		defaultSettings, defaultsError := EmbeddedDefaultSettings()
		if defaultsError != nil {
			return defaultsError
		}
		settings = defaultSettings
	}

	encodedSettings, marshalError := yaml.Marshal(RedactSettings(settings))
	if marshalError != nil {
		return fmt.Errorf(configurationMarshalErrorTemplateConstant, marshalError)
	}

	if writeError := fileSystem.WriteFile(destinationPath, encodedSettings, configurationFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(configurationWriteErrorTemplateConstant, destinationPath, writeError)
	}

	if builder.LoggerProvider != nil {
		if logger := builder.LoggerProvider(); logger != nil {
			logger.Debug(configurationWrittenLogMessageConstant, zap.String(configurationPathFieldConstant, destinationPath))
		}
	}

	_, printError := fmt.Fprintf(command.OutOrStdout(), configurationWrittenTemplateConstant, destinationPath)
	return printError
}

// RedactSettings returns a copy of settings with the AI API key blanked. Nested maps are copied so the input is
// never modified.
func RedactSettings(settings map[string]any) map[string]any {
	redacted := make(map[string]any, len(settings))
	for settingKey, settingValue := range settings {
		redacted[settingKey] = settingValue
	}

	aiSection, isMap := redacted[aiConfigurationKeyConstant].(map[string]any)
	if !isMap {
		return redacted
	}

	redactedSection := make(map[string]any, len(aiSection))
	for settingKey, settingValue := range aiSection {
		redactedSection[settingKey] = settingValue
	}
	if _, hasKey := redactedSection[apiKeySettingNameConstant]; hasKey {
		redactedSection[apiKeySettingNameConstant] = ""
	}
	redacted[aiConfigurationKeyConstant] = redactedSection
	return redacted
}
