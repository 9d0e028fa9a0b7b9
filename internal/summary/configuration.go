package summary

import (
	"strings"

	"github.com/temirov/aigit/internal/commitmsg"
	"github.com/temirov/aigit/internal/shared"
)

// CommandConfiguration captures the `tools.summary` configuration section.
type CommandConfiguration struct {
	Enabled             bool   `mapstructure:"enabled"`
	MaxPromptCharacters int    `mapstructure:"max_prompt_characters"`
	PushRemote          string `mapstructure:"push_remote"`
}

// DefaultCommandConfiguration provides baseline summary settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Enabled:             true,
		MaxPromptCharacters: commitmsg.DefaultMaxPromptCharactersConstant,
		PushRemote:          shared.OriginRemoteNameConstant,
	}
}

// DefaultConfigurationValues returns the summary defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + ".enabled":               defaults.Enabled,
		prefix + ".max_prompt_characters": defaults.MaxPromptCharacters,
		prefix + ".push_remote":           defaults.PushRemote,
	}
}

// Sanitize restores defaults for empty or non-positive values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	if sanitized.MaxPromptCharacters <= 0 {
		sanitized.MaxPromptCharacters = commitmsg.DefaultMaxPromptCharactersConstant
	}
	sanitized.PushRemote = strings.TrimSpace(sanitized.PushRemote)
	if len(sanitized.PushRemote) == 0 {
		sanitized.PushRemote = shared.OriginRemoteNameConstant
	}
	return sanitized
}
