package commitplan

import (
	"strings"

	"github.com/temirov/aigit/internal/commitmsg"
)

// CommandConfiguration captures the `tools.commit` configuration section.
type CommandConfiguration struct {
	Segment             bool     `mapstructure:"segment"`
	MaxPromptCharacters int      `mapstructure:"max_prompt_characters"`
	ExcludePatterns     []string `mapstructure:"exclude_patterns"`
}

// DefaultCommandConfiguration provides baseline commit settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Segment:             true,
		MaxPromptCharacters: commitmsg.DefaultMaxPromptCharactersConstant,
		ExcludePatterns:     []string{"**/go.sum", "**/package-lock.json", "**/yarn.lock", "**/pnpm-lock.yaml"},
	}
}

// DefaultConfigurationValues returns the commit defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefix + ".segment":               defaults.Segment,
		prefix + ".max_prompt_characters": defaults.MaxPromptCharacters,
		prefix + ".exclude_patterns":      defaults.ExcludePatterns,
	}
}

// Sanitize trims patterns and restores the default prompt bound when it is not positive.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	if sanitized.MaxPromptCharacters <= 0 {
		sanitized.MaxPromptCharacters = commitmsg.DefaultMaxPromptCharactersConstant
	}
	patterns := make([]string, 0, len(configuration.ExcludePatterns))
	for _, pattern := range configuration.ExcludePatterns {
		if trimmed := strings.TrimSpace(pattern); len(trimmed) > 0 {
			patterns = append(patterns, trimmed)
		}
	}
	sanitized.ExcludePatterns = patterns
	return sanitized
}

// DiffOptions converts the configuration into staged diff options.
func (configuration CommandConfiguration) DiffOptions() commitmsg.DiffOptions {
	return commitmsg.DiffOptions{ExcludePatterns: configuration.ExcludePatterns, MaxCharacters: configuration.MaxPromptCharacters}
}
