package merge

import (
	"strings"

	"github.com/temirov/aigit/internal/shared"
)

// CommandConfiguration captures the `tools.merge` configuration section.
type CommandConfiguration struct {
	Remote string `mapstructure:"remote"`
}

// DefaultCommandConfiguration provides baseline merge settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{Remote: shared.OriginRemoteNameConstant}
}

// DefaultConfigurationValues returns the merge defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	return map[string]any{
		prefix + ".remote": shared.OriginRemoteNameConstant,
	}
}

// Sanitize trims the remote name.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	return CommandConfiguration{Remote: strings.TrimSpace(configuration.Remote)}
}
