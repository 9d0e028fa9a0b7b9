package completion

import (
	"strings"
	"time"
)

// Settings captures the persisted `ai` configuration section.
type Settings struct {
	Provider       string `mapstructure:"provider"`
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	FastModel      string `mapstructure:"fast_model"`
	SmartModel     string `mapstructure:"smart_model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxTokens      int    `mapstructure:"max_tokens"`
}

// EnvironmentLookup resolves an environment variable, mirroring os.LookupEnv.
type EnvironmentLookup func(name string) (string, bool)

// DefaultSettings provides the baseline `ai` section.
func DefaultSettings() Settings {
	return Settings{
		Provider:       string(ProviderOpenAI),
		TimeoutSeconds: int(defaultRequestTimeoutConstant / time.Second),
		MaxTokens:      defaultMaxTokensConstant,
	}
}

// DefaultConfigurationValues returns the `ai` defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultSettings()
	return map[string]any{
		prefix + ".provider":        defaults.Provider,
		prefix + ".api_key":         defaults.APIKey,
		prefix + ".base_url":        defaults.BaseURL,
		prefix + ".fast_model":      defaults.FastModel,
		prefix + ".smart_model":     defaults.SmartModel,
		prefix + ".timeout_seconds": defaults.TimeoutSeconds,
		prefix + ".max_tokens":      defaults.MaxTokens,
	}
}

// Configuration converts persisted settings into a sanitized Configuration. When no API key is configured the
// provider's conventional environment variable is consulted through lookup.
func (settings Settings) Configuration(lookup EnvironmentLookup) Configuration {
	configuration := Configuration{
		Provider:   ProviderName(settings.Provider),
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		FastModel:  settings.FastModel,
		SmartModel: settings.SmartModel,
		Timeout:    time.Duration(settings.TimeoutSeconds) * time.Second,
		MaxTokens:  settings.MaxTokens,
	}.Sanitize()

	if len(configuration.APIKey) == 0 && lookup != nil {
		if environmentValue, exists := lookup(APIKeyEnvironmentVariable(configuration.Provider)); exists {
			configuration.APIKey = strings.TrimSpace(environmentValue)
		}
	}
	return configuration
}
