package completion

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProviderName identifies a text-completion provider.
type ProviderName string

// Supported providers.
const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
	ProviderGemini    ProviderName = "gemini"
)

const (
	defaultOpenAIBaseURLConstant          = "https://api.openai.com/v1"
	defaultAnthropicBaseURLConstant       = "https://api.anthropic.com"
	defaultOpenAIFastModelConstant        = "gpt-4.1-nano"
	defaultOpenAISmartModelConstant       = "gpt-4.1"
	defaultAnthropicFastModelConstant     = "claude-3-5-haiku-latest"
	defaultAnthropicSmartModelConstant    = "claude-sonnet-4-0"
	defaultGeminiFastModelConstant        = "gemini-2.5-flash-lite"
	defaultGeminiSmartModelConstant       = "gemini-2.5-pro"
	defaultRequestTimeoutConstant         = 60 * time.Second
	defaultMaxTokensConstant              = 1024
	openAIKeyEnvironmentVariableConstant  = "OPENAI_API_KEY"
	anthropicKeyEnvironmentVariableConst  = "ANTHROPIC_API_KEY"
	geminiKeyEnvironmentVariableConstant  = "GEMINI_API_KEY"
	unsupportedProviderMessageConstant    = "unsupported completion provider"
	missingAPIKeyMessageConstant          = "completion API key not configured"
	unsupportedProviderErrorTemplateConst = "%w: %q (expected openai, anthropic, or gemini)"
	missingAPIKeyErrorTemplateConstant    = "%w: set ai.api_key or %s"
)

// ErrUnsupportedProvider indicates the configured provider name is unknown.
var ErrUnsupportedProvider = errors.New(unsupportedProviderMessageConstant)

// ErrAPIKeyMissing indicates no API key was configured for the selected provider.
var ErrAPIKeyMissing = errors.New(missingAPIKeyMessageConstant)

// Configuration is the immutable provider setup threaded into a Client.
type Configuration struct {
	Provider   ProviderName
	APIKey     string
	BaseURL    string
	FastModel  string
	SmartModel string
	Timeout    time.Duration
	// MaxTokens bounds requests that do not set their own limit.
	MaxTokens int
}

// Sanitize trims values and fills provider specific defaults.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.Provider = ProviderName(strings.ToLower(strings.TrimSpace(string(configuration.Provider))))
	if len(sanitized.Provider) == 0 {
		sanitized.Provider = ProviderOpenAI
	}
	sanitized.APIKey = strings.TrimSpace(configuration.APIKey)
	sanitized.BaseURL = strings.TrimRight(strings.TrimSpace(configuration.BaseURL), "/")
	sanitized.FastModel = strings.TrimSpace(configuration.FastModel)
	sanitized.SmartModel = strings.TrimSpace(configuration.SmartModel)

	defaultFastModel, defaultSmartModel, defaultBaseURL := providerDefaults(sanitized.Provider)
	if len(sanitized.FastModel) == 0 {
		sanitized.FastModel = defaultFastModel
	}
	if len(sanitized.SmartModel) == 0 {
		sanitized.SmartModel = defaultSmartModel
	}
	if len(sanitized.BaseURL) == 0 {
		sanitized.BaseURL = defaultBaseURL
	}
	if sanitized.Timeout <= 0 {
		sanitized.Timeout = defaultRequestTimeoutConstant
	}
	if sanitized.MaxTokens <= 0 {
		sanitized.MaxTokens = defaultMaxTokensConstant
	}
	return sanitized
}

// Validate reports configuration that cannot reach a provider.
func (configuration Configuration) Validate() error {
	switch configuration.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf(unsupportedProviderErrorTemplateConst, ErrUnsupportedProvider, configuration.Provider)
	}
	if len(configuration.APIKey) == 0 {
		return fmt.Errorf(missingAPIKeyErrorTemplateConstant, ErrAPIKeyMissing, APIKeyEnvironmentVariable(configuration.Provider))
	}
	return nil
}

// ModelFor returns the model bound to the tier.
func (configuration Configuration) ModelFor(tier ModelTier) (string, error) {
	switch tier {
	case ModelTierFast:
		return configuration.FastModel, nil
	case ModelTierSmart:
		return configuration.SmartModel, nil
	default:
		return "", fmt.Errorf(unknownModelTierErrorTemplateConstant, ErrUnknownModelTier, tier)
	}
}

// APIKeyEnvironmentVariable names the conventional environment variable holding the provider's API key.
func APIKeyEnvironmentVariable(provider ProviderName) string {
	switch provider {
	case ProviderAnthropic:
		return anthropicKeyEnvironmentVariableConst
	case ProviderGemini:
		return geminiKeyEnvironmentVariableConstant
	default:
		return openAIKeyEnvironmentVariableConstant
	}
}

func providerDefaults(provider ProviderName) (string, string, string) {
	switch provider {
	case ProviderAnthropic:
		return defaultAnthropicFastModelConstant, defaultAnthropicSmartModelConstant, defaultAnthropicBaseURLConstant
	case ProviderGemini:
		return defaultGeminiFastModelConstant, defaultGeminiSmartModelConstant, ""
	default:
		return defaultOpenAIFastModelConstant, defaultOpenAISmartModelConstant, defaultOpenAIBaseURLConstant
	}
}
