package completion_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/aigit/internal/completion"
)

func TestConfigurationSanitizeAppliesProviderDefaults(testInstance *testing.T) {
	testCases := []struct {
		name               string
		input              completion.Configuration
		expectedProvider   completion.ProviderName
		expectedBaseURL    string
		expectedFastModel  string
		expectedSmartModel string
	}{
		{
			name:               "empty_defaults_to_openai",
			input:              completion.Configuration{},
			expectedProvider:   completion.ProviderOpenAI,
			expectedBaseURL:    "https://api.openai.com/v1",
			expectedFastModel:  "gpt-4.1-nano",
			expectedSmartModel: "gpt-4.1",
		},
		{
			name:               "anthropic_case_insensitive",
			input:              completion.Configuration{Provider: " Anthropic "},
			expectedProvider:   completion.ProviderAnthropic,
			expectedBaseURL:    "https://api.anthropic.com",
			expectedFastModel:  "claude-3-5-haiku-latest",
			expectedSmartModel: "claude-sonnet-4-0",
		},
		{
			name:               "explicit_values_kept",
			input:              completion.Configuration{Provider: completion.ProviderOpenAI, BaseURL: "http://localhost:8080/v1/", FastModel: " small ", SmartModel: "large"},
			expectedProvider:   completion.ProviderOpenAI,
			expectedBaseURL:    "http://localhost:8080/v1",
			expectedFastModel:  "small",
			expectedSmartModel: "large",
		},
		{
			name:               "gemini_has_no_base_url",
			input:              completion.Configuration{Provider: completion.ProviderGemini},
			expectedProvider:   completion.ProviderGemini,
			expectedFastModel:  "gemini-2.5-flash-lite",
			expectedSmartModel: "gemini-2.5-pro",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			sanitized := testCase.input.Sanitize()
			require.Equal(testInstance, testCase.expectedProvider, sanitized.Provider)
			require.Equal(testInstance, testCase.expectedBaseURL, sanitized.BaseURL)
			require.Equal(testInstance, testCase.expectedFastModel, sanitized.FastModel)
			require.Equal(testInstance, testCase.expectedSmartModel, sanitized.SmartModel)
			require.Equal(testInstance, 60*time.Second, sanitized.Timeout)
			require.Equal(testInstance, 1024, sanitized.MaxTokens)
		})
	}
}

func TestConfigurationModelFor(testInstance *testing.T) {
	configuration := completion.Configuration{FastModel: testFastModelConstant, SmartModel: testSmartModelConstant}

	fastModel, fastError := configuration.ModelFor(completion.ModelTierFast)
	require.NoError(testInstance, fastError)
	require.Equal(testInstance, testFastModelConstant, fastModel)

	smartModel, smartError := configuration.ModelFor(completion.ModelTierSmart)
	require.NoError(testInstance, smartError)
	require.Equal(testInstance, testSmartModelConstant, smartModel)

	_, unknownError := configuration.ModelFor("huge")
	require.ErrorIs(testInstance, unknownError, completion.ErrUnknownModelTier)
}

func TestSettingsConfigurationFallsBackToEnvironment(testInstance *testing.T) {
	environment := map[string]string{"ANTHROPIC_API_KEY": " env-key ", "OPENAI_API_KEY": "other"}
	lookup := func(name string) (string, bool) {
		value, exists := environment[name]
		return value, exists
	}

	settings := completion.DefaultSettings()
	settings.Provider = "anthropic"
	configuration := settings.Configuration(lookup)
	require.Equal(testInstance, "env-key", configuration.APIKey)
	require.Equal(testInstance, 60*time.Second, configuration.Timeout)

	settings.APIKey = "file-key"
	require.Equal(testInstance, "file-key", settings.Configuration(lookup).APIKey)

	settings.APIKey = ""
	settings.Provider = "gemini"
	require.Empty(testInstance, settings.Configuration(lookup).APIKey)
	require.ErrorIs(testInstance, settings.Configuration(lookup).Validate(), completion.ErrAPIKeyMissing)
}

func TestDefaultConfigurationValues(testInstance *testing.T) {
	values := completion.DefaultConfigurationValues("ai")
	require.Equal(testInstance, "openai", values["ai.provider"])
	require.Equal(testInstance, 60, values["ai.timeout_seconds"])
	require.Equal(testInstance, 1024, values["ai.max_tokens"])
	require.Contains(testInstance, values, "ai.api_key")
}
