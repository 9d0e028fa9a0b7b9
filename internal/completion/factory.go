package completion

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// NewGateway validates the configuration and builds a Client backed by the configured provider's transport.
func NewGateway(executionContext context.Context, configuration Configuration, logger *zap.Logger) (*Client, error) {
	sanitized := configuration.Sanitize()
	if validationError := sanitized.Validate(); validationError != nil {
		return nil, validationError
	}

	var transport Transport
	switch sanitized.Provider {
	case ProviderAnthropic:
		transport = NewAnthropicTransport(sanitized, nil)
	case ProviderGemini:
		geminiTransport, transportError := NewGeminiTransport(executionContext, sanitized, nil)
		if transportError != nil {
			return nil, transportError
		}
		transport = geminiTransport
	case ProviderOpenAI:
		transport = NewOpenAITransport(sanitized, nil)
	default:
		return nil, fmt.Errorf(unsupportedProviderErrorTemplateConst, ErrUnsupportedProvider, sanitized.Provider)
	}

	return NewClient(sanitized, transport, logger)
}
