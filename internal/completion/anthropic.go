package completion

import (
	"context"
	"net/http"
	"strings"
)

const (
	anthropicMessagesPathConstant  = "/v1/messages"
	anthropicAPIKeyHeaderConstant  = "x-api-key"
	anthropicVersionHeaderConstant = "anthropic-version"
	anthropicVersionValueConstant  = "2023-06-01"
	anthropicUserRoleConstant      = "user"
)

type anthropicMessagesRequest struct {
	Model         string             `json:"model"`
	MaxTokens     int                `json:"max_tokens"`
	System        string             `json:"system,omitempty"`
	Messages      []anthropicMessage `json:"messages"`
	Temperature   *float64           `json:"temperature,omitempty"`
	StopSequences []string           `json:"stop_sequences,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnthropicTransport calls the Anthropic messages API.
type AnthropicTransport struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewAnthropicTransport constructs a transport for the Anthropic messages API.
func NewAnthropicTransport(configuration Configuration, httpClient *http.Client) *AnthropicTransport {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: configuration.Timeout}
	}
	return &AnthropicTransport{httpClient: httpClient, baseURL: configuration.BaseURL, apiKey: configuration.APIKey}
}

// Send implements Transport. The messages API rejects whitespace-only stop sequences, so they are omitted.
func (transport *AnthropicTransport) Send(executionContext context.Context, request TransportRequest) (ResponseEnvelope, error) {
	stopSequences := make([]string, 0, len(request.StopSequences))
	for _, stopSequence := range request.StopSequences {
		if len(strings.TrimSpace(stopSequence)) > 0 {
			stopSequences = append(stopSequences, stopSequence)
		}
	}

	payload := anthropicMessagesRequest{
		Model:         request.Model,
		MaxTokens:     request.MaxTokens,
		System:        request.SystemPrompt,
		Messages:      []anthropicMessage{{Role: anthropicUserRoleConstant, Content: request.UserPrompt}},
		Temperature:   request.Temperature,
		StopSequences: stopSequences,
	}
	if payload.MaxTokens <= 0 {
		payload.MaxTokens = defaultMaxTokensConstant
	}

	response := &AnthropicResponse{}
	headers := map[string]string{
		anthropicAPIKeyHeaderConstant:  transport.apiKey,
		anthropicVersionHeaderConstant: anthropicVersionValueConstant,
	}
	if sendError := postJSON(executionContext, transport.httpClient, ProviderAnthropic, transport.baseURL+anthropicMessagesPathConstant, headers, payload, response); sendError != nil {
		return ResponseEnvelope{}, sendError
	}
	return ResponseEnvelope{Kind: ResponseKindAnthropic, Anthropic: response}, nil
}
