package completion

import (
	"context"
	"net/http"
)

const (
	openAIChatCompletionsPathConstant = "/chat/completions"
	openAIAuthorizationHeaderConstant = "Authorization"
	openAIBearerPrefixConstant        = "Bearer "
	openAISystemRoleConstant          = "system"
	openAIUserRoleConstant            = "user"
	openAIJSONObjectFormatConstant    = "json_object"
)

type openAIChatRequest struct {
	Model          string                `json:"model"`
	Messages       []OpenAIMessage       `json:"messages"`
	MaxTokens      int                   `json:"max_tokens,omitempty"`
	Temperature    *float64              `json:"temperature,omitempty"`
	Stop           []string              `json:"stop,omitempty"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

// OpenAITransport calls the OpenAI chat completions API.
type OpenAITransport struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewOpenAITransport constructs a transport for an OpenAI compatible endpoint.
func NewOpenAITransport(configuration Configuration, httpClient *http.Client) *OpenAITransport {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: configuration.Timeout}
	}
	return &OpenAITransport{httpClient: httpClient, baseURL: configuration.BaseURL, apiKey: configuration.APIKey}
}

// Send implements Transport.
func (transport *OpenAITransport) Send(executionContext context.Context, request TransportRequest) (ResponseEnvelope, error) {
	messages := make([]OpenAIMessage, 0, 2)
	if len(request.SystemPrompt) > 0 {
		messages = append(messages, OpenAIMessage{Role: openAISystemRoleConstant, Content: request.SystemPrompt})
	}
	messages = append(messages, OpenAIMessage{Role: openAIUserRoleConstant, Content: request.UserPrompt})

	payload := openAIChatRequest{
		Model:       request.Model,
		Messages:    messages,
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
		Stop:        request.StopSequences,
	}
	if request.JSONOutput {
		payload.ResponseFormat = &openAIResponseFormat{Type: openAIJSONObjectFormatConstant}
	}

	response := &OpenAIResponse{}
	headers := map[string]string{openAIAuthorizationHeaderConstant: openAIBearerPrefixConstant + transport.apiKey}
	if sendError := postJSON(executionContext, transport.httpClient, ProviderOpenAI, transport.baseURL+openAIChatCompletionsPathConstant, headers, payload, response); sendError != nil {
		return ResponseEnvelope{}, sendError
	}
	return ResponseEnvelope{Kind: ResponseKindOpenAI, OpenAI: response}, nil
}
