package completion

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

const (
	geminiClientErrorTemplateConstant  = "failed to create gemini client: %w"
	geminiRequestErrorTemplateConstant = "gemini request failed: %w"
	geminiJSONMimeTypeConstant         = "application/json"
)

// GeminiTransport calls the Gemini API through the genai SDK.
type GeminiTransport struct {
	client *genai.Client
}

// NewGeminiTransport constructs a transport for the Gemini developer API.
func NewGeminiTransport(executionContext context.Context, configuration Configuration, httpClient *http.Client) (*GeminiTransport, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: configuration.Timeout}
	}
	clientConfiguration := &genai.ClientConfig{
		APIKey:     configuration.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if len(configuration.BaseURL) > 0 {
		clientConfiguration.HTTPOptions = genai.HTTPOptions{BaseURL: configuration.BaseURL}
	}

	client, clientError := genai.NewClient(executionContext, clientConfiguration)
	if clientError != nil {
		return nil, fmt.Errorf(geminiClientErrorTemplateConstant, clientError)
	}
	return &GeminiTransport{client: client}, nil
}

// Send implements Transport.
func (transport *GeminiTransport) Send(executionContext context.Context, request TransportRequest) (ResponseEnvelope, error) {
	generationConfiguration := &genai.GenerateContentConfig{
		StopSequences: request.StopSequences,
	}
	if len(request.SystemPrompt) > 0 {
		generationConfiguration.SystemInstruction = genai.NewContentFromText(request.SystemPrompt, genai.RoleUser)
	}
	if request.MaxTokens > 0 {
		generationConfiguration.MaxOutputTokens = int32(request.MaxTokens)
	}
	if request.Temperature != nil {
		temperature := float32(*request.Temperature)
		generationConfiguration.Temperature = &temperature
	}
	if request.JSONOutput {
		generationConfiguration.ResponseMIMEType = geminiJSONMimeTypeConstant
	}

	response, generationError := transport.client.Models.GenerateContent(executionContext, request.Model, genai.Text(request.UserPrompt), generationConfiguration)
	if generationError != nil {
		return ResponseEnvelope{}, fmt.Errorf(geminiRequestErrorTemplateConstant, generationError)
	}
	return ResponseEnvelope{Kind: ResponseKindGemini, Gemini: response}, nil
}
