package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ModelTier selects which configured model serves a request.
type ModelTier string

// Supported model tiers.
const (
	ModelTierFast  ModelTier = "fast"
	ModelTierSmart ModelTier = "smart"
)

const (
	noStructuredOutputMessageConstant      = "no structured output"
	unknownModelTierMessageConstant        = "unknown model tier"
	transportMissingMessageConstant        = "completion transport not configured"
	unknownModelTierErrorTemplateConstant  = "%w: %q"
	completionFailureTemplateConstant      = "%s completion (%s tier) failed: %w"
	structuredExtractionErrorTemplateConst = "%w for %s: %v"
	structuredInstructionTemplateConstant  = "%s\n\nRespond with a single JSON object only, without markdown fences or commentary. The object must conform to the JSON schema named %q:\n%s"
	requestStartedLogMessageConstant       = "completion request started"
	requestCompletedLogMessageConstant     = "completion request completed"
	requestFailedLogMessageConstant        = "completion request failed"
	logFieldRequestIdentifierConstant      = "request_id"
	logFieldProviderConstant               = "provider"
	logFieldModelTierConstant              = "model_tier"
	logFieldModelConstant                  = "model"
	logFieldStructuredConstant             = "structured"
	logFieldDurationConstant               = "duration"
	logFieldResponseCharactersConstant     = "response_characters"
)

// ErrNoStructuredOutput indicates a structured request produced no schema-conformant object.
var ErrNoStructuredOutput = errors.New(noStructuredOutputMessageConstant)

// ErrUnknownModelTier indicates a request named a tier other than fast or smart.
var ErrUnknownModelTier = errors.New(unknownModelTierMessageConstant)

// ErrTransportNotConfigured indicates a Client was constructed without a transport.
var ErrTransportNotConfigured = errors.New(transportMissingMessageConstant)

// Request describes one completion call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	ModelTier    ModelTier
	// MaxTokens of zero applies the configured default.
	MaxTokens int
	// Temperature of nil leaves the provider default.
	Temperature   *float64
	StopSequences []string
}

// Schema names and validates the object a structured request must produce.
type Schema struct {
	Name string
	// Definition is a JSON schema document shown to the model.
	Definition json.RawMessage
	// Validate rejects well-formed JSON that does not satisfy the caller's contract. Nil accepts any object.
	Validate func(object json.RawMessage) error
}

// Gateway produces text completions.
type Gateway interface {
	Complete(executionContext context.Context, request Request) (string, error)
	CompleteStructured(executionContext context.Context, request Request, schema Schema) (json.RawMessage, error)
}

// TransportRequest is a fully resolved provider call.
type TransportRequest struct {
	Model         string
	SystemPrompt  string
	UserPrompt    string
	MaxTokens     int
	Temperature   *float64
	StopSequences []string
	// JSONOutput asks the provider for a JSON object response when it supports that natively.
	JSONOutput bool
}

// Transport sends a request to one provider and returns its tagged response.
type Transport interface {
	Send(executionContext context.Context, request TransportRequest) (ResponseEnvelope, error)
}

// Client implements Gateway on top of a provider Transport.
type Client struct {
	configuration       Configuration
	transport           Transport
	logger              *zap.Logger
	requestIdentifierFn func() string
}

// NewClient constructs a Client. The configuration must already be sanitized and valid.
func NewClient(configuration Configuration, transport Transport, logger *zap.Logger) (*Client, error) {
	if transport == nil {
		return nil, ErrTransportNotConfigured
	}
	if validationError := configuration.Validate(); validationError != nil {
		return nil, validationError
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{configuration: configuration, transport: transport, logger: logger, requestIdentifierFn: uuid.NewString}, nil
}

// Complete returns the provider's raw text.
func (client *Client) Complete(executionContext context.Context, request Request) (string, error) {
	return client.send(executionContext, request, false)
}

// CompleteStructured returns the first JSON object in the response after schema validation. Responses without such
// an object yield an error wrapping ErrNoStructuredOutput. Transport failures are returned unwrapped.
func (client *Client) CompleteStructured(executionContext context.Context, request Request, schema Schema) (json.RawMessage, error) {
	structuredRequest := request
	structuredRequest.SystemPrompt = fmt.Sprintf(structuredInstructionTemplateConstant, strings.TrimSpace(request.SystemPrompt), schema.Name, string(schema.Definition))

	responseText, sendError := client.send(executionContext, structuredRequest, true)
	if sendError != nil {
		return nil, sendError
	}

	object, extractionError := ExtractJSONObject(responseText)
	if extractionError != nil {
		return nil, fmt.Errorf(structuredExtractionErrorTemplateConst, ErrNoStructuredOutput, schema.Name, extractionError)
	}
	if schema.Validate != nil {
		if validationError := schema.Validate(object); validationError != nil {
			return nil, fmt.Errorf(structuredExtractionErrorTemplateConst, ErrNoStructuredOutput, schema.Name, validationError)
		}
	}
	return object, nil
}

func (client *Client) send(executionContext context.Context, request Request, structured bool) (string, error) {
	model, modelError := client.configuration.ModelFor(request.ModelTier)
	if modelError != nil {
		return "", modelError
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = client.configuration.MaxTokens
	}

	requestLogger := client.logger.With(
		zap.String(logFieldRequestIdentifierConstant, client.requestIdentifierFn()),
		zap.String(logFieldProviderConstant, string(client.configuration.Provider)),
		zap.String(logFieldModelTierConstant, string(request.ModelTier)),
		zap.String(logFieldModelConstant, model),
		zap.Bool(logFieldStructuredConstant, structured),
	)
	requestLogger.Debug(requestStartedLogMessageConstant)
	startTime := time.Now()

	envelope, transportError := client.transport.Send(executionContext, TransportRequest{
		Model:         model,
		SystemPrompt:  request.SystemPrompt,
		UserPrompt:    request.UserPrompt,
		MaxTokens:     maxTokens,
		Temperature:   request.Temperature,
		StopSequences: append([]string{}, request.StopSequences...),
		JSONOutput:    structured,
	})
	if transportError == nil {
		var responseText string
		responseText, transportError = envelope.Text()
		if transportError == nil {
			requestLogger.Debug(requestCompletedLogMessageConstant, zap.Duration(logFieldDurationConstant, time.Since(startTime)), zap.Int(logFieldResponseCharactersConstant, len(responseText)))
			return responseText, nil
		}
	}

	requestLogger.Debug(requestFailedLogMessageConstant, zap.Duration(logFieldDurationConstant, time.Since(startTime)), zap.Error(transportError))
	return "", fmt.Errorf(completionFailureTemplateConstant, client.configuration.Provider, request.ModelTier, transportError)
}
