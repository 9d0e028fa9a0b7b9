package completion

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ResponseKind tags which provider shape a ResponseEnvelope carries.
type ResponseKind string

// Supported response kinds.
const (
	ResponseKindOpenAI    ResponseKind = "openai"
	ResponseKindAnthropic ResponseKind = "anthropic"
	ResponseKindGemini    ResponseKind = "gemini"
)

const (
	emptyResponseMessageConstant          = "completion response contained no text"
	unknownResponseKindMessageConstant    = "unknown completion response kind"
	missingResponsePayloadMessageConstant = "completion response payload missing"
	unknownResponseKindTemplateConstant   = "%w: %q"
	anthropicTextBlockTypeConstant        = "text"
)

// ErrEmptyResponse indicates the provider answered without any text content.
var ErrEmptyResponse = errors.New(emptyResponseMessageConstant)

// ErrUnknownResponseKind indicates an envelope with an unrecognized tag.
var ErrUnknownResponseKind = errors.New(unknownResponseKindMessageConstant)

// ErrMissingResponsePayload indicates an envelope whose tag has no matching payload.
var ErrMissingResponsePayload = errors.New(missingResponsePayloadMessageConstant)

// ResponseEnvelope is a tagged union of provider response shapes. Exactly the payload matching Kind is set.
type ResponseEnvelope struct {
	Kind      ResponseKind
	OpenAI    *OpenAIResponse
	Anthropic *AnthropicResponse
	Gemini    *genai.GenerateContentResponse
}

// OpenAIResponse is the subset of a chat completion response that carries text.
type OpenAIResponse struct {
	Choices []OpenAIChoice `json:"choices"`
}

// OpenAIChoice is one chat completion candidate.
type OpenAIChoice struct {
	Message      OpenAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

// OpenAIMessage is a chat message.
type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnthropicResponse is the subset of a messages API response that carries text.
type AnthropicResponse struct {
	Content    []AnthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
}

// AnthropicContentBlock is one content block of an Anthropic response.
type AnthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Text extracts the response text with the extraction function bound to the envelope's tag.
func (envelope ResponseEnvelope) Text() (string, error) {
	switch envelope.Kind {
	case ResponseKindOpenAI:
		if envelope.OpenAI == nil {
			return "", ErrMissingResponsePayload
		}
		return extractOpenAIText(*envelope.OpenAI)
	case ResponseKindAnthropic:
		if envelope.Anthropic == nil {
			return "", ErrMissingResponsePayload
		}
		return extractAnthropicText(*envelope.Anthropic)
	case ResponseKindGemini:
		if envelope.Gemini == nil {
			return "", ErrMissingResponsePayload
		}
		return extractGeminiText(envelope.Gemini)
	default:
		return "", fmt.Errorf(unknownResponseKindTemplateConstant, ErrUnknownResponseKind, envelope.Kind)
	}
}

func extractOpenAIText(response OpenAIResponse) (string, error) {
	for _, choice := range response.Choices {
		if len(choice.Message.Content) > 0 {
			return choice.Message.Content, nil
		}
	}
	return "", ErrEmptyResponse
}

func extractAnthropicText(response AnthropicResponse) (string, error) {
	var builder strings.Builder
	for _, block := range response.Content {
		if block.Type == anthropicTextBlockTypeConstant {
			builder.WriteString(block.Text)
		}
	}
	if builder.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return builder.String(), nil
}

func extractGeminiText(response *genai.GenerateContentResponse) (string, error) {
	for _, candidate := range response.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		var builder strings.Builder
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			builder.WriteString(part.Text)
		}
		if builder.Len() > 0 {
			return builder.String(), nil
		}
	}
	return "", ErrEmptyResponse
}
