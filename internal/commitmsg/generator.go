package commitmsg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"go.uber.org/zap"

	"github.com/temirov/aigit/internal/completion"
)

const (
	// SystemPromptConstant fixes the style of generated commit subjects.
	SystemPromptConstant = "You are a helpful assistant that generates concise, clear, and useful git commit messages. " +
		"Your output will be used directly as the commit message, so it must be in its final form. Your message should " +
		"be concise and to the point (<30 chars). If the changes are not all related to the same feature/bug/etc, then " +
		"your commit message should describe the multiple purposes comma separated. Avoid using vague, blanket words " +
		"like 'refactor'.\n\nExamples:\n" +
		"Adjust search input behavior, fix mobile layout\n" +
		"Update card styles\n" +
		"Fix mobile layout\n" +
		"Change pricing\n" +
		"Track important user actions\n" +
		"Integrate posthog\n" +
		"Integrate stripe\n" +
		"Updated create lesson test\n" +
		"More resilient test cases\n" +
		"etc..."

	messageSchemaNameConstant        = "commit_message"
	messageSchemaDefinitionConstant  = `{"type":"object","properties":{"message":{"type":"string","description":"single-line commit subject"}},"required":["message"],"additionalProperties":false}`
	structuredStrategyNameConstant   = "structured"
	plainTextStrategyNameConstant    = "plain_text"
	defaultStrategyNameConstant      = "default"
	plainTextMaxTokensConstant       = 50
	structuredMaxTokensConstant      = 100
	generationTemperatureConstant    = 0.9
	plainTextStopSequenceConstant    = "\n"
	singleFileMessageTemplateConst   = "Update %s"
	multipleFilesTemplateConstant    = "Update %d files"
	noFilesMessageConstant           = "Update files"
	unusableMessageMessageConstant   = "commit message is not usable"
	messageUnavailableMessageConst   = "no commit message strategy produced a message"
	generationCanceledTemplateConst  = "commit message generation canceled: %w"
	strategyFailedLogMessageConstant = "commit message strategy failed"
	strategyUsedLogMessageConstant   = "commit message generated"
	logFieldStrategyConstant         = "strategy"
	logFieldMessageConstant          = "message"
)

// ErrUnusableMessage indicates completion text that normalizes to nothing usable.
var ErrUnusableMessage = errors.New(unusableMessageMessageConstant)

// ErrMessageUnavailable indicates every strategy declined to produce a message.
var ErrMessageUnavailable = errors.New(messageUnavailableMessageConst)

// MessageInput describes the staged change a message is generated for.
type MessageInput struct {
	Files []string
	// Diff is the bounded staged diff context.
	Diff string
}

// Strategy is one way of producing a commit message. A false result without an error means the strategy declined.
type Strategy interface {
	Name() string
	Generate(executionContext context.Context, input MessageInput) (string, bool, error)
}

// Generator tries its strategies in order and returns the first usable message.
type Generator struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewGenerator builds the standard chain: structured completion, plain-text completion, then a deterministic
// message derived from the file list.
func NewGenerator(gateway completion.Gateway, logger *zap.Logger) *Generator {
	return NewGeneratorWithStrategies(logger,
		StructuredStrategy{Gateway: gateway},
		PlainTextStrategy{Gateway: gateway},
		DefaultStrategy{},
	)
}

// NewGeneratorWithStrategies builds a Generator over an explicit strategy list.
func NewGeneratorWithStrategies(logger *zap.Logger, strategies ...Strategy) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{strategies: strategies, logger: logger}
}

// Generate returns the first usable message. Strategy failures are logged and the next strategy is tried; only
// cancellation of the context stops the chain early.
func (generator *Generator) Generate(executionContext context.Context, input MessageInput) (string, error) {
	for _, strategy := range generator.strategies {
		message, produced, strategyError := strategy.Generate(executionContext, input)
		if contextError := executionContext.Err(); contextError != nil {
			return "", fmt.Errorf(generationCanceledTemplateConst, contextError)
		}
		if strategyError != nil {
			generator.logger.Debug(strategyFailedLogMessageConstant, zap.String(logFieldStrategyConstant, strategy.Name()), zap.Error(strategyError))
			continue
		}
		if !produced {
			continue
		}
		normalized := Normalize(message)
		if len(normalized) == 0 {
			generator.logger.Debug(strategyFailedLogMessageConstant, zap.String(logFieldStrategyConstant, strategy.Name()), zap.Error(ErrUnusableMessage))
			continue
		}
		generator.logger.Debug(strategyUsedLogMessageConstant, zap.String(logFieldStrategyConstant, strategy.Name()), zap.String(logFieldMessageConstant, normalized))
		return normalized, nil
	}
	return "", ErrMessageUnavailable
}

// StructuredStrategy asks the fast tier for a {"message": ...} object.
type StructuredStrategy struct {
	Gateway completion.Gateway
}

// Name identifies the strategy in logs.
func (StructuredStrategy) Name() string {
	return structuredStrategyNameConstant
}

// Generate implements Strategy.
func (strategy StructuredStrategy) Generate(executionContext context.Context, input MessageInput) (string, bool, error) {
	if strategy.Gateway == nil {
		return "", false, nil
	}
	object, completionError := strategy.Gateway.CompleteStructured(executionContext, messageRequest(input, structuredMaxTokensConstant, nil), MessageSchema())
	if completionError != nil {
		return "", false, completionError
	}
	var decoded messageObject
	if decodeError := json.Unmarshal(object, &decoded); decodeError != nil {
		return "", false, decodeError
	}
	return decoded.Message, true, nil
}

// PlainTextStrategy asks the fast tier for the subject line as plain text.
type PlainTextStrategy struct {
	Gateway completion.Gateway
}

// Name identifies the strategy in logs.
func (PlainTextStrategy) Name() string {
	return plainTextStrategyNameConstant
}

// Generate implements Strategy.
func (strategy PlainTextStrategy) Generate(executionContext context.Context, input MessageInput) (string, bool, error) {
	if strategy.Gateway == nil {
		return "", false, nil
	}
	responseText, completionError := strategy.Gateway.Complete(executionContext, messageRequest(input, plainTextMaxTokensConstant, []string{plainTextStopSequenceConstant}))
	if completionError != nil {
		return "", false, completionError
	}
	return responseText, true, nil
}

// DefaultStrategy derives a message from the staged file list without the gateway.
type DefaultStrategy struct{}

// Name identifies the strategy in logs.
func (DefaultStrategy) Name() string {
	return defaultStrategyNameConstant
}

// Generate implements Strategy.
func (DefaultStrategy) Generate(_ context.Context, input MessageInput) (string, bool, error) {
	return DefaultMessage(input.Files), true, nil
}

// DefaultMessage names the single changed file or counts the changed files.
func DefaultMessage(files []string) string {
	switch len(files) {
	case 0:
		return noFilesMessageConstant
	case 1:
		return fmt.Sprintf(singleFileMessageTemplateConst, path.Base(files[0]))
	default:
		return fmt.Sprintf(multipleFilesTemplateConstant, len(files))
	}
}

type messageObject struct {
	Message string `json:"message"`
}

// MessageSchema describes the structured commit message response.
func MessageSchema() completion.Schema {
	return completion.Schema{
		Name:       messageSchemaNameConstant,
		Definition: json.RawMessage(messageSchemaDefinitionConstant),
		Validate: func(object json.RawMessage) error {
			var decoded messageObject
			if decodeError := json.Unmarshal(object, &decoded); decodeError != nil {
				return decodeError
			}
			if len(Normalize(decoded.Message)) == 0 {
				return ErrUnusableMessage
			}
			return nil
		},
	}
}

func messageRequest(input MessageInput, maxTokens int, stopSequences []string) completion.Request {
	temperature := generationTemperatureConstant
	return completion.Request{
		SystemPrompt:  SystemPromptConstant,
		UserPrompt:    input.Diff,
		ModelTier:     completion.ModelTierFast,
		MaxTokens:     maxTokens,
		Temperature:   &temperature,
		StopSequences: stopSequences,
	}
}
