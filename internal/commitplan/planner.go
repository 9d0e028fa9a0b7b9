package commitplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/aigit/internal/commitmsg"
	"github.com/temirov/aigit/internal/completion"
)

const (
	planSystemPromptConstant = "You split staged git changes into logical commits. Group files that belong to the same " +
		"feature, fix, or concern. Every staged file must appear in exactly one commit, using the exact paths given. " +
		"Order the commits so that each one makes sense on top of the previous ones. Write each message as a concise " +
		"single-line subject (<50 chars) in the imperative mood, without a trailing period. Avoid vague words like " +
		"'refactor' or 'update stuff'."
	planSchemaNameConstant                 = "commit_plan"
	planSchemaDefinitionConstant           = `{"type":"object","properties":{"commits":{"type":"array","items":{"type":"object","properties":{"message":{"type":"string"},"files":{"type":"array","items":{"type":"string"}}},"required":["message","files"]}}},"required":["commits"]}`
	planPromptFilesHeaderConstant          = "Staged files:\n"
	planPromptFileLineTemplate             = "- %s\n"
	planPromptDiffHeaderConstant           = "\nStaged changes:\n"
	missingCommitsMessageConstant          = "plan object has no commits array"
	messageGeneratorMissingMessageConstant = "commit planner requires a message generator"
	fallbackMessageErrorTemplateConstant   = "failed to generate fallback commit message: %w"
	planCanceledErrorTemplateConstant      = "commit planning canceled: %w"
	planUnavailableLogMessageConstant      = "commit plan unavailable, using a single commit"
	planNormalizedLogMessageConstant       = "commit plan normalized"
	logFieldProposedGroupsConstant         = "proposed_groups"
	logFieldGroupsConstant                 = "groups"
)

var errMissingCommits = errors.New(missingCommitsMessageConstant)

// ErrMessageGeneratorNotConfigured indicates a Planner without a fallback message generator.
var ErrMessageGeneratorNotConfigured = errors.New(messageGeneratorMissingMessageConstant)

// MessageGenerator produces the single-commit message used when no plan survives normalization.
type MessageGenerator interface {
	Generate(executionContext context.Context, input commitmsg.MessageInput) (string, error)
}

// PlanInput describes the staged change to plan.
type PlanInput struct {
	StagedFiles []string
	Diff        string
}

// Planner requests a commit plan from the fast completion tier and repairs it.
type Planner struct {
	gateway  completion.Gateway
	messages MessageGenerator
	logger   *zap.Logger
}

// NewPlanner constructs a Planner. A nil gateway always yields the single-commit fallback.
func NewPlanner(gateway completion.Gateway, messages MessageGenerator, logger *zap.Logger) (*Planner, error) {
	if messages == nil {
		return nil, ErrMessageGeneratorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{gateway: gateway, messages: messages, logger: logger}, nil
}

// Plan returns a normalized plan that covers every staged file exactly once. When the gateway yields no usable plan
// the result is one group holding every staged file, with a message from the single-commit path.
func (planner *Planner) Plan(executionContext context.Context, input PlanInput) (Plan, error) {
	proposed, proposalError := planner.propose(executionContext, input)
	if contextError := executionContext.Err(); contextError != nil {
		return Plan{}, fmt.Errorf(planCanceledErrorTemplateConstant, contextError)
	}

	groups := NormalizePlan(proposed, input.StagedFiles)
	plan := Plan{Groups: groups}
	if len(groups) == 0 {
		planner.logger.Info(planUnavailableLogMessageConstant, zap.Int(logFieldProposedGroupsConstant, len(proposed)), zap.Error(proposalError))
		message, messageError := planner.messages.Generate(executionContext, commitmsg.MessageInput{Files: input.StagedFiles, Diff: input.Diff})
		if messageError != nil {
			return Plan{}, fmt.Errorf(fallbackMessageErrorTemplateConstant, messageError)
		}
		plan = Plan{Groups: []Group{{Message: message, Files: append([]string{}, input.StagedFiles...)}}, Fallback: true}
	} else {
		planner.logger.Debug(planNormalizedLogMessageConstant, zap.Int(logFieldProposedGroupsConstant, len(proposed)), zap.Int(logFieldGroupsConstant, len(groups)))
	}

	if verificationError := VerifyPlan(plan.Groups, input.StagedFiles); verificationError != nil {
		return Plan{}, verificationError
	}
	return plan, nil
}

func (planner *Planner) propose(executionContext context.Context, input PlanInput) ([]Group, error) {
	if planner.gateway == nil || len(input.StagedFiles) < 2 {
		return nil, nil
	}
	object, completionError := planner.gateway.CompleteStructured(executionContext, completion.Request{
		SystemPrompt: planSystemPromptConstant,
		UserPrompt:   BuildPlanPrompt(input),
		ModelTier:    completion.ModelTierFast,
	}, PlanSchema())
	if completionError != nil {
		return nil, completionError
	}
	decoded, decodeError := decodePlan(object)
	if decodeError != nil {
		return nil, decodeError
	}
	return decoded.Commits, nil
}

// BuildPlanPrompt lists the staged files followed by the bounded staged diff.
func BuildPlanPrompt(input PlanInput) string {
	var builder strings.Builder
	builder.WriteString(planPromptFilesHeaderConstant)
	for _, stagedFile := range input.StagedFiles {
		builder.WriteString(fmt.Sprintf(planPromptFileLineTemplate, stagedFile))
	}
	builder.WriteString(planPromptDiffHeaderConstant)
	builder.WriteString(input.Diff)
	return builder.String()
}

type planObject struct {
	Commits []Group `json:"commits"`
}

// PlanSchema describes the structured plan response.
func PlanSchema() completion.Schema {
	return completion.Schema{
		Name:       planSchemaNameConstant,
		Definition: json.RawMessage(planSchemaDefinitionConstant),
		Validate: func(object json.RawMessage) error {
			_, decodeError := decodePlan(object)
			return decodeError
		},
	}
}

func decodePlan(object json.RawMessage) (planObject, error) {
	var envelope map[string]json.RawMessage
	if decodeError := json.Unmarshal(object, &envelope); decodeError != nil {
		return planObject{}, decodeError
	}
	if _, present := envelope["commits"]; !present {
		return planObject{}, errMissingCommits
	}
	var decoded planObject
	if decodeError := json.Unmarshal(object, &decoded); decodeError != nil {
		return planObject{}, decodeError
	}
	return decoded, nil
}
