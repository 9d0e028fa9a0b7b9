package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/aigit/internal/commitmsg"
	"github.com/temirov/aigit/internal/completion"
	"github.com/temirov/aigit/internal/utils"
)

const (
	workingTreeSystemPromptConstant = "You summarize uncommitted git changes for the developer who made them. Reply with at most " +
		"five short lines, one per logical change, each starting with \"- \". Name the affected area and what changed. " +
		"Do not restate file statistics and do not add a heading."
	outgoingSystemPromptConstant = "You summarize git commits that are about to be pushed, for the developer pushing them. Reply " +
		"with at most five short lines, one per logical change, each starting with \"- \". Group related commits. Do not " +
		"repeat commit hashes and do not add a heading."
	summaryMaxTokensConstant     = 200
	emptySummaryMessageConstant  = "model returned an empty summary"
	summaryErrorTemplateConstant = "failed to summarize changes: %w"
	statusPromptHeaderConstant   = "Status:\n"
	patchPromptHeaderConstant    = "\n\nChanges:\n"
	outgoingPromptHeaderConstant = "Outgoing commits:\n"
)

// ErrEmptySummary indicates the model produced no summary text.
var ErrEmptySummary = errors.New(emptySummaryMessageConstant)

// Summarizer produces short change summaries through the fast completion tier.
type Summarizer struct {
	gateway       completion.Gateway
	maxCharacters int
}

// NewSummarizer constructs a Summarizer. Prompt material beyond maxCharacters is truncated; zero applies the commit
// prompt bound.
func NewSummarizer(gateway completion.Gateway, maxCharacters int) *Summarizer {
	if maxCharacters <= 0 {
		maxCharacters = commitmsg.DefaultMaxPromptCharactersConstant
	}
	return &Summarizer{gateway: gateway, maxCharacters: maxCharacters}
}

// SummarizeWorkingTree describes the uncommitted changes given the short status and the patch against HEAD.
func (summarizer *Summarizer) SummarizeWorkingTree(executionContext context.Context, status string, patch string) (string, error) {
	material := statusPromptHeaderConstant + strings.TrimSpace(status) + patchPromptHeaderConstant + patch
	return summarizer.summarize(executionContext, workingTreeSystemPromptConstant, material)
}

// SummarizeOutgoing describes the commits listed by the outgoing log and stat.
func (summarizer *Summarizer) SummarizeOutgoing(executionContext context.Context, outgoing string) (string, error) {
	return summarizer.summarize(executionContext, outgoingSystemPromptConstant, outgoingPromptHeaderConstant+outgoing)
}

func (summarizer *Summarizer) summarize(executionContext context.Context, systemPrompt string, material string) (string, error) {
	rawSummary, completionError := summarizer.gateway.Complete(executionContext, completion.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   commitmsg.Truncate(material, summarizer.maxCharacters),
		ModelTier:    completion.ModelTierFast,
		MaxTokens:    summaryMaxTokensConstant,
	})
	if completionError != nil {
		return "", fmt.Errorf(summaryErrorTemplateConstant, completionError)
	}
	unfenced, _ := utils.StripCodeFence(rawSummary)
	summaryText := strings.TrimSpace(unfenced)
	if len(summaryText) == 0 {
		return "", fmt.Errorf(summaryErrorTemplateConstant, ErrEmptySummary)
	}
	return summaryText, nil
}
