package conflicts

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/aigit/internal/completion"
	"github.com/temirov/aigit/internal/shared"
	"github.com/temirov/aigit/internal/utils"
)

const (
	// DefaultContextLinesConstant bounds the unchanged lines shown on each side of a conflict block.
	DefaultContextLinesConstant = 20

	resolutionSystemPromptConstant = "You resolve git merge conflicts. You receive one conflict block from a file together with the " +
		"unchanged lines around it. Combine both sides so that the intent of each is preserved and the surrounding code " +
		"stays valid. Return only the literal replacement text for the conflict block: no explanation, no markdown, no " +
		"code fences, and no conflict markers. Do not repeat the surrounding context lines."
	resolutionPromptHeaderTemplateConstant = "File: %s\nConflict %d of %d\n\n"
	resolutionBeforeSectionConstant        = "Unchanged lines before the conflict:\n"
	resolutionOursSectionConstant          = "Ours (current branch):\n"
	resolutionTheirsSectionConstant        = "Theirs (incoming branch):\n"
	resolutionAfterSectionConstant         = "Unchanged lines after the conflict:\n"
	resolutionNoLinesPlaceholderConstant   = "(none)\n"
	resolutionSectionSeparatorConstant     = "\n"

	gatewayMissingMessageConstant        = "conflict resolver requires a completion gateway"
	emptyResolutionErrorTemplateConstant = "model returned empty resolution for conflict %d/%d"
	residualMarkersErrorTemplateConstant = "model returned unresolved markers for conflict %d/%d"
	blockCompletionErrorTemplateConstant = "conflict %d/%d in %s: %w"
	fileResolutionErrorTemplateConstant  = "failed to resolve %s: %w"

	resolvingBlockLogMessageConstant = "resolving conflict block"
	resolvedFileLogMessageConstant   = "resolved conflicted file"
	logFieldFilePathConstant         = "file"
	logFieldOrdinalConstant          = "conflict"
	logFieldTotalConstant            = "conflicts"
	logFieldStartLineConstant        = "start_line"
)

// ErrGatewayNotConfigured indicates a Resolver without a completion gateway.
var ErrGatewayNotConfigured = errors.New(gatewayMissingMessageConstant)

// EmptyResolutionError reports a resolution that contained no text.
type EmptyResolutionError struct {
	Ordinal int
	Total   int
}

// Error describes the rejected resolution.
func (resolutionError EmptyResolutionError) Error() string {
	return fmt.Sprintf(emptyResolutionErrorTemplateConstant, resolutionError.Ordinal, resolutionError.Total)
}

// UnresolvedMarkersError reports a resolution that still contained conflict markers.
type UnresolvedMarkersError struct {
	Ordinal int
	Total   int
}

// Error describes the rejected resolution.
func (resolutionError UnresolvedMarkersError) Error() string {
	return fmt.Sprintf(residualMarkersErrorTemplateConstant, resolutionError.Ordinal, resolutionError.Total)
}

// ResolvedBlock pairs a conflict block with its replacement text.
type ResolvedBlock struct {
	Block      Block
	Resolution string
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// ContextLines of zero or less applies DefaultContextLinesConstant.
	ContextLines int
}

// Resolver resolves conflict blocks through the smart completion tier.
type Resolver struct {
	gateway      completion.Gateway
	contextLines int
	logger       *zap.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(gateway completion.Gateway, options ResolverOptions, logger *zap.Logger) (*Resolver, error) {
	if gateway == nil {
		return nil, ErrGatewayNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	contextLines := options.ContextLines
	if contextLines <= 0 {
		contextLines = DefaultContextLinesConstant
	}
	return &Resolver{gateway: gateway, contextLines: contextLines, logger: logger}, nil
}

// ResolveContent parses content, resolves every block, and returns the reconstructed file. Nothing is returned
// unless every block resolves.
func (resolver *Resolver) ResolveContent(executionContext context.Context, filePath string, content string) (string, error) {
	lines := SplitLines(content)
	blocks, parseError := ParseBlocks(filePath, lines)
	if parseError != nil {
		return "", parseError
	}

	resolvedBlocks, resolveError := resolver.ResolveBlocks(executionContext, filePath, lines, blocks)
	if resolveError != nil {
		return "", fmt.Errorf(fileResolutionErrorTemplateConstant, filePath, resolveError)
	}

	resolver.logger.Debug(resolvedFileLogMessageConstant, zap.String(logFieldFilePathConstant, filePath), zap.Int(logFieldTotalConstant, len(blocks)))
	return Reconstruct(lines, resolvedBlocks), nil
}

// ResolveBlocks asks the gateway for a replacement of each block in order and stops at the first failure.
func (resolver *Resolver) ResolveBlocks(executionContext context.Context, filePath string, lines []string, blocks []Block) ([]ResolvedBlock, error) {
	resolvedBlocks := make([]ResolvedBlock, 0, len(blocks))
	for blockIndex, block := range blocks {
		ordinal := blockIndex + 1
		resolver.logger.Debug(
			resolvingBlockLogMessageConstant,
			zap.String(logFieldFilePathConstant, filePath),
			zap.Int(logFieldOrdinalConstant, ordinal),
			zap.Int(logFieldTotalConstant, len(blocks)),
			zap.Int(logFieldStartLineConstant, block.StartLine+1),
		)

		rawResolution, completionError := resolver.gateway.Complete(executionContext, completion.Request{
			SystemPrompt: resolutionSystemPromptConstant,
			UserPrompt:   BuildResolutionPrompt(filePath, lines, blocks, blockIndex, resolver.contextLines),
			ModelTier:    completion.ModelTierSmart,
		})
		if completionError != nil {
			return nil, fmt.Errorf(blockCompletionErrorTemplateConstant, ordinal, len(blocks), filePath, completionError)
		}

		resolution, cleanError := CleanResolution(rawResolution, block, ordinal, len(blocks))
		if cleanError != nil {
			return nil, cleanError
		}
		resolvedBlocks = append(resolvedBlocks, ResolvedBlock{Block: block, Resolution: resolution})
	}
	return resolvedBlocks, nil
}

// BuildResolutionPrompt renders the user prompt for blocks[blockIndex]. The context windows hold at most
// contextLines lines and never cross a neighbouring block or the file edges.
func BuildResolutionPrompt(filePath string, lines []string, blocks []Block, blockIndex int, contextLines int) string {
	block := blocks[blockIndex]

	beforeStart := block.StartLine - contextLines
	if blockIndex > 0 && beforeStart <= blocks[blockIndex-1].EndLine {
		beforeStart = blocks[blockIndex-1].EndLine + 1
	}
	if beforeStart < 0 {
		beforeStart = 0
	}

	afterEnd := block.EndLine + 1 + contextLines
	if blockIndex+1 < len(blocks) && afterEnd > blocks[blockIndex+1].StartLine {
		afterEnd = blocks[blockIndex+1].StartLine
	}
	if afterEnd > len(lines) {
		afterEnd = len(lines)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(resolutionPromptHeaderTemplateConstant, filePath, blockIndex+1, len(blocks)))
	writePromptSection(&builder, resolutionBeforeSectionConstant, lines[beforeStart:block.StartLine])
	writePromptSection(&builder, resolutionOursSectionConstant, block.OursLines)
	writePromptSection(&builder, resolutionTheirsSectionConstant, block.TheirsLines)
	writePromptSection(&builder, resolutionAfterSectionConstant, lines[block.EndLine+1:afterEnd])
	return builder.String()
}

func writePromptSection(builder *strings.Builder, heading string, sectionLines []string) {
	if builder.Len() > 0 {
		builder.WriteString(resolutionSectionSeparatorConstant)
	}
	builder.WriteString(heading)
	if len(sectionLines) == 0 {
		builder.WriteString(resolutionNoLinesPlaceholderConstant)
		return
	}
	for _, line := range sectionLines {
		builder.WriteString(line)
	}
	if !strings.HasSuffix(sectionLines[len(sectionLines)-1], lineFeedConstant) {
		builder.WriteString(lineFeedConstant)
	}
}

// CleanResolution validates a raw gateway response for one block: a single outer code fence is removed, empty text
// and residual markers are rejected, and a missing trailing newline is restored when either side of the block ended
// with one.
func CleanResolution(rawResolution string, block Block, ordinal int, total int) (string, error) {
	cleaned, _ := utils.StripCodeFence(rawResolution)
	if len(strings.TrimSpace(cleaned)) == 0 {
		return "", EmptyResolutionError{Ordinal: ordinal, Total: total}
	}
	if ContainsMarkers(cleaned) {
		return "", UnresolvedMarkersError{Ordinal: ordinal, Total: total}
	}
	if strings.HasSuffix(cleaned, lineFeedConstant) {
		return cleaned, nil
	}
	if terminator, endsWithNewline := sideTerminator(block.OursLines); endsWithNewline {
		return cleaned + terminator, nil
	}
	if terminator, endsWithNewline := sideTerminator(block.TheirsLines); endsWithNewline {
		return cleaned + terminator, nil
	}
	return cleaned, nil
}

func sideTerminator(sideLines []string) (string, bool) {
	if len(sideLines) == 0 {
		return "", false
	}
	lastLine := sideLines[len(sideLines)-1]
	if strings.HasSuffix(lastLine, carriageReturnLineFeedConstant) {
		return carriageReturnLineFeedConstant, true
	}
	if strings.HasSuffix(lastLine, lineFeedConstant) {
		return lineFeedConstant, true
	}
	return "", false
}

// ResolveFile resolves every conflict in the file at relativePath under repositoryPath and writes the result once.
// The file is left untouched when any block fails.
func (resolver *Resolver) ResolveFile(executionContext context.Context, fileSystem shared.FileSystem, repositoryPath string, relativePath string) error {
	absolutePath := filepath.Join(repositoryPath, relativePath)
	content, readError := ReadFile(fileSystem, absolutePath)
	if readError != nil {
		return readError
	}

	resolvedContent, resolveError := resolver.ResolveContent(executionContext, relativePath, content)
	if resolveError != nil {
		return resolveError
	}
	return WriteFile(fileSystem, absolutePath, resolvedContent)
}
