package commitmsg

import (
	"context"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// DefaultMaxPromptCharactersConstant bounds the diff text sent with a message or plan request.
	DefaultMaxPromptCharactersConstant = 2000 * 4

	patchFileHeaderPrefixConstant    = "diff --git "
	patchDestinationPrefixConstant   = " b/"
	statPathSeparatorConstant        = " | "
	diffSectionSeparatorConstant     = "\n\n"
	invalidPatternErrorTemplateConst = "invalid exclude pattern %q: %w"
	stagedDiffErrorTemplateConstant  = "failed to collect staged diff: %w"
)

// DiffSource reads the staged changes of a repository.
type DiffSource interface {
	StagedDiffStat(executionContext context.Context, repositoryPath string) (string, error)
	StagedPatch(executionContext context.Context, repositoryPath string) (string, error)
}

// DiffOptions controls which staged changes are shown to the model.
type DiffOptions struct {
	// ExcludePatterns are doublestar globs matched against repository-relative paths.
	ExcludePatterns []string
	// MaxCharacters of zero or less applies DefaultMaxPromptCharactersConstant.
	MaxCharacters int
}

// ValidatePatterns reports the first malformed exclude pattern.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf(invalidPatternErrorTemplateConst, pattern, doublestar.ErrBadPattern)
		}
	}
	return nil
}

// CollectStagedDiff returns the staged diff stat followed by the staged patch, with excluded paths removed and the
// result truncated to the configured size.
func CollectStagedDiff(executionContext context.Context, source DiffSource, repositoryPath string, options DiffOptions) (string, error) {
	statOutput, statError := source.StagedDiffStat(executionContext, repositoryPath)
	if statError != nil {
		return "", fmt.Errorf(stagedDiffErrorTemplateConstant, statError)
	}
	patchOutput, patchError := source.StagedPatch(executionContext, repositoryPath)
	if patchError != nil {
		return "", fmt.Errorf(stagedDiffErrorTemplateConstant, patchError)
	}

	combined := strings.TrimRight(FilterStat(statOutput, options.ExcludePatterns), lineFeedConstant) +
		diffSectionSeparatorConstant +
		FilterPatch(patchOutput, options.ExcludePatterns)
	return Truncate(combined, options.MaxCharacters), nil
}

// IsExcluded reports whether the repository-relative path matches any exclude pattern.
func IsExcluded(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}
	return false
}

// FilterPatch drops the per-file sections of a unified patch whose destination path is excluded.
func FilterPatch(patch string, patterns []string) string {
	if len(patterns) == 0 {
		return patch
	}
	var builder strings.Builder
	keepSection := true
	for _, line := range strings.SplitAfter(patch, lineFeedConstant) {
		if strings.HasPrefix(line, patchFileHeaderPrefixConstant) {
			keepSection = !IsExcluded(patchSectionPath(line), patterns)
		}
		if keepSection {
			builder.WriteString(line)
		}
	}
	return builder.String()
}

// FilterStat drops the `--stat` lines of excluded paths and keeps the totals line.
func FilterStat(stat string, patterns []string) string {
	if len(patterns) == 0 {
		return stat
	}
	var builder strings.Builder
	for _, line := range strings.SplitAfter(stat, lineFeedConstant) {
		separatorIndex := strings.Index(line, statPathSeparatorConstant)
		if separatorIndex >= 0 && IsExcluded(strings.TrimSpace(line[:separatorIndex]), patterns) {
			continue
		}
		builder.WriteString(line)
	}
	return builder.String()
}

// Truncate limits text to maxCharacters bytes, trimming surrounding whitespace of a shortened result.
func Truncate(text string, maxCharacters int) string {
	if maxCharacters <= 0 {
		maxCharacters = DefaultMaxPromptCharactersConstant
	}
	if len(text) <= maxCharacters {
		return text
	}
	return strings.TrimSpace(strings.ToValidUTF8(text[:maxCharacters], ""))
}

func patchSectionPath(headerLine string) string {
	header := strings.TrimRight(headerLine, "\r\n")
	destinationIndex := strings.LastIndex(header, patchDestinationPrefixConstant)
	if destinationIndex < 0 {
		return strings.TrimPrefix(header, patchFileHeaderPrefixConstant)
	}
	return header[destinationIndex+len(patchDestinationPrefixConstant):]
}
