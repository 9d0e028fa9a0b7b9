package commitmsg

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/temirov/aigit/internal/utils"
)

const (
	maximumNormalizationPassesConstant = 4
	jsonObjectPrefixConstant           = "{"
	codeFencePrefixConstant            = "```"
	lineFeedConstant                   = "\n"
	singleSpaceConstant                = " "
)

var recognizedMessageKeys = []string{"message", "commit_message", "commitMessage", "title", "summary", "subject"}

var wrappingQuoteCharacters = []byte{'"', '\'', '`'}

// Normalize reduces raw completion text to a single-line commit subject. Each pass extracts a message from JSON,
// removes one code fence and one pair of wrapping quotes, keeps the first non-blank line, and collapses whitespace.
// Text that does not settle within the pass limit, or that settles on something unusable, normalizes to "".
func Normalize(raw string) string {
	current := raw
	for pass := 0; pass < maximumNormalizationPassesConstant; pass++ {
		next := normalizePass(current)
		if next == current {
			if !IsUsable(current) {
				return ""
			}
			return current
		}
		current = next
	}
	if normalizePass(current) != current || !IsUsable(current) {
		return ""
	}
	return current
}

// IsUsable reports whether text can serve as a commit subject.
func IsUsable(text string) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) == 0 {
		return false
	}
	if strings.HasPrefix(trimmed, jsonObjectPrefixConstant) || strings.HasPrefix(trimmed, codeFencePrefixConstant) {
		return false
	}
	for _, character := range trimmed {
		if unicode.IsLetter(character) || unicode.IsDigit(character) {
			return true
		}
	}
	return false
}

func normalizePass(text string) string {
	candidate := strings.TrimSpace(text)
	if extracted, found := extractJSONMessage(candidate); found {
		candidate = strings.TrimSpace(extracted)
	}
	if stripped, wasFenced := utils.StripCodeFence(candidate); wasFenced {
		candidate = strings.TrimSpace(stripped)
	}
	candidate = stripWrappingQuotes(candidate)
	candidate = firstNonBlankLine(candidate)
	return strings.Join(strings.Fields(candidate), singleSpaceConstant)
}

func extractJSONMessage(text string) (string, bool) {
	if len(text) == 0 {
		return "", false
	}
	var decoded any
	if decodeError := json.Unmarshal([]byte(text), &decoded); decodeError != nil {
		return "", false
	}

	switch value := decoded.(type) {
	case string:
		return value, true
	case map[string]any:
		for _, key := range recognizedMessageKeys {
			if message, isString := value[key].(string); isString && len(strings.TrimSpace(message)) > 0 {
				return message, true
			}
		}
	case []any:
		for _, element := range value {
			if message, isString := element.(string); isString && len(strings.TrimSpace(message)) > 0 {
				return message, true
			}
		}
	}
	return "", false
}

func stripWrappingQuotes(text string) string {
	if len(text) < 2 {
		return text
	}
	for _, quote := range wrappingQuoteCharacters {
		if text[0] == quote && text[len(text)-1] == quote {
			return text[1 : len(text)-1]
		}
	}
	return text
}

func firstNonBlankLine(text string) string {
	for _, line := range strings.Split(text, lineFeedConstant) {
		if trimmedLine := strings.TrimSpace(line); len(trimmedLine) > 0 {
			return trimmedLine
		}
	}
	return ""
}
