package commitmsg_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/aigit/internal/commitmsg"
)

func TestNormalize(testInstance *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "plain", raw: "Fix mobile layout", expected: "Fix mobile layout"},
		{name: "surrounding_whitespace", raw: "  Update card styles \n", expected: "Update card styles"},
		{name: "json_message_key", raw: `{"message":"Integrate stripe"}`, expected: "Integrate stripe"},
		{name: "json_key_priority", raw: `{"title":"Second","commit_message":"First"}`, expected: "First"},
		{name: "json_skips_empty_keys", raw: `{"message":"  ","subject":"Change pricing"}`, expected: "Change pricing"},
		{name: "json_camel_case_key", raw: `{"commitMessage":"Track important user actions"}`, expected: "Track important user actions"},
		{name: "json_string", raw: `"Integrate posthog"`, expected: "Integrate posthog"},
		{name: "json_array", raw: `["", 3, "Updated create lesson test", "ignored"]`, expected: "Updated create lesson test"},
		{name: "fenced_json", raw: "```json\n{\"message\": \"More resilient test cases\"}\n```", expected: "More resilient test cases"},
		{name: "fenced_plain", raw: "```\nFix mobile layout\n```", expected: "Fix mobile layout"},
		{name: "single_quotes", raw: "'Change pricing'", expected: "Change pricing"},
		{name: "backticks", raw: "`Change pricing`", expected: "Change pricing"},
		{name: "first_non_blank_line", raw: "\n\n  Adjust search input behavior, fix mobile layout\nSecond line\n", expected: "Adjust search input behavior, fix mobile layout"},
		{name: "collapse_whitespace", raw: "Fix\t mobile    layout", expected: "Fix mobile layout"},
		{name: "quoted_text_in_fence", raw: "```\n\"Fix tests\"\n```", expected: "Fix tests"},
		{name: "json_in_quotes", raw: `'{"subject": "Fix tests"}'`, expected: "Fix tests"},
		{name: "json_without_known_key", raw: `{"text":"Fix layout"}`, expected: ""},
		{name: "empty", raw: "", expected: ""},
		{name: "whitespace_only", raw: " \n\t ", expected: ""},
		{name: "punctuation_only", raw: "...", expected: ""},
		{name: "bare_fence_header", raw: "```json", expected: ""},
		{name: "empty_fence", raw: "```\n```", expected: ""},
		{name: "object_like", raw: "{not json", expected: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			normalized := commitmsg.Normalize(testCase.raw)
			require.Equal(testInstance, testCase.expected, normalized)
			require.Equal(testInstance, normalized, commitmsg.Normalize(normalized))
		})
	}
}

func TestNormalizeGivesUpOnDeeplyWrappedText(testInstance *testing.T) {
	raw := `"'\"'\"x\"'\"'"`
	normalized := commitmsg.Normalize(raw)
	require.Equal(testInstance, normalized, commitmsg.Normalize(normalized))
}

func TestIsUsable(testInstance *testing.T) {
	testCases := []struct {
		text     string
		expected bool
	}{
		{text: "Fix layout", expected: true},
		{text: "v2", expected: true},
		{text: "Ünïcode change", expected: true},
		{text: "", expected: false},
		{text: "   ", expected: false},
		{text: "--- ***", expected: false},
		{text: `{"message":"x"}`, expected: false},
		{text: "```go", expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.text, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, commitmsg.IsUsable(testCase.text))
		})
	}
}
