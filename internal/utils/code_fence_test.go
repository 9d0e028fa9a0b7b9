package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/aigit/internal/utils"
)

func TestStripCodeFence(testInstance *testing.T) {
	testCases := []struct {
		name             string
		input            string
		expectedText     string
		expectedStripped bool
	}{
		{name: "plain_block", input: "```\nlocal-change\npeer-change\n```", expectedText: "local-change\npeer-change\n", expectedStripped: true},
		{name: "info_string_and_padding", input: "  ```go\nfunc main() {}\n```\n", expectedText: "func main() {}\n", expectedStripped: true},
		{name: "crlf_block", input: "```\r\nline\r\n```", expectedText: "line\r\n", expectedStripped: true},
		{name: "empty_block", input: "```\n```", expectedText: "", expectedStripped: true},
		{name: "not_fenced", input: "Fix mobile layout", expectedText: "Fix mobile layout"},
		{name: "text_after_block", input: "```\ncode\n```\nexplanation", expectedText: "```\ncode\n```\nexplanation"},
		{name: "two_blocks", input: "```\none\n```\n```\ntwo\n```", expectedText: "```\none\n```\n```\ntwo\n```"},
		{name: "single_line", input: "```inline```", expectedText: "```inline```"},
		{name: "bare_header", input: "```json", expectedText: "```json"},
		{name: "closing_fence_mid_line", input: "```\ncode```", expectedText: "```\ncode```"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			strippedText, stripped := utils.StripCodeFence(testCase.input)
			require.Equal(testInstance, testCase.expectedStripped, stripped)
			require.Equal(testInstance, testCase.expectedText, strippedText)
		})
	}
}
