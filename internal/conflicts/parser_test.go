package conflicts_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/aigit/internal/conflicts"
)

func TestSplitLinesKeepsTerminators(testInstance *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected []string
	}{
		{name: "empty", content: "", expected: nil},
		{name: "trailing_newline", content: "a\nb\n", expected: []string{"a\n", "b\n"}},
		{name: "no_trailing_newline", content: "a\nb", expected: []string{"a\n", "b"}},
		{name: "crlf", content: "a\r\nb\r\n", expected: []string{"a\r\n", "b\r\n"}},
		{name: "blank_lines", content: "\n\n", expected: []string{"\n", "\n"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			lines := conflicts.SplitLines(testCase.content)
			require.Equal(testInstance, testCase.expected, lines)
			require.Equal(testInstance, testCase.content, strings.Join(lines, ""))
		})
	}
}

func TestParseBlocks(testInstance *testing.T) {
	testCases := []struct {
		name           string
		content        string
		expectedBlocks []conflicts.Block
	}{
		{
			name:    "single_block",
			content: "a\n<<<<<<< HEAD\nlocal-change\n=======\npeer-change\n>>>>>>> feature\nz\n",
			expectedBlocks: []conflicts.Block{
				{StartLine: 1, EndLine: 5, OursLines: []string{"local-change\n"}, TheirsLines: []string{"peer-change\n"}},
			},
		},
		{
			name:    "empty_sides",
			content: "<<<<<<< HEAD\n=======\n>>>>>>> feature\n",
			expectedBlocks: []conflicts.Block{
				{StartLine: 0, EndLine: 2, OursLines: []string{}, TheirsLines: []string{}},
			},
		},
		{
			name:    "crlf_separator",
			content: "<<<<<<< HEAD\r\nx\r\n=======\r\ny\r\n>>>>>>> feature\r\n",
			expectedBlocks: []conflicts.Block{
				{StartLine: 0, EndLine: 4, OursLines: []string{"x\r\n"}, TheirsLines: []string{"y\r\n"}},
			},
		},
		{
			name:    "separator_with_suffix_is_content",
			content: "<<<<<<< HEAD\n======= not a separator\nx\n=======\ny\n>>>>>>> feature",
			expectedBlocks: []conflicts.Block{
				{StartLine: 0, EndLine: 5, OursLines: []string{"======= not a separator\n", "x\n"}, TheirsLines: []string{"y\n"}},
			},
		},
		{
			name:    "opening_marker_without_space_is_content",
			content: "<<<<<<<HEAD\n<<<<<<< HEAD\na\n=======\nb\n>>>>>>> x\n",
			expectedBlocks: []conflicts.Block{
				{StartLine: 1, EndLine: 5, OursLines: []string{"a\n"}, TheirsLines: []string{"b\n"}},
			},
		},
		{
			name:    "two_blocks",
			content: "<<<<<<< HEAD\na\n=======\nb\n>>>>>>> x\nmid\n<<<<<<< HEAD\nc\n=======\nd\n>>>>>>> x\n",
			expectedBlocks: []conflicts.Block{
				{StartLine: 0, EndLine: 4, OursLines: []string{"a\n"}, TheirsLines: []string{"b\n"}},
				{StartLine: 6, EndLine: 10, OursLines: []string{"c\n"}, TheirsLines: []string{"d\n"}},
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			blocks, parseError := conflicts.ParseBlocks(testFilePathConstant, conflicts.SplitLines(testCase.content))
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedBlocks, blocks)
			for _, block := range blocks {
				require.Greater(testInstance, block.EndLine, block.StartLine)
			}
		})
	}
}

func TestParseBlocksMalformed(testInstance *testing.T) {
	testCases := []struct {
		name        string
		content     string
		assertError func(testInstance *testing.T, parseError error)
	}{
		{
			name:    "missing_separator",
			content: "ok\n<<<<<<< HEAD\na\n>>>>>>> x\n",
			assertError: func(testInstance *testing.T, parseError error) {
				var separatorError conflicts.MissingSeparatorError
				require.ErrorAs(testInstance, parseError, &separatorError)
				require.Equal(testInstance, testFilePathConstant, separatorError.FilePath)
				require.Equal(testInstance, 1, separatorError.StartLine)
				require.Contains(testInstance, parseError.Error(), "missing separator marker")
			},
		},
		{
			name:    "missing_end_marker",
			content: "<<<<<<< HEAD\na\n=======\nb\n",
			assertError: func(testInstance *testing.T, parseError error) {
				var endMarkerError conflicts.MissingEndMarkerError
				require.ErrorAs(testInstance, parseError, &endMarkerError)
				require.Contains(testInstance, parseError.Error(), "missing end marker")
				require.Contains(testInstance, parseError.Error(), testFilePathConstant)
			},
		},
		{
			name:    "no_markers",
			content: "=======\n>>>>>>> stray\n",
			assertError: func(testInstance *testing.T, parseError error) {
				require.ErrorIs(testInstance, parseError, conflicts.ErrNoConflictMarkers)
			},
		},
		{
			name:    "empty_file",
			content: "",
			assertError: func(testInstance *testing.T, parseError error) {
				require.ErrorIs(testInstance, parseError, conflicts.ErrNoConflictMarkers)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			blocks, parseError := conflicts.ParseBlocks(testFilePathConstant, conflicts.SplitLines(testCase.content))
			require.Nil(testInstance, blocks)
			testCase.assertError(testInstance, parseError)
		})
	}
}

func TestContainsMarkers(testInstance *testing.T) {
	require.True(testInstance, conflicts.ContainsMarkers("a\n<<<<<<< HEAD\n"))
	require.True(testInstance, conflicts.ContainsMarkers("x>>>>>>>y"))
	require.True(testInstance, conflicts.ContainsMarkers("a\n=======\r\nb"))
	require.False(testInstance, conflicts.ContainsMarkers("a ======= b\n"))
	require.False(testInstance, conflicts.ContainsMarkers("<<<<<< six only\n"))
}

func TestReconstructPreservesUntouchedBytes(testInstance *testing.T) {
	content := "  lead \t\n<<<<<<< HEAD\na\n=======\nb\n>>>>>>> x\r\nmid\r\n<<<<<<< HEAD\nc\n=======\nd\n>>>>>>> x\ntail"
	lines := conflicts.SplitLines(content)
	blocks, parseError := conflicts.ParseBlocks(testFilePathConstant, lines)
	require.NoError(testInstance, parseError)

	reconstructed := conflicts.Reconstruct(lines, []conflicts.ResolvedBlock{
		{Block: blocks[0], Resolution: "AB\n"},
		{Block: blocks[1], Resolution: "CD\n"},
	})
	require.Equal(testInstance, "  lead \t\nAB\nmid\r\nCD\ntail", reconstructed)
	require.Equal(testInstance, content, conflicts.Reconstruct(lines, nil))
}
