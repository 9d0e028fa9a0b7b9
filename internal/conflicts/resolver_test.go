package conflicts_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/temirov/aigit/internal/completion"
	"github.com/temirov/aigit/internal/conflicts"
	"github.com/temirov/aigit/internal/filesystem"
)

const (
	testdataPatternConstant       = "testdata/*.txtar"
	fixtureInputNameConstant      = "input"
	fixtureExpectedNameConstant   = "expected"
	fixtureResponsePrefixConstant = "response-"
	testFilePathConstant          = "main.go"
)

type scriptedGateway struct {
	responses []string
	err       error
	requests  []completion.Request
}

func (gateway *scriptedGateway) Complete(_ context.Context, request completion.Request) (string, error) {
	gateway.requests = append(gateway.requests, request)
	if gateway.err != nil {
		return "", gateway.err
	}
	if len(gateway.responses) == 0 {
		return "", errors.New("unexpected completion request")
	}
	response := gateway.responses[0]
	gateway.responses = gateway.responses[1:]
	return response, nil
}

func (gateway *scriptedGateway) CompleteStructured(context.Context, completion.Request, completion.Schema) (json.RawMessage, error) {
	return nil, completion.ErrNoStructuredOutput
}

type conflictFixture struct {
	input     string
	expected  string
	responses []string
}

func loadFixture(testInstance *testing.T, archivePath string) conflictFixture {
	testInstance.Helper()
	archive, parseError := txtar.ParseFile(archivePath)
	require.NoError(testInstance, parseError)

	fixture := conflictFixture{}
	responsesByName := map[string]string{}
	for _, archiveFile := range archive.Files {
		switch {
		case archiveFile.Name == fixtureInputNameConstant:
			fixture.input = string(archiveFile.Data)
		case archiveFile.Name == fixtureExpectedNameConstant:
			fixture.expected = string(archiveFile.Data)
		case strings.HasPrefix(archiveFile.Name, fixtureResponsePrefixConstant):
			responsesByName[archiveFile.Name] = strings.TrimSuffix(string(archiveFile.Data), "\n")
		}
	}

	responseNames := make([]string, 0, len(responsesByName))
	for responseName := range responsesByName {
		responseNames = append(responseNames, responseName)
	}
	sort.Strings(responseNames)
	for _, responseName := range responseNames {
		fixture.responses = append(fixture.responses, responsesByName[responseName])
	}
	return fixture
}

func TestResolveContentFixtures(testInstance *testing.T) {
	archivePaths, globError := filepath.Glob(testdataPatternConstant)
	require.NoError(testInstance, globError)
	require.NotEmpty(testInstance, archivePaths)

	for _, archivePath := range archivePaths {
		testInstance.Run(strings.TrimSuffix(filepath.Base(archivePath), ".txtar"), func(testInstance *testing.T) {
			fixture := loadFixture(testInstance, archivePath)
			gateway := &scriptedGateway{responses: fixture.responses}
			resolver, resolverError := conflicts.NewResolver(gateway, conflicts.ResolverOptions{}, nil)
			require.NoError(testInstance, resolverError)

			resolvedContent, resolveError := resolver.ResolveContent(context.Background(), testFilePathConstant, fixture.input)
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, fixture.expected, resolvedContent)
			require.False(testInstance, conflicts.ContainsMarkers(resolvedContent))
			require.Empty(testInstance, gateway.responses)
			for _, request := range gateway.requests {
				require.Equal(testInstance, completion.ModelTierSmart, request.ModelTier)
			}
		})
	}
}

func TestResolveContentFailures(testInstance *testing.T) {
	twoBlockInput := "<<<<<<< HEAD\na\n=======\nb\n>>>>>>> x\nmid\n<<<<<<< HEAD\nc\n=======\nd\n>>>>>>> x\n"
	gatewayFailure := errors.New("gateway unavailable")

	testCases := []struct {
		name             string
		input            string
		responses        []string
		gatewayError     error
		expectedMessage  string
		expectedRequests int
		assertError      func(testInstance *testing.T, resolveError error)
	}{
		{
			name:             "residual_markers",
			input:            "<<<<<<< HEAD\nlocal-change\n=======\npeer-change\n>>>>>>> feature\n",
			responses:        []string{"<<<<<<< still broken"},
			expectedMessage:  "model returned unresolved markers for conflict 1/1",
			expectedRequests: 1,
			assertError: func(testInstance *testing.T, resolveError error) {
				var markersError conflicts.UnresolvedMarkersError
				require.ErrorAs(testInstance, resolveError, &markersError)
				require.Equal(testInstance, 1, markersError.Ordinal)
			},
		},
		{
			name:             "separator_line_left_in_second_block",
			input:            twoBlockInput,
			responses:        []string{"ab", "c\n=======\nd"},
			expectedMessage:  "model returned unresolved markers for conflict 2/2",
			expectedRequests: 2,
		},
		{
			name:             "empty_resolution",
			input:            twoBlockInput,
			responses:        []string{" \n\t"},
			expectedMessage:  "model returned empty resolution for conflict 1/2",
			expectedRequests: 1,
			assertError: func(testInstance *testing.T, resolveError error) {
				var emptyError conflicts.EmptyResolutionError
				require.ErrorAs(testInstance, resolveError, &emptyError)
				require.Equal(testInstance, 2, emptyError.Total)
			},
		},
		{
			name:             "empty_fenced_resolution",
			input:            twoBlockInput,
			responses:        []string{"```\n```"},
			expectedMessage:  "model returned empty resolution for conflict 1/2",
			expectedRequests: 1,
		},
		{
			name:             "no_markers",
			input:            "package main\n",
			expectedMessage:  "no conflict markers found in main.go",
			expectedRequests: 0,
			assertError: func(testInstance *testing.T, resolveError error) {
				require.ErrorIs(testInstance, resolveError, conflicts.ErrNoConflictMarkers)
			},
		},
		{
			name:             "gateway_failure",
			input:            twoBlockInput,
			gatewayError:     gatewayFailure,
			expectedMessage:  "conflict 1/2 in main.go",
			expectedRequests: 1,
			assertError: func(testInstance *testing.T, resolveError error) {
				require.ErrorIs(testInstance, resolveError, gatewayFailure)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			gateway := &scriptedGateway{responses: testCase.responses, err: testCase.gatewayError}
			resolver, resolverError := conflicts.NewResolver(gateway, conflicts.ResolverOptions{}, nil)
			require.NoError(testInstance, resolverError)

			resolvedContent, resolveError := resolver.ResolveContent(context.Background(), testFilePathConstant, testCase.input)
			require.Error(testInstance, resolveError)
			require.Empty(testInstance, resolvedContent)
			require.Contains(testInstance, resolveError.Error(), testCase.expectedMessage)
			require.Len(testInstance, gateway.requests, testCase.expectedRequests)
			if testCase.assertError != nil {
				testCase.assertError(testInstance, resolveError)
			}
		})
	}
}

func TestCleanResolutionTrailingNewline(testInstance *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		block    conflicts.Block
		expected string
	}{
		{name: "ours_lf", raw: "merged", block: conflicts.Block{OursLines: []string{"a\n"}, TheirsLines: []string{"b"}}, expected: "merged\n"},
		{name: "theirs_crlf", raw: "merged", block: conflicts.Block{OursLines: []string{"a"}, TheirsLines: []string{"b\r\n"}}, expected: "merged\r\n"},
		{name: "neither_side", raw: "merged", block: conflicts.Block{OursLines: []string{"a"}, TheirsLines: []string{"b"}}, expected: "merged"},
		{name: "empty_sides", raw: "merged", block: conflicts.Block{}, expected: "merged"},
		{name: "already_terminated", raw: "merged\n\n", block: conflicts.Block{OursLines: []string{"a\n"}}, expected: "merged\n\n"},
		{name: "leading_indentation_kept", raw: "\tmerged", block: conflicts.Block{OursLines: []string{"\ta\n"}}, expected: "\tmerged\n"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			cleaned, cleanError := conflicts.CleanResolution(testCase.raw, testCase.block, 1, 1)
			require.NoError(testInstance, cleanError)
			require.Equal(testInstance, testCase.expected, cleaned)
		})
	}
}

func TestBuildResolutionPromptBoundsContext(testInstance *testing.T) {
	content := "l0\nl1\nl2\nl3\n<<<<<<< HEAD\nours\n=======\ntheirs\n>>>>>>> x\nm0\nm1\n<<<<<<< HEAD\nsecond\n=======\nother\n>>>>>>> x\nt0\n"
	lines := conflicts.SplitLines(content)
	blocks, parseError := conflicts.ParseBlocks(testFilePathConstant, lines)
	require.NoError(testInstance, parseError)
	require.Len(testInstance, blocks, 2)

	firstPrompt := conflicts.BuildResolutionPrompt(testFilePathConstant, lines, blocks, 0, 2)
	require.Contains(testInstance, firstPrompt, "File: main.go\nConflict 1 of 2\n")
	require.Contains(testInstance, firstPrompt, "Unchanged lines before the conflict:\nl2\nl3\n")
	require.NotContains(testInstance, firstPrompt, "l1")
	require.Contains(testInstance, firstPrompt, "Ours (current branch):\nours\n")
	require.Contains(testInstance, firstPrompt, "Theirs (incoming branch):\ntheirs\n")
	require.Contains(testInstance, firstPrompt, "Unchanged lines after the conflict:\nm0\nm1\n")
	require.NotContains(testInstance, firstPrompt, "second")

	secondPrompt := conflicts.BuildResolutionPrompt(testFilePathConstant, lines, blocks, 1, 20)
	require.Contains(testInstance, secondPrompt, "Conflict 2 of 2")
	require.Contains(testInstance, secondPrompt, "Unchanged lines before the conflict:\nm0\nm1\n")
	require.NotContains(testInstance, secondPrompt, "theirs")
	require.Contains(testInstance, secondPrompt, "Unchanged lines after the conflict:\nt0\n")
}

func TestResolveFileWritesOnceAndKeepsMode(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	filePath := filepath.Join(repositoryPath, "notes.txt")
	original := "<<<<<<< HEAD\r\nlocal-change\r\n=======\r\npeer-change\r\n>>>>>>> feature\r\nlast line without newline"
	require.NoError(testInstance, os.WriteFile(filePath, []byte(original), 0o640))

	resolver, resolverError := conflicts.NewResolver(&scriptedGateway{responses: []string{"local-change\r\npeer-change"}}, conflicts.ResolverOptions{}, nil)
	require.NoError(testInstance, resolverError)

	require.NoError(testInstance, resolver.ResolveFile(context.Background(), filesystem.OSFileSystem{}, repositoryPath, "notes.txt"))

	written, readError := os.ReadFile(filePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "local-change\r\npeer-change\r\nlast line without newline", string(written))

	fileInfo, statError := os.Stat(filePath)
	require.NoError(testInstance, statError)
	require.Equal(testInstance, os.FileMode(0o640), fileInfo.Mode().Perm())
}

func TestResolveFileLeavesFileUntouchedOnFailure(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	filePath := filepath.Join(repositoryPath, "notes.txt")
	original := "<<<<<<< HEAD\nlocal-change\n=======\npeer-change\n>>>>>>> feature\n"
	require.NoError(testInstance, os.WriteFile(filePath, []byte(original), 0o644))

	resolver, resolverError := conflicts.NewResolver(&scriptedGateway{responses: []string{"<<<<<<< still broken"}}, conflicts.ResolverOptions{}, nil)
	require.NoError(testInstance, resolverError)

	resolveError := resolver.ResolveFile(context.Background(), filesystem.OSFileSystem{}, repositoryPath, "notes.txt")
	require.Error(testInstance, resolveError)
	require.Contains(testInstance, resolveError.Error(), "returned unresolved markers")

	unchanged, readError := os.ReadFile(filePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, original, string(unchanged))
}

func TestNewResolverRequiresGateway(testInstance *testing.T) {
	resolver, resolverError := conflicts.NewResolver(nil, conflicts.ResolverOptions{}, nil)
	require.Nil(testInstance, resolver)
	require.ErrorIs(testInstance, resolverError, conflicts.ErrGatewayNotConfigured)
}
