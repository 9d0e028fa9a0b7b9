package merge_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/aigit/internal/filesystem"
	"github.com/temirov/aigit/internal/merge"
	"github.com/temirov/aigit/internal/shared"
	"github.com/temirov/aigit/internal/utils"
)

func TestMergeCommandReportsOutcome(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		conflicted      bool
		expectedOutput  string
		expectedRemotes []string
	}{
		{
			name:            "clean_merge_fetches_configured_remote",
			arguments:       []string{featureReferenceConstant},
			expectedOutput:  "Merged feature cleanly (9f1c2ab)\n",
			expectedRemotes: []string{"upstream"},
		},
		{
			name:            "remote_flag_overrides_configuration",
			arguments:       []string{"--remote", "fork", featureReferenceConstant},
			expectedOutput:  "Merged feature cleanly (9f1c2ab)\n",
			expectedRemotes: []string{"fork"},
		},
		{
			name:           "resolved_merge_lists_files",
			arguments:      []string{"--no-fetch", featureReferenceConstant},
			conflicted:     true,
			expectedOutput: "Merged feature with 1 AI-resolved file(s) (9f1c2ab)\n  a.txt\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repositoryPath := testInstance.TempDir()
			repository := &fakeMergeRepository{mergeOutcome: shared.MergeOutcome{Succeeded: true}}
			if testCase.conflicted {
				writeConflictedFiles(testInstance, repositoryPath, "a.txt")
				repository = conflictingRepository("a.txt")
			}

			builder := merge.CommandBuilder{
				ConfigurationProvider: func() merge.CommandConfiguration {
					return merge.CommandConfiguration{Remote: "upstream"}
				},
				Repository: repository,
				FileSystem: filesystem.OSFileSystem{},
				Gateway:    &scriptedGateway{responses: []string{"merged"}},
			}
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			outputBuffer := &bytes.Buffer{}
			command.SetOut(outputBuffer)
			command.SetArgs(testCase.arguments)
			executionContext := utils.NewCommandContextAccessor().WithRepositoryPath(context.Background(), repositoryPath)

			require.NoError(testInstance, command.ExecuteContext(executionContext))
			require.Equal(testInstance, testCase.expectedOutput, outputBuffer.String())
			require.Equal(testInstance, testCase.expectedRemotes, repository.fetchedRemotes)
		})
	}
}

func TestMergeCommandRequiresReference(testInstance *testing.T) {
	builder := merge.CommandBuilder{Repository: &fakeMergeRepository{}, Gateway: &scriptedGateway{}}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetArgs([]string{})
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})

	require.Error(testInstance, command.ExecuteContext(context.Background()))
}

func TestPullCommandFailsWithoutUpstream(testInstance *testing.T) {
	repository := &fakeMergeRepository{}
	builder := merge.PullCommandBuilder{Repository: repository, Gateway: &scriptedGateway{}}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetArgs([]string{})
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	executionContext := utils.NewCommandContextAccessor().WithRepositoryPath(context.Background(), testInstance.TempDir())

	pullError := command.ExecuteContext(executionContext)
	require.ErrorIs(testInstance, pullError, merge.ErrUpstreamMissing)
	require.Empty(testInstance, repository.mergedReferences)
}
