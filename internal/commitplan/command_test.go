package commitplan_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/aigit/internal/commitplan"
	"github.com/temirov/aigit/internal/utils"
)

func TestCommitCommandReportsCreatedCommits(testInstance *testing.T) {
	testCases := []struct {
		name           string
		arguments      []string
		expectedOutput string
	}{
		{
			name:           "segmented",
			arguments:      []string{},
			expectedOutput: "commit1 Add feature\ncommit2 Document feature\n",
		},
		{
			name:           "single",
			arguments:      []string{"--single"},
			expectedOutput: "commit1 Add feature with docs\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repository := newFakeRepository("feature.txt", "README.md")
			gateway := newSchemaGateway()
			gateway.objects[planSchemaNameConstant] = json.RawMessage(twoGroupPlanConstant)
			gateway.objects[messageSchemaNameConstant] = json.RawMessage(`{"message":"Add feature with docs"}`)

			builder := commitplan.CommandBuilder{
				LoggerProvider: func() *zap.Logger { return zap.NewNop() },
				ConfigurationProvider: func() commitplan.CommandConfiguration {
					return commitplan.DefaultCommandConfiguration()
				},
				Repository: repository,
				Gateway:    gateway,
			}
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			outputBuffer := &bytes.Buffer{}
			command.SetOut(outputBuffer)
			command.SetArgs(testCase.arguments)
			executionContext := utils.NewCommandContextAccessor().WithRepositoryPath(context.Background(), testRepositoryPathConstant)

			require.NoError(testInstance, command.ExecuteContext(executionContext))
			require.Equal(testInstance, testCase.expectedOutput, outputBuffer.String())
		})
	}
}

func TestCommitCommandRejectsArguments(testInstance *testing.T) {
	builder := commitplan.CommandBuilder{Repository: newFakeRepository("a.go"), Gateway: newSchemaGateway()}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetArgs([]string{"unexpected"})
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})

	require.Error(testInstance, command.ExecuteContext(context.Background()))
}

func TestCommandConfigurationSanitize(testInstance *testing.T) {
	sanitized := commitplan.CommandConfiguration{MaxPromptCharacters: -1, ExcludePatterns: []string{" **/*.lock ", " "}}.Sanitize()
	require.Equal(testInstance, []string{"**/*.lock"}, sanitized.ExcludePatterns)
	require.Positive(testInstance, sanitized.MaxPromptCharacters)
}
