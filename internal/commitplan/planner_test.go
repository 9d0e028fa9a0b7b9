package commitplan_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/aigit/internal/commitmsg"
	"github.com/temirov/aigit/internal/commitplan"
)

const (
	planSchemaNameConstant    = "commit_plan"
	messageSchemaNameConstant = "commit_message"
	twoGroupPlanConstant      = `{"commits":[{"message":"Add feature","files":["feature.txt"]},{"message":"Document feature","files":["README.md"]}]}`
)

func newTestPlanner(testInstance *testing.T, gateway *schemaGateway) *commitplan.Planner {
	testInstance.Helper()
	planner, plannerError := commitplan.NewPlanner(gateway, commitmsg.NewGenerator(gateway, zap.NewNop()), zap.NewNop())
	require.NoError(testInstance, plannerError)
	return planner
}

func TestPlannerUsesProposedGroups(testInstance *testing.T) {
	gateway := newSchemaGateway()
	gateway.objects[planSchemaNameConstant] = json.RawMessage(twoGroupPlanConstant)

	plan, planError := newTestPlanner(testInstance, gateway).Plan(context.Background(), commitplan.PlanInput{StagedFiles: []string{"feature.txt", "README.md"}})
	require.NoError(testInstance, planError)
	require.False(testInstance, plan.Fallback)
	require.Equal(testInstance, []commitplan.Group{
		{Message: "Add feature", Files: []string{"feature.txt"}},
		{Message: "Document feature", Files: []string{"README.md"}},
	}, plan.Groups)
	require.Equal(testInstance, 0, gateway.structuredCalls[messageSchemaNameConstant])
}

func TestPlannerFallsBackToSingleGroup(testInstance *testing.T) {
	testCases := []struct {
		name      string
		configure func(gateway *schemaGateway)
	}{
		{
			name:      "no_structured_output",
			configure: func(gateway *schemaGateway) {},
		},
		{
			name: "missing_commits_key",
			configure: func(gateway *schemaGateway) {
				gateway.objects[planSchemaNameConstant] = json.RawMessage(`{"groups":[]}`)
			},
		},
		{
			name: "transport_failure",
			configure: func(gateway *schemaGateway) {
				gateway.errors[planSchemaNameConstant] = errors.New("connection reset")
			},
		},
		{
			name: "only_unknown_files",
			configure: func(gateway *schemaGateway) {
				gateway.objects[planSchemaNameConstant] = json.RawMessage(`{"commits":[{"message":"Add ghost","files":["ghost.txt"]}]}`)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			gateway := newSchemaGateway()
			gateway.objects[messageSchemaNameConstant] = json.RawMessage(`{"message":"Add feature with docs"}`)
			testCase.configure(gateway)

			plan, planError := newTestPlanner(testInstance, gateway).Plan(context.Background(), commitplan.PlanInput{StagedFiles: []string{"feature.txt", "README.md"}})
			require.NoError(testInstance, planError)
			require.True(testInstance, plan.Fallback)
			require.Equal(testInstance, []commitplan.Group{{Message: "Add feature with docs", Files: []string{"feature.txt", "README.md"}}}, plan.Groups)
		})
	}
}

func TestPlannerSkipsGatewayForSingleFile(testInstance *testing.T) {
	gateway := newSchemaGateway()
	gateway.objects[planSchemaNameConstant] = json.RawMessage(twoGroupPlanConstant)
	gateway.objects[messageSchemaNameConstant] = json.RawMessage(`{"message":"Add feature"}`)

	plan, planError := newTestPlanner(testInstance, gateway).Plan(context.Background(), commitplan.PlanInput{StagedFiles: []string{"feature.txt"}})
	require.NoError(testInstance, planError)
	require.True(testInstance, plan.Fallback)
	require.Equal(testInstance, 0, gateway.structuredCalls[planSchemaNameConstant])
	require.Equal(testInstance, []string{"feature.txt"}, plan.Files())
}

func TestPlannerStopsWhenCanceled(testInstance *testing.T) {
	gateway := newSchemaGateway()
	gateway.objects[planSchemaNameConstant] = json.RawMessage(twoGroupPlanConstant)

	canceledContext, cancel := context.WithCancel(context.Background())
	cancel()

	_, planError := newTestPlanner(testInstance, gateway).Plan(canceledContext, commitplan.PlanInput{StagedFiles: []string{"feature.txt", "README.md"}})
	require.ErrorIs(testInstance, planError, context.Canceled)
}

func TestNewPlannerRequiresMessageGenerator(testInstance *testing.T) {
	_, plannerError := commitplan.NewPlanner(newSchemaGateway(), nil, zap.NewNop())
	require.ErrorIs(testInstance, plannerError, commitplan.ErrMessageGeneratorNotConfigured)
}

func TestBuildPlanPromptListsFiles(testInstance *testing.T) {
	prompt := commitplan.BuildPlanPrompt(commitplan.PlanInput{StagedFiles: []string{"feature.txt", "README.md"}, Diff: "diff --git a/feature.txt b/feature.txt"})
	require.Contains(testInstance, prompt, "- feature.txt\n- README.md\n")
	require.Contains(testInstance, prompt, "diff --git a/feature.txt b/feature.txt")
}
