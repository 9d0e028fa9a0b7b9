package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/aigit/internal/execshell"
	"github.com/temirov/aigit/internal/ui"
)

const (
	testCommandWorkingDirectoryConstant = "/tmp/project"
	testMergeReferenceConstant          = "origin/main"
	testExecutionFailureReasonConstant  = "execution failed"
	testStandardErrorMessageConstant    = "CONFLICT (content): Merge conflict in main.go"
)

func TestConsoleCommandEventLoggerEmitsMessages(testInstance *testing.T) {
	mergeCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"merge", "--no-edit", testMergeReferenceConstant},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}
	queryCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"rev-parse", "HEAD"},
			WorkingDirectory: testCommandWorkingDirectoryConstant,
		},
	}

	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleCommandEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "command_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(mergeCommand)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "Merging origin/main into /tmp/project",
		},
		{
			name: "command_completed_success",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(mergeCommand, execshell.ExecutionResult{ExitCode: 0})
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: "Merged origin/main into /tmp/project",
		},
		{
			name: "command_completed_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(mergeCommand, execshell.ExecutionResult{ExitCode: 1, StandardError: testStandardErrorMessageConstant})
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: "Merge of origin/main into /tmp/project stopped (exit code 1: " + testStandardErrorMessageConstant + ")",
		},
		{
			name: "command_execution_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandExecutionFailed(mergeCommand, errors.New(testExecutionFailureReasonConstant))
			},
			expectedLevel:   zapcore.ErrorLevel,
			expectedMessage: "Unable to merge origin/main into /tmp/project: " + testExecutionFailureReasonConstant,
		},
		{
			name: "query_started",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandStarted(queryCommand)
			},
			expectedLevel:   zapcore.DebugLevel,
			expectedMessage: "Resolving HEAD in /tmp/project",
		},
		{
			name: "query_failure",
			invoke: func(logger *ui.ConsoleCommandEventLogger) {
				logger.CommandCompleted(queryCommand, execshell.ExecutionResult{ExitCode: 128})
			},
			expectedLevel:   zapcore.DebugLevel,
			expectedMessage: "HEAD does not resolve in /tmp/project (exit code 128)",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}
