package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/aigit/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant         = "success"
	testExecutionFailureCaseNameConstant         = "failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant     = "runner_error"
	testCommandArgumentConstant                  = "--version"
	testWorkingDirectoryConstant                 = "."
	testStandardErrorOutputConstant              = "failure"
	testLoggerInitializationCaseNameConstant     = "logger_validation"
	testRunnerInitializationCaseNameConstant     = "runner_validation"
	testSuccessfulInitializationCaseNameConstant = "successful_initialization"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectError   error
		expectSuccess bool
	}{
		{
			name:        testLoggerInitializationCaseNameConstant,
			logger:      nil,
			runner:      &recordingCommandRunner{},
			expectError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:        testRunnerInitializationCaseNameConstant,
			logger:      zap.NewNop(),
			runner:      nil,
			expectError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:          testSuccessfulInitializationCaseNameConstant,
			logger:        zap.NewNop(),
			runner:        &recordingCommandRunner{},
			expectSuccess: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)
			if testCase.expectSuccess {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, executor)
			} else {
				require.Error(testInstance, creationError)
				require.ErrorIs(testInstance, creationError, testCase.expectError)
			}
		})
	}
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	testCases := []struct {
		name             string
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectErrorType  any
		expectedLogCount int
	}{
		{
			name: testExecutionSuccessCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardOutput: "ok",
				ExitCode:       0,
			},
			expectedLogCount: 2,
		},
		{
			name: testExecutionFailureCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardError: testStandardErrorOutputConstant,
				ExitCode:      1,
			},
			expectErrorType:  execshell.CommandFailedError{},
			expectedLogCount: 2,
		},
		{
			name:             testExecutionRunnerErrorCaseNameConstant,
			runnerError:      errors.New("runner failure"),
			expectErrorType:  execshell.CommandExecutionError{},
			expectedLogCount: 2,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			logger := zap.New(observerCore)

			recordingRunner := &recordingCommandRunner{
				executionResult: testCase.runnerResult,
				executionError:  testCase.runnerError,
			}

			shellExecutor, creationError := execshell.NewShellExecutor(logger, recordingRunner)
			require.NoError(testInstance, creationError)

			commandDetails := execshell.CommandDetails{Arguments: []string{testCommandArgumentConstant}, WorkingDirectory: testWorkingDirectoryConstant}
			executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), commandDetails)

			if testCase.expectErrorType != nil {
				require.Error(testInstance, executionError)
				require.IsType(testInstance, testCase.expectErrorType, executionError)
				require.Empty(testInstance, executionResult.StandardOutput)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult.StandardOutput, executionResult.StandardOutput)
			}

			require.Len(testInstance, observerLogs.All(), testCase.expectedLogCount)
		})
	}
}

type recordingEventObserver struct {
	startedCommands   []execshell.ShellCommand
	completedResults  []execshell.ExecutionResult
	executionFailures []error
}

func (observer *recordingEventObserver) CommandStarted(command execshell.ShellCommand) {
	observer.startedCommands = append(observer.startedCommands, command)
}

func (observer *recordingEventObserver) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	observer.completedResults = append(observer.completedResults, result)
}

func (observer *recordingEventObserver) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	observer.executionFailures = append(observer.executionFailures, failure)
}

func TestShellExecutorNotifiesEveryObserver(testInstance *testing.T) {
	firstObserver := &recordingEventObserver{}
	secondObserver := &recordingEventObserver{}
	recordingRunner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{ExitCode: 1, StandardError: testStandardErrorOutputConstant}}

	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner, firstObserver, nil, secondObserver)
	require.NoError(testInstance, creationError)

	_, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"merge", "--no-edit", "origin/main"}})
	require.Error(testInstance, executionError)

	var failedError execshell.CommandFailedError
	require.ErrorAs(testInstance, executionError, &failedError)
	require.Equal(testInstance, 1, failedError.Result.ExitCode)
	require.Contains(testInstance, failedError.Error(), testStandardErrorOutputConstant)

	for _, recordingObserver := range []*recordingEventObserver{firstObserver, secondObserver} {
		require.Len(testInstance, recordingObserver.startedCommands, 1)
		require.Equal(testInstance, execshell.CommandGit, recordingObserver.startedCommands[0].Name)
		require.Len(testInstance, recordingObserver.completedResults, 1)
		require.Empty(testInstance, recordingObserver.executionFailures)
	}
}

func TestShellExecutorExecutionErrorUnwrapsCause(testInstance *testing.T) {
	runnerFailure := errors.New("runner failure")
	recordingObserver := &recordingEventObserver{}
	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), &recordingCommandRunner{executionError: runnerFailure}, recordingObserver)
	require.NoError(testInstance, creationError)

	_, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"status"}})
	require.ErrorIs(testInstance, executionError, runnerFailure)
	require.Len(testInstance, recordingObserver.executionFailures, 1)
	require.Empty(testInstance, recordingObserver.completedResults)
}
