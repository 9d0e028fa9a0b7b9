package ui

import (
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/aigit/internal/execshell"
)

const (
	gitRevParseSubcommandConstant = "rev-parse"
	gitStatusSubcommandConstant   = "status"
	gitDiffSubcommandConstant     = "diff"
	gitLogSubcommandConstant      = "log"
)

// ConsoleCommandEventLogger renders git lifecycle events as human-readable log lines.
//
// Commands that change the repository are reported at info level. Read-only queries are reported at debug level so
// that a merge or a commit run shows only the steps that matter.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: execshell.CommandMessageFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.progress(command, eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted implements execshell.CommandEventObserver. Non-zero exit codes are warnings because callers
// frequently recover from them (a conflicted merge, a missing upstream).
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode == 0 {
		eventLogger.progress(command, eventLogger.formatter.BuildSuccessMessage(command))
		return
	}
	if isQuery(command) {
		eventLogger.logger.Debug(eventLogger.formatter.BuildFailureMessage(command, result))
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}

func (eventLogger *ConsoleCommandEventLogger) progress(command execshell.ShellCommand, message string) {
	if isQuery(command) {
		eventLogger.logger.Debug(message)
		return
	}
	eventLogger.logger.Info(message)
}

func isQuery(command execshell.ShellCommand) bool {
	if len(command.Details.Arguments) == 0 {
		return true
	}
	switch strings.TrimSpace(command.Details.Arguments[0]) {
	case gitRevParseSubcommandConstant, gitStatusSubcommandConstant, gitDiffSubcommandConstant, gitLogSubcommandConstant:
		return true
	default:
		return false
	}
}
