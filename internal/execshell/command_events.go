package execshell

// CommandEventObserver receives lifecycle notifications for git subprocesses.
type CommandEventObserver interface {
	// CommandStarted reports that a subprocess is about to run.
	CommandStarted(command ShellCommand)
	// CommandCompleted reports the result of a subprocess that ran, whatever its exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports a subprocess that could not be run at all.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}

// compositeCommandEventObserver forwards every event to each observer in registration order.
type compositeCommandEventObserver []CommandEventObserver

func (observers compositeCommandEventObserver) CommandStarted(command ShellCommand) {
	for _, observer := range observers {
		observer.CommandStarted(command)
	}
}

func (observers compositeCommandEventObserver) CommandCompleted(command ShellCommand, result ExecutionResult) {
	for _, observer := range observers {
		observer.CommandCompleted(command, result)
	}
}

func (observers compositeCommandEventObserver) CommandExecutionFailed(command ShellCommand, failure error) {
	for _, observer := range observers {
		observer.CommandExecutionFailed(command, failure)
	}
}

func combineObservers(candidates []CommandEventObserver) CommandEventObserver {
	registered := make(compositeCommandEventObserver, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate != nil {
			registered = append(registered, candidate)
		}
	}
	switch len(registered) {
	case 0:
		return noopCommandEventObserver{}
	case 1:
		return registered[0]
	default:
		return registered
	}
}
