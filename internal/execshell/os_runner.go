package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
)

const (
	environmentAssignmentTemplateConstant       = "%s=%s"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	localeEnvironmentNameConstant               = "LC_ALL"
	localeEnvironmentValueConstant              = "C"
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the supplied command using os/exec.
//
// Git never prompts for credentials and always speaks the C locale so that its output stays parseable.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), append([]string{}, command.Details.Arguments...)...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}
	executable.Env = buildEnvironment(command)

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := executable.Run()
	if runError != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return ExecutionResult{}, contextError
		}
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return ExecutionResult{
				StandardOutput: standardOutputBuffer.String(),
				StandardError:  standardErrorBuffer.String(),
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return ExecutionResult{}, runError
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}, nil
}

func buildEnvironment(command ShellCommand) []string {
	environment := append([]string{}, os.Environ()...)
	if command.Name == CommandGit {
		environment = append(environment,
			fmt.Sprintf(environmentAssignmentTemplateConstant, gitTerminalPromptEnvironmentNameConstant, gitTerminalPromptEnvironmentDisableConstant),
			fmt.Sprintf(environmentAssignmentTemplateConstant, localeEnvironmentNameConstant, localeEnvironmentValueConstant),
		)
	}

	overrideKeys := make([]string, 0, len(command.Details.EnvironmentVariables))
	for environmentKey := range command.Details.EnvironmentVariables {
		overrideKeys = append(overrideKeys, environmentKey)
	}
	sort.Strings(overrideKeys)
	for _, environmentKey := range overrideKeys {
		environment = append(environment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, command.Details.EnvironmentVariables[environmentKey]))
	}
	return environment
}
