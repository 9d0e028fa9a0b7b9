package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const testRepositoryDirectoryConstant = "/workspace/repo"

func TestCommandMessageFormatterStartedMessages(t *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		directory string
		expected  string
	}{
		{name: "fetch_remote", arguments: []string{"fetch", "--prune", "origin"}, directory: testRepositoryDirectoryConstant, expected: "Fetching from origin in /workspace/repo"},
		{name: "fetch_all", arguments: []string{"fetch", "--prune"}, directory: testRepositoryDirectoryConstant, expected: "Fetching from all remotes in /workspace/repo"},
		{name: "merge", arguments: []string{"merge", "--no-edit", "origin/main"}, directory: testRepositoryDirectoryConstant, expected: "Merging origin/main into /workspace/repo"},
		{name: "merge_abort", arguments: []string{"merge", "--abort"}, directory: testRepositoryDirectoryConstant, expected: "Aborting merge in /workspace/repo"},
		{name: "reset_merge", arguments: []string{"reset", "--merge"}, directory: testRepositoryDirectoryConstant, expected: "Resetting merge state in /workspace/repo"},
		{name: "unstage", arguments: []string{"reset", "-q"}, directory: testRepositoryDirectoryConstant, expected: "Unstaging changes in /workspace/repo"},
		{name: "add_paths", arguments: []string{"add", "-A", "--", "a.go", "b.go"}, directory: testRepositoryDirectoryConstant, expected: "Staging a.go, b.go in /workspace/repo"},
		{name: "add_all", arguments: []string{"add", "-A"}, directory: testRepositoryDirectoryConstant, expected: "Staging all changes in /workspace/repo"},
		{name: "commit", arguments: []string{"commit", "-m", "Fix mobile layout"}, directory: testRepositoryDirectoryConstant, expected: "Creating commit in /workspace/repo with message \"Fix mobile layout\""},
		{name: "merge_commit", arguments: []string{"commit", "--no-edit"}, directory: testRepositoryDirectoryConstant, expected: "Creating merge commit in /workspace/repo"},
		{name: "push_upstream", arguments: []string{"push", "-u", "origin", "main"}, directory: testRepositoryDirectoryConstant, expected: "Pushing to origin main from /workspace/repo"},
		{name: "push_default", arguments: []string{"push"}, directory: testRepositoryDirectoryConstant, expected: "Pushing to the configured upstream from /workspace/repo"},
		{name: "conflicted_files", arguments: []string{"diff", "--name-only", "--diff-filter=U", "-z"}, directory: testRepositoryDirectoryConstant, expected: "Listing conflicted files in /workspace/repo"},
		{name: "staged_files", arguments: []string{"diff", "--cached", "--name-only"}, directory: testRepositoryDirectoryConstant, expected: "Reading staged changes in /workspace/repo"},
		{name: "rev_parse", arguments: []string{"rev-parse", "HEAD"}, directory: testRepositoryDirectoryConstant, expected: "Resolving HEAD in /workspace/repo"},
		{name: "status_without_directory", arguments: []string{"status", "--porcelain"}, expected: "Reviewing working tree status in current directory"},
		{name: "generic", arguments: []string{"log", "--oneline"}, expected: "Running git log --oneline"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			command := ShellCommand{Name: CommandGit, Details: CommandDetails{Arguments: testCase.arguments, WorkingDirectory: testCase.directory}}
			require.Equal(t, testCase.expected, CommandMessageFormatter{}.BuildStartedMessage(command))
		})
	}
}

func TestCommandMessageFormatterFailureMessagesIncludeStandardError(t *testing.T) {
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"merge", "--no-edit", "origin/main"}, WorkingDirectory: testRepositoryDirectoryConstant},
	}

	message := CommandMessageFormatter{}.BuildFailureMessage(command, ExecutionResult{ExitCode: 1, StandardError: "CONFLICT (content)\n"})

	require.Equal(t, "Merge of origin/main into /workspace/repo stopped (exit code 1: CONFLICT (content))", message)
}

func TestCommandMessageFormatterExecutionFailure(t *testing.T) {
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"status", "--porcelain"}, WorkingDirectory: testRepositoryDirectoryConstant},
	}

	message := CommandMessageFormatter{}.BuildExecutionFailureMessage(command, errors.New("executable not found"))

	require.Equal(t, "Unable to review working tree status in /workspace/repo: executable not found", message)
}

func TestCommandMessageFormatterSuccessMessageForCommit(t *testing.T) {
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"commit", "-m", "Update card styles"}, WorkingDirectory: testRepositoryDirectoryConstant},
	}

	require.Equal(t, "Created commit in /workspace/repo with message \"Update card styles\"", CommandMessageFormatter{}.BuildSuccessMessage(command))
}
