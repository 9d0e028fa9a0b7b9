package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
	pathspecSeparatorConstant               = "--"
	pathListSeparatorConstant               = ", "
)

const (
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitStatusSubcommandNameConstant   = "status"
	gitFetchSubcommandNameConstant    = "fetch"
	gitMergeSubcommandNameConstant    = "merge"
	gitAddSubcommandNameConstant      = "add"
	gitResetSubcommandNameConstant    = "reset"
	gitCommitSubcommandNameConstant   = "commit"
	gitPushSubcommandNameConstant     = "push"
	gitDiffSubcommandNameConstant     = "diff"
	gitMessageFlagConstant            = "-m"
	gitAbortFlagConstant              = "--abort"
	gitMergeFlagConstant              = "--merge"
	gitCachedFlagConstant             = "--cached"
	gitDiffFilterUnmergedConstant     = "--diff-filter=U"
	gitNoEditFlagConstant             = "--no-edit"
	gitAllRemotesLabelConstant        = "all remotes"
	gitAllChangesLabelConstant        = "all changes"
	gitDefaultPushTargetLabelConstant = "the configured upstream"
)

const (
	gitStatusStartTemplateConstant                  = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant                = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant                = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant       = "Unable to review working tree status in %s: %s"
	gitFetchStartTemplateConstant                   = "Fetching from %s in %s"
	gitFetchSuccessTemplateConstant                 = "Fetched from %s in %s"
	gitFetchFailureTemplateConstant                 = "Failed to fetch from %s in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant        = "Unable to fetch from %s in %s: %s"
	gitMergeStartTemplateConstant                   = "Merging %s into %s"
	gitMergeSuccessTemplateConstant                 = "Merged %s into %s"
	gitMergeFailureTemplateConstant                 = "Merge of %s into %s stopped (exit code %d%s)"
	gitMergeExecutionFailureTemplateConstant        = "Unable to merge %s into %s: %s"
	gitMergeAbortStartTemplateConstant              = "Aborting merge in %s"
	gitMergeAbortSuccessTemplateConstant            = "Aborted merge in %s"
	gitMergeAbortFailureTemplateConstant            = "Failed to abort merge in %s (exit code %d%s)"
	gitMergeAbortExecutionFailureTemplateConstant   = "Unable to abort merge in %s: %s"
	gitResetMergeStartTemplateConstant              = "Resetting merge state in %s"
	gitResetMergeSuccessTemplateConstant            = "Reset merge state in %s"
	gitResetMergeFailureTemplateConstant            = "Failed to reset merge state in %s (exit code %d%s)"
	gitResetMergeExecutionFailureTemplateConstant   = "Unable to reset merge state in %s: %s"
	gitUnstageStartTemplateConstant                 = "Unstaging changes in %s"
	gitUnstageSuccessTemplateConstant               = "Unstaged changes in %s"
	gitUnstageFailureTemplateConstant               = "Failed to unstage changes in %s (exit code %d%s)"
	gitUnstageExecutionFailureTemplateConstant      = "Unable to unstage changes in %s: %s"
	gitAddStartTemplateConstant                     = "Staging %s in %s"
	gitAddSuccessTemplateConstant                   = "Staged %s in %s"
	gitAddFailureTemplateConstant                   = "Failed to stage %s in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant          = "Unable to stage %s in %s: %s"
	gitCommitStartTemplateConstant                  = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant                = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant                = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant       = "Unable to create commit in %s with message %q: %s"
	gitMergeCommitStartTemplateConstant             = "Creating merge commit in %s"
	gitMergeCommitSuccessTemplateConstant           = "Created merge commit in %s"
	gitMergeCommitFailureTemplateConstant           = "Failed to create merge commit in %s (exit code %d%s)"
	gitMergeCommitExecutionFailureTemplateConstant  = "Unable to create merge commit in %s: %s"
	gitPushStartTemplateConstant                    = "Pushing to %s from %s"
	gitPushSuccessTemplateConstant                  = "Pushed to %s from %s"
	gitPushFailureTemplateConstant                  = "Failed to push to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant         = "Unable to push to %s from %s: %s"
	gitConflictListingStartTemplateConstant         = "Listing conflicted files in %s"
	gitConflictListingSuccessTemplateConstant       = "Listed conflicted files in %s"
	gitConflictListingFailureTemplateConstant       = "Failed to list conflicted files in %s (exit code %d%s)"
	gitConflictListingExecutionFailureTemplateConst = "Unable to list conflicted files in %s: %s"
	gitStagedDiffStartTemplateConstant              = "Reading staged changes in %s"
	gitStagedDiffSuccessTemplateConstant            = "Read staged changes in %s"
	gitStagedDiffFailureTemplateConstant            = "Failed to read staged changes in %s (exit code %d%s)"
	gitStagedDiffExecutionFailureTemplateConstant   = "Unable to read staged changes in %s: %s"
	gitRevisionStartTemplateConstant                = "Resolving %s in %s"
	gitRevisionSuccessTemplateConstant              = "Resolved %s in %s"
	gitRevisionFailureTemplateConstant              = "%s does not resolve in %s (exit code %d%s)"
	gitRevisionExecutionFailureTemplateConstant     = "Unable to resolve %s in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	arguments := command.Details.Arguments
	switch strings.TrimSpace(arguments[0]) {
	case gitStatusSubcommandNameConstant:
		return formatter.selectTemplate(command, result, failure, stage, stageTemplates{
			start:            gitStatusStartTemplateConstant,
			success:          gitStatusSuccessTemplateConstant,
			failure:          gitStatusFailureTemplateConstant,
			executionFailure: gitStatusExecutionFailureTemplateConstant,
		})
	case gitFetchSubcommandNameConstant:
		remoteName := formatter.extractFirstNonFlagArgument(arguments[1:])
		if len(remoteName) == 0 {
			remoteName = gitAllRemotesLabelConstant
		}
		return formatter.selectTemplate(command, result, failure, stage, stageTemplates{
			start:            gitFetchStartTemplateConstant,
			success:          gitFetchSuccessTemplateConstant,
			failure:          gitFetchFailureTemplateConstant,
			executionFailure: gitFetchExecutionFailureTemplateConstant,
		}, remoteName)
	case gitMergeSubcommandNameConstant:
		return formatter.describeGitMergeMessage(command, result, failure, stage)
	case gitResetSubcommandNameConstant:
		templates := stageTemplates{
			start:            gitUnstageStartTemplateConstant,
			success:          gitUnstageSuccessTemplateConstant,
			failure:          gitUnstageFailureTemplateConstant,
			executionFailure: gitUnstageExecutionFailureTemplateConstant,
		}
		if containsArgument(arguments, gitMergeFlagConstant) {
			templates = stageTemplates{
				start:            gitResetMergeStartTemplateConstant,
				success:          gitResetMergeSuccessTemplateConstant,
				failure:          gitResetMergeFailureTemplateConstant,
				executionFailure: gitResetMergeExecutionFailureTemplateConstant,
			}
		}
		return formatter.selectTemplate(command, result, failure, stage, templates)
	case gitAddSubcommandNameConstant:
		return formatter.selectTemplate(command, result, failure, stage, stageTemplates{
			start:            gitAddStartTemplateConstant,
			success:          gitAddSuccessTemplateConstant,
			failure:          gitAddFailureTemplateConstant,
			executionFailure: gitAddExecutionFailureTemplateConstant,
		}, formatter.describePathspec(arguments))
	case gitCommitSubcommandNameConstant:
		if containsArgument(arguments, gitNoEditFlagConstant) {
			return formatter.selectTemplate(command, result, failure, stage, stageTemplates{
				start:            gitMergeCommitStartTemplateConstant,
				success:          gitMergeCommitSuccessTemplateConstant,
				failure:          gitMergeCommitFailureTemplateConstant,
				executionFailure: gitMergeCommitExecutionFailureTemplateConstant,
			})
		}
		return formatter.describeGitCommitMessage(command, result, failure, stage)
	case gitPushSubcommandNameConstant:
		target := strings.Join(formatter.collectNonFlagArguments(arguments[1:]), commandArgumentsJoinSeparatorConstant)
		if len(target) == 0 {
			target = gitDefaultPushTargetLabelConstant
		}
		return formatter.selectTemplate(command, result, failure, stage, stageTemplates{
			start:            gitPushStartTemplateConstant,
			success:          gitPushSuccessTemplateConstant,
			failure:          gitPushFailureTemplateConstant,
			executionFailure: gitPushExecutionFailureTemplateConstant,
		}, target)
	case gitDiffSubcommandNameConstant:
		if containsArgument(arguments, gitDiffFilterUnmergedConstant) {
			return formatter.selectTemplate(command, result, failure, stage, stageTemplates{
				start:            gitConflictListingStartTemplateConstant,
				success:          gitConflictListingSuccessTemplateConstant,
				failure:          gitConflictListingFailureTemplateConstant,
				executionFailure: gitConflictListingExecutionFailureTemplateConst,
			})
		}
		if containsArgument(arguments, gitCachedFlagConstant) {
			return formatter.selectTemplate(command, result, failure, stage, stageTemplates{
				start:            gitStagedDiffStartTemplateConstant,
				success:          gitStagedDiffSuccessTemplateConstant,
				failure:          gitStagedDiffFailureTemplateConstant,
				executionFailure: gitStagedDiffExecutionFailureTemplateConstant,
			})
		}
		return formatter.buildGenericMessage(command, result, failure, stage)
	case gitRevParseSubcommandNameConstant:
		return formatter.selectTemplate(command, result, failure, stage, stageTemplates{
			start:            gitRevisionStartTemplateConstant,
			success:          gitRevisionSuccessTemplateConstant,
			failure:          gitRevisionFailureTemplateConstant,
			executionFailure: gitRevisionExecutionFailureTemplateConstant,
		}, formatter.resolveRevisionReference(arguments))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

// stageTemplates groups the four lifecycle templates of one git operation. Each template receives the
// optional subject values first, then the working directory, then the stage specific values.
type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

func (formatter CommandMessageFormatter) selectTemplate(command ShellCommand, result ExecutionResult, failure error, stage messageStage, templates stageTemplates, subjects ...any) string {
	values := append(append([]any{}, subjects...), formatter.describeWorkingDirectory(command))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, values...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, values...)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, append(values, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))...)
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates.executionFailure, append(values, formatter.describeFailure(failure))...)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMergeMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if containsArgument(arguments, gitAbortFlagConstant) {
		return formatter.selectTemplate(command, result, failure, stage, stageTemplates{
			start:            gitMergeAbortStartTemplateConstant,
			success:          gitMergeAbortSuccessTemplateConstant,
			failure:          gitMergeAbortFailureTemplateConstant,
			executionFailure: gitMergeAbortExecutionFailureTemplateConstant,
		})
	}

	reference := formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[1:]))
	return formatter.selectTemplate(command, result, failure, stage, stageTemplates{
		start:            gitMergeStartTemplateConstant,
		success:          gitMergeSuccessTemplateConstant,
		failure:          gitMergeFailureTemplateConstant,
		executionFailure: gitMergeExecutionFailureTemplateConstant,
	}, reference)
}

func (formatter CommandMessageFormatter) describeGitCommitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	commitMessage := formatter.extractCommitMessage(command.Details.Arguments)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectory, commitMessage)
	case messageStageSuccess:
		return fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectory, commitMessage)
	case messageStageFailure:
		return fmt.Sprintf(gitCommitFailureTemplateConstant, workingDirectory, commitMessage, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCommitExecutionFailureTemplateConstant, workingDirectory, commitMessage, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

// describePathspec lists the paths following "--", or reports that every change is staged.
func (formatter CommandMessageFormatter) describePathspec(arguments []string) string {
	for index, argument := range arguments {
		if strings.TrimSpace(argument) != pathspecSeparatorConstant {
			continue
		}
		paths := formatter.collectNonFlagArguments(arguments[index+1:])
		if len(paths) == 0 {
			break
		}
		return strings.Join(paths, pathListSeparatorConstant)
	}
	return gitAllChangesLabelConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func (formatter CommandMessageFormatter) resolveRevisionReference(arguments []string) string {
	if len(arguments) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return formatter.ensureValue(arguments[len(arguments)-1])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) collectNonFlagArguments(arguments []string) []string {
	collected := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		collected = append(collected, trimmed)
	}
	return collected
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	collected := formatter.collectNonFlagArguments(arguments)
	if len(collected) == 0 {
		return emptyStringConstant
	}
	return collected[0]
}

func (formatter CommandMessageFormatter) extractCommitMessage(arguments []string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == gitMessageFlagConstant && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return fallbackUnknownValueLabelConstant
}
