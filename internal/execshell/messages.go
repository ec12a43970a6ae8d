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

type commandOperation int

const (
	commandOperationUnknown commandOperation = iota
	commandOperationOutdated
	commandOperationUpgrade
	commandOperationResolve
	commandOperationInventory
	commandOperationDependencyTree
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
)

const (
	flutterPubSubcommandConstant       = "pub"
	outdatedSubcommandConstant         = "outdated"
	updateSubcommandConstant           = "update"
	upgradeSubcommandConstant          = "upgrade"
	getSubcommandConstant              = "get"
	pipListSubcommandConstant          = "list"
	pipInstallSubcommandConstant       = "install"
	pipFreezeSubcommandConstant        = "freeze"
	pipOutdatedFlagConstant            = "--outdated"
	pipUpgradeFlagConstant             = "--upgrade"
	gradleDependenciesTaskConstant     = "dependencies"
	flutterEcosystemLabelConstant      = "Flutter"
	npmEcosystemLabelConstant          = "npm"
	yarnEcosystemLabelConstant         = "Yarn"
	pnpmEcosystemLabelConstant         = "pnpm"
	pipEcosystemLabelConstant          = "Python"
	podEcosystemLabelConstant          = "CocoaPods"
	gradleEcosystemLabelConstant       = "Gradle"
	unknownEcosystemLabelConstant      = "unknown"
	operationSubjectTemplateConstant   = "%s dependencies"
	outdatedStartTemplateConstant      = "Checking outdated %s in %s"
	outdatedSuccessTemplateConstant    = "Checked outdated %s in %s"
	outdatedFailureTemplateConstant    = "Outdated check for %s in %s exited with code %d%s"
	outdatedExecutionTemplateConstant  = "Unable to check outdated %s in %s: %s"
	upgradeStartTemplateConstant       = "Upgrading %s in %s"
	upgradeSuccessTemplateConstant     = "Upgraded %s in %s"
	upgradeFailureTemplateConstant     = "Failed to upgrade %s in %s (exit code %d%s)"
	upgradeExecutionTemplateConstant   = "Unable to upgrade %s in %s: %s"
	resolveStartTemplateConstant       = "Resolving %s in %s"
	resolveSuccessTemplateConstant     = "Resolved %s in %s"
	resolveFailureTemplateConstant     = "Failed to resolve %s in %s (exit code %d%s)"
	resolveExecutionTemplateConstant   = "Unable to resolve %s in %s: %s"
	inventoryStartTemplateConstant     = "Listing installed %s in %s"
	inventorySuccessTemplateConstant   = "Listed installed %s in %s"
	inventoryFailureTemplateConstant   = "Failed to list installed %s in %s (exit code %d%s)"
	inventoryExecutionTemplateConstant = "Unable to list installed %s in %s: %s"
	treeStartTemplateConstant          = "Printing %s tree in %s"
	treeSuccessTemplateConstant        = "Printed %s tree in %s"
	treeFailureTemplateConstant        = "Failed to print %s tree in %s (exit code %d%s)"
	treeExecutionTemplateConstant      = "Unable to print %s tree in %s: %s"
)

type operationTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var operationTemplateMapping = map[commandOperation]operationTemplates{
	commandOperationOutdated: {
		start:            outdatedStartTemplateConstant,
		success:          outdatedSuccessTemplateConstant,
		failure:          outdatedFailureTemplateConstant,
		executionFailure: outdatedExecutionTemplateConstant,
	},
	commandOperationUpgrade: {
		start:            upgradeStartTemplateConstant,
		success:          upgradeSuccessTemplateConstant,
		failure:          upgradeFailureTemplateConstant,
		executionFailure: upgradeExecutionTemplateConstant,
	},
	commandOperationResolve: {
		start:            resolveStartTemplateConstant,
		success:          resolveSuccessTemplateConstant,
		failure:          resolveFailureTemplateConstant,
		executionFailure: resolveExecutionTemplateConstant,
	},
	commandOperationInventory: {
		start:            inventoryStartTemplateConstant,
		success:          inventorySuccessTemplateConstant,
		failure:          inventoryFailureTemplateConstant,
		executionFailure: inventoryExecutionTemplateConstant,
	},
	commandOperationDependencyTree: {
		start:            treeStartTemplateConstant,
		success:          treeSuccessTemplateConstant,
		failure:          treeFailureTemplateConstant,
		executionFailure: treeExecutionTemplateConstant,
	},
}

var ecosystemLabelMapping = map[CommandName]string{
	CommandFlutter:       flutterEcosystemLabelConstant,
	CommandNPM:           npmEcosystemLabelConstant,
	CommandYarn:          yarnEcosystemLabelConstant,
	CommandPNPM:          pnpmEcosystemLabelConstant,
	CommandPip:           pipEcosystemLabelConstant,
	CommandPod:           podEcosystemLabelConstant,
	CommandGradle:        gradleEcosystemLabelConstant,
	CommandGradleWrapper: gradleEcosystemLabelConstant,
}

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
	operation := classifyOperation(command)
	templates, known := operationTemplateMapping[operation]
	if !known {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subject := fmt.Sprintf(operationSubjectTemplateConstant, formatter.describeEcosystem(command))
	location := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subject, location)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subject, location)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, subject, location, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates.executionFailure, subject, location, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func classifyOperation(command ShellCommand) commandOperation {
	arguments := command.Details.Arguments
	primaryArgument := argumentAtIndex(arguments, 0)

	switch command.Name {
	case CommandFlutter:
		if primaryArgument != flutterPubSubcommandConstant {
			return commandOperationUnknown
		}
		switch argumentAtIndex(arguments, 1) {
		case outdatedSubcommandConstant:
			return commandOperationOutdated
		case upgradeSubcommandConstant:
			return commandOperationUpgrade
		case getSubcommandConstant:
			return commandOperationResolve
		}
	case CommandNPM, CommandYarn, CommandPNPM, CommandPod:
		switch primaryArgument {
		case outdatedSubcommandConstant:
			return commandOperationOutdated
		case updateSubcommandConstant, upgradeSubcommandConstant:
			return commandOperationUpgrade
		}
	case CommandPip:
		switch {
		case primaryArgument == pipListSubcommandConstant && containsArgument(arguments, pipOutdatedFlagConstant):
			return commandOperationOutdated
		case primaryArgument == pipInstallSubcommandConstant && containsArgument(arguments, pipUpgradeFlagConstant):
			return commandOperationUpgrade
		case primaryArgument == pipFreezeSubcommandConstant:
			return commandOperationInventory
		}
	case CommandGradle, CommandGradleWrapper:
		if containsArgument(arguments, gradleDependenciesTaskConstant) {
			return commandOperationDependencyTree
		}
	}

	return commandOperationUnknown
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

func (formatter CommandMessageFormatter) describeEcosystem(command ShellCommand) string {
	if label, known := ecosystemLabelMapping[command.Name]; known {
		return label
	}
	if trimmedName := strings.TrimSpace(string(command.Name)); len(trimmedName) > 0 {
		return trimmedName
	}
	return unknownEcosystemLabelConstant
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = commandLabel + commandArgumentsJoinSeparatorConstant + strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
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

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}
