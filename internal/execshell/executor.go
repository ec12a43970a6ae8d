package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	commandFlutterStringConstant       = "flutter"
	commandNPMStringConstant           = "npm"
	commandYarnStringConstant          = "yarn"
	commandPNPMStringConstant          = "pnpm"
	commandPipStringConstant           = "pip"
	commandPodStringConstant           = "pod"
	commandGradleStringConstant        = "gradle"
	commandGradleWrapperStringConstant = "./gradlew"

	loggerNotConfiguredMessageConstant         = "shell executor requires a logger"
	commandRunnerNotConfiguredMessageConstant  = "shell executor requires a command runner"
	commandTimedOutMessageConstant             = "command timed out"
	commandFailedErrorTemplateConstant         = "%s exited with code %d"
	commandFailedStandardErrorTemplateConstant = "%s exited with code %d: %s"
	commandExecutionErrorTemplateConstant      = "%s could not be executed: %v"
	logFieldCommandConstant                    = "command"
	logFieldArgumentsConstant                  = "arguments"
	logFieldWorkingDirectoryConstant           = "working_directory"
	logFieldExitCodeConstant                   = "exit_code"
	logFieldStandardErrorConstant              = "stderr"
	logFieldDurationConstant                   = "duration"
	logFieldTimeoutConstant                    = "timeout"
)

// CommandName identifies an executable supported by the executor.
type CommandName string

// Supported executables.
const (
	CommandFlutter       CommandName = CommandName(commandFlutterStringConstant)
	CommandNPM           CommandName = CommandName(commandNPMStringConstant)
	CommandYarn          CommandName = CommandName(commandYarnStringConstant)
	CommandPNPM          CommandName = CommandName(commandPNPMStringConstant)
	CommandPip           CommandName = CommandName(commandPipStringConstant)
	CommandPod           CommandName = CommandName(commandPodStringConstant)
	CommandGradle        CommandName = CommandName(commandGradleStringConstant)
	CommandGradleWrapper CommandName = CommandName(commandGradleWrapperStringConstant)
)

var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrCommandTimedOut indicates the command exceeded the configured timeout.
	ErrCommandTimedOut = errors.New(commandTimedOutMessageConstant)
)

// CommandDetails describes how a command is invoked.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ShellCommand combines an executable name with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner runs a shell command and reports its result.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that finished with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failing command.
func (failure CommandFailedError) Error() string {
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) == 0 {
		return fmt.Sprintf(commandFailedErrorTemplateConstant, failure.Command.Name, failure.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedStandardErrorTemplateConstant, failure.Command.Name, failure.Result.ExitCode, trimmedStandardError)
}

// CommandExecutionError reports a command that could not be started or did not finish.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, failure.Command.Name, failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// FailedResult extracts the execution result carried by a CommandFailedError.
func FailedResult(executionError error) (ExecutionResult, bool) {
	var failure CommandFailedError
	if !errors.As(executionError, &failure) {
		return ExecutionResult{}, false
	}
	return failure.Result, true
}

// ExecutorOption customizes a ShellExecutor.
type ExecutorOption func(*ShellExecutor)

// WithCommandTimeout bounds each command invocation. Zero disables the bound.
func WithCommandTimeout(timeout time.Duration) ExecutorOption {
	return func(executor *ShellExecutor) {
		if timeout < 0 {
			timeout = 0
		}
		executor.commandTimeout = timeout
	}
}

// WithCommandEventObserver registers an observer notified about command lifecycle events.
func WithCommandEventObserver(observer CommandEventObserver) ExecutorOption {
	return func(executor *ShellExecutor) {
		if observer == nil {
			return
		}
		executor.observers = append(executor.observers, observer)
	}
}

// ShellExecutor runs commands through a CommandRunner with logging and timeouts.
type ShellExecutor struct {
	logger         *zap.Logger
	runner         CommandRunner
	observers      compositeCommandEventObserver
	commandTimeout time.Duration
	formatter      CommandMessageFormatter
}

// NewShellExecutor constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:    logger,
		runner:    runner,
		formatter: CommandMessageFormatter{},
	}
	for _, option := range options {
		if option != nil {
			option(executor)
		}
	}
	return executor, nil
}

// Execute runs the command. A non-zero exit code yields CommandFailedError and a
// runner failure or timeout yields CommandExecutionError; in both cases the
// returned ExecutionResult is empty.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	runContext := executionContext
	if executor.commandTimeout > 0 {
		var cancel context.CancelFunc
		runContext, cancel = context.WithTimeout(executionContext, executor.commandTimeout)
		defer cancel()
	}

	commandFields := []zap.Field{
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	}

	executor.logger.Debug(executor.formatter.BuildStartedMessage(command), commandFields...)
	executor.observers.CommandStarted(command)

	startedAt := time.Now()
	executionResult, runError := executor.runner.Run(runContext, command)
	elapsed := time.Since(startedAt)

	if runError == nil && errors.Is(runContext.Err(), context.DeadlineExceeded) {
		runError = ErrCommandTimedOut
	}
	if runError != nil {
		if errors.Is(runError, context.DeadlineExceeded) {
			runError = ErrCommandTimedOut
		}
		executor.logger.Warn(
			executor.formatter.BuildExecutionFailureMessage(command, runError),
			append(commandFields, zap.Error(runError), zap.Duration(logFieldTimeoutConstant, executor.commandTimeout))...,
		)
		executor.observers.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observers.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Debug(
			executor.formatter.BuildFailureMessage(command, executionResult),
			append(commandFields,
				zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
				zap.String(logFieldStandardErrorConstant, strings.TrimSpace(executionResult.StandardError)),
				zap.Duration(logFieldDurationConstant, elapsed),
			)...,
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(
		executor.formatter.BuildSuccessMessage(command),
		append(commandFields, zap.Duration(logFieldDurationConstant, elapsed))...,
	)
	return executionResult, nil
}
