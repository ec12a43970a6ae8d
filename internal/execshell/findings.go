package execshell

// ReportsFindingsThroughExitCode reports whether a non-zero exit code from the command
// signals outdated dependencies rather than a failure.
func ReportsFindingsThroughExitCode(command ShellCommand) bool {
	return classifyOperation(command) == commandOperationOutdated
}
