package dependencies_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/depctl/internal/dependencies"
	"github.com/temirov/depctl/internal/execshell"
	"github.com/temirov/depctl/internal/report"
)

type cannedExecutor struct {
	outputs          map[string]string
	recordedCommands []string
}

func (executor *cannedExecutor) Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	key := strings.Join(append([]string{string(command.Name)}, command.Details.Arguments...), " ")
	executor.recordedCommands = append(executor.recordedCommands, key)
	output, known := executor.outputs[key]
	if !known {
		return execshell.ExecutionResult{}, execshell.CommandExecutionError{Command: command, Cause: errors.New("unexpected command")}
	}
	return execshell.ExecutionResult{StandardOutput: output}, nil
}

type installedToolLocator struct{}

func (installedToolLocator) LookPath(name string) (string, error) {
	return "/usr/bin/" + name, nil
}

func writeSampleProjects(testInstance *testing.T) string {
	testInstance.Helper()
	rootDirectory := testInstance.TempDir()
	files := map[string]string{
		"web/package.json":     `{"name":"web"}`,
		"api/requirements.txt": "requests==2.0.0\nflask==3.0.0\n",
		"notes/README.md":      "not a project",
	}
	for relativePath, content := range files {
		absolutePath := filepath.Join(rootDirectory, relativePath)
		require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(testInstance, os.WriteFile(absolutePath, []byte(content), 0o644))
	}
	return rootDirectory
}

func newCommandDependencies(rootDirectory string, executor *cannedExecutor) dependencies.CommandDependencies {
	return dependencies.CommandDependencies{
		ConfigurationProvider: func() dependencies.Configuration {
			configuration := dependencies.DefaultConfiguration()
			configuration.Roots = []string{rootDirectory}
			return configuration
		},
		Executor:    executor,
		ToolLocator: installedToolLocator{},
		CIDetector:  staticCIDetector(false),
	}
}

func executeCommand(command *cobra.Command, arguments []string, input string) (string, error) {
	outputBuffer := &bytes.Buffer{}
	command.SetArgs(arguments)
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	command.SetIn(strings.NewReader(input))
	command.SilenceErrors = true
	command.SilenceUsage = true
	executionError := command.Execute()
	return outputBuffer.String(), executionError
}

func TestCheckCommandReportsJSONAndExitStatus(testInstance *testing.T) {
	rootDirectory := writeSampleProjects(testInstance)
	executor := &cannedExecutor{outputs: map[string]string{
		"npm outdated --json":               "{}",
		"pip list --outdated --format=json": `[{"name":"requests","version":"2.0.0","latest_version":"2.31.0"},{"name":"urllib3","version":"1.0","latest_version":"2.0"}]`,
		"pip freeze":                        "requests==2.0.0\nflask==3.0.0\nurllib3==1.0\n",
	}}
	builder := dependencies.CheckCommandBuilder{CommandDependencies: newCommandDependencies(rootDirectory, executor)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(command, []string{"--json"}, "")

	var exitStatusError report.ExitStatusError
	require.ErrorAs(testInstance, executionError, &exitStatusError)
	require.Equal(testInstance, 1, exitStatusError.Code)

	var document report.CheckDocument
	require.NoError(testInstance, json.Unmarshal([]byte(output), &document))
	require.Equal(testInstance, report.CheckSummary{Total: 2, Outdated: 1, UpToDate: 1}, document.Summary)
	require.Equal(testInstance, report.CommandCheck, document.Command)
	require.Len(testInstance, document.Projects, 2)
	require.Equal(testInstance, "api", document.Projects[0].Name)
	require.Equal(testInstance, "outdated", document.Projects[0].Status)
	require.Len(testInstance, document.Projects[0].OutdatedPackages, 1)
	require.Equal(testInstance, "web", document.Projects[1].Name)
	require.Equal(testInstance, "up_to_date", document.Projects[1].Status)
}

func TestCheckCommandRootFlagOverridesConfiguration(testInstance *testing.T) {
	emptyRoot := testInstance.TempDir()
	executor := &cannedExecutor{}
	builder := dependencies.CheckCommandBuilder{CommandDependencies: newCommandDependencies(writeSampleProjects(testInstance), executor)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(command, []string{"--root", emptyRoot}, "")

	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "No projects found under "+emptyRoot+"\n", output)
	require.Empty(testInstance, executor.recordedCommands)
}

func TestCheckCommandRejectsUnknownPlatform(testInstance *testing.T) {
	builder := dependencies.CheckCommandBuilder{CommandDependencies: newCommandDependencies(testInstance.TempDir(), &cannedExecutor{})}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(command, []string{"--platform", "cobol"}, "")

	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "cobol")
}

func TestUpdateCommandHonorsPromptAnswers(testInstance *testing.T) {
	rootDirectory := writeSampleProjects(testInstance)
	executor := &cannedExecutor{outputs: map[string]string{
		"npm update": "",
	}}
	builder := dependencies.UpdateCommandBuilder{CommandDependencies: newCommandDependencies(rootDirectory, executor)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(command, []string{"--json"}, "n\ny\n")

	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []string{"npm update"}, executor.recordedCommands)

	var document report.UpdateDocument
	require.NoError(testInstance, json.Unmarshal([]byte(output), &document))
	require.Equal(testInstance, report.UpdateSummary{Total: 2, Updated: 1, Skipped: 1}, document.Summary)
}

func TestUpdateCommandDryRun(testInstance *testing.T) {
	rootDirectory := writeSampleProjects(testInstance)
	executor := &cannedExecutor{}
	builder := dependencies.UpdateCommandBuilder{CommandDependencies: newCommandDependencies(rootDirectory, executor)}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(command, []string{"--dry-run", "--platform", "node"}, "")

	require.NoError(testInstance, executionError)
	require.Empty(testInstance, executor.recordedCommands)
	require.Contains(testInstance, output, "Dependency update (dry run)")
	require.Contains(testInstance, output, "dry run: would update")
	require.Contains(testInstance, output, "Summary: 1 project(s), 0 updated, 0 failed, 1 skipped")
}
