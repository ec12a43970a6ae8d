package platforms_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/execshell"
)

type scriptedResponse struct {
	result execshell.ExecutionResult
	err    error
}

type scriptedExecutor struct {
	responses        map[string]scriptedResponse
	recordedCommands []execshell.ShellCommand
}

func newScriptedExecutor(responses map[string]scriptedResponse) *scriptedExecutor {
	return &scriptedExecutor{responses: responses}
}

func commandKey(command execshell.ShellCommand) string {
	return strings.Join(append([]string{string(command.Name)}, command.Details.Arguments...), " ")
}

func (executor *scriptedExecutor) Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, command)
	response, scripted := executor.responses[commandKey(command)]
	if !scripted {
		return execshell.ExecutionResult{}, execshell.CommandExecutionError{Command: command, Cause: fmt.Errorf("unexpected command %q", commandKey(command))}
	}
	if response.err != nil {
		return execshell.ExecutionResult{}, execshell.CommandExecutionError{Command: command, Cause: response.err}
	}
	if response.result.ExitCode != 0 {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{Command: command, Result: response.result}
	}
	return response.result, nil
}

func (executor *scriptedExecutor) recordedKeys() []string {
	keys := make([]string, 0, len(executor.recordedCommands))
	for _, command := range executor.recordedCommands {
		keys = append(keys, commandKey(command))
	}
	return keys
}

type stubToolLocator struct {
	installed map[string]bool
}

func (locator stubToolLocator) LookPath(name string) (string, error) {
	if locator.installed[name] {
		return "/usr/local/bin/" + name, nil
	}
	return "", fmt.Errorf("%s: %w", name, errors.Join(execshell.ErrToolNotFound, errors.New("executable file not found in $PATH")))
}

func createProject(testInstance *testing.T, platform discovery.Platform, files map[string]string) discovery.Project {
	testInstance.Helper()
	projectPath := filepath.Join(testInstance.TempDir(), string(platform)+"-sample")
	require.NoError(testInstance, os.MkdirAll(projectPath, 0o755))
	for fileName, content := range files {
		require.NoError(testInstance, os.WriteFile(filepath.Join(projectPath, fileName), []byte(content), 0o644))
	}
	manifestPath := filepath.Join(projectPath, discovery.ManifestFileNames(platform)[0])
	if _, statError := os.Stat(manifestPath); statError != nil && platform == discovery.PlatformAndroid {
		manifestPath = filepath.Join(projectPath, discovery.ManifestFileNames(platform)[1])
	}
	return discovery.Project{Path: projectPath, Platform: platform, Manifest: manifestPath}
}
