package platforms_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/execshell"
	"github.com/temirov/depctl/internal/platforms"
)

const (
	podCurrentOutput = `Updating spec repo ` + "`trunk`" + `
Analyzing dependencies
No pod updates are available.
`
	podOutdatedOutput = `Analyzing dependencies
The color indicates what happens when you run ` + "`pod update`" + `
The following pod updates are available:
- Alamofire 5.6.0 -> 5.9.1 (latest version 5.9.1)
- DittoSwift 4.7.0 -> 4.7.0 (latest version 4.9.0)
`
)

func TestIOSAdapterSkipsOffMacOS(testInstance *testing.T) {
	project := createProject(testInstance, discovery.PlatformIOS, map[string]string{"Podfile": "platform :ios, '15.0'\n"})
	executor := newScriptedExecutor(nil)
	adapter := platforms.NewIOSAdapter(platforms.Dependencies{Executor: executor, ToolLocator: stubToolLocator{}}, platforms.IOSOptions{HostOperatingSystem: "linux"})

	require.NoError(testInstance, adapter.Preflight(project, platforms.OperationCheck))

	checkResult := adapter.Check(context.Background(), project)
	require.Equal(testInstance, platforms.CheckStatusUpToDate, checkResult.Status)
	require.Contains(testInstance, checkResult.Detail, "skipped")

	updateResult := adapter.Update(context.Background(), project)
	require.Equal(testInstance, platforms.UpdateStatusSkipped, updateResult.Status)
	require.Empty(testInstance, executor.recordedCommands)
}

func TestIOSAdapterCheckOnMacOS(testInstance *testing.T) {
	testCases := []struct {
		name             string
		output           string
		expectedStatus   platforms.CheckStatus
		expectedPackages []platforms.OutdatedPackage
	}{
		{
			name:           "no_updates",
			output:         podCurrentOutput,
			expectedStatus: platforms.CheckStatusUpToDate,
		},
		{
			name:           "updates_available",
			output:         podOutdatedOutput,
			expectedStatus: platforms.CheckStatusOutdated,
			expectedPackages: []platforms.OutdatedPackage{
				{Name: "Alamofire", Current: "5.6.0", Latest: "5.9.1"},
				{Name: "DittoSwift", Current: "4.7.0", Latest: "4.9.0"},
			},
		},
		{
			name:           "unrecognized_wording",
			output:         "Pods are fine, probably",
			expectedStatus: platforms.CheckStatusError,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			project := createProject(testInstance, discovery.PlatformIOS, map[string]string{"Podfile": ""})
			executor := newScriptedExecutor(map[string]scriptedResponse{
				"pod outdated": {result: execshell.ExecutionResult{StandardOutput: testCase.output}},
			})
			adapter := platforms.NewIOSAdapter(platforms.Dependencies{Executor: executor}, platforms.IOSOptions{HostOperatingSystem: "darwin"})

			result := adapter.Check(context.Background(), project)

			require.Equal(testInstance, testCase.expectedStatus, result.Status)
			require.Equal(testInstance, testCase.expectedPackages, nilIfEmpty(result.OutdatedPackages))
		})
	}
}

func TestIOSAdapterOnMacOSRequiresPod(testInstance *testing.T) {
	project := createProject(testInstance, discovery.PlatformIOS, map[string]string{"Podfile": ""})
	adapter := platforms.NewIOSAdapter(platforms.Dependencies{ToolLocator: stubToolLocator{}}, platforms.IOSOptions{HostOperatingSystem: "darwin"})

	require.ErrorIs(testInstance, adapter.Preflight(project, platforms.OperationUpdate), platforms.ErrToolMissing)
}

func TestIOSAdapterUpdateOnMacOS(testInstance *testing.T) {
	project := createProject(testInstance, discovery.PlatformIOS, map[string]string{"Podfile": ""})
	executor := newScriptedExecutor(map[string]scriptedResponse{"pod update": {}})
	adapter := platforms.NewIOSAdapter(platforms.Dependencies{Executor: executor}, platforms.IOSOptions{HostOperatingSystem: "darwin"})

	result := adapter.Update(context.Background(), project)

	require.Equal(testInstance, platforms.UpdateStatusUpdated, result.Status)
	require.Equal(testInstance, []string{"pod update"}, executor.recordedKeys())
}
