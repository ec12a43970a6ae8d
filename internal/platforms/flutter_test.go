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
	flutterOutdatedCommandKey = "flutter pub outdated --json"
	flutterCurrentOutput      = `{"packages":[{"package":"http","kind":"direct","current":{"version":"1.2.0"},"upgradable":{"version":"1.2.0"},"resolvable":{"version":"1.2.0"},"latest":{"version":"1.2.0"}}]}`
	flutterOutdatedOutput     = `{"packages":[
		{"package":"provider","kind":"direct","current":{"version":"6.0.0"},"latest":{"version":"6.1.2"}},
		{"package":"http","kind":"dev","current":{"version":"1.2.0"},"latest":{"version":"1.2.0"}},
		{"package":"meta","kind":"transitive","current":{"version":"1.9.0"},"latest":{"version":"1.15.0"}},
		{"package":"ditto_live","kind":"direct","current":null,"latest":{"version":"4.9.0"}}
	]}`
)

func TestFlutterAdapterCheck(testInstance *testing.T) {
	testCases := []struct {
		name             string
		response         scriptedResponse
		expectedStatus   platforms.CheckStatus
		expectedPackages []platforms.OutdatedPackage
	}{
		{
			name:           "current",
			response:       scriptedResponse{result: execshell.ExecutionResult{StandardOutput: flutterCurrentOutput}},
			expectedStatus: platforms.CheckStatusUpToDate,
		},
		{
			name:             "outdated_direct_dependency",
			response:         scriptedResponse{result: execshell.ExecutionResult{StandardOutput: "Resolving dependencies...\n" + flutterOutdatedOutput}},
			expectedStatus:   platforms.CheckStatusOutdated,
			expectedPackages: []platforms.OutdatedPackage{{Name: "provider", Current: "6.0.0", Latest: "6.1.2"}},
		},
		{
			name:           "unparseable_output",
			response:       scriptedResponse{result: execshell.ExecutionResult{StandardOutput: "not json"}},
			expectedStatus: platforms.CheckStatusError,
		},
		{
			name:           "command_failure",
			response:       scriptedResponse{result: execshell.ExecutionResult{ExitCode: 65, StandardError: "pubspec.yaml has errors"}},
			expectedStatus: platforms.CheckStatusError,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			project := createProject(testInstance, discovery.PlatformFlutter, map[string]string{"pubspec.yaml": "name: sample\n"})
			executor := newScriptedExecutor(map[string]scriptedResponse{flutterOutdatedCommandKey: testCase.response})
			adapter := platforms.NewFlutterAdapter(platforms.Dependencies{Executor: executor})

			result := adapter.Check(context.Background(), project)

			require.Equal(testInstance, testCase.expectedStatus, result.Status)
			require.Equal(testInstance, testCase.expectedPackages, nilIfEmpty(result.OutdatedPackages))
			require.Equal(testInstance, project, result.Project)
			require.Equal(testInstance, project.Path, executor.recordedCommands[0].Details.WorkingDirectory)
		})
	}
}

func TestFlutterAdapterUpdateRunsUpgradeThenGet(testInstance *testing.T) {
	project := createProject(testInstance, discovery.PlatformFlutter, map[string]string{"pubspec.yaml": "name: sample\n"})
	executor := newScriptedExecutor(map[string]scriptedResponse{
		"flutter pub upgrade": {},
		"flutter pub get":     {},
	})

	result := platforms.NewFlutterAdapter(platforms.Dependencies{Executor: executor}).Update(context.Background(), project)

	require.Equal(testInstance, platforms.UpdateStatusUpdated, result.Status)
	require.Equal(testInstance, []string{"flutter pub upgrade", "flutter pub get"}, executor.recordedKeys())
}

func TestFlutterAdapterUpdateStopsAfterUpgradeFailure(testInstance *testing.T) {
	project := createProject(testInstance, discovery.PlatformFlutter, map[string]string{"pubspec.yaml": "name: sample\n"})
	executor := newScriptedExecutor(map[string]scriptedResponse{
		"flutter pub upgrade": {result: execshell.ExecutionResult{ExitCode: 1, StandardError: "version solving failed"}},
	})

	result := platforms.NewFlutterAdapter(platforms.Dependencies{Executor: executor}).Update(context.Background(), project)

	require.Equal(testInstance, platforms.UpdateStatusFailed, result.Status)
	require.Contains(testInstance, result.Detail, "version solving failed")
	require.Equal(testInstance, []string{"flutter pub upgrade"}, executor.recordedKeys())
}

func TestFlutterAdapterPreflight(testInstance *testing.T) {
	project := createProject(testInstance, discovery.PlatformFlutter, map[string]string{"pubspec.yaml": "name: sample\n"})

	missingTool := platforms.NewFlutterAdapter(platforms.Dependencies{ToolLocator: stubToolLocator{}}).Preflight(project, platforms.OperationCheck)
	require.ErrorIs(testInstance, missingTool, platforms.ErrToolMissing)
	require.ErrorIs(testInstance, missingTool, execshell.ErrToolNotFound)

	installed := platforms.NewFlutterAdapter(platforms.Dependencies{ToolLocator: stubToolLocator{installed: map[string]bool{"flutter": true}}})
	require.NoError(testInstance, installed.Preflight(project, platforms.OperationCheck))

	project.Manifest = project.Manifest + ".missing"
	require.ErrorIs(testInstance, installed.Preflight(project, platforms.OperationUpdate), platforms.ErrManifestMissing)
}

func nilIfEmpty(outdatedPackages []platforms.OutdatedPackage) []platforms.OutdatedPackage {
	if len(outdatedPackages) == 0 {
		return nil
	}
	return outdatedPackages
}
