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
	npmOutdatedOutput          = `{"left-pad":{"current":"1.0.0","wanted":"1.3.0","latest":"1.3.0","location":"node_modules/left-pad"}}`
	npmWorkspaceOutdatedOutput = `{"left-pad":[{"current":"1.0.0","wanted":"1.3.0","latest":"1.3.0","location":"packages/a/node_modules/left-pad"},{"current":"1.1.0","wanted":"1.3.0","latest":"1.3.0","location":"packages/b/node_modules/left-pad"}],"react":{"current":"17.0.2","wanted":"17.0.2","latest":"18.3.1"}}`
	yarnOutdatedOutput         = `{"type":"info","data":"Color legend"}
{"type":"table","data":{"head":["Package","Current","Wanted","Latest","Package Type","URL"],"body":[["react","17.0.2","17.0.2","18.3.1","dependencies","https://react.dev"]]}}`
	yarnCurrentOutput = `{"type":"info","data":"Color legend"}`
	yarnPlainOutdated = `Package Current Wanted Latest Package Type URL
lodash  4.17.0  4.17.21 4.17.21 dependencies https://lodash.com`
)

func TestPackageManagerSelection(testInstance *testing.T) {
	testCases := []struct {
		name            string
		files           map[string]string
		expectedManager execshell.CommandName
	}{
		{name: "npm_default", files: map[string]string{"package.json": "{}", "package-lock.json": "{}"}, expectedManager: execshell.CommandNPM},
		{name: "yarn_lock", files: map[string]string{"package.json": "{}", "yarn.lock": ""}, expectedManager: execshell.CommandYarn},
		{name: "pnpm_lock", files: map[string]string{"package.json": "{}", "pnpm-lock.yaml": ""}, expectedManager: execshell.CommandPNPM},
		{name: "pnpm_wins_over_yarn", files: map[string]string{"package.json": "{}", "pnpm-lock.yaml": "", "yarn.lock": ""}, expectedManager: execshell.CommandPNPM},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			project := createProject(testInstance, discovery.PlatformNode, testCase.files)
			require.Equal(testInstance, testCase.expectedManager, platforms.PackageManager(project))
		})
	}
}

func TestNodeAdapterCheck(testInstance *testing.T) {
	testCases := []struct {
		name             string
		lockFile         string
		commandKey       string
		response         scriptedResponse
		expectedStatus   platforms.CheckStatus
		expectedPackages []platforms.OutdatedPackage
	}{
		{
			name:           "npm_empty_object",
			commandKey:     "npm outdated --json",
			response:       scriptedResponse{result: execshell.ExecutionResult{StandardOutput: "{}\n"}},
			expectedStatus: platforms.CheckStatusUpToDate,
		},
		{
			name:           "npm_empty_output",
			commandKey:     "npm outdated --json",
			response:       scriptedResponse{},
			expectedStatus: platforms.CheckStatusUpToDate,
		},
		{
			name:             "npm_outdated_exit_one",
			commandKey:       "npm outdated --json",
			response:         scriptedResponse{result: execshell.ExecutionResult{StandardOutput: npmOutdatedOutput, ExitCode: 1}},
			expectedStatus:   platforms.CheckStatusOutdated,
			expectedPackages: []platforms.OutdatedPackage{{Name: "left-pad", Current: "1.0.0", Latest: "1.3.0"}},
		},
		{
			name:           "npm_failure_without_output",
			commandKey:     "npm outdated --json",
			response:       scriptedResponse{result: execshell.ExecutionResult{ExitCode: 1, StandardError: "npm ERR! code ENOENT"}},
			expectedStatus: platforms.CheckStatusError,
		},
		{
			name:           "npm_workspace_locations",
			commandKey:     "npm outdated --json",
			response:       scriptedResponse{result: execshell.ExecutionResult{StandardOutput: npmWorkspaceOutdatedOutput, ExitCode: 1}},
			expectedStatus: platforms.CheckStatusOutdated,
			expectedPackages: []platforms.OutdatedPackage{
				{Name: "left-pad", Current: "1.0.0", Latest: "1.3.0"},
				{Name: "react", Current: "17.0.2", Latest: "18.3.1"},
			},
		},
		{
			name:             "npm_bracketed_banner",
			commandKey:       "npm outdated --json",
			response:         scriptedResponse{result: execshell.ExecutionResult{StandardOutput: "[!] registry mirror is slow\n" + npmOutdatedOutput, ExitCode: 1}},
			expectedStatus:   platforms.CheckStatusOutdated,
			expectedPackages: []platforms.OutdatedPackage{{Name: "left-pad", Current: "1.0.0", Latest: "1.3.0"}},
		},
		{
			name:             "pnpm_outdated",
			lockFile:         "pnpm-lock.yaml",
			commandKey:       "pnpm outdated --format json",
			response:         scriptedResponse{result: execshell.ExecutionResult{StandardOutput: npmOutdatedOutput, ExitCode: 1}},
			expectedStatus:   platforms.CheckStatusOutdated,
			expectedPackages: []platforms.OutdatedPackage{{Name: "left-pad", Current: "1.0.0", Latest: "1.3.0"}},
		},
		{
			name:             "yarn_table_record",
			lockFile:         "yarn.lock",
			commandKey:       "yarn outdated --json",
			response:         scriptedResponse{result: execshell.ExecutionResult{StandardOutput: yarnOutdatedOutput, ExitCode: 1}},
			expectedStatus:   platforms.CheckStatusOutdated,
			expectedPackages: []platforms.OutdatedPackage{{Name: "react", Current: "17.0.2", Latest: "18.3.1"}},
		},
		{
			name:           "yarn_no_table",
			lockFile:       "yarn.lock",
			commandKey:     "yarn outdated --json",
			response:       scriptedResponse{result: execshell.ExecutionResult{StandardOutput: yarnCurrentOutput}},
			expectedStatus: platforms.CheckStatusUpToDate,
		},
		{
			name:             "yarn_plain_fallback",
			lockFile:         "yarn.lock",
			commandKey:       "yarn outdated --json",
			response:         scriptedResponse{result: execshell.ExecutionResult{StandardOutput: yarnPlainOutdated, ExitCode: 1}},
			expectedStatus:   platforms.CheckStatusOutdated,
			expectedPackages: []platforms.OutdatedPackage{{Name: "lodash", Current: "4.17.0", Latest: "4.17.21"}},
		},
		{
			name:           "yarn_unrecognized_output",
			lockFile:       "yarn.lock",
			commandKey:     "yarn outdated --json",
			response:       scriptedResponse{result: execshell.ExecutionResult{StandardOutput: "something unexpected"}},
			expectedStatus: platforms.CheckStatusError,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			files := map[string]string{"package.json": "{}"}
			if len(testCase.lockFile) > 0 {
				files[testCase.lockFile] = ""
			}
			project := createProject(testInstance, discovery.PlatformNode, files)
			executor := newScriptedExecutor(map[string]scriptedResponse{testCase.commandKey: testCase.response})

			result := platforms.NewNodeAdapter(platforms.Dependencies{Executor: executor}).Check(context.Background(), project)

			require.Equal(testInstance, testCase.expectedStatus, result.Status, result.Detail)
			require.Equal(testInstance, testCase.expectedPackages, nilIfEmpty(result.OutdatedPackages))
			require.Equal(testInstance, []string{testCase.commandKey}, executor.recordedKeys())
		})
	}
}

func TestNodeAdapterUpdateUsesSelectedManager(testInstance *testing.T) {
	testCases := []struct {
		name       string
		lockFile   string
		commandKey string
	}{
		{name: "npm", commandKey: "npm update"},
		{name: "yarn", lockFile: "yarn.lock", commandKey: "yarn upgrade"},
		{name: "pnpm", lockFile: "pnpm-lock.yaml", commandKey: "pnpm update"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			files := map[string]string{"package.json": "{}"}
			if len(testCase.lockFile) > 0 {
				files[testCase.lockFile] = ""
			}
			project := createProject(testInstance, discovery.PlatformNode, files)
			executor := newScriptedExecutor(map[string]scriptedResponse{testCase.commandKey: {}})

			result := platforms.NewNodeAdapter(platforms.Dependencies{Executor: executor}).Update(context.Background(), project)

			require.Equal(testInstance, platforms.UpdateStatusUpdated, result.Status)
			require.Equal(testInstance, []string{testCase.commandKey}, executor.recordedKeys())
			require.Equal(testInstance, map[string]string{"NO_COLOR": "1", "FORCE_COLOR": "0", "CI": "true"}, executor.recordedCommands[0].Details.EnvironmentVariables)
		})
	}
}

func TestNodeAdapterPreflightLooksUpSelectedManager(testInstance *testing.T) {
	project := createProject(testInstance, discovery.PlatformNode, map[string]string{"package.json": "{}", "yarn.lock": ""})
	adapter := platforms.NewNodeAdapter(platforms.Dependencies{ToolLocator: stubToolLocator{installed: map[string]bool{"npm": true}}})

	preflightError := adapter.Preflight(project, platforms.OperationCheck)
	require.ErrorIs(testInstance, preflightError, platforms.ErrToolMissing)

	var typedError platforms.PreflightError
	require.ErrorAs(testInstance, preflightError, &typedError)
	require.Equal(testInstance, project, typedError.Project)
}
