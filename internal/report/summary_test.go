package report_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/platforms"
	"github.com/temirov/depctl/internal/report"
)

func checkResult(name string, platform discovery.Platform, status platforms.CheckStatus) platforms.CheckResult {
	return platforms.CheckResult{
		Project: discovery.Project{Path: "/work/" + name, Platform: platform, Manifest: "/work/" + name + "/manifest"},
		Status:  status,
	}
}

func updateResult(name string, status platforms.UpdateStatus) platforms.UpdateResult {
	return platforms.UpdateResult{
		Project: discovery.Project{Path: "/work/" + name, Platform: discovery.PlatformNode, Manifest: "/work/" + name + "/package.json"},
		Status:  status,
	}
}

func TestCheckReportSummaryAndExitCode(testInstance *testing.T) {
	testCases := []struct {
		name             string
		results          []platforms.CheckResult
		expectedSummary  report.CheckSummary
		expectedExitCode int
	}{
		{
			name:             "no_projects",
			expectedSummary:  report.CheckSummary{},
			expectedExitCode: report.ExitCodeSuccess,
		},
		{
			name: "all_current",
			results: []platforms.CheckResult{
				checkResult("web", discovery.PlatformNode, platforms.CheckStatusUpToDate),
				checkResult("app", discovery.PlatformFlutter, platforms.CheckStatusUpToDate),
			},
			expectedSummary:  report.CheckSummary{Total: 2, UpToDate: 2},
			expectedExitCode: report.ExitCodeSuccess,
		},
		{
			name: "errors_count_as_outdated",
			results: []platforms.CheckResult{
				checkResult("web", discovery.PlatformNode, platforms.CheckStatusUpToDate),
				checkResult("api", discovery.PlatformPython, platforms.CheckStatusOutdated),
				checkResult("ios", discovery.PlatformIOS, platforms.CheckStatusError),
			},
			expectedSummary:  report.CheckSummary{Total: 3, Outdated: 2, UpToDate: 1, Errors: 1},
			expectedExitCode: report.ExitCodeFindings,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			checkReport := report.CheckReport{Results: testCase.results}
			summary := checkReport.Summary()
			require.Equal(testInstance, testCase.expectedSummary, summary)
			require.Equal(testInstance, summary.Total, summary.Outdated+summary.UpToDate)
			require.Equal(testInstance, testCase.expectedExitCode, checkReport.ExitCode())
		})
	}
}

func TestUpdateReportSummaryAndExitCode(testInstance *testing.T) {
	updateReport := report.UpdateReport{Results: []platforms.UpdateResult{
		updateResult("one", platforms.UpdateStatusUpdated),
		updateResult("two", platforms.UpdateStatusSkipped),
		updateResult("three", platforms.UpdateStatusFailed),
		updateResult("four", platforms.UpdateStatusFailed),
	}}

	require.Equal(testInstance, report.UpdateSummary{Total: 4, Updated: 1, Failed: 2, Skipped: 1}, updateReport.Summary())
	require.Equal(testInstance, report.ExitCodeFindings, updateReport.ExitCode())

	skippedOnly := report.UpdateReport{Results: []platforms.UpdateResult{updateResult("one", platforms.UpdateStatusSkipped)}}
	require.Equal(testInstance, report.ExitCodeSuccess, skippedOnly.ExitCode())
}

func TestExitStatus(testInstance *testing.T) {
	require.NoError(testInstance, report.ExitStatus(report.ExitCodeSuccess))

	exitError := report.ExitStatus(report.ExitCodeFindings)
	var exitStatusError report.ExitStatusError
	require.True(testInstance, errors.As(exitError, &exitStatusError))
	require.Equal(testInstance, 1, exitStatusError.Code)
	require.Equal(testInstance, "exit status 1", exitError.Error())
}
