package report

import (
	"fmt"

	"github.com/temirov/depctl/internal/platforms"
)

// Command names the operation a report describes.
type Command string

// Report commands.
const (
	CommandCheck  Command = "check"
	CommandUpdate Command = "update"
)

// Exit codes.
const (
	ExitCodeSuccess  = 0
	ExitCodeFindings = 1
)

const (
	exitStatusErrorTemplateConstant = "exit status %d"
)

// ExitStatusError carries a non-zero process exit code without an error message.
type ExitStatusError struct {
	Code int
}

// Error describes the exit status.
func (exitStatusError ExitStatusError) Error() string {
	return fmt.Sprintf(exitStatusErrorTemplateConstant, exitStatusError.Code)
}

// ExitStatus returns an ExitStatusError for non-zero codes and nil otherwise.
func ExitStatus(code int) error {
	if code == ExitCodeSuccess {
		return nil
	}
	return ExitStatusError{Code: code}
}

// CheckSummary counts check outcomes. Outdated includes errored projects, so
// Total always equals Outdated plus UpToDate.
type CheckSummary struct {
	Total    int `json:"total"`
	Outdated int `json:"outdated"`
	UpToDate int `json:"up_to_date"`
	Errors   int `json:"errors"`
}

// UpdateSummary counts update outcomes.
type UpdateSummary struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// CheckReport holds the results of a check run.
type CheckReport struct {
	CIEnvironment bool
	Roots         []string
	Warnings      []string
	Results       []platforms.CheckResult
}

// Summary counts the report's results.
func (checkReport CheckReport) Summary() CheckSummary {
	summary := CheckSummary{Total: len(checkReport.Results)}
	for _, result := range checkReport.Results {
		switch result.Status {
		case platforms.CheckStatusUpToDate:
			summary.UpToDate++
		case platforms.CheckStatusError:
			summary.Errors++
			summary.Outdated++
		default:
			summary.Outdated++
		}
	}
	return summary
}

// ExitCode is zero only when every project is up to date.
func (checkReport CheckReport) ExitCode() int {
	if checkReport.Summary().Outdated > 0 {
		return ExitCodeFindings
	}
	return ExitCodeSuccess
}

// UpdateReport holds the results of an update run.
type UpdateReport struct {
	CIEnvironment bool
	DryRun        bool
	Roots         []string
	Warnings      []string
	Results       []platforms.UpdateResult
}

// Summary counts the report's results.
func (updateReport UpdateReport) Summary() UpdateSummary {
	summary := UpdateSummary{Total: len(updateReport.Results)}
	for _, result := range updateReport.Results {
		switch result.Status {
		case platforms.UpdateStatusUpdated:
			summary.Updated++
		case platforms.UpdateStatusFailed:
			summary.Failed++
		default:
			summary.Skipped++
		}
	}
	return summary
}

// ExitCode is zero unless an update failed.
func (updateReport UpdateReport) ExitCode() int {
	if updateReport.Summary().Failed > 0 {
		return ExitCodeFindings
	}
	return ExitCodeSuccess
}
