package platforms

import "github.com/temirov/depctl/internal/discovery"

// CheckStatus classifies the outcome of a dependency check.
type CheckStatus string

// Check statuses.
const (
	CheckStatusUpToDate CheckStatus = "up_to_date"
	CheckStatusOutdated CheckStatus = "outdated"
	CheckStatusError    CheckStatus = "error"
)

// UpdateStatus classifies the outcome of a dependency update.
type UpdateStatus string

// Update statuses.
const (
	UpdateStatusUpdated UpdateStatus = "updated"
	UpdateStatusFailed  UpdateStatus = "failed"
	UpdateStatusSkipped UpdateStatus = "skipped"
)

// OutdatedPackage describes a dependency with a newer release available.
type OutdatedPackage struct {
	Name    string `json:"name"`
	Current string `json:"current,omitempty"`
	Latest  string `json:"latest,omitempty"`
}

// CheckResult captures the outcome of checking one project.
type CheckResult struct {
	Project          discovery.Project
	Status           CheckStatus
	Detail           string
	OutdatedPackages []OutdatedPackage
}

// UpdateResult captures the outcome of updating one project.
type UpdateResult struct {
	Project    discovery.Project
	Status     UpdateStatus
	Detail     string
	BackupPath string
}

func checkError(project discovery.Project, detail string) CheckResult {
	return CheckResult{Project: project, Status: CheckStatusError, Detail: detail}
}

func checkFromPackages(project discovery.Project, outdatedPackages []OutdatedPackage, upToDateDetail string, outdatedDetailTemplate string) CheckResult {
	if len(outdatedPackages) == 0 {
		return CheckResult{Project: project, Status: CheckStatusUpToDate, Detail: upToDateDetail}
	}
	return CheckResult{
		Project:          project,
		Status:           CheckStatusOutdated,
		Detail:           formatCount(outdatedDetailTemplate, len(outdatedPackages)),
		OutdatedPackages: outdatedPackages,
	}
}

func updateFailed(project discovery.Project, detail string) UpdateResult {
	return UpdateResult{Project: project, Status: UpdateStatusFailed, Detail: detail}
}
