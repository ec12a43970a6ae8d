package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/platforms"
	"github.com/temirov/depctl/internal/ui"
)

const (
	checkTitleConstant               = "Dependency check"
	updateTitleConstant              = "Dependency update"
	dryRunTitleSuffixConstant        = " (dry run)"
	groupHeadingTemplateConstant     = "%s (%d)"
	projectLineTemplateConstant      = "  %s %s [%s] %s"
	projectDetailTemplateConstant    = ": %s"
	packageLineTemplateConstant      = "%s %s -> %s"
	backupLineTemplateConstant       = "backup: %s"
	nestedIndentConstant             = "      "
	warningLineTemplateConstant      = "warning: %s"
	noProjectsTemplateConstant       = "No projects found under %s"
	checkSummaryTemplateConstant     = "Summary: %d project(s), %d outdated (%d with errors), %d up to date"
	updateSummaryTemplateConstant    = "Summary: %d project(s), %d updated, %d failed, %d skipped"
	unknownVersionConstant           = "?"
	rootListSeparatorConstant        = ", "
	jsonIndentConstant               = "  "
	renderErrorTemplateConstant      = "unable to render report: %w"
	markerUpToDateConstant           = "✓"
	markerOutdatedConstant           = "↑"
	markerErrorConstant              = "✗"
	markerSkippedConstant            = "-"
	headingOutdatedConstant          = "Outdated"
	headingErrorsConstant            = "Errors"
	headingUpToDateConstant          = "Up to date"
	headingUpdatedConstant           = "Updated"
	headingFailedConstant            = "Failed"
	headingSkippedConstant           = "Skipped"
	informationalRootsFallbackMarker = "the configured roots"
)

// ProjectDocument is the JSON form of one project's result.
type ProjectDocument struct {
	Name             string                      `json:"name"`
	Path             string                      `json:"path"`
	Platform         string                      `json:"platform"`
	Manifest         string                      `json:"manifest"`
	Status           string                      `json:"status"`
	Detail           string                      `json:"detail,omitempty"`
	OutdatedPackages []platforms.OutdatedPackage `json:"outdated_packages,omitempty"`
	BackupPath       string                      `json:"backup_path,omitempty"`
}

// CheckDocument is the JSON form of a check report.
type CheckDocument struct {
	Summary       CheckSummary      `json:"summary"`
	CIEnvironment bool              `json:"ci_environment"`
	Command       Command           `json:"command"`
	Projects      []ProjectDocument `json:"projects"`
}

// UpdateDocument is the JSON form of an update report.
type UpdateDocument struct {
	Summary       UpdateSummary     `json:"summary"`
	CIEnvironment bool              `json:"ci_environment"`
	Command       Command           `json:"command"`
	Projects      []ProjectDocument `json:"projects"`
}

// Renderer writes reports to an output stream.
type Renderer struct {
	writer     io.Writer
	palette    ui.Palette
	jsonOutput bool
}

// NewRenderer constructs a renderer. Human output is styled for writer's color profile.
func NewRenderer(writer io.Writer, jsonOutput bool) *Renderer {
	return &Renderer{writer: writer, palette: ui.NewPalette(writer), jsonOutput: jsonOutput}
}

// RenderCheck writes a check report.
func (renderer *Renderer) RenderCheck(checkReport CheckReport) error {
	if renderer.jsonOutput {
		return renderer.writeJSON(NewCheckDocument(checkReport))
	}

	lines := renderer.warningLines(checkReport.Warnings)
	if len(checkReport.Results) == 0 {
		lines = append(lines, noProjectsMessage(checkReport.Roots))
		return renderer.writeLines(lines)
	}

	lines = append(lines, renderer.palette.Title.Render(checkTitleConstant))
	groups := []struct {
		status  platforms.CheckStatus
		heading string
		marker  string
	}{
		{status: platforms.CheckStatusOutdated, heading: headingOutdatedConstant, marker: renderer.palette.Warning.Render(markerOutdatedConstant)},
		{status: platforms.CheckStatusError, heading: headingErrorsConstant, marker: renderer.palette.Error.Render(markerErrorConstant)},
		{status: platforms.CheckStatusUpToDate, heading: headingUpToDateConstant, marker: renderer.palette.Success.Render(markerUpToDateConstant)},
	}
	for _, group := range groups {
		groupResults := make([]platforms.CheckResult, 0)
		for _, result := range checkReport.Results {
			if result.Status == group.status {
				groupResults = append(groupResults, result)
			}
		}
		if len(groupResults) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf(groupHeadingTemplateConstant, group.heading, len(groupResults)))
		for _, result := range groupResults {
			lines = append(lines, renderer.projectLine(group.marker, result.Project, result.Detail))
			for _, outdatedPackage := range result.OutdatedPackages {
				lines = append(lines, nestedIndentConstant+renderer.palette.Muted.Render(fmt.Sprintf(packageLineTemplateConstant, outdatedPackage.Name, versionOrUnknown(outdatedPackage.Current), versionOrUnknown(outdatedPackage.Latest))))
			}
		}
	}

	summary := checkReport.Summary()
	lines = append(lines, fmt.Sprintf(checkSummaryTemplateConstant, summary.Total, summary.Outdated, summary.Errors, summary.UpToDate))
	return renderer.writeLines(lines)
}

// RenderUpdate writes an update report.
func (renderer *Renderer) RenderUpdate(updateReport UpdateReport) error {
	if renderer.jsonOutput {
		return renderer.writeJSON(NewUpdateDocument(updateReport))
	}

	lines := renderer.warningLines(updateReport.Warnings)
	if len(updateReport.Results) == 0 {
		lines = append(lines, noProjectsMessage(updateReport.Roots))
		return renderer.writeLines(lines)
	}

	title := updateTitleConstant
	if updateReport.DryRun {
		title += dryRunTitleSuffixConstant
	}
	lines = append(lines, renderer.palette.Title.Render(title))
	groups := []struct {
		status  platforms.UpdateStatus
		heading string
		marker  string
	}{
		{status: platforms.UpdateStatusFailed, heading: headingFailedConstant, marker: renderer.palette.Error.Render(markerErrorConstant)},
		{status: platforms.UpdateStatusUpdated, heading: headingUpdatedConstant, marker: renderer.palette.Success.Render(markerUpToDateConstant)},
		{status: platforms.UpdateStatusSkipped, heading: headingSkippedConstant, marker: renderer.palette.Muted.Render(markerSkippedConstant)},
	}
	for _, group := range groups {
		groupResults := make([]platforms.UpdateResult, 0)
		for _, result := range updateReport.Results {
			if result.Status == group.status {
				groupResults = append(groupResults, result)
			}
		}
		if len(groupResults) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf(groupHeadingTemplateConstant, group.heading, len(groupResults)))
		for _, result := range groupResults {
			lines = append(lines, renderer.projectLine(group.marker, result.Project, result.Detail))
			if len(result.BackupPath) > 0 {
				lines = append(lines, nestedIndentConstant+renderer.palette.Muted.Render(fmt.Sprintf(backupLineTemplateConstant, result.BackupPath)))
			}
		}
	}

	summary := updateReport.Summary()
	lines = append(lines, fmt.Sprintf(updateSummaryTemplateConstant, summary.Total, summary.Updated, summary.Failed, summary.Skipped))
	return renderer.writeLines(lines)
}

// NewCheckDocument converts a check report to its JSON form.
func NewCheckDocument(checkReport CheckReport) CheckDocument {
	projects := make([]ProjectDocument, 0, len(checkReport.Results))
	for _, result := range checkReport.Results {
		document := newProjectDocument(result.Project, string(result.Status), result.Detail)
		document.OutdatedPackages = result.OutdatedPackages
		projects = append(projects, document)
	}
	return CheckDocument{
		Summary:       checkReport.Summary(),
		CIEnvironment: checkReport.CIEnvironment,
		Command:       CommandCheck,
		Projects:      projects,
	}
}

// NewUpdateDocument converts an update report to its JSON form.
func NewUpdateDocument(updateReport UpdateReport) UpdateDocument {
	projects := make([]ProjectDocument, 0, len(updateReport.Results))
	for _, result := range updateReport.Results {
		document := newProjectDocument(result.Project, string(result.Status), result.Detail)
		document.BackupPath = result.BackupPath
		projects = append(projects, document)
	}
	return UpdateDocument{
		Summary:       updateReport.Summary(),
		CIEnvironment: updateReport.CIEnvironment,
		Command:       CommandUpdate,
		Projects:      projects,
	}
}

func newProjectDocument(project discovery.Project, status string, detail string) ProjectDocument {
	return ProjectDocument{
		Name:     project.Name(),
		Path:     project.Path,
		Platform: string(project.Platform),
		Manifest: project.Manifest,
		Status:   status,
		Detail:   detail,
	}
}

func (renderer *Renderer) projectLine(marker string, project discovery.Project, detail string) string {
	line := fmt.Sprintf(projectLineTemplateConstant, marker, project.Name(), project.Platform, project.Path)
	if len(detail) > 0 {
		line += fmt.Sprintf(projectDetailTemplateConstant, detail)
	}
	return line
}

func (renderer *Renderer) warningLines(warnings []string) []string {
	lines := make([]string, 0, len(warnings))
	for _, warning := range warnings {
		lines = append(lines, renderer.palette.Warning.Render(fmt.Sprintf(warningLineTemplateConstant, warning)))
	}
	return lines
}

func (renderer *Renderer) writeLines(lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	if _, writeError := io.WriteString(renderer.writer, strings.Join(lines, "\n")+"\n"); writeError != nil {
		return fmt.Errorf(renderErrorTemplateConstant, writeError)
	}
	return nil
}

func (renderer *Renderer) writeJSON(document any) error {
	encoder := json.NewEncoder(renderer.writer)
	encoder.SetIndent("", jsonIndentConstant)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return fmt.Errorf(renderErrorTemplateConstant, encodeError)
	}
	return nil
}

func noProjectsMessage(roots []string) string {
	rootDescription := strings.Join(roots, rootListSeparatorConstant)
	if len(rootDescription) == 0 {
		rootDescription = informationalRootsFallbackMarker
	}
	return fmt.Sprintf(noProjectsTemplateConstant, rootDescription)
}

func versionOrUnknown(version string) string {
	if len(version) == 0 {
		return unknownVersionConstant
	}
	return version
}
