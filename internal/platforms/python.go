package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-version"
	"go.uber.org/zap"

	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/execshell"
)

const (
	defaultPipCommandConstant             = "pip"
	requirementsBackupSuffixConstant      = ".backup"
	pythonUpToDateDetailConstant          = "all declared requirements are at their latest versions"
	pythonOutdatedDetailTemplate          = "%d declared requirement(s) behind latest"
	pythonUpdatedDetailTemplate           = "upgraded requirements and re-pinned %d line(s)"
	pythonOutputDescriptionConstant       = "pip list --outdated"
	requirementsReadErrorTemplate         = "could not read %s: %v"
	requirementsWriteErrorTemplate        = "could not write %s: %v"
	requirementsBackupErrorTemplate       = "could not back up %s: %v"
	requirementsBackupMessageConstant     = "Backed up requirements before upgrade"
	logFieldBackupPathConstant            = "backup"
	pipVersionCheckEnvironmentKeyConstant = "PIP_DISABLE_PIP_VERSION_CHECK"
	pipNoColorEnvironmentKeyConstant      = "PIP_NO_COLOR"
)

// PythonOptions configures the Python adapter.
type PythonOptions struct {
	PipCommand string
	Backup     bool
}

// PythonAdapter checks and upgrades the packages declared in requirements.txt.
type PythonAdapter struct {
	dependencies Dependencies
	pipName      execshell.CommandName
	pipArguments []string
	backup       bool
}

// NewPythonAdapter constructs a Python adapter. PipCommand may include leading
// arguments, for example "python3 -m pip".
func NewPythonAdapter(dependencies Dependencies, options PythonOptions) *PythonAdapter {
	commandFields := strings.Fields(options.PipCommand)
	if len(commandFields) == 0 {
		commandFields = []string{defaultPipCommandConstant}
	}
	return &PythonAdapter{
		dependencies: dependencies,
		pipName:      execshell.CommandName(commandFields[0]),
		pipArguments: commandFields[1:],
		backup:       options.Backup,
	}
}

// Platform reports discovery.PlatformPython.
func (adapter *PythonAdapter) Platform() discovery.Platform {
	return discovery.PlatformPython
}

// Preflight requires requirements.txt and the configured pip executable.
func (adapter *PythonAdapter) Preflight(project discovery.Project, operation Operation) error {
	if manifestError := requireManifest(project); manifestError != nil {
		return manifestError
	}
	return requireTool(adapter.dependencies.toolLocator(), project, string(adapter.pipName))
}

type pipOutdatedEntry struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	LatestVersion string `json:"latest_version"`
}

// Check reports declared requirements that are behind. An exact "==" pin is outdated when
// it is older than the latest release pip knows of or, failing that, the installed version.
// Other declared requirements are outdated when pip lists the installed package as outdated.
func (adapter *PythonAdapter) Check(executionContext context.Context, project discovery.Project) CheckResult {
	requirementsContent, readError := os.ReadFile(project.Manifest)
	if readError != nil {
		return checkError(project, fmt.Sprintf(requirementsReadErrorTemplate, project.Manifest, readError))
	}
	declaredNames := RequirementNames(string(requirementsContent))
	pinnedRequirements := PinnedRequirements(string(requirementsContent))

	outdatedCommand := adapter.pipCommand(project, "list", "--outdated", "--format=json")
	outdatedResult, executionError := adapter.dependencies.Executor.Execute(executionContext, outdatedCommand)
	if executionError != nil {
		return checkError(project, commandFailedDetail(outdatedCommand, executionError))
	}

	var entries []pipOutdatedEntry
	if payload := jsonPayload(outdatedResult.StandardOutput); len(payload) > 0 {
		if decodeError := json.Unmarshal([]byte(payload), &entries); decodeError != nil {
			return checkError(project, fmt.Sprintf(unparseableOutputDetailTemplate, pythonOutputDescriptionConstant, decodeError))
		}
	}

	installedVersions := map[string]string{}
	if len(pinnedRequirements) > 0 {
		freezeCommand := adapter.pipCommand(project, "freeze")
		freezeResult, freezeError := adapter.dependencies.Executor.Execute(executionContext, freezeCommand)
		if freezeError != nil {
			return checkError(project, commandFailedDetail(freezeCommand, freezeError))
		}
		installedVersions = ParseFreezeOutput(freezeResult.StandardOutput)
	}

	latestVersions := make(map[string]pipOutdatedEntry, len(entries))
	for _, entry := range entries {
		latestVersions[NormalizePackageName(entry.Name)] = entry
	}

	outdatedPackages := make([]OutdatedPackage, 0)
	for normalizedName := range declaredNames {
		outdatedEntry, listedOutdated := latestVersions[normalizedName]
		pinnedRequirement, pinned := pinnedRequirements[normalizedName]
		if !pinned {
			if listedOutdated {
				outdatedPackages = append(outdatedPackages, OutdatedPackage{Name: outdatedEntry.Name, Current: outdatedEntry.Version, Latest: outdatedEntry.LatestVersion})
			}
			continue
		}

		referenceVersion := installedVersions[normalizedName]
		if listedOutdated {
			referenceVersion = outdatedEntry.LatestVersion
		}
		if pinBehind(pinnedRequirement.Version, referenceVersion) {
			outdatedPackages = append(outdatedPackages, OutdatedPackage{Name: pinnedRequirement.Name, Current: pinnedRequirement.Version, Latest: referenceVersion})
		}
	}
	return checkFromPackages(project, sortPackages(outdatedPackages), pythonUpToDateDetailConstant, pythonOutdatedDetailTemplate)
}

// pinBehind reports whether pinnedVersion is older than referenceVersion. Versions that
// do not parse are never reported as behind.
func pinBehind(pinnedVersion string, referenceVersion string) bool {
	if len(referenceVersion) == 0 {
		return false
	}
	parsedPin, pinError := version.NewVersion(pinnedVersion)
	if pinError != nil {
		return false
	}
	parsedReference, referenceError := version.NewVersion(referenceVersion)
	if referenceError != nil {
		return false
	}
	return parsedPin.LessThan(parsedReference)
}

// Update optionally copies requirements.txt to requirements.txt.backup, upgrades every
// requirement, then re-pins exact pins to the versions reported by pip freeze. The
// backup is left in place whatever the outcome.
func (adapter *PythonAdapter) Update(executionContext context.Context, project discovery.Project) UpdateResult {
	requirementsContent, readError := os.ReadFile(project.Manifest)
	if readError != nil {
		return updateFailed(project, fmt.Sprintf(requirementsReadErrorTemplate, project.Manifest, readError))
	}
	manifestInfo, statError := os.Stat(project.Manifest)
	if statError != nil {
		return updateFailed(project, fmt.Sprintf(requirementsReadErrorTemplate, project.Manifest, statError))
	}

	backupPath := ""
	if adapter.backup {
		backupPath = project.Manifest + requirementsBackupSuffixConstant
		if writeError := os.WriteFile(backupPath, requirementsContent, manifestInfo.Mode().Perm()); writeError != nil {
			return updateFailed(project, fmt.Sprintf(requirementsBackupErrorTemplate, project.Manifest, writeError))
		}
		adapter.dependencies.logger().Debug(requirementsBackupMessageConstant,
			zap.String(logFieldProjectConstant, project.Path),
			zap.String(logFieldBackupPathConstant, backupPath),
		)
	}

	result := adapter.upgradeAndRepin(executionContext, project, string(requirementsContent), manifestInfo.Mode().Perm())
	result.BackupPath = backupPath
	return result
}

func (adapter *PythonAdapter) upgradeAndRepin(executionContext context.Context, project discovery.Project, requirementsContent string, permissions os.FileMode) UpdateResult {
	installCommand := adapter.pipCommand(project, "install", "--upgrade", "-r", filepath.Base(project.Manifest))
	if _, executionError := adapter.dependencies.Executor.Execute(executionContext, installCommand); executionError != nil {
		return updateFailed(project, commandFailedDetail(installCommand, executionError))
	}

	freezeCommand := adapter.pipCommand(project, "freeze")
	freezeResult, executionError := adapter.dependencies.Executor.Execute(executionContext, freezeCommand)
	if executionError != nil {
		return updateFailed(project, commandFailedDetail(freezeCommand, executionError))
	}

	repinnedContent, changedLines := RepinRequirements(requirementsContent, ParseFreezeOutput(freezeResult.StandardOutput))
	if changedLines > 0 {
		if writeError := os.WriteFile(project.Manifest, []byte(repinnedContent), permissions); writeError != nil {
			return updateFailed(project, fmt.Sprintf(requirementsWriteErrorTemplate, project.Manifest, writeError))
		}
	}
	return UpdateResult{Project: project, Status: UpdateStatusUpdated, Detail: fmt.Sprintf(pythonUpdatedDetailTemplate, changedLines)}
}

func (adapter *PythonAdapter) pipCommand(project discovery.Project, arguments ...string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: adapter.pipName,
		Details: execshell.CommandDetails{
			Arguments:            append(append([]string{}, adapter.pipArguments...), arguments...),
			WorkingDirectory:     project.Path,
			EnvironmentVariables: pipEnvironment(),
		},
	}
}

// pipEnvironment adds pip's own switches for quiet, uncolored output to the shared plain environment.
func pipEnvironment() map[string]string {
	environment := plainOutputEnvironment()
	environment[pipVersionCheckEnvironmentKeyConstant] = enabledEnvironmentValueConstant
	environment[pipNoColorEnvironmentKeyConstant] = enabledEnvironmentValueConstant
	return environment
}
