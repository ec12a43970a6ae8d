package platforms

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/execshell"
)

const (
	pnpmLockFileNameConstant          = "pnpm-lock.yaml"
	yarnLockFileNameConstant          = "yarn.lock"
	nodeUpToDateDetailConstant        = "all dependencies are at their latest versions"
	nodeOutdatedDetailTemplate        = "%d package(s) behind latest"
	nodeUpdatedDetailTemplate         = "ran %s"
	yarnTableRecordTypeConstant       = "table"
	yarnUpToDatePhraseConstant        = "up to date"
	yarnOutdatedHeaderPhraseConstant  = "Package"
	yarnOutdatedCurrentColumnConstant = "Current"
	nodeOutputDescriptionTemplate     = "%s outdated"
)

var errYarnOutputUnrecognized = errors.New("no table record or known phrase in yarn output")

// NodeAdapter checks and updates JavaScript dependencies with the package manager selected by lock file.
type NodeAdapter struct {
	dependencies Dependencies
}

// NewNodeAdapter constructs a Node adapter.
func NewNodeAdapter(dependencies Dependencies) *NodeAdapter {
	return &NodeAdapter{dependencies: dependencies}
}

// Platform reports discovery.PlatformNode.
func (adapter *NodeAdapter) Platform() discovery.Platform {
	return discovery.PlatformNode
}

// PackageManager selects pnpm when pnpm-lock.yaml exists, then yarn when yarn.lock exists, otherwise npm.
func PackageManager(project discovery.Project) execshell.CommandName {
	if fileExists(filepath.Join(project.Path, pnpmLockFileNameConstant)) {
		return execshell.CommandPNPM
	}
	if fileExists(filepath.Join(project.Path, yarnLockFileNameConstant)) {
		return execshell.CommandYarn
	}
	return execshell.CommandNPM
}

// Preflight requires package.json and the selected package manager.
func (adapter *NodeAdapter) Preflight(project discovery.Project, operation Operation) error {
	if manifestError := requireManifest(project); manifestError != nil {
		return manifestError
	}
	return requireTool(adapter.dependencies.toolLocator(), project, string(PackageManager(project)))
}

// Check runs the package manager's outdated report in JSON form. npm, pnpm and yarn
// all exit non-zero when they find outdated packages, so the exit code alone is not an error.
func (adapter *NodeAdapter) Check(executionContext context.Context, project discovery.Project) CheckResult {
	packageManager := PackageManager(project)
	command := nodeCommand(project, packageManager, nodeOutdatedArguments(packageManager)...)

	executionResult, executionError := runAllowingFindings(executionContext, adapter.dependencies.Executor, command)
	if executionError != nil {
		return checkError(project, commandFailedDetail(command, executionError))
	}

	var outdatedPackages []OutdatedPackage
	var parseError error
	if packageManager == execshell.CommandYarn {
		outdatedPackages, parseError = parseYarnOutdated(executionResult.StandardOutput)
	} else {
		outdatedPackages, parseError = parseNPMOutdated(executionResult.StandardOutput)
	}
	if executionResult.ExitCode != 0 && (parseError != nil || len(outdatedPackages) == 0) {
		return checkError(project, commandFailedDetail(command, execshell.CommandFailedError{Command: command, Result: executionResult}))
	}
	if parseError != nil {
		return checkError(project, fmt.Sprintf(unparseableOutputDetailTemplate, fmt.Sprintf(nodeOutputDescriptionTemplate, packageManager), parseError))
	}
	return checkFromPackages(project, outdatedPackages, nodeUpToDateDetailConstant, nodeOutdatedDetailTemplate)
}

// Update runs npm update, yarn upgrade or pnpm update.
func (adapter *NodeAdapter) Update(executionContext context.Context, project discovery.Project) UpdateResult {
	packageManager := PackageManager(project)
	command := nodeCommand(project, packageManager, nodeUpdateArgument(packageManager))
	if _, executionError := adapter.dependencies.Executor.Execute(executionContext, command); executionError != nil {
		return updateFailed(project, commandFailedDetail(command, executionError))
	}
	return UpdateResult{Project: project, Status: UpdateStatusUpdated, Detail: fmt.Sprintf(nodeUpdatedDetailTemplate, describeCommand(command))}
}

func nodeOutdatedArguments(packageManager execshell.CommandName) []string {
	if packageManager == execshell.CommandPNPM {
		return []string{"outdated", "--format", "json"}
	}
	return []string{"outdated", "--json"}
}

func nodeUpdateArgument(packageManager execshell.CommandName) string {
	if packageManager == execshell.CommandYarn {
		return "upgrade"
	}
	return "update"
}

func nodeCommand(project discovery.Project, packageManager execshell.CommandName, arguments ...string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name:    packageManager,
		Details: execshell.CommandDetails{Arguments: arguments, WorkingDirectory: project.Path, EnvironmentVariables: plainOutputEnvironment()},
	}
}

type npmOutdatedEntry struct {
	Current string `json:"current"`
	Wanted  string `json:"wanted"`
	Latest  string `json:"latest"`
}

// npmOutdatedEntries accepts a single entry or, in npm workspaces, one entry per location.
type npmOutdatedEntries []npmOutdatedEntry

func (entries *npmOutdatedEntries) UnmarshalJSON(data []byte) error {
	if trimmedData := strings.TrimSpace(string(data)); strings.HasPrefix(trimmedData, "[") {
		var locatedEntries []npmOutdatedEntry
		if decodeError := json.Unmarshal(data, &locatedEntries); decodeError != nil {
			return decodeError
		}
		*entries = locatedEntries
		return nil
	}
	var singleEntry npmOutdatedEntry
	if decodeError := json.Unmarshal(data, &singleEntry); decodeError != nil {
		return decodeError
	}
	*entries = npmOutdatedEntries{singleEntry}
	return nil
}

// parseNPMOutdated reads the object keyed by package name that npm and pnpm print.
// Empty output and an empty object both mean nothing is outdated. A package outdated
// in several workspaces is reported once, from its first listed location.
func parseNPMOutdated(output string) ([]OutdatedPackage, error) {
	payload := jsonPayload(output)
	if len(payload) == 0 {
		return nil, nil
	}

	entriesByPackage := map[string]npmOutdatedEntries{}
	if decodeError := json.Unmarshal([]byte(payload), &entriesByPackage); decodeError != nil {
		return nil, decodeError
	}

	outdatedPackages := make([]OutdatedPackage, 0, len(entriesByPackage))
	for packageName, entries := range entriesByPackage {
		if len(entries) == 0 {
			continue
		}
		outdatedPackages = append(outdatedPackages, OutdatedPackage{Name: packageName, Current: entries[0].Current, Latest: entries[0].Latest})
	}
	return sortPackages(outdatedPackages), nil
}

type yarnRecord struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type yarnTable struct {
	Head []string   `json:"head"`
	Body [][]string `json:"body"`
}

// parseYarnOutdated reads yarn's NDJSON stream: a table record with a non-empty body lists
// outdated packages. Output without any JSON record falls back to phrase matching.
func parseYarnOutdated(output string) ([]OutdatedPackage, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	sawJSONRecord := false
	outdatedPackages := make([]OutdatedPackage, 0)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var record yarnRecord
		if json.Unmarshal([]byte(line), &record) != nil {
			continue
		}
		sawJSONRecord = true
		if record.Type != yarnTableRecordTypeConstant {
			continue
		}
		var table yarnTable
		if decodeError := json.Unmarshal(record.Data, &table); decodeError != nil {
			return nil, decodeError
		}
		for _, row := range table.Body {
			if len(row) == 0 {
				continue
			}
			outdatedPackage := OutdatedPackage{Name: row[0]}
			if len(row) > 1 {
				outdatedPackage.Current = row[1]
			}
			if len(row) > 3 {
				outdatedPackage.Latest = row[3]
			}
			outdatedPackages = append(outdatedPackages, outdatedPackage)
		}
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	if sawJSONRecord {
		return sortPackages(outdatedPackages), nil
	}
	return parseYarnPlainOutput(output)
}

func parseYarnPlainOutput(output string) ([]OutdatedPackage, error) {
	trimmedOutput := strings.TrimSpace(output)
	if len(trimmedOutput) == 0 || strings.Contains(strings.ToLower(trimmedOutput), yarnUpToDatePhraseConstant) {
		return nil, nil
	}

	lines := strings.Split(trimmedOutput, "\n")
	for lineIndex, line := range lines {
		columns := strings.Fields(line)
		if len(columns) < 2 || columns[0] != yarnOutdatedHeaderPhraseConstant || columns[1] != yarnOutdatedCurrentColumnConstant {
			continue
		}
		outdatedPackages := make([]OutdatedPackage, 0)
		for _, packageLine := range lines[lineIndex+1:] {
			packageColumns := strings.Fields(packageLine)
			if len(packageColumns) < 4 {
				continue
			}
			outdatedPackages = append(outdatedPackages, OutdatedPackage{Name: packageColumns[0], Current: packageColumns[1], Latest: packageColumns[3]})
		}
		return sortPackages(outdatedPackages), nil
	}
	return nil, errYarnOutputUnrecognized
}

func fileExists(candidatePath string) bool {
	candidateInfo, statError := os.Stat(candidatePath)
	return statError == nil && !candidateInfo.IsDir()
}
