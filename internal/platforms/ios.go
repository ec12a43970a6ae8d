package platforms

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/execshell"
)

const (
	darwinOperatingSystemConstant = "darwin"
	podToolNameConstant           = "pod"
	podNoUpdatesPhraseConstant    = "No pod updates are available"
	podUpdatesAvailablePhrase     = "The following pod updates are available:"
	podUpdateLinePrefixConstant   = "- "
	iosSkippedDetailTemplate      = "skipped: CocoaPods requires macOS (host is %s)"
	iosUpToDateDetailConstant     = "all pods are at their latest versions"
	iosOutdatedDetailTemplate     = "%d pod(s) behind latest"
	iosUpdatedDetailConstant      = "ran pod update"
	iosOutputDescriptionConstant  = "pod outdated"
)

var (
	errPodOutputUnrecognized = errors.New("neither the up-to-date nor the updates-available phrase was found")
	podUpdateLinePattern     = regexp.MustCompile(`^-\s+(\S+)\s+(\S+)\s+->\s+(\S+)(?:\s+\(latest version\s+([^)]+)\))?`)
)

// IOSOptions configures the iOS adapter.
type IOSOptions struct {
	// HostOperatingSystem overrides runtime.GOOS.
	HostOperatingSystem string
}

// IOSAdapter checks and updates CocoaPods dependencies. Off macOS it reports every project as skipped.
type IOSAdapter struct {
	dependencies        Dependencies
	hostOperatingSystem string
}

// NewIOSAdapter constructs an iOS adapter.
func NewIOSAdapter(dependencies Dependencies, options IOSOptions) *IOSAdapter {
	hostOperatingSystem := strings.TrimSpace(options.HostOperatingSystem)
	if len(hostOperatingSystem) == 0 {
		hostOperatingSystem = runtime.GOOS
	}
	return &IOSAdapter{dependencies: dependencies, hostOperatingSystem: hostOperatingSystem}
}

// Platform reports discovery.PlatformIOS.
func (adapter *IOSAdapter) Platform() discovery.Platform {
	return discovery.PlatformIOS
}

func (adapter *IOSAdapter) supported() bool {
	return adapter.hostOperatingSystem == darwinOperatingSystemConstant
}

func (adapter *IOSAdapter) skippedDetail() string {
	return fmt.Sprintf(iosSkippedDetailTemplate, adapter.hostOperatingSystem)
}

// Preflight requires the Podfile, and the pod executable only on macOS.
func (adapter *IOSAdapter) Preflight(project discovery.Project, operation Operation) error {
	if manifestError := requireManifest(project); manifestError != nil {
		return manifestError
	}
	if !adapter.supported() {
		return nil
	}
	return requireTool(adapter.dependencies.toolLocator(), project, podToolNameConstant)
}

// Check runs pod outdated and classifies its prose output. Off macOS the project is
// reported up to date with a skipped detail.
func (adapter *IOSAdapter) Check(executionContext context.Context, project discovery.Project) CheckResult {
	if !adapter.supported() {
		return CheckResult{Project: project, Status: CheckStatusUpToDate, Detail: adapter.skippedDetail()}
	}

	command := podCommand(project, "outdated")
	executionResult, executionError := adapter.dependencies.Executor.Execute(executionContext, command)
	if executionError != nil {
		return checkError(project, commandFailedDetail(command, executionError))
	}

	outdatedPackages, parseError := parsePodOutdated(executionResult.StandardOutput)
	if parseError != nil {
		return checkError(project, fmt.Sprintf(unparseableOutputDetailTemplate, iosOutputDescriptionConstant, parseError))
	}
	return checkFromPackages(project, outdatedPackages, iosUpToDateDetailConstant, iosOutdatedDetailTemplate)
}

// Update runs pod update on macOS and reports skipped elsewhere.
func (adapter *IOSAdapter) Update(executionContext context.Context, project discovery.Project) UpdateResult {
	if !adapter.supported() {
		return UpdateResult{Project: project, Status: UpdateStatusSkipped, Detail: adapter.skippedDetail()}
	}

	command := podCommand(project, "update")
	if _, executionError := adapter.dependencies.Executor.Execute(executionContext, command); executionError != nil {
		return updateFailed(project, commandFailedDetail(command, executionError))
	}
	return UpdateResult{Project: project, Status: UpdateStatusUpdated, Detail: iosUpdatedDetailConstant}
}

func podCommand(project discovery.Project, arguments ...string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name:    execshell.CommandPod,
		Details: execshell.CommandDetails{Arguments: arguments, WorkingDirectory: project.Path, EnvironmentVariables: plainOutputEnvironment()},
	}
}

// parsePodOutdated relies on CocoaPods' human-readable wording because pod outdated has no structured output.
func parsePodOutdated(output string) ([]OutdatedPackage, error) {
	if strings.Contains(output, podNoUpdatesPhraseConstant) {
		return nil, nil
	}

	_, updatesSection, found := strings.Cut(output, podUpdatesAvailablePhrase)
	if !found {
		return nil, errPodOutputUnrecognized
	}

	outdatedPackages := make([]OutdatedPackage, 0)
	for _, line := range strings.Split(updatesSection, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmedLine, podUpdateLinePrefixConstant) {
			continue
		}
		match := podUpdateLinePattern.FindStringSubmatch(trimmedLine)
		if match == nil {
			outdatedPackages = append(outdatedPackages, OutdatedPackage{Name: strings.TrimSpace(strings.TrimPrefix(trimmedLine, podUpdateLinePrefixConstant))})
			continue
		}
		latestVersion := match[3]
		if len(match[4]) > 0 {
			latestVersion = strings.TrimSpace(match[4])
		}
		outdatedPackages = append(outdatedPackages, OutdatedPackage{Name: match[1], Current: match[2], Latest: latestVersion})
	}
	return sortPackages(outdatedPackages), nil
}
