package platforms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/execshell"
)

const (
	flutterToolNameConstant          = "flutter"
	flutterTransitiveKindConstant    = "transitive"
	flutterUpToDateDetailConstant    = "all direct dependencies are at their latest versions"
	flutterOutdatedDetailTemplate    = "%d package(s) behind latest"
	flutterUpdatedDetailConstant     = "ran flutter pub upgrade and flutter pub get"
	flutterOutputDescriptionConstant = "flutter pub outdated"
)

type flutterOutdatedReport struct {
	Packages []flutterOutdatedPackage `json:"packages"`
}

type flutterOutdatedPackage struct {
	Package string                 `json:"package"`
	Kind    string                 `json:"kind"`
	Current *flutterPackageVersion `json:"current"`
	Latest  *flutterPackageVersion `json:"latest"`
}

type flutterPackageVersion struct {
	Version string `json:"version"`
}

// FlutterAdapter checks and upgrades pub dependencies of Flutter projects.
type FlutterAdapter struct {
	dependencies Dependencies
}

// NewFlutterAdapter constructs a Flutter adapter.
func NewFlutterAdapter(dependencies Dependencies) *FlutterAdapter {
	return &FlutterAdapter{dependencies: dependencies}
}

// Platform reports discovery.PlatformFlutter.
func (adapter *FlutterAdapter) Platform() discovery.Platform {
	return discovery.PlatformFlutter
}

// Preflight requires pubspec.yaml and the flutter executable.
func (adapter *FlutterAdapter) Preflight(project discovery.Project, operation Operation) error {
	if manifestError := requireManifest(project); manifestError != nil {
		return manifestError
	}
	return requireTool(adapter.dependencies.toolLocator(), project, flutterToolNameConstant)
}

// Check runs flutter pub outdated --json. A direct or dev dependency is outdated
// when its resolved version differs from the latest published version.
func (adapter *FlutterAdapter) Check(executionContext context.Context, project discovery.Project) CheckResult {
	command := flutterCommand(project, "pub", "outdated", "--json")
	executionResult, executionError := adapter.dependencies.Executor.Execute(executionContext, command)
	if executionError != nil {
		return checkError(project, commandFailedDetail(command, executionError))
	}

	outdatedPackages, parseError := parseFlutterOutdated(executionResult.StandardOutput)
	if parseError != nil {
		return checkError(project, fmt.Sprintf(unparseableOutputDetailTemplate, flutterOutputDescriptionConstant, parseError))
	}
	return checkFromPackages(project, outdatedPackages, flutterUpToDateDetailConstant, flutterOutdatedDetailTemplate)
}

// Update runs flutter pub upgrade followed by flutter pub get.
func (adapter *FlutterAdapter) Update(executionContext context.Context, project discovery.Project) UpdateResult {
	for _, command := range []execshell.ShellCommand{
		flutterCommand(project, "pub", "upgrade"),
		flutterCommand(project, "pub", "get"),
	} {
		if _, executionError := adapter.dependencies.Executor.Execute(executionContext, command); executionError != nil {
			return updateFailed(project, commandFailedDetail(command, executionError))
		}
	}
	return UpdateResult{Project: project, Status: UpdateStatusUpdated, Detail: flutterUpdatedDetailConstant}
}

func flutterCommand(project discovery.Project, arguments ...string) execshell.ShellCommand {
	return execshell.ShellCommand{
		Name:    execshell.CommandFlutter,
		Details: execshell.CommandDetails{Arguments: arguments, WorkingDirectory: project.Path, EnvironmentVariables: plainOutputEnvironment()},
	}
}

func parseFlutterOutdated(output string) ([]OutdatedPackage, error) {
	var report flutterOutdatedReport
	if decodeError := json.Unmarshal([]byte(jsonPayload(output)), &report); decodeError != nil {
		return nil, decodeError
	}

	outdatedPackages := make([]OutdatedPackage, 0)
	for _, pubPackage := range report.Packages {
		if pubPackage.Kind == flutterTransitiveKindConstant {
			continue
		}
		if pubPackage.Current == nil || pubPackage.Latest == nil {
			continue
		}
		if pubPackage.Current.Version == pubPackage.Latest.Version {
			continue
		}
		outdatedPackages = append(outdatedPackages, OutdatedPackage{
			Name:    pubPackage.Package,
			Current: pubPackage.Current.Version,
			Latest:  pubPackage.Latest.Version,
		})
	}
	return sortPackages(outdatedPackages), nil
}
