package platforms

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/execshell"
)

const (
	gradleWrapperFileNameConstant        = "gradlew"
	androidCheckDetailConstant           = "Gradle has no outdated report; review the dependency tree (printed at debug log level) and compare against the latest releases"
	androidUpdateDetailConstant          = "automatic updates are not supported for Gradle; edit the dependency versions in build.gradle(.kts) manually"
	androidDependencyTreeMessage         = "Gradle dependency tree"
	androidTreeUnavailableMessage        = "Gradle dependency tree unavailable"
	androidTreeUnavailableDetailTemplate = "%s (dependency tree unavailable: %s)"
	logFieldDependencyTreeConstant       = "dependency_tree"
)

// AndroidAdapter reports Gradle projects for manual review. Check always reports
// outdated and Update never invokes a tool.
type AndroidAdapter struct {
	dependencies Dependencies
}

// NewAndroidAdapter constructs an Android adapter.
func NewAndroidAdapter(dependencies Dependencies) *AndroidAdapter {
	return &AndroidAdapter{dependencies: dependencies}
}

// Platform reports discovery.PlatformAndroid.
func (adapter *AndroidAdapter) Platform() discovery.Platform {
	return discovery.PlatformAndroid
}

// GradleCommandName prefers the project's ./gradlew over a gradle on PATH.
func GradleCommandName(project discovery.Project) execshell.CommandName {
	if fileExists(filepath.Join(project.Path, gradleWrapperFileNameConstant)) {
		return execshell.CommandGradleWrapper
	}
	return execshell.CommandGradle
}

// Preflight requires the build file, and for checks either ./gradlew or gradle on PATH.
func (adapter *AndroidAdapter) Preflight(project discovery.Project, operation Operation) error {
	if manifestError := requireManifest(project); manifestError != nil {
		return manifestError
	}
	if operation != OperationCheck || GradleCommandName(project) == execshell.CommandGradleWrapper {
		return nil
	}
	return requireTool(adapter.dependencies.toolLocator(), project, string(execshell.CommandGradle))
}

// Check prints the dependency tree at debug level and reports the project outdated,
// including when gradle fails to produce the tree.
func (adapter *AndroidAdapter) Check(executionContext context.Context, project discovery.Project) CheckResult {
	command := execshell.ShellCommand{
		Name:    GradleCommandName(project),
		Details: execshell.CommandDetails{Arguments: []string{"dependencies"}, WorkingDirectory: project.Path},
	}
	executionResult, executionError := adapter.dependencies.Executor.Execute(executionContext, command)
	if executionError != nil {
		failureDetail := commandFailedDetail(command, executionError)
		adapter.dependencies.logger().Warn(androidTreeUnavailableMessage,
			zap.String(logFieldProjectConstant, project.Path),
			zap.Error(executionError),
		)
		return CheckResult{Project: project, Status: CheckStatusOutdated, Detail: fmt.Sprintf(androidTreeUnavailableDetailTemplate, androidCheckDetailConstant, failureDetail)}
	}

	adapter.dependencies.logger().Debug(androidDependencyTreeMessage,
		zap.String(logFieldProjectConstant, project.Path),
		zap.String(logFieldDependencyTreeConstant, executionResult.StandardOutput),
	)
	return CheckResult{Project: project, Status: CheckStatusOutdated, Detail: androidCheckDetailConstant}
}

// Update reports failed with manual instructions.
func (adapter *AndroidAdapter) Update(executionContext context.Context, project discovery.Project) UpdateResult {
	return updateFailed(project, androidUpdateDetailConstant)
}
