package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/execshell"
)

const (
	manifestMissingTemplateConstant   = "%s: %w: %s"
	toolMissingTemplateConstant       = "%s: %w: %w"
	commandFailedDetailTemplate       = "%s failed: %v"
	unparseableOutputDetailTemplate   = "could not parse %s output: %v"
	logFieldProjectConstant           = "project"
	logFieldPlatformConstant          = "platform"
	adapterRegisteredMessageConstant  = "Registered platform adapter"
	commandLabelJoinSeparatorConstant = " "
	lineIndentCharactersConstant      = " \t\r"
	jsonObjectStartConstant           = "{"
	jsonArrayStartConstant            = "["
	noColorEnvironmentKeyConstant     = "NO_COLOR"
	forceColorEnvironmentKeyConstant  = "FORCE_COLOR"
	ciEnvironmentKeyConstant          = "CI"
	enabledEnvironmentValueConstant   = "1"
	disabledEnvironmentValueConstant  = "0"
	ciEnvironmentValueConstant        = "true"
)

// Operation identifies the adapter entry point a preflight check guards.
type Operation string

// Operations.
const (
	OperationCheck  Operation = "check"
	OperationUpdate Operation = "update"
)

var (
	// ErrManifestMissing indicates the project manifest disappeared after discovery.
	ErrManifestMissing = errors.New("manifest not found")
	// ErrToolMissing indicates the package manager executable is not available.
	ErrToolMissing = errors.New("required tool is not installed")
)

// PreflightError reports a violated precondition for a project.
type PreflightError struct {
	Project discovery.Project
	Cause   error
}

// Error describes the violated precondition.
func (preflightError PreflightError) Error() string {
	return preflightError.Cause.Error()
}

// Unwrap exposes the underlying cause.
func (preflightError PreflightError) Unwrap() error {
	return preflightError.Cause
}

// CommandExecutor runs package manager commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// Adapter wraps a platform's package manager.
type Adapter interface {
	Platform() discovery.Platform
	Preflight(project discovery.Project, operation Operation) error
	Check(executionContext context.Context, project discovery.Project) CheckResult
	Update(executionContext context.Context, project discovery.Project) UpdateResult
}

// Dependencies bundles the collaborators shared by adapters.
type Dependencies struct {
	Executor    CommandExecutor
	ToolLocator execshell.ToolLocator
	Logger      *zap.Logger
}

func (dependencies Dependencies) logger() *zap.Logger {
	if dependencies.Logger == nil {
		return zap.NewNop()
	}
	return dependencies.Logger
}

func (dependencies Dependencies) toolLocator() execshell.ToolLocator {
	if dependencies.ToolLocator == nil {
		return execshell.NewOSToolLocator()
	}
	return dependencies.ToolLocator
}

// Registry maps platforms to adapters.
type Registry struct {
	adapters map[discovery.Platform]Adapter
	logger   *zap.Logger
}

// NewRegistry constructs a registry containing the provided adapters.
func NewRegistry(logger *zap.Logger, adapters ...Adapter) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := &Registry{adapters: make(map[discovery.Platform]Adapter, len(adapters)), logger: logger}
	for _, adapter := range adapters {
		registry.Register(adapter)
	}
	return registry
}

// Register adds or replaces the adapter for its platform.
func (registry *Registry) Register(adapter Adapter) {
	if adapter == nil {
		return
	}
	registry.adapters[adapter.Platform()] = adapter
	registry.logger.Debug(adapterRegisteredMessageConstant, zap.String(logFieldPlatformConstant, string(adapter.Platform())))
}

// Lookup returns the adapter registered for platform.
func (registry *Registry) Lookup(platform discovery.Platform) (Adapter, bool) {
	if registry == nil {
		return nil, false
	}
	adapter, registered := registry.adapters[platform]
	return adapter, registered
}

// Platforms lists registered platforms in name order.
func (registry *Registry) Platforms() []discovery.Platform {
	platforms := make([]discovery.Platform, 0, len(registry.adapters))
	for platform := range registry.adapters {
		platforms = append(platforms, platform)
	}
	sort.Slice(platforms, func(first int, second int) bool {
		return platforms[first] < platforms[second]
	})
	return platforms
}

func requireManifest(project discovery.Project) error {
	manifestInfo, statError := os.Stat(project.Manifest)
	if statError != nil || !manifestInfo.Mode().IsRegular() {
		return PreflightError{Project: project, Cause: fmt.Errorf(manifestMissingTemplateConstant, project.Path, ErrManifestMissing, project.Manifest)}
	}
	return nil
}

func requireTool(locator execshell.ToolLocator, project discovery.Project, toolName string) error {
	if _, lookupError := locator.LookPath(toolName); lookupError != nil {
		return PreflightError{Project: project, Cause: fmt.Errorf(toolMissingTemplateConstant, project.Path, ErrToolMissing, lookupError)}
	}
	return nil
}

// runAllowingFindings executes a command whose non-zero exit code may carry findings on stdout.
func runAllowingFindings(executionContext context.Context, executor CommandExecutor, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	executionResult, executionError := executor.Execute(executionContext, command)
	if executionError == nil {
		return executionResult, nil
	}
	if failedResult, exitedNonZero := execshell.FailedResult(executionError); exitedNonZero {
		return failedResult, nil
	}
	return execshell.ExecutionResult{}, executionError
}

func describeCommand(command execshell.ShellCommand) string {
	return strings.Join(append([]string{string(command.Name)}, command.Details.Arguments...), commandLabelJoinSeparatorConstant)
}

func commandFailedDetail(command execshell.ShellCommand, failure error) string {
	return fmt.Sprintf(commandFailedDetailTemplate, describeCommand(command), failure)
}

func formatCount(template string, count int) string {
	if !strings.Contains(template, "%") {
		return template
	}
	return fmt.Sprintf(template, count)
}

func sortPackages(outdatedPackages []OutdatedPackage) []OutdatedPackage {
	sort.Slice(outdatedPackages, func(first int, second int) bool {
		return outdatedPackages[first].Name < outdatedPackages[second].Name
	})
	return outdatedPackages
}

// jsonPayload returns the first JSON document that starts at the beginning of a line,
// skipping banner lines some tools print before it. Output without such a document is
// returned trimmed so that decoding reports the problem.
func jsonPayload(output string) string {
	trimmedOutput := strings.TrimSpace(output)
	remainingOutput := trimmedOutput
	for len(remainingOutput) > 0 {
		candidate := strings.TrimLeft(remainingOutput, lineIndentCharactersConstant)
		if strings.HasPrefix(candidate, jsonObjectStartConstant) || strings.HasPrefix(candidate, jsonArrayStartConstant) {
			var document json.RawMessage
			if json.NewDecoder(strings.NewReader(candidate)).Decode(&document) == nil {
				return string(document)
			}
		}
		_, nextLines, hasNextLine := strings.Cut(remainingOutput, lineBreakConstant)
		if !hasNextLine {
			break
		}
		remainingOutput = nextLines
	}
	return trimmedOutput
}

// plainOutputEnvironment asks package managers for uncolored, non-interactive output.
func plainOutputEnvironment() map[string]string {
	return map[string]string{
		noColorEnvironmentKeyConstant:    enabledEnvironmentValueConstant,
		forceColorEnvironmentKeyConstant: disabledEnvironmentValueConstant,
		ciEnvironmentKeyConstant:         ciEnvironmentValueConstant,
	}
}
