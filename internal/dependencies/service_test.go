package dependencies_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/depctl/internal/dependencies"
	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/platforms"
	"github.com/temirov/depctl/internal/report"
)

func newTestService(testInstance *testing.T, discoverer dependencies.ProjectDiscoverer, prompter dependencies.ConfirmationPrompter, adapters ...platforms.Adapter) *dependencies.Service {
	testInstance.Helper()
	service, serviceError := dependencies.NewService(dependencies.ServiceDependencies{
		Discoverer: discoverer,
		Registry:   platforms.NewRegistry(nil, adapters...),
		Prompter:   prompter,
		CIDetector: staticCIDetector(false),
	})
	require.NoError(testInstance, serviceError)
	return service
}

func TestNewServiceValidatesDependencies(testInstance *testing.T) {
	_, missingDiscoverer := dependencies.NewService(dependencies.ServiceDependencies{Registry: platforms.NewRegistry(nil)})
	require.ErrorIs(testInstance, missingDiscoverer, dependencies.ErrDiscovererNotConfigured)

	_, missingRegistry := dependencies.NewService(dependencies.ServiceDependencies{Discoverer: &stubDiscoverer{}})
	require.ErrorIs(testInstance, missingRegistry, dependencies.ErrRegistryNotConfigured)
}

func TestServiceCheckProcessesDispatchedProjects(testInstance *testing.T) {
	nodeAdapter := newRecordingAdapter(discovery.PlatformNode)
	pythonAdapter := newRecordingAdapter(discovery.PlatformPython)
	pythonAdapter.checkStatuses["/work/api"] = platforms.CheckStatusOutdated
	discoverer := &stubDiscoverer{projects: []discovery.Project{
		project("/work/api", discovery.PlatformPython),
		project("/work/app", discovery.PlatformFlutter),
		project("/work/web", discovery.PlatformNode),
	}}
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)

	service, serviceError := dependencies.NewService(dependencies.ServiceDependencies{
		Discoverer: discoverer,
		Registry:   platforms.NewRegistry(nil, nodeAdapter, pythonAdapter),
		CIDetector: staticCIDetector(true),
		Logger:     zap.New(observerCore),
	})
	require.NoError(testInstance, serviceError)

	checkReport, checkError := service.Check(context.Background(), dependencies.CheckOptions{Roots: []string{" /work/ ", ""}})
	require.NoError(testInstance, checkError)

	require.Equal(testInstance, [][]string{{"/work"}}, discoverer.receivedRoots)
	require.True(testInstance, checkReport.CIEnvironment)
	require.Len(testInstance, checkReport.Results, 2)
	require.Equal(testInstance, "/work/api", checkReport.Results[0].Project.Path)
	require.Equal(testInstance, "/work/web", checkReport.Results[1].Project.Path)
	require.Equal(testInstance, report.CheckSummary{Total: 2, Outdated: 1, UpToDate: 1}, checkReport.Summary())
	require.Equal(testInstance, report.ExitCodeFindings, checkReport.ExitCode())
	require.Equal(testInstance, []string{"no adapter registered for platform flutter (/work/app)"}, checkReport.Warnings)
	require.Equal(testInstance, []platforms.Operation{platforms.OperationCheck}, nodeAdapter.preflightOps)

	warnings := observedLogs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(testInstance, warnings, 1)
	require.Equal(testInstance, "No adapter registered for platform", warnings[0].Message)
}

func TestServiceCheckAbortsOnPreflightFailure(testInstance *testing.T) {
	preflightCause := errors.New("npm is not installed")
	nodeAdapter := newRecordingAdapter(discovery.PlatformNode)
	nodeAdapter.preflightErrors["/work/web"] = preflightCause
	pythonAdapter := newRecordingAdapter(discovery.PlatformPython)
	discoverer := &stubDiscoverer{projects: []discovery.Project{
		project("/work/api", discovery.PlatformPython),
		project("/work/web", discovery.PlatformNode),
	}}
	service := newTestService(testInstance, discoverer, nil, nodeAdapter, pythonAdapter)

	_, checkError := service.Check(context.Background(), dependencies.CheckOptions{Roots: []string{"/work"}})

	require.ErrorIs(testInstance, checkError, preflightCause)
	require.Empty(testInstance, pythonAdapter.checkedPaths)
	require.Empty(testInstance, nodeAdapter.checkedPaths)
}

func TestServiceCheckAppliesPlatformFilter(testInstance *testing.T) {
	nodeAdapter := newRecordingAdapter(discovery.PlatformNode)
	pythonAdapter := newRecordingAdapter(discovery.PlatformPython)
	pythonAdapter.preflightErrors["/work/api"] = errors.New("pip missing")
	discoverer := &stubDiscoverer{projects: []discovery.Project{
		project("/work/api", discovery.PlatformPython),
		project("/work/web", discovery.PlatformNode),
	}}
	service := newTestService(testInstance, discoverer, nil, nodeAdapter, pythonAdapter)

	checkReport, checkError := service.Check(context.Background(), dependencies.CheckOptions{
		Roots:     []string{"/work"},
		Platforms: []discovery.Platform{discovery.PlatformNode},
	})

	require.NoError(testInstance, checkError)
	require.Equal(testInstance, []string{"/work/web"}, nodeAdapter.checkedPaths)
	require.Empty(testInstance, pythonAdapter.preflightOps)
	require.Len(testInstance, checkReport.Results, 1)
}

func TestServiceRejectsBlankRoots(testInstance *testing.T) {
	service := newTestService(testInstance, &stubDiscoverer{}, nil)

	_, checkError := service.Check(context.Background(), dependencies.CheckOptions{Roots: []string{" ", ""}})

	require.ErrorIs(testInstance, checkError, dependencies.ErrNoRoots)
}

func TestServiceWrapsDiscoveryFailure(testInstance *testing.T) {
	discoveryCause := errors.New("permission denied")
	service := newTestService(testInstance, &stubDiscoverer{discoverError: discoveryCause}, nil)

	_, checkError := service.Check(context.Background(), dependencies.CheckOptions{Roots: []string{"/work"}})

	require.ErrorIs(testInstance, checkError, discoveryCause)
}

func TestServiceCheckWithoutProjects(testInstance *testing.T) {
	service := newTestService(testInstance, &stubDiscoverer{}, nil, newRecordingAdapter(discovery.PlatformNode))

	checkReport, checkError := service.Check(context.Background(), dependencies.CheckOptions{Roots: []string{"/work"}})

	require.NoError(testInstance, checkError)
	require.Empty(testInstance, checkReport.Results)
	require.Equal(testInstance, []string{"/work"}, checkReport.Roots)
	require.Equal(testInstance, report.ExitCodeSuccess, checkReport.ExitCode())
}

func TestServiceCheckStopsWhenInterrupted(testInstance *testing.T) {
	nodeAdapter := newRecordingAdapter(discovery.PlatformNode)
	service := newTestService(testInstance, &stubDiscoverer{projects: []discovery.Project{project("/work/web", discovery.PlatformNode)}}, nil, nodeAdapter)
	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	_, checkError := service.Check(cancelledContext, dependencies.CheckOptions{Roots: []string{"/work"}})

	require.ErrorIs(testInstance, checkError, context.Canceled)
	require.Empty(testInstance, nodeAdapter.checkedPaths)
}

func TestServiceUpdateAllAttemptsEveryProject(testInstance *testing.T) {
	nodeAdapter := newRecordingAdapter(discovery.PlatformNode)
	nodeAdapter.updateStatuses["/work/a"] = platforms.UpdateStatusFailed
	nodeAdapter.updateStatuses["/work/c"] = platforms.UpdateStatusFailed
	discoverer := &stubDiscoverer{projects: []discovery.Project{
		project("/work/a", discovery.PlatformNode),
		project("/work/b", discovery.PlatformNode),
		project("/work/c", discovery.PlatformNode),
	}}
	prompter := &scriptedPrompter{}
	service := newTestService(testInstance, discoverer, prompter, nodeAdapter)

	updateReport, updateError := service.Update(context.Background(), dependencies.UpdateOptions{Roots: []string{"/work"}, All: true})

	require.NoError(testInstance, updateError)
	require.Equal(testInstance, []string{"/work/a", "/work/b", "/work/c"}, nodeAdapter.updatedPaths)
	require.Equal(testInstance, report.UpdateSummary{Total: 3, Updated: 1, Failed: 2}, updateReport.Summary())
	require.Equal(testInstance, report.ExitCodeFindings, updateReport.ExitCode())
	require.Empty(testInstance, prompter.prompts)
	require.Equal(testInstance, []platforms.Operation{platforms.OperationUpdate}, nodeAdapter.preflightOps[:1])
}

func TestServiceUpdatePromptsPerProject(testInstance *testing.T) {
	nodeAdapter := newRecordingAdapter(discovery.PlatformNode)
	discoverer := &stubDiscoverer{projects: []discovery.Project{
		project("/work/a", discovery.PlatformNode),
		project("/work/b", discovery.PlatformNode),
		project("/work/c", discovery.PlatformNode),
		project("/work/d", discovery.PlatformNode),
	}}
	prompter := &scriptedPrompter{responses: []dependencies.ConfirmationResult{
		{Confirmed: true},
		{},
		{Confirmed: true, ApplyToAll: true},
	}}
	service := newTestService(testInstance, discoverer, prompter, nodeAdapter)

	updateReport, updateError := service.Update(context.Background(), dependencies.UpdateOptions{Roots: []string{"/work"}})

	require.NoError(testInstance, updateError)
	require.Len(testInstance, prompter.prompts, 3)
	require.Equal(testInstance, "Update a [node] in /work/a? [y/N/a] ", prompter.prompts[0])
	require.Equal(testInstance, []string{"/work/a", "/work/c", "/work/d"}, nodeAdapter.updatedPaths)
	require.Equal(testInstance, platforms.UpdateStatusSkipped, updateReport.Results[1].Status)
	require.Equal(testInstance, report.UpdateSummary{Total: 4, Updated: 3, Skipped: 1}, updateReport.Summary())
}

func TestServiceUpdateDryRunInvokesNothing(testInstance *testing.T) {
	nodeAdapter := newRecordingAdapter(discovery.PlatformNode)
	discoverer := &stubDiscoverer{projects: []discovery.Project{project("/work/a", discovery.PlatformNode)}}
	service := newTestService(testInstance, discoverer, nil, nodeAdapter)

	updateReport, updateError := service.Update(context.Background(), dependencies.UpdateOptions{Roots: []string{"/work"}, DryRun: true})

	require.NoError(testInstance, updateError)
	require.True(testInstance, updateReport.DryRun)
	require.Empty(testInstance, nodeAdapter.updatedPaths)
	require.Equal(testInstance, platforms.UpdateStatusSkipped, updateReport.Results[0].Status)
	require.Equal(testInstance, []platforms.Operation{platforms.OperationUpdate}, nodeAdapter.preflightOps)
}

func TestServiceUpdateRequiresPrompterWhenInteractive(testInstance *testing.T) {
	service := newTestService(testInstance, &stubDiscoverer{}, nil)

	_, updateError := service.Update(context.Background(), dependencies.UpdateOptions{Roots: []string{"/work"}})

	require.ErrorIs(testInstance, updateError, dependencies.ErrPrompterNotConfigured)
}
