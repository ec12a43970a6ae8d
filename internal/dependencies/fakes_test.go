package dependencies_test

import (
	"context"

	"github.com/temirov/depctl/internal/dependencies"
	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/platforms"
)

type stubDiscoverer struct {
	projects      []discovery.Project
	discoverError error
	receivedRoots [][]string
}

func (discoverer *stubDiscoverer) DiscoverProjects(roots []string) ([]discovery.Project, error) {
	discoverer.receivedRoots = append(discoverer.receivedRoots, roots)
	return discoverer.projects, discoverer.discoverError
}

type recordingAdapter struct {
	platform        discovery.Platform
	preflightErrors map[string]error
	checkStatuses   map[string]platforms.CheckStatus
	updateStatuses  map[string]platforms.UpdateStatus
	checkedPaths    []string
	updatedPaths    []string
	preflightOps    []platforms.Operation
}

func newRecordingAdapter(platform discovery.Platform) *recordingAdapter {
	return &recordingAdapter{
		platform:        platform,
		preflightErrors: map[string]error{},
		checkStatuses:   map[string]platforms.CheckStatus{},
		updateStatuses:  map[string]platforms.UpdateStatus{},
	}
}

func (adapter *recordingAdapter) Platform() discovery.Platform {
	return adapter.platform
}

func (adapter *recordingAdapter) Preflight(project discovery.Project, operation platforms.Operation) error {
	adapter.preflightOps = append(adapter.preflightOps, operation)
	return adapter.preflightErrors[project.Path]
}

func (adapter *recordingAdapter) Check(executionContext context.Context, project discovery.Project) platforms.CheckResult {
	adapter.checkedPaths = append(adapter.checkedPaths, project.Path)
	status, scripted := adapter.checkStatuses[project.Path]
	if !scripted {
		status = platforms.CheckStatusUpToDate
	}
	return platforms.CheckResult{Project: project, Status: status}
}

func (adapter *recordingAdapter) Update(executionContext context.Context, project discovery.Project) platforms.UpdateResult {
	adapter.updatedPaths = append(adapter.updatedPaths, project.Path)
	status, scripted := adapter.updateStatuses[project.Path]
	if !scripted {
		status = platforms.UpdateStatusUpdated
	}
	return platforms.UpdateResult{Project: project, Status: status}
}

type scriptedPrompter struct {
	responses []dependencies.ConfirmationResult
	prompts   []string
}

func (prompter *scriptedPrompter) Confirm(prompt string) (dependencies.ConfirmationResult, error) {
	prompter.prompts = append(prompter.prompts, prompt)
	if len(prompter.responses) == 0 {
		return dependencies.ConfirmationResult{}, nil
	}
	response := prompter.responses[0]
	prompter.responses = prompter.responses[1:]
	return response, nil
}

type staticCIDetector bool

func (detector staticCIDetector) Detect() bool {
	return bool(detector)
}

func project(path string, platform discovery.Platform) discovery.Project {
	return discovery.Project{Path: path, Platform: platform, Manifest: path + "/" + discovery.ManifestFileNames(platform)[0]}
}
