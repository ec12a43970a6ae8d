package dependencies

import (
	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/platforms"
)

// ProjectDiscoverer finds projects below root directories.
type ProjectDiscoverer interface {
	DiscoverProjects(roots []string) ([]discovery.Project, error)
}

// AdapterRegistry resolves the adapter for a platform.
type AdapterRegistry interface {
	Lookup(platform discovery.Platform) (platforms.Adapter, bool)
}

// ConfirmationResult captures a user's answer to an update prompt.
type ConfirmationResult struct {
	Confirmed  bool
	ApplyToAll bool
}

// ConfirmationPrompter asks the user whether a project should be updated.
type ConfirmationPrompter interface {
	Confirm(prompt string) (ConfirmationResult, error)
}

// CIEnvironmentDetector reports whether the process runs under continuous integration.
type CIEnvironmentDetector interface {
	Detect() bool
}
