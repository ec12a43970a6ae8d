package pathutils

import (
	"path/filepath"
	"strings"
)

// RootPathSanitizer normalizes the root directories handed to project discovery.
type RootPathSanitizer struct {
	homeExpander *HomeExpander
}

// NewRootPathSanitizer constructs a RootPathSanitizer backed by the operating system home lookup.
func NewRootPathSanitizer() *RootPathSanitizer {
	return NewRootPathSanitizerWithExpander(nil)
}

// NewRootPathSanitizerWithExpander constructs a RootPathSanitizer using the provided expander.
func NewRootPathSanitizerWithExpander(homeExpander *HomeExpander) *RootPathSanitizer {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	return &RootPathSanitizer{homeExpander: homeExpander}
}

// Sanitize trims whitespace, expands the home directory, cleans each path and drops
// empty entries and duplicates while preserving the first occurrence order.
func (sanitizer *RootPathSanitizer) Sanitize(candidatePaths []string) []string {
	expander := NewHomeExpander()
	if sanitizer != nil && sanitizer.homeExpander != nil {
		expander = sanitizer.homeExpander
	}

	seenPaths := make(map[string]struct{}, len(candidatePaths))
	sanitizedPaths := make([]string, 0, len(candidatePaths))
	for _, candidatePath := range candidatePaths {
		trimmedPath := strings.TrimSpace(candidatePath)
		if len(trimmedPath) == 0 {
			continue
		}

		cleanedPath := filepath.Clean(expander.Expand(trimmedPath))
		if _, duplicate := seenPaths[cleanedPath]; duplicate {
			continue
		}
		seenPaths[cleanedPath] = struct{}{}
		sanitizedPaths = append(sanitizedPaths, cleanedPath)
	}

	if len(sanitizedPaths) == 0 {
		return nil
	}
	return sanitizedPaths
}
