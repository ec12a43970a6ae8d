package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	hiddenDirectoryPrefixConstant    = "."
	nodeModulesDirectoryNameConstant = "node_modules"
	pubspecManifestNameConstant      = "pubspec.yaml"
	podfileManifestNameConstant      = "Podfile"
	gradleManifestNameConstant       = "build.gradle"
	gradleKotlinManifestNameConstant = "build.gradle.kts"
	packageJSONManifestNameConstant  = "package.json"
	requirementsManifestNameConstant = "requirements.txt"
	rootReadErrorTemplateConstant    = "failed to read root %s: %w"
	rootSkippedMessageConstant       = "Skipping missing root directory"
	rootNotDirectoryMessageConstant  = "Skipping root that is not a directory"
	projectDiscoveredMessageConstant = "Discovered project"
	logFieldRootConstant             = "root"
	logFieldProjectPathConstant      = "project"
	logFieldPlatformConstant         = "platform"
	logFieldManifestConstant         = "manifest"
)

var manifestFileNames = map[Platform][]string{
	PlatformFlutter: {pubspecManifestNameConstant},
	PlatformIOS:     {podfileManifestNameConstant},
	PlatformAndroid: {gradleManifestNameConstant, gradleKotlinManifestNameConstant},
	PlatformNode:    {packageJSONManifestNameConstant},
	PlatformPython:  {requirementsManifestNameConstant},
}

// ManifestFileNames lists the manifest names recognized for platform.
func ManifestFileNames(platform Platform) []string {
	return append([]string{}, manifestFileNames[platform]...)
}

// Project is a directory recognized as belonging to a platform.
type Project struct {
	Path     string
	Platform Platform
	Manifest string
}

// Name returns the project directory's base name.
func (project Project) Name() string {
	return filepath.Base(project.Path)
}

// FilesystemProjectDiscoverer scans the immediate subdirectories of root directories for manifests.
type FilesystemProjectDiscoverer struct {
	logger   *zap.Logger
	priority []Platform
}

// NewFilesystemProjectDiscoverer constructs a discoverer honoring the provided precedence order.
// A nil logger disables logging and an empty priority uses DefaultPlatformPriority.
func NewFilesystemProjectDiscoverer(logger *zap.Logger, priority []Platform) *FilesystemProjectDiscoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(priority) == 0 {
		priority = DefaultPlatformPriority()
	}
	return &FilesystemProjectDiscoverer{logger: logger, priority: append([]Platform{}, priority...)}
}

// DiscoverProjects returns the projects found directly below the roots, de-duplicated and sorted by path.
func (discoverer *FilesystemProjectDiscoverer) DiscoverProjects(roots []string) ([]Project, error) {
	projectsByPath := make(map[string]Project)

	for _, root := range roots {
		rootInfo, statError := os.Stat(root)
		if statError != nil {
			if errors.Is(statError, fs.ErrNotExist) {
				discoverer.logger.Debug(rootSkippedMessageConstant, zap.String(logFieldRootConstant, root))
				continue
			}
			return nil, fmt.Errorf(rootReadErrorTemplateConstant, root, statError)
		}
		if !rootInfo.IsDir() {
			discoverer.logger.Debug(rootNotDirectoryMessageConstant, zap.String(logFieldRootConstant, root))
			continue
		}

		directoryEntries, readError := os.ReadDir(root)
		if readError != nil {
			return nil, fmt.Errorf(rootReadErrorTemplateConstant, root, readError)
		}

		for _, directoryEntry := range directoryEntries {
			if isIgnoredDirectoryName(directoryEntry.Name()) {
				continue
			}
			candidatePath := filepath.Join(root, directoryEntry.Name())
			if !isDirectory(candidatePath) {
				continue
			}
			if _, alreadyFound := projectsByPath[candidatePath]; alreadyFound {
				continue
			}

			project, recognized := discoverer.classify(candidatePath)
			if !recognized {
				continue
			}
			discoverer.logger.Debug(projectDiscoveredMessageConstant,
				zap.String(logFieldProjectPathConstant, project.Path),
				zap.String(logFieldPlatformConstant, string(project.Platform)),
				zap.String(logFieldManifestConstant, project.Manifest),
			)
			projectsByPath[candidatePath] = project
		}
	}

	projects := make([]Project, 0, len(projectsByPath))
	for _, project := range projectsByPath {
		projects = append(projects, project)
	}
	sort.Slice(projects, func(first int, second int) bool {
		return projects[first].Path < projects[second].Path
	})
	return projects, nil
}

func (discoverer *FilesystemProjectDiscoverer) classify(directoryPath string) (Project, bool) {
	for _, platform := range discoverer.priority {
		for _, manifestName := range manifestFileNames[platform] {
			manifestPath := filepath.Join(directoryPath, manifestName)
			if isRegularFile(manifestPath) {
				return Project{Path: directoryPath, Platform: platform, Manifest: manifestPath}, true
			}
		}
	}
	return Project{}, false
}

func isIgnoredDirectoryName(name string) bool {
	return strings.HasPrefix(name, hiddenDirectoryPrefixConstant) || name == nodeModulesDirectoryNameConstant
}

func isDirectory(candidatePath string) bool {
	candidateInfo, statError := os.Stat(candidatePath)
	return statError == nil && candidateInfo.IsDir()
}

func isRegularFile(candidatePath string) bool {
	candidateInfo, statError := os.Stat(candidatePath)
	return statError == nil && candidateInfo.Mode().IsRegular()
}
