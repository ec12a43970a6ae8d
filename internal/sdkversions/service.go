package sdkversions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/ui"
	pathutils "github.com/temirov/depctl/internal/utils/path"
)

const (
	missingRootsMessageConstant    = "no project roots provided; specify --root or configure tools.dependencies.roots"
	discoveryErrorTemplateConstant = "project discovery failed: %w"
	renderErrorTemplateConstant    = "unable to render sdk versions: %w"
	titleTemplateConstant          = "%s versions"
	projectLineTemplateConstant    = "  %s %s [%s] %s: %s"
	notDeclaredConstant            = "not declared"
	unversionedConstant            = "declared without a version"
	consistentSummaryTemplate      = "All declaring projects use %s %s"
	noDeclarationsSummaryTemplate  = "No project declares %s"
	mismatchSummaryTemplate        = "Version mismatch for %s: %s"
	noProjectsTemplateConstant     = "No projects found under %s"
	versionListSeparatorConstant   = ", "
	jsonIndentConstant             = "  "
	markerConsistentConstant       = "✓"
	markerMismatchConstant         = "✗"
	markerUndeclaredConstant       = "-"
	projectsScannedMessageConstant = "Scanned SDK versions"
	logFieldSDKConstant            = "sdk"
	logFieldProjectCountConstant   = "projects"
	logFieldConsistentConstant     = "consistent"
)

// ErrNoRoots indicates that every configured root was blank.
var ErrNoRoots = errors.New(missingRootsMessageConstant)

// ProjectDiscoverer finds projects below root directories.
type ProjectDiscoverer interface {
	DiscoverProjects(roots []string) ([]discovery.Project, error)
}

// Report collects the declared versions of one SDK.
type Report struct {
	SDK      string
	Roots    []string
	Versions []DeclaredVersion
}

// DistinctVersions lists the normalized declared versions in sorted order.
func (sdkReport Report) DistinctVersions() []string {
	seen := make(map[string]struct{})
	versions := make([]string, 0)
	for _, declaredVersion := range sdkReport.Versions {
		normalizedVersion := NormalizeVersion(declaredVersion.Version)
		if !declaredVersion.Declared || len(normalizedVersion) == 0 {
			continue
		}
		if _, duplicate := seen[normalizedVersion]; duplicate {
			continue
		}
		seen[normalizedVersion] = struct{}{}
		versions = append(versions, normalizedVersion)
	}
	sort.Strings(versions)
	return versions
}

// Consistent reports whether at most one normalized version is declared.
func (sdkReport Report) Consistent() bool {
	return len(sdkReport.DistinctVersions()) <= 1
}

// ExitCode is 1 when declared versions disagree and 0 otherwise.
func (sdkReport Report) ExitCode() int {
	if sdkReport.Consistent() {
		return 0
	}
	return 1
}

// Service discovers projects and scans their manifests.
type Service struct {
	discoverer ProjectDiscoverer
	sanitizer  *pathutils.RootPathSanitizer
	logger     *zap.Logger
}

// NewService constructs a Service.
func NewService(discoverer ProjectDiscoverer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{discoverer: discoverer, sanitizer: pathutils.NewRootPathSanitizer(), logger: logger}
}

// Scan reports the version of sdk declared by every project below roots.
func (service *Service) Scan(roots []string, sdk string, scanner Scanner) (Report, error) {
	sanitizedRoots := service.sanitizer.Sanitize(roots)
	if len(sanitizedRoots) == 0 {
		return Report{}, ErrNoRoots
	}

	projects, discoveryError := service.discoverer.DiscoverProjects(sanitizedRoots)
	if discoveryError != nil {
		return Report{}, fmt.Errorf(discoveryErrorTemplateConstant, discoveryError)
	}

	sdkReport := Report{SDK: sdk, Roots: sanitizedRoots, Versions: make([]DeclaredVersion, 0, len(projects))}
	for _, project := range projects {
		sdkReport.Versions = append(sdkReport.Versions, scanner.Scan(project))
	}

	service.logger.Info(projectsScannedMessageConstant,
		zap.String(logFieldSDKConstant, sdk),
		zap.Int(logFieldProjectCountConstant, len(projects)),
		zap.Bool(logFieldConsistentConstant, sdkReport.Consistent()),
	)
	return sdkReport, nil
}

// ProjectVersionDocument is the JSON form of one project's declaration.
type ProjectVersionDocument struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Platform string `json:"platform"`
	Package  string `json:"package,omitempty"`
	Version  string `json:"version,omitempty"`
	Declared bool   `json:"declared"`
	Detail   string `json:"detail,omitempty"`
}

// Document is the JSON form of a Report.
type Document struct {
	SDK        string                   `json:"sdk"`
	Consistent bool                     `json:"consistent"`
	Versions   []string                 `json:"versions"`
	Projects   []ProjectVersionDocument `json:"projects"`
}

// NewDocument converts a report to its JSON form.
func NewDocument(sdkReport Report) Document {
	projects := make([]ProjectVersionDocument, 0, len(sdkReport.Versions))
	for _, declaredVersion := range sdkReport.Versions {
		projects = append(projects, ProjectVersionDocument{
			Name:     declaredVersion.Project.Name(),
			Path:     declaredVersion.Project.Path,
			Platform: string(declaredVersion.Project.Platform),
			Package:  declaredVersion.Package,
			Version:  declaredVersion.Version,
			Declared: declaredVersion.Declared,
			Detail:   declaredVersion.Detail,
		})
	}
	return Document{
		SDK:        sdkReport.SDK,
		Consistent: sdkReport.Consistent(),
		Versions:   sdkReport.DistinctVersions(),
		Projects:   projects,
	}
}

// Render writes the report as JSON or as styled text.
func Render(writer io.Writer, sdkReport Report, jsonOutput bool) error {
	if jsonOutput {
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", jsonIndentConstant)
		if encodeError := encoder.Encode(NewDocument(sdkReport)); encodeError != nil {
			return fmt.Errorf(renderErrorTemplateConstant, encodeError)
		}
		return nil
	}

	if len(sdkReport.Versions) == 0 {
		return writeText(writer, []string{fmt.Sprintf(noProjectsTemplateConstant, strings.Join(sdkReport.Roots, versionListSeparatorConstant))})
	}

	palette := ui.NewPalette(writer)
	distinctVersions := sdkReport.DistinctVersions()
	consistent := len(distinctVersions) <= 1

	lines := []string{palette.Title.Render(fmt.Sprintf(titleTemplateConstant, sdkReport.SDK))}
	for _, declaredVersion := range sdkReport.Versions {
		marker := palette.Muted.Render(markerUndeclaredConstant)
		description := notDeclaredConstant
		switch {
		case declaredVersion.Declared && len(declaredVersion.Version) == 0:
			description = unversionedConstant
		case declaredVersion.Declared && consistent:
			marker = palette.Success.Render(markerConsistentConstant)
			description = declaredVersion.Version
		case declaredVersion.Declared:
			marker = palette.Error.Render(markerMismatchConstant)
			description = declaredVersion.Version
		case len(declaredVersion.Detail) > 0:
			description = declaredVersion.Detail
		}
		lines = append(lines, fmt.Sprintf(projectLineTemplateConstant, marker, declaredVersion.Project.Name(), declaredVersion.Project.Platform, declaredVersion.Package, description))
	}

	switch {
	case len(distinctVersions) == 0:
		lines = append(lines, fmt.Sprintf(noDeclarationsSummaryTemplate, sdkReport.SDK))
	case consistent:
		lines = append(lines, palette.Success.Render(fmt.Sprintf(consistentSummaryTemplate, sdkReport.SDK, distinctVersions[0])))
	default:
		lines = append(lines, palette.Error.Render(fmt.Sprintf(mismatchSummaryTemplate, sdkReport.SDK, strings.Join(distinctVersions, versionListSeparatorConstant))))
	}
	return writeText(writer, lines)
}

func writeText(writer io.Writer, lines []string) error {
	if _, writeError := io.WriteString(writer, strings.Join(lines, "\n")+"\n"); writeError != nil {
		return fmt.Errorf(renderErrorTemplateConstant, writeError)
	}
	return nil
}
