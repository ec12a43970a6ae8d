package sdkversions

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/platforms"
)

const (
	manifestReadErrorTemplate       = "could not read %s: %v"
	manifestParseErrorTemplate      = "could not parse %s: %v"
	podDeclarationTemplate          = `(?m)^\s*pod\s+['"]%s['"]\s*(?:,\s*['"]([^'"]+)['"])?`
	gradleDeclarationTemplate       = `["']%s:([^"'@:]+)(?:@[^"']*)?["']`
	yamlVersionKeyConstant          = "version"
	requirementCommentPrefix        = "#"
	requirementOptionPrefix         = "-"
	versionOperatorCharacters       = "^~=<>!v "
	lineBreakConstant               = "\n"
	requirementVersionSpecifierMark = ","
)

var (
	errNoPackageForPlatform = errors.New("no package configured for platform")
	requirementPattern      = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._-]*)\s*(?:\[[^\]]*\])?\s*((?:===|==|>=|<=|~=|!=|>|<)\s*[^;#\s,]+)?`)
)

// DeclaredVersion is the version of the SDK package a project's manifest declares.
type DeclaredVersion struct {
	Project  discovery.Project
	Package  string
	Version  string
	Declared bool
	Detail   string
}

// Scanner extracts declared SDK versions from manifests.
type Scanner struct {
	packages map[discovery.Platform]string
}

// NewScanner builds a scanner for the per-platform package names of one SDK.
func NewScanner(platformPackages map[string]string) Scanner {
	packages := make(map[discovery.Platform]string, len(platformPackages))
	for platformName, packageName := range platformPackages {
		platform, parseError := discovery.ParsePlatform(platformName)
		if parseError != nil {
			continue
		}
		packages[platform] = packageName
	}
	return Scanner{packages: packages}
}

// Scan reads the project's manifest. Unreadable or malformed manifests produce an
// undeclared result with a detail.
func (scanner Scanner) Scan(project discovery.Project) DeclaredVersion {
	packageName, configured := scanner.packages[project.Platform]
	result := DeclaredVersion{Project: project, Package: packageName}
	if !configured {
		result.Detail = errNoPackageForPlatform.Error()
		return result
	}

	content, readError := os.ReadFile(project.Manifest)
	if readError != nil {
		result.Detail = fmt.Sprintf(manifestReadErrorTemplate, project.Manifest, readError)
		return result
	}

	version, declared, extractError := extractVersion(project.Platform, packageName, content)
	if extractError != nil {
		result.Detail = fmt.Sprintf(manifestParseErrorTemplate, project.Manifest, extractError)
		return result
	}
	result.Version = version
	result.Declared = declared
	return result
}

func extractVersion(platform discovery.Platform, packageName string, content []byte) (string, bool, error) {
	switch platform {
	case discovery.PlatformFlutter:
		return pubspecVersion(packageName, content)
	case discovery.PlatformNode:
		return packageJSONVersion(packageName, content)
	case discovery.PlatformIOS:
		return patternVersion(fmt.Sprintf(podDeclarationTemplate, regexp.QuoteMeta(packageName)), content)
	case discovery.PlatformAndroid:
		return patternVersion(fmt.Sprintf(gradleDeclarationTemplate, regexp.QuoteMeta(packageName)), content)
	case discovery.PlatformPython:
		version, declared := requirementsVersion(packageName, string(content))
		return version, declared, nil
	default:
		return "", false, errNoPackageForPlatform
	}
}

type pubspecDocument struct {
	Dependencies    map[string]yaml.Node `yaml:"dependencies"`
	DevDependencies map[string]yaml.Node `yaml:"dev_dependencies"`
}

// pubspecVersion accepts both the scalar form and the hosted mapping form with a version key.
func pubspecVersion(packageName string, content []byte) (string, bool, error) {
	var document pubspecDocument
	if unmarshalError := yaml.Unmarshal(content, &document); unmarshalError != nil {
		return "", false, unmarshalError
	}
	for _, section := range []map[string]yaml.Node{document.Dependencies, document.DevDependencies} {
		node, present := section[packageName]
		if !present {
			continue
		}
		switch node.Kind {
		case yaml.ScalarNode:
			return strings.TrimSpace(node.Value), true, nil
		case yaml.MappingNode:
			for index := 0; index+1 < len(node.Content); index += 2 {
				if node.Content[index].Value == yamlVersionKeyConstant {
					return strings.TrimSpace(node.Content[index+1].Value), true, nil
				}
			}
		}
		return "", true, nil
	}
	return "", false, nil
}

type packageJSONDocument struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func packageJSONVersion(packageName string, content []byte) (string, bool, error) {
	var document packageJSONDocument
	if unmarshalError := json.Unmarshal(content, &document); unmarshalError != nil {
		return "", false, unmarshalError
	}
	for _, section := range []map[string]string{document.Dependencies, document.DevDependencies} {
		if version, present := section[packageName]; present {
			return strings.TrimSpace(version), true, nil
		}
	}
	return "", false, nil
}

func patternVersion(expression string, content []byte) (string, bool, error) {
	pattern, compileError := regexp.Compile(expression)
	if compileError != nil {
		return "", false, compileError
	}
	match := pattern.FindSubmatch(content)
	if match == nil {
		return "", false, nil
	}
	return strings.TrimSpace(string(match[1])), true, nil
}

func requirementsVersion(packageName string, content string) (string, bool) {
	normalizedPackage := platforms.NormalizePackageName(packageName)
	for _, line := range strings.Split(content, lineBreakConstant) {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, requirementCommentPrefix) || strings.HasPrefix(trimmedLine, requirementOptionPrefix) {
			continue
		}
		match := requirementPattern.FindStringSubmatch(trimmedLine)
		if match == nil || platforms.NormalizePackageName(match[1]) != normalizedPackage {
			continue
		}
		return strings.TrimSpace(match[2]), true
	}
	return "", false
}

// NormalizeVersion strips range operators so that "^4.9.0", "~> 4.9.0" and "==4.9.0"
// compare equal. Only the first specifier of a comma-separated range is kept.
func NormalizeVersion(version string) string {
	firstSpecifier, _, _ := strings.Cut(version, requirementVersionSpecifierMark)
	return strings.TrimLeft(strings.TrimSpace(firstSpecifier), versionOperatorCharacters)
}
