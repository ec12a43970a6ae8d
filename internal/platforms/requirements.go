package platforms

import (
	"regexp"
	"strings"
)

const (
	requirementCommentPrefixConstant = "#"
	requirementOptionPrefixConstant  = "-"
	normalizedNameSeparatorConstant  = "-"
	freezePinSeparatorConstant       = "=="
	lineBreakConstant                = "\n"
)

var (
	requirementNamePattern   = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._-]*)`)
	pinnedRequirementPattern = regexp.MustCompile(`^(\s*)([A-Za-z0-9][A-Za-z0-9._-]*)(\s*\[[^\]]*\])?(\s*==\s*)([^\s;#,]+)(.*)$`)
	nameSeparatorRunPattern  = regexp.MustCompile(`[-_.]+`)
)

// NormalizePackageName applies PEP 503 normalization: lower case with runs of "-", "_" and "." collapsed to "-".
func NormalizePackageName(name string) string {
	return nameSeparatorRunPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), normalizedNameSeparatorConstant)
}

// RequirementNames returns the normalized names declared in requirements.txt content.
// Comments, blank lines and pip options such as -r or -e are ignored.
func RequirementNames(content string) map[string]struct{} {
	names := make(map[string]struct{})
	for _, line := range strings.Split(content, lineBreakConstant) {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, requirementCommentPrefixConstant) || strings.HasPrefix(trimmedLine, requirementOptionPrefixConstant) {
			continue
		}
		if match := requirementNamePattern.FindStringSubmatch(trimmedLine); match != nil {
			names[NormalizePackageName(match[1])] = struct{}{}
		}
	}
	return names
}

// PinnedRequirement is a requirement pinned to an exact version with "==".
type PinnedRequirement struct {
	Name    string
	Version string
}

// PinnedRequirements maps normalized names to the "name==version" pins in requirements.txt content.
func PinnedRequirements(content string) map[string]PinnedRequirement {
	pinnedRequirements := make(map[string]PinnedRequirement)
	for _, line := range strings.Split(content, lineBreakConstant) {
		match := pinnedRequirementPattern.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if match == nil {
			continue
		}
		pinnedRequirements[NormalizePackageName(match[2])] = PinnedRequirement{Name: match[2], Version: match[5]}
	}
	return pinnedRequirements
}

// ParseFreezeOutput maps normalized names to versions from "pip freeze" output.
func ParseFreezeOutput(output string) map[string]string {
	installedVersions := make(map[string]string)
	for _, line := range strings.Split(output, lineBreakConstant) {
		name, version, pinned := strings.Cut(strings.TrimSpace(line), freezePinSeparatorConstant)
		if !pinned || len(name) == 0 || len(version) == 0 {
			continue
		}
		installedVersions[NormalizePackageName(name)] = strings.TrimSpace(version)
	}
	return installedVersions
}

// RepinRequirements rewrites every "name==version" line to the installed version.
// Lines without an exact pin, and pins for packages that are not installed, are kept verbatim.
// It returns the new content and the number of changed lines.
func RepinRequirements(content string, installedVersions map[string]string) (string, int) {
	lines := strings.Split(content, lineBreakConstant)
	changedLines := 0
	for lineIndex, line := range lines {
		match := pinnedRequirementPattern.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if match == nil {
			continue
		}
		installedVersion, installed := installedVersions[NormalizePackageName(match[2])]
		if !installed || installedVersion == match[5] {
			continue
		}
		carriageReturn := ""
		if strings.HasSuffix(line, "\r") {
			carriageReturn = "\r"
		}
		lines[lineIndex] = match[1] + match[2] + match[3] + match[4] + installedVersion + match[6] + carriageReturn
		changedLines++
	}
	return strings.Join(lines, lineBreakConstant), changedLines
}
