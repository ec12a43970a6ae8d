package discovery

import (
	"errors"
	"fmt"
	"strings"
)

const (
	platformFlutterStringConstant = "flutter"
	platformIOSStringConstant     = "ios"
	platformAndroidStringConstant = "android"
	platformNodeStringConstant    = "node"
	platformPythonStringConstant  = "python"

	unknownPlatformTemplateConstant = "%w %q (supported: %s)"
	platformListSeparatorConstant   = ", "
)

// ErrUnknownPlatform indicates a platform name outside the supported set.
var ErrUnknownPlatform = errors.New("unknown platform")

// Platform identifies the ecosystem a project belongs to.
type Platform string

// Supported platforms.
const (
	PlatformFlutter Platform = Platform(platformFlutterStringConstant)
	PlatformIOS     Platform = Platform(platformIOSStringConstant)
	PlatformAndroid Platform = Platform(platformAndroidStringConstant)
	PlatformNode    Platform = Platform(platformNodeStringConstant)
	PlatformPython  Platform = Platform(platformPythonStringConstant)
)

// DefaultPlatformPriority lists platforms in manifest precedence order.
func DefaultPlatformPriority() []Platform {
	return []Platform{PlatformFlutter, PlatformIOS, PlatformAndroid, PlatformNode, PlatformPython}
}

// PlatformNames renders platforms as strings.
func PlatformNames(platforms []Platform) []string {
	names := make([]string, 0, len(platforms))
	for _, platform := range platforms {
		names = append(names, string(platform))
	}
	return names
}

// ParsePlatform converts a case-insensitive name into a Platform.
func ParsePlatform(name string) (Platform, error) {
	normalizedName := Platform(strings.ToLower(strings.TrimSpace(name)))
	for _, platform := range DefaultPlatformPriority() {
		if platform == normalizedName {
			return platform, nil
		}
	}
	return "", fmt.Errorf(unknownPlatformTemplateConstant, ErrUnknownPlatform, name, strings.Join(PlatformNames(DefaultPlatformPriority()), platformListSeparatorConstant))
}

// ParsePlatforms converts names into platforms, dropping blanks and duplicates.
func ParsePlatforms(names []string) ([]Platform, error) {
	platforms := make([]Platform, 0, len(names))
	seenPlatforms := make(map[Platform]struct{}, len(names))
	for _, name := range names {
		if len(strings.TrimSpace(name)) == 0 {
			continue
		}
		platform, parseError := ParsePlatform(name)
		if parseError != nil {
			return nil, parseError
		}
		if _, duplicate := seenPlatforms[platform]; duplicate {
			continue
		}
		seenPlatforms[platform] = struct{}{}
		platforms = append(platforms, platform)
	}
	return platforms, nil
}

// ResolvePriority parses a configured precedence order. Platforms the order omits
// keep their default relative order after the listed ones. An empty order yields
// the default priority.
func ResolvePriority(names []string) ([]Platform, error) {
	listedPlatforms, parseError := ParsePlatforms(names)
	if parseError != nil {
		return nil, parseError
	}

	resolved := append([]Platform{}, listedPlatforms...)
	for _, platform := range DefaultPlatformPriority() {
		if !containsPlatform(resolved, platform) {
			resolved = append(resolved, platform)
		}
	}
	return resolved, nil
}

func containsPlatform(platforms []Platform, candidate Platform) bool {
	for _, platform := range platforms {
		if platform == candidate {
			return true
		}
	}
	return false
}
