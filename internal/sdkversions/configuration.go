package sdkversions

import (
	"sort"
	"strings"
)

const (
	defaultSDKConstant        = "ditto"
	sdkConfigurationKey       = "sdk"
	packagesConfigurationKey  = "packages"
	configurationKeySeparator = "."
)

// Configuration selects the SDK to inspect and maps each SDK to its package name per platform.
type Configuration struct {
	SDK      string                       `mapstructure:"sdk"`
	Packages map[string]map[string]string `mapstructure:"packages"`
}

// DefaultConfiguration returns the built-in SDK catalog.
func DefaultConfiguration() Configuration {
	return Configuration{
		SDK: defaultSDKConstant,
		Packages: map[string]map[string]string{
			defaultSDKConstant: {
				"flutter": "ditto_live",
				"node":    "@dittolive/ditto",
				"ios":     "DittoSwift",
				"android": "live.ditto:ditto",
				"python":  "ditto",
			},
		},
	}
}

// DefaultConfigurationValues flattens DefaultConfiguration into viper defaults below prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	packages := make(map[string]any, len(defaults.Packages))
	for sdkName, platformPackages := range defaults.Packages {
		platformValues := make(map[string]any, len(platformPackages))
		for platformName, packageName := range platformPackages {
			platformValues[platformName] = packageName
		}
		packages[sdkName] = platformValues
	}
	return map[string]any{
		prefixedKey(prefix, sdkConfigurationKey):      defaults.SDK,
		prefixedKey(prefix, packagesConfigurationKey): packages,
	}
}

// SDKNames lists the configured SDKs in name order.
func (configuration Configuration) SDKNames() []string {
	names := make([]string, 0, len(configuration.Packages))
	for sdkName := range configuration.Packages {
		names = append(names, sdkName)
	}
	sort.Strings(names)
	return names
}

func prefixedKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparator + key
}

func (configuration Configuration) sanitize() Configuration {
	sanitized := Configuration{
		SDK:      strings.ToLower(strings.TrimSpace(configuration.SDK)),
		Packages: make(map[string]map[string]string, len(configuration.Packages)),
	}
	if len(sanitized.SDK) == 0 {
		sanitized.SDK = defaultSDKConstant
	}
	for sdkName, platformPackages := range configuration.Packages {
		normalizedPackages := make(map[string]string, len(platformPackages))
		for platformName, packageName := range platformPackages {
			trimmedPackage := strings.TrimSpace(packageName)
			if len(trimmedPackage) == 0 {
				continue
			}
			normalizedPackages[strings.ToLower(strings.TrimSpace(platformName))] = trimmedPackage
		}
		sanitized.Packages[strings.ToLower(strings.TrimSpace(sdkName))] = normalizedPackages
	}
	return sanitized
}
