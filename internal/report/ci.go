package report

import (
	"os"
	"strings"
)

var continuousIntegrationVariables = []string{
	"CI",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"TRAVIS",
	"JENKINS_URL",
	"BUILDKITE",
	"TF_BUILD",
	"BITBUCKET_BUILD_NUMBER",
	"TEAMCITY_VERSION",
	"CODEBUILD_BUILD_ID",
}

// EnvironmentLookup mirrors os.LookupEnv.
type EnvironmentLookup func(key string) (string, bool)

// CIDetector reports whether the process runs under a continuous integration service.
type CIDetector struct {
	lookup EnvironmentLookup
}

// NewCIDetector inspects the process environment.
func NewCIDetector() CIDetector {
	return CIDetector{lookup: os.LookupEnv}
}

// NewCIDetectorWithLookup inspects the supplied environment.
func NewCIDetectorWithLookup(lookup EnvironmentLookup) CIDetector {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return CIDetector{lookup: lookup}
}

// Detect returns true when any known CI variable is set to a value other than false or 0.
func (detector CIDetector) Detect() bool {
	lookup := detector.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, variableName := range continuousIntegrationVariables {
		value, present := lookup(variableName)
		if !present {
			continue
		}
		normalizedValue := strings.ToLower(strings.TrimSpace(value))
		if len(normalizedValue) == 0 || normalizedValue == "false" || normalizedValue == "0" {
			continue
		}
		return true
	}
	return false
}
