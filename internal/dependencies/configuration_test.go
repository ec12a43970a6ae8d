package dependencies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigurationValuesUsePrefix(testInstance *testing.T) {
	values := DefaultConfigurationValues("tools.dependencies")

	require.Equal(testInstance, []string{"."}, values["tools.dependencies.roots"])
	require.Equal(testInstance, "10m0s", values["tools.dependencies.command_timeout"])
	require.Equal(testInstance, "pip", values["tools.dependencies.python.pip_command"])
	require.Equal(testInstance, true, values["tools.dependencies.python.backup"])
	require.Contains(testInstance, values, "tools.dependencies.platform_priority")
}

func TestConfigurationSanitize(testInstance *testing.T) {
	sanitized := Configuration{
		Roots:          []string{" apps ", "", "samples"},
		CommandTimeout: -time.Second,
		Python:         PythonConfiguration{PipCommand: "  "},
	}.sanitize()

	require.Equal(testInstance, []string{"apps", "samples"}, sanitized.Roots)
	require.Equal(testInstance, time.Duration(0), sanitized.CommandTimeout)
	require.Equal(testInstance, "pip", sanitized.Python.PipCommand)
}
