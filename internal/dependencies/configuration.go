package dependencies

import (
	"strings"
	"time"
)

const (
	defaultRootConstant           = "."
	defaultPipCommandConstant     = "pip"
	defaultCommandTimeoutConstant = 10 * time.Minute
	rootsConfigurationKey         = "roots"
	priorityConfigurationKey      = "platform_priority"
	timeoutConfigurationKey       = "command_timeout"
	pipCommandConfigurationKey    = "python.pip_command"
	backupConfigurationKey        = "python.backup"
	configurationKeySeparator     = "."
)

// PythonConfiguration captures settings for the Python adapter.
type PythonConfiguration struct {
	PipCommand string `mapstructure:"pip_command"`
	Backup     bool   `mapstructure:"backup"`
}

// Configuration captures persistent settings shared by the check and update commands.
type Configuration struct {
	Roots            []string            `mapstructure:"roots"`
	PlatformPriority []string            `mapstructure:"platform_priority"`
	CommandTimeout   time.Duration       `mapstructure:"command_timeout"`
	Python           PythonConfiguration `mapstructure:"python"`
}

// DefaultConfiguration returns baseline configuration values.
func DefaultConfiguration() Configuration {
	return Configuration{
		Roots:            []string{defaultRootConstant},
		PlatformPriority: []string{"flutter", "ios", "android", "node", "python"},
		CommandTimeout:   defaultCommandTimeoutConstant,
		Python: PythonConfiguration{
			PipCommand: defaultPipCommandConstant,
			Backup:     true,
		},
	}
}

// DefaultConfigurationValues flattens DefaultConfiguration into viper defaults below prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		prefixedKey(prefix, rootsConfigurationKey):      defaults.Roots,
		prefixedKey(prefix, priorityConfigurationKey):   defaults.PlatformPriority,
		prefixedKey(prefix, timeoutConfigurationKey):    defaults.CommandTimeout.String(),
		prefixedKey(prefix, pipCommandConfigurationKey): defaults.Python.PipCommand,
		prefixedKey(prefix, backupConfigurationKey):     defaults.Python.Backup,
	}
}

func prefixedKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparator + key
}

func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration

	sanitized.Roots = make([]string, 0, len(configuration.Roots))
	for _, root := range configuration.Roots {
		if trimmedRoot := strings.TrimSpace(root); len(trimmedRoot) > 0 {
			sanitized.Roots = append(sanitized.Roots, trimmedRoot)
		}
	}

	if sanitized.CommandTimeout < 0 {
		sanitized.CommandTimeout = 0
	}

	sanitized.Python.PipCommand = strings.TrimSpace(configuration.Python.PipCommand)
	if len(sanitized.Python.PipCommand) == 0 {
		sanitized.Python.PipCommand = defaultPipCommandConstant
	}

	return sanitized
}
