package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	ciEnvironmentContextKeyConstant         = commandContextKey("ciEnvironment")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, available := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	return configurationFilePath, available
}

// WithCIEnvironment records whether the process runs inside a continuous integration environment.
func (accessor CommandContextAccessor) WithCIEnvironment(parentContext context.Context, ciEnvironment bool) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, ciEnvironmentContextKeyConstant, ciEnvironment)
}

// CIEnvironment reports the value recorded by WithCIEnvironment.
func (accessor CommandContextAccessor) CIEnvironment(executionContext context.Context) (bool, bool) {
	if executionContext == nil {
		return false, false
	}
	ciEnvironment, available := executionContext.Value(ciEnvironmentContextKeyConstant).(bool)
	return ciEnvironment, available
}

// NewInterruptibleContext derives a context cancelled on SIGINT or SIGTERM.
func NewInterruptibleContext(parentContext context.Context) (context.Context, context.CancelFunc) {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return signal.NotifyContext(parentContext, os.Interrupt, syscall.SIGTERM)
}
