package sdkversions

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/report"
	"github.com/temirov/depctl/internal/utils/flags"
)

const (
	commandUseConstant              = "sdk-versions"
	commandShortDescriptionConstant = "Compare the SDK version declared by every sample project"
	commandLongDescriptionConstant  = "sdk-versions discovers projects like check, reads the version of the selected SDK from each manifest and exits non-zero when the declared versions disagree."
	sdkFlagNameConstant             = "sdk"
	sdkFlagUsageConstant            = "SDK whose declared versions are compared"
	sdkChoiceSubjectConstant        = "sdk"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the SDK catalog.
type ConfigurationProvider func() Configuration

// RootsProvider supplies the configured project roots.
type RootsProvider func() []string

// CommandBuilder assembles the sdk-versions command.
type CommandBuilder struct {
	LoggerProvider           LoggerProvider
	ConfigurationProvider    ConfigurationProvider
	RootsProvider            RootsProvider
	PlatformPriorityProvider func() []string
	Discoverer               ProjectDiscoverer
}

// Build constructs the cobra command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
	}

	var sdkName string
	command.Flags().StringVar(&sdkName, sdkFlagNameConstant, "", sdkFlagUsageConstant)
	rootValues := flags.BindRootFlags(command, flags.RootFlagValues{}, flags.RootFlagDefinition{Enabled: true})
	reportValues := flags.BindReportFlags(command, nil)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		configuration := builder.resolveConfiguration()
		selectedSDK := configuration.SDK
		if command.Flags().Changed(sdkFlagNameConstant) {
			selectedSDK = sdkName
		}
		validatedSDK, choiceError := flags.ValidateChoice(sdkChoiceSubjectConstant, selectedSDK, configuration.SDKNames())
		if choiceError != nil {
			return choiceError
		}

		roots := rootValues.Roots
		if !command.Flags().Changed(flags.DefaultRootFlagName) && builder.RootsProvider != nil {
			roots = builder.RootsProvider()
		}

		logger := builder.resolveLogger()
		discoverer, discovererError := builder.resolveDiscoverer(logger)
		if discovererError != nil {
			return discovererError
		}

		sdkReport, scanError := NewService(discoverer, logger).Scan(roots, validatedSDK, NewScanner(configuration.Packages[validatedSDK]))
		if scanError != nil {
			return scanError
		}
		if renderError := Render(command.OutOrStdout(), sdkReport, reportValues.JSON); renderError != nil {
			return renderError
		}
		return report.ExitStatus(sdkReport.ExitCode())
	}

	return command, nil
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration().sanitize()
	}
	configuration := builder.ConfigurationProvider()
	if len(configuration.Packages) == 0 {
		configuration.Packages = DefaultConfiguration().Packages
	}
	return configuration.sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	if logger := builder.LoggerProvider(); logger != nil {
		return logger
	}
	return zap.NewNop()
}

func (builder *CommandBuilder) resolveDiscoverer(logger *zap.Logger) (ProjectDiscoverer, error) {
	if builder.Discoverer != nil {
		return builder.Discoverer, nil
	}
	var priorityNames []string
	if builder.PlatformPriorityProvider != nil {
		priorityNames = builder.PlatformPriorityProvider()
	}
	priority, priorityError := discovery.ResolvePriority(priorityNames)
	if priorityError != nil {
		return nil, priorityError
	}
	return discovery.NewFilesystemProjectDiscoverer(logger, priority), nil
}
