package dependencies

import (
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/depctl/internal/discovery"
	"github.com/temirov/depctl/internal/execshell"
	"github.com/temirov/depctl/internal/platforms"
	"github.com/temirov/depctl/internal/report"
	"github.com/temirov/depctl/internal/ui"
	"github.com/temirov/depctl/internal/utils"
	"github.com/temirov/depctl/internal/utils/flags"
)

const (
	checkCommandUseConstant              = "check"
	checkCommandShortDescriptionConstant = "Report outdated dependencies across sample projects"
	checkCommandLongDescriptionConstant  = "check discovers the projects below each root directory, runs the platform's outdated report for every project and exits non-zero unless every project is up to date."
	updateCommandUseConstant             = "update"
	updateCommandShortDescription        = "Update dependencies across sample projects"
	serviceConfigurationMessageConstant  = "Resolved dependency configuration"
	logFieldConfigFileConstant           = "config_file"
	logFieldTimeoutConstant              = "command_timeout"
	updateCommandLongDescription         = "update discovers the projects below each root directory and runs the platform's upgrade for every confirmed project. Use --all to skip confirmation and --dry-run to preview. Exits non-zero when any update failed."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the loaded command configuration.
type ConfigurationProvider func() Configuration

// PrompterFactory creates confirmation prompters scoped to a Cobra command.
type PrompterFactory func(*cobra.Command) ConfirmationPrompter

// CommandDependencies holds the collaborators shared by the check and update builders.
// Unset collaborators fall back to operating-system backed defaults.
type CommandDependencies struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        ConfigurationProvider
	Discoverer                   ProjectDiscoverer
	Executor                     platforms.CommandExecutor
	ToolLocator                  execshell.ToolLocator
	PrompterFactory              PrompterFactory
	CIDetector                   CIEnvironmentDetector
	HostOperatingSystem          string
}

// CheckCommandBuilder assembles the check command.
type CheckCommandBuilder struct {
	CommandDependencies
}

// Build constructs the cobra command for dependency checks.
func (builder *CheckCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   checkCommandUseConstant,
		Short: checkCommandShortDescriptionConstant,
		Long:  checkCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
	}

	rootValues := flags.BindRootFlags(command, flags.RootFlagValues{}, flags.RootFlagDefinition{Enabled: true})
	reportValues := flags.BindReportFlags(command, discovery.PlatformNames(discovery.DefaultPlatformPriority()))

	command.RunE = func(command *cobra.Command, arguments []string) error {
		configuration := builder.resolveConfiguration()
		platformFilter, platformError := discovery.ParsePlatforms(reportValues.Platforms)
		if platformError != nil {
			return platformError
		}

		service, serviceError := builder.buildService(command, configuration)
		if serviceError != nil {
			return serviceError
		}

		checkReport, checkError := service.Check(command.Context(), CheckOptions{
			Roots:     resolveRoots(command, rootValues, configuration),
			Platforms: platformFilter,
		})
		if checkError != nil {
			return checkError
		}

		if renderError := report.NewRenderer(command.OutOrStdout(), reportValues.JSON).RenderCheck(checkReport); renderError != nil {
			return renderError
		}
		return report.ExitStatus(checkReport.ExitCode())
	}

	return command, nil
}

// UpdateCommandBuilder assembles the update command.
type UpdateCommandBuilder struct {
	CommandDependencies
}

// Build constructs the cobra command for dependency updates.
func (builder *UpdateCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   updateCommandUseConstant,
		Short: updateCommandShortDescription,
		Long:  updateCommandLongDescription,
		Args:  cobra.NoArgs,
	}

	rootValues := flags.BindRootFlags(command, flags.RootFlagValues{}, flags.RootFlagDefinition{Enabled: true})
	reportValues := flags.BindReportFlags(command, discovery.PlatformNames(discovery.DefaultPlatformPriority()))
	executionValues := flags.BindExecutionFlags(command, flags.ExecutionDefaults{}, flags.ExecutionFlagDefinitions{
		DryRun: flags.ExecutionFlagDefinition{Name: flags.DryRunFlagName, Usage: flags.DryRunFlagUsage, Enabled: true},
		All:    flags.ExecutionFlagDefinition{Name: flags.AllFlagName, Usage: flags.AllFlagUsage, Shorthand: "a", Enabled: true},
	})

	command.RunE = func(command *cobra.Command, arguments []string) error {
		configuration := builder.resolveConfiguration()
		platformFilter, platformError := discovery.ParsePlatforms(reportValues.Platforms)
		if platformError != nil {
			return platformError
		}

		service, serviceError := builder.buildService(command, configuration)
		if serviceError != nil {
			return serviceError
		}

		updateReport, updateError := service.Update(command.Context(), UpdateOptions{
			Roots:     resolveRoots(command, rootValues, configuration),
			Platforms: platformFilter,
			All:       executionValues.All,
			DryRun:    executionValues.DryRun,
		})
		if updateError != nil {
			return updateError
		}

		if renderError := report.NewRenderer(command.OutOrStdout(), reportValues.JSON).RenderUpdate(updateReport); renderError != nil {
			return renderError
		}
		return report.ExitStatus(updateReport.ExitCode())
	}

	return command, nil
}

func resolveRoots(command *cobra.Command, rootValues *flags.RootFlagValues, configuration Configuration) []string {
	if command.Flags().Changed(flags.DefaultRootFlagName) {
		return rootValues.Roots
	}
	return configuration.Roots
}

func (commandDependencies CommandDependencies) resolveConfiguration() Configuration {
	if commandDependencies.ConfigurationProvider == nil {
		return DefaultConfiguration().sanitize()
	}
	return commandDependencies.ConfigurationProvider().sanitize()
}

func (commandDependencies CommandDependencies) resolveLogger() *zap.Logger {
	return resolveProvidedLogger(commandDependencies.LoggerProvider)
}

func resolveProvidedLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (commandDependencies CommandDependencies) humanReadableLogging() bool {
	return commandDependencies.HumanReadableLoggingProvider != nil && commandDependencies.HumanReadableLoggingProvider()
}

func (commandDependencies CommandDependencies) resolveExecutor(logger *zap.Logger, configuration Configuration) (platforms.CommandExecutor, error) {
	if commandDependencies.Executor != nil {
		return commandDependencies.Executor, nil
	}

	options := []execshell.ExecutorOption{execshell.WithCommandTimeout(configuration.CommandTimeout)}
	if commandDependencies.humanReadableLogging() {
		options = append(options, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(resolveProvidedLogger(commandDependencies.ConsoleLoggerProvider))))
	}
	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), options...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func (commandDependencies CommandDependencies) resolvePrompter(command *cobra.Command) ConfirmationPrompter {
	if commandDependencies.PrompterFactory != nil {
		if prompter := commandDependencies.PrompterFactory(command); prompter != nil {
			return prompter
		}
	}
	return NewIOConfirmationPrompter(command.InOrStdin(), utils.NewFlushingWriter(command.ErrOrStderr()))
}

type recordedCIEnvironment bool

func (ciEnvironment recordedCIEnvironment) Detect() bool {
	return bool(ciEnvironment)
}

func (commandDependencies CommandDependencies) resolveCIDetector(command *cobra.Command) CIEnvironmentDetector {
	if commandDependencies.CIDetector != nil {
		return commandDependencies.CIDetector
	}
	if ciEnvironment, recorded := utils.NewCommandContextAccessor().CIEnvironment(command.Context()); recorded {
		return recordedCIEnvironment(ciEnvironment)
	}
	return report.NewCIDetector()
}

func (commandDependencies CommandDependencies) buildService(command *cobra.Command, configuration Configuration) (*Service, error) {
	logger := commandDependencies.resolveLogger()
	configurationFilePath, _ := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context())
	logger.Debug(serviceConfigurationMessageConstant,
		zap.String(logFieldConfigFileConstant, configurationFilePath),
		zap.Strings(logFieldRootsConstant, configuration.Roots),
		zap.Duration(logFieldTimeoutConstant, configuration.CommandTimeout),
	)

	priority, priorityError := discovery.ResolvePriority(configuration.PlatformPriority)
	if priorityError != nil {
		return nil, priorityError
	}

	discoverer := commandDependencies.Discoverer
	if discoverer == nil {
		discoverer = discovery.NewFilesystemProjectDiscoverer(logger, priority)
	}

	executor, executorError := commandDependencies.resolveExecutor(logger, configuration)
	if executorError != nil {
		return nil, executorError
	}

	hostOperatingSystem := commandDependencies.HostOperatingSystem
	if len(hostOperatingSystem) == 0 {
		hostOperatingSystem = runtime.GOOS
	}

	adapterDependencies := platforms.Dependencies{Executor: executor, ToolLocator: commandDependencies.ToolLocator, Logger: logger}
	registry := platforms.NewRegistry(logger,
		platforms.NewFlutterAdapter(adapterDependencies),
		platforms.NewIOSAdapter(adapterDependencies, platforms.IOSOptions{HostOperatingSystem: hostOperatingSystem}),
		platforms.NewAndroidAdapter(adapterDependencies),
		platforms.NewNodeAdapter(adapterDependencies),
		platforms.NewPythonAdapter(adapterDependencies, platforms.PythonOptions{
			PipCommand: configuration.Python.PipCommand,
			Backup:     configuration.Python.Backup,
		}),
	)

	return NewService(ServiceDependencies{
		Discoverer: discoverer,
		Registry:   registry,
		Prompter:   commandDependencies.resolvePrompter(command),
		CIDetector: commandDependencies.resolveCIDetector(command),
		Logger:     logger,
	})
}
