package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/depctl/internal/dependencies"
	"github.com/temirov/depctl/internal/report"
	"github.com/temirov/depctl/internal/sdkversions"
	"github.com/temirov/depctl/internal/utils"
	"github.com/temirov/depctl/internal/utils/flags"
)

const (
	applicationNameConstant                 = "depctl"
	applicationShortDescriptionConstant     = "Check and update dependencies across multi-platform sample projects"
	applicationLongDescriptionConstant      = "depctl discovers Flutter, iOS, Android, Node and Python sample projects, runs each platform's package manager to check or update dependencies and reports the outcome for humans or CI."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagDescriptionConstant         = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagDescriptionConstant        = "Override the configured log format."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	toolsConfigurationKeyConstant           = "tools"
	dependenciesConfigurationKeyConstant    = toolsConfigurationKeyConstant + ".dependencies"
	sdkVersionsConfigurationKeyConstant     = toolsConfigurationKeyConstant + ".sdk_versions"
	environmentPrefixConstant               = "DEPCTL"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationCIFieldConstant            = "ci_environment"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build %s command: %w"
	defaultConfigurationSearchPathConstant  = "."
	versionTemplateConstant                 = "{{.Name}} version: {{.Version}}\n"
	errorOutputTemplateConstant             = "%v\n"
	exitCodeFailureConstant                 = 1
	checkCommandNameConstant                = "check"
	updateCommandNameConstant               = "update"
	sdkVersionsCommandNameConstant          = "sdk-versions"
)

// Version is the application version reported by --version. Release builds set it with -ldflags.
var Version = "dev"

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for the subcommands.
type ApplicationToolsConfiguration struct {
	Dependencies dependencies.Configuration `mapstructure:"dependencies"`
	SDKVersions  sdkversions.Configuration  `mapstructure:"sdk_versions"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	consoleLogger          *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
	ciDetector             report.CIDetector
}

// NewApplication assembles an application bound to the process standard streams.
func NewApplication() (*Application, error) {
	return NewApplicationWithStreams(os.Stdin, os.Stdout, os.Stderr)
}

// NewApplicationWithStreams assembles an application bound to the provided streams.
// Logs and prompts go to standardError so that standardOutput carries only reports.
func NewApplicationWithStreams(standardInput io.Reader, standardOutput io.Writer, standardError io.Writer) (*Application, error) {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactoryWithWriter(standardError),
		logger:                 zap.NewNop(),
		consoleLogger:          zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		ciDetector:             report.NewCIDetector(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetIn(standardInput)
	cobraCommand.SetOut(standardOutput)
	cobraCommand.SetErr(standardError)
	cobraCommand.SetVersionTemplate(versionTemplateConstant)
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", flags.FormatChoiceUsage(string(utils.LogLevelInfo), utils.SupportedLogLevels(), logLevelFlagDescriptionConstant))
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", flags.FormatChoiceUsage(string(utils.LogFormatConsole), utils.SupportedLogFormats(), logFormatFlagDescriptionConstant))

	commandDependencies := dependencies.CommandDependencies{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConsoleLoggerProvider: func() *zap.Logger {
			return application.consoleLogger
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() dependencies.Configuration {
			return application.configuration.Tools.Dependencies
		},
	}

	checkBuilder := dependencies.CheckCommandBuilder{CommandDependencies: commandDependencies}
	checkCommand, checkBuildError := checkBuilder.Build()
	if checkBuildError != nil {
		return nil, fmt.Errorf(commandBuildErrorTemplateConstant, checkCommandNameConstant, checkBuildError)
	}
	cobraCommand.AddCommand(checkCommand)

	updateBuilder := dependencies.UpdateCommandBuilder{CommandDependencies: commandDependencies}
	updateCommand, updateBuildError := updateBuilder.Build()
	if updateBuildError != nil {
		return nil, fmt.Errorf(commandBuildErrorTemplateConstant, updateCommandNameConstant, updateBuildError)
	}
	cobraCommand.AddCommand(updateCommand)

	sdkVersionsBuilder := sdkversions.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() sdkversions.Configuration {
			return application.configuration.Tools.SDKVersions
		},
		RootsProvider: func() []string {
			return application.configuration.Tools.Dependencies.Roots
		},
		PlatformPriorityProvider: func() []string {
			return application.configuration.Tools.Dependencies.PlatformPriority
		},
	}
	sdkVersionsCommand, sdkVersionsBuildError := sdkVersionsBuilder.Build()
	if sdkVersionsBuildError != nil {
		return nil, fmt.Errorf(commandBuildErrorTemplateConstant, sdkVersionsCommandNameConstant, sdkVersionsBuildError)
	}
	cobraCommand.AddCommand(sdkVersionsCommand)

	application.rootCommand = cobraCommand

	return application, nil
}

// Execute runs the command hierarchy with arguments and ensures logger flushing.
func (application *Application) Execute(executionContext context.Context, arguments []string) error {
	application.rootCommand.SetArgs(flags.NormalizeToggleArguments(arguments))
	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Run executes depctl with arguments and returns the process exit code. Report
// outcomes map to their exit codes silently; any other error is printed to standardError.
func Run(arguments []string, standardInput io.Reader, standardOutput io.Writer, standardError io.Writer) int {
	application, creationError := NewApplicationWithStreams(standardInput, standardOutput, standardError)
	if creationError != nil {
		fmt.Fprintf(standardError, errorOutputTemplateConstant, creationError)
		return exitCodeFailureConstant
	}

	executionContext, cancel := utils.NewInterruptibleContext(context.Background())
	defer cancel()

	executionError := application.Execute(executionContext, arguments)
	if executionError == nil {
		return report.ExitCodeSuccess
	}

	var exitStatusError report.ExitStatusError
	if errors.As(executionError, &exitStatusError) {
		return exitStatusError.Code
	}

	fmt.Fprintf(standardError, errorOutputTemplateConstant, executionError)
	return exitCodeFailureConstant
}

func (application *Application) defaultConfigurationValues() map[string]any {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range dependencies.DefaultConfigurationValues(dependenciesConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range sdkversions.DefaultConfigurationValues(sdkVersionsConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	return defaultValues
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, application.defaultConfigurationValues(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger
	application.consoleLogger = loggerOutputs.ConsoleLogger

	ciEnvironment := application.ciDetector.Detect()
	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.Bool(configurationCIFieldConstant, ciEnvironment),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(command.Context(), application.configurationMetadata.ConfigFileUsed)
		updatedContext = application.commandContextAccessor.WithCIEnvironment(updatedContext, ciEnvironment)
		command.SetContext(updatedContext)
	}

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) flushLogger() error {
	for _, logger := range []*zap.Logger{application.logger, application.consoleLogger} {
		if syncError := syncLoggerInstance(logger); syncError != nil {
			return syncError
		}
	}
	return nil
}

func syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
