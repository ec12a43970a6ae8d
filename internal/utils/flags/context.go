package flags

import (
	"github.com/spf13/cobra"
)

const (
	// DefaultRootFlagName exposes the shared project root flag name.
	DefaultRootFlagName = "root"
	// DefaultRootFlagUsage describes the shared project root flag purpose.
	DefaultRootFlagUsage = "Root directories whose immediate subdirectories are scanned for projects (repeatable)"
	// PlatformFlagName exposes the shared platform filter flag name.
	PlatformFlagName = "platform"
	// PlatformFlagUsage describes the shared platform filter flag purpose.
	PlatformFlagUsage = "Restrict processing to the listed platforms (comma-separated)"
	// JSONFlagName exposes the shared JSON report flag name.
	JSONFlagName = "json"
	// JSONFlagUsage describes the shared JSON report flag purpose.
	JSONFlagUsage = "Emit the report as a single JSON object"
)

// RootFlagDefinition captures configuration for project root flags.
type RootFlagDefinition struct {
	Name    string
	Usage   string
	Enabled bool
}

// RootFlagValues stores project root flag values.
type RootFlagValues struct {
	Roots []string
}

// BindRootFlags attaches the repeatable root flag to the provided command.
func BindRootFlags(command *cobra.Command, defaults RootFlagValues, definition RootFlagDefinition) *RootFlagValues {
	values := RootFlagValues{Roots: append([]string{}, defaults.Roots...)}
	if command == nil || !definition.Enabled {
		return &values
	}

	flagName := definition.Name
	if len(flagName) == 0 {
		flagName = DefaultRootFlagName
	}
	flagUsage := definition.Usage
	if len(flagUsage) == 0 {
		flagUsage = DefaultRootFlagUsage
	}

	if command.Flags().Lookup(flagName) == nil {
		command.Flags().StringSliceVar(&values.Roots, flagName, values.Roots, flagUsage)
	}
	return &values
}

// ReportFlagValues stores selection and output flag values shared by reporting commands.
type ReportFlagValues struct {
	Platforms []string
	JSON      bool
}

// BindReportFlags attaches the platform filter and JSON toggle to the provided command.
func BindReportFlags(command *cobra.Command, supportedPlatforms []string) *ReportFlagValues {
	values := &ReportFlagValues{}
	if command == nil {
		return values
	}

	if len(supportedPlatforms) > 0 && command.Flags().Lookup(PlatformFlagName) == nil {
		command.Flags().StringSliceVar(&values.Platforms, PlatformFlagName, nil, FormatChoiceUsage("", supportedPlatforms, PlatformFlagUsage))
	}
	if command.Flags().Lookup(JSONFlagName) == nil {
		AddToggleFlag(command.Flags(), &values.JSON, JSONFlagName, "", false, JSONFlagUsage)
	}
	return values
}
