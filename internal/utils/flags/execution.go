// Package flags provides helpers for binding standardized flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
)

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Report what would be updated without invoking any package manager"
	// AllFlagName exposes the flag that skips per-project confirmation.
	AllFlagName = "all"
	// AllFlagUsage describes the all flag purpose.
	AllFlagUsage = "Update every project without prompting"
)

// ExecutionDefaults describes default flag values shared across mutating commands.
type ExecutionDefaults struct {
	DryRun bool
	All    bool
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	DryRun ExecutionFlagDefinition
	All    ExecutionFlagDefinition
}

// ExecutionFlagValues stores parsed execution flag values.
type ExecutionFlagValues struct {
	DryRun bool
	All    bool
}

// BindExecutionFlags attaches toggle-style execution flags to the provided command.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) *ExecutionFlagValues {
	values := &ExecutionFlagValues{DryRun: defaults.DryRun, All: defaults.All}
	if command == nil {
		return values
	}

	bindToggle(command, &values.DryRun, definitions.DryRun, defaults.DryRun)
	bindToggle(command, &values.All, definitions.All, defaults.All)
	return values
}

func bindToggle(command *cobra.Command, target *bool, definition ExecutionFlagDefinition, defaultValue bool) {
	if !definition.Enabled || len(definition.Name) == 0 {
		return
	}
	if command.Flags().Lookup(definition.Name) != nil {
		return
	}
	AddToggleFlag(command.Flags(), target, definition.Name, definition.Shorthand, defaultValue, definition.Usage)
}
