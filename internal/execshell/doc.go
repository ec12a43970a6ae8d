// Package execshell provides structured helpers for invoking package-manager CLIs.
//
// ShellExecutor wraps a CommandRunner with lifecycle logging, command event
// observers, and an optional per-command timeout. OSCommandRunner performs the
// actual process execution and OSToolLocator answers whether a tool is present
// on PATH, so platform adapters can be exercised in tests with fakes.
package execshell
