// Package ui provides helpers for formatting human-readable console output.
//
// ConsoleCommandEventLogger turns package manager invocations into progress
// lines, while Palette styles report markers for terminals and leaves
// redirected output plain.
package ui
