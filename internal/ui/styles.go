package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	colorSuccessConstant = lipgloss.Color("#10B981")
	colorErrorConstant   = lipgloss.Color("#EF4444")
	colorWarningConstant = lipgloss.Color("#F59E0B")
	colorMutedConstant   = lipgloss.Color("#6B7280")
	colorPrimaryConstant = lipgloss.Color("#7C3AED")
)

// Palette holds the styles used for report output on a particular writer.
type Palette struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// NewPalette builds styles bound to the color profile detected for writer.
// Writers that are not terminals render without escape sequences.
func NewPalette(writer io.Writer) Palette {
	renderer := lipgloss.NewRenderer(writer)
	return Palette{
		Title:   renderer.NewStyle().Bold(true).Foreground(colorPrimaryConstant),
		Success: renderer.NewStyle().Foreground(colorSuccessConstant),
		Warning: renderer.NewStyle().Foreground(colorWarningConstant),
		Error:   renderer.NewStyle().Bold(true).Foreground(colorErrorConstant),
		Muted:   renderer.NewStyle().Foreground(colorMutedConstant),
	}
}
