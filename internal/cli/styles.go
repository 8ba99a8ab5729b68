// Package cli renders classification verdicts, compliance reports and
// ingestion progress for the terminal.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/creditrag/internal/model"
)

// Palette. Green means nothing to dispute, amber means a letter or review is
// warranted, red marks violations and failures.
var (
	AccentColor  = lipgloss.Color("#7AA2F7")
	ClearColor   = lipgloss.Color("#9ECE6A")
	DisputeColor = lipgloss.Color("#E0AF68")
	AlertColor   = lipgloss.Color("#F7768E")
	NoteColor    = lipgloss.Color("#7DCFFF")
	MutedColor   = lipgloss.Color("#737AA2")
)

var (
	// TitleStyle heads report boxes.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)

	SuccessStyle = lipgloss.NewStyle().Foreground(ClearColor)
	WarningStyle = lipgloss.NewStyle().Foreground(DisputeColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(AlertColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(NoteColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(MutedColor)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// BoxStyle frames a single report.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(MutedColor).
			Padding(0, 1)

	// TableCellStyle pads columns in record listings.
	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)
)

const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "!"
	InfoIcon    = "·"
	ScalesIcon  = "⚖"
	FolderIcon  = "▸"
)

// FormatSuccess renders a completed step.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError renders a failure.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning renders something the user should act on.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo renders a neutral status line.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// SeverityStyle colors a violation by its rule severity.
func SeverityStyle(s model.Severity) lipgloss.Style {
	switch s {
	case model.SeverityHigh:
		return ErrorStyle.Bold(true)
	case model.SeverityMedium:
		return WarningStyle
	default:
		return InfoStyle
	}
}

// RenderBox frames content under a title.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), "", content))
}
