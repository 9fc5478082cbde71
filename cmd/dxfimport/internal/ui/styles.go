// Package ui provides styled CLI output for the dxfimport command using
// lipgloss.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("#56C3F4")
	colorSuccess = lipgloss.Color("#5AF78E")
	colorWarning = lipgloss.Color("#F7DC6F")
	colorError   = lipgloss.Color("#FF6B9D")
	colorMuted   = lipgloss.Color("#6C7086")
	colorText    = lipgloss.Color("#CDD6F4")
)

var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2)

	styleVersion = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

	styleSection = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).MarginTop(1)

	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	styleValue   = lipgloss.NewStyle().Foreground(colorText).Bold(true)
)

// PrintHeader prints the command banner.
func PrintHeader(version string) {
	fmt.Println(styleHeader.Render("dxfimport") + " " + styleVersion.Render("v"+version))
}

// PrintSection prints a section title.
func PrintSection(title string) {
	fmt.Println(styleSection.Render(title))
}

// PrintDiagnostic prints a single diagnostic line, colored by severity.
func PrintDiagnostic(kind, message string) {
	var icon, rendered string
	switch kind {
	case "cycle":
		icon, rendered = "⚠", styleWarning.Render(kind)
	case "malformed_ast":
		icon, rendered = "✗", styleError.Render(kind)
	default:
		icon, rendered = "ℹ", styleMuted.Render(kind)
	}
	fmt.Printf("  %s %s %s\n", icon, rendered, message)
}

// PrintSuccess prints a one-line success banner with elapsed time.
func PrintSuccess(message string, elapsed time.Duration) {
	fmt.Printf("%s %s %s\n", styleSuccess.Render("✓"), message, styleMuted.Render("("+formatDuration(elapsed)+")"))
}

// PrintError prints an error line to stdout (the command itself handles
// exit-code propagation via cobra).
func PrintError(message string) {
	fmt.Println(styleError.Render("✗ Error: ") + message)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// Table renders a simple two-column aligned table.
func Table(rows [][2]string) string {
	maxWidth := 0
	for _, row := range rows {
		if len(row[0]) > maxWidth {
			maxWidth = len(row[0])
		}
	}
	var lines []string
	for _, row := range rows {
		label := styleMuted.Render(fmt.Sprintf("%-*s", maxWidth, row[0]))
		value := styleValue.Render(row[1])
		lines = append(lines, fmt.Sprintf("  %s  %s", label, value))
	}
	return strings.Join(lines, "\n")
}
