// Package console provides styled user-facing terminal output: message
// formatting helpers and a progress spinner. All styling degrades to plain
// text when stderr is not a terminal; the spinner is additionally disabled
// when accessibility mode is requested.
package console

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// IsTerminal reports whether stderr is attached to a character device.
func IsTerminal() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// IsAccessibleMode reports whether the ACCESSIBLE environment variable
// requests screen-reader friendly output (no spinners, no animations).
func IsAccessibleMode() bool {
	return os.Getenv("ACCESSIBLE") != ""
}

// styled applies a style only when stderr is a terminal.
func styled(style lipgloss.Style, message string) string {
	if !IsTerminal() {
		return message
	}
	return style.Render(message)
}

// FormatErrorMessage formats an error message with an ✗ prefix.
func FormatErrorMessage(message string) string {
	return styled(errorStyle, "✗ "+message)
}

// FormatWarningMessage formats a warning message with a ! prefix.
func FormatWarningMessage(message string) string {
	return styled(warningStyle, "! "+message)
}

// FormatSuccessMessage formats a success message with a ✓ prefix.
func FormatSuccessMessage(message string) string {
	return styled(successStyle, "✓ "+message)
}

// FormatInfoMessage formats an informational message with an i prefix.
func FormatInfoMessage(message string) string {
	return styled(infoStyle, "i "+message)
}

// FormatDimMessage formats secondary detail text.
func FormatDimMessage(message string) string {
	return styled(dimStyle, message)
}

// FormatLocationMessage formats a file:line location suffix for lint output.
func FormatLocationMessage(file string, line int) string {
	return FormatDimMessage(fmt.Sprintf("(%s:%d)", file, line))
}
