package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/geminichat/internal/tui"
)

// Colors (Tokyo Night)
var (
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorError    = lipgloss.Color("#f7768e")
	colorWarning  = lipgloss.Color("#e0af68")
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#414868")
	colorBorder   = lipgloss.Color("#3b4261")
)

// Gradient for the spinner
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#7aa2f7"),
	lipgloss.Color("#7dcfff"),
	lipgloss.Color("#bb9af7"),
	lipgloss.Color("#9ece6a"),
}

var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder).
				Padding(0, 1)

	failureStyle = lipgloss.NewStyle().Foreground(colorError).Italic(true)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	keyStyle     = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(colorTextDim)
)

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}
	return tui.FormatError(fmt.Errorf("%s: %w", context, err))
}
