// Package tui provides the terminal chat for geminichat.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/render"
)

// Colors of the active palette
var (
	colorBorder lipgloss.Color
	colorUser   lipgloss.Color
	colorBot    lipgloss.Color
	colorAccent lipgloss.Color
	colorError  lipgloss.Color
	colorText   lipgloss.Color
	colorDim    lipgloss.Color
	colorMute   lipgloss.Color
)

// Styles rebuilt by ApplyPalette
var (
	headerStyle       lipgloss.Style
	titleStyle        lipgloss.Style
	subtitleStyle     lipgloss.Style
	hintStyle         lipgloss.Style
	messagesAreaStyle lipgloss.Style

	userBubbleStyle lipgloss.Style
	userLabelStyle  lipgloss.Style
	botBubbleStyle  lipgloss.Style
	botLabelStyle   lipgloss.Style
	failedTextStyle lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style
	noticeStyle     lipgloss.Style
	errorStyle      lipgloss.Style

	welcomeTitleStyle lipgloss.Style
	welcomeIconStyle  lipgloss.Style
)

// Gradient used by the typing indicator
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"),
	lipgloss.Color("#feca57"),
	lipgloss.Color("#48dbfb"),
	lipgloss.Color("#ff9ff3"),
	lipgloss.Color("#54a0ff"),
	lipgloss.Color("#5f27cd"),
	lipgloss.Color("#00d2d3"),
	lipgloss.Color("#1dd1a1"),
}

func init() {
	p, _ := render.PaletteByName(render.DefaultPalette)
	ApplyPalette(p)
}

// ApplyPalette rebuilds every style from p
func ApplyPalette(p render.Palette) {
	colorBorder = p.Border
	colorUser = p.UserBubble
	colorBot = p.BotBubble
	colorAccent = p.Accent
	colorError = p.Error
	colorText = p.Text
	colorDim = p.Dim
	colorMute = p.Mute

	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2).
		MarginBottom(1)

	titleStyle = lipgloss.NewStyle().Foreground(colorBot).Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorDim)
	hintStyle = lipgloss.NewStyle().Foreground(colorMute).Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1)

	// user bubbles sit on the right, bot bubbles on the left
	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorUser).
		Padding(0, 1).
		MarginLeft(4)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorUser).
		Bold(true).
		MarginLeft(4)

	botBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBot).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(4)

	botLabelStyle = lipgloss.NewStyle().Foreground(colorBot).Bold(true)
	failedTextStyle = lipgloss.NewStyle().Foreground(colorError).Italic(true)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		MarginTop(1)

	inputLabelStyle = lipgloss.NewStyle().Foreground(colorUser).Bold(true).MarginRight(1)

	statusBarStyle = lipgloss.NewStyle().Foreground(colorMute).MarginTop(1)
	statusKeyStyle = lipgloss.NewStyle().Foreground(colorDim).Bold(true)
	statusDescStyle = lipgloss.NewStyle().Foreground(colorMute)
	noticeStyle = lipgloss.NewStyle().Foreground(colorAccent)
	errorStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)

	welcomeTitleStyle = lipgloss.NewStyle().Foreground(colorBot).Bold(true).MarginBottom(1)
	welcomeIconStyle = lipgloss.NewStyle().Foreground(colorAccent)
}

// FormatError returns a styled error with the details carried by typed errors.
// Used for setup failures; failed turns only ever show the failure text.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}
	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}
	if msg := apierrors.GetRemoteMessage(err); msg != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Message: %s", msg)))
	}

	if hint := errorHint(err); hint != "" {
		sb.WriteString(dimStyle.Render("\n  Hint: " + hint))
	}
	return sb.String()
}

func errorHint(err error) string {
	switch apierrors.Classify(err) {
	case apierrors.KindRemoteError:
		switch apierrors.GetHTTPStatus(err) {
		case 400, 401, 403:
			return "Check that GEMINI_API_KEY holds a valid key"
		case 429:
			return "Quota exhausted. Try again later or use a different model"
		}
	case apierrors.KindHTTPStatus:
		if apierrors.GetHTTPStatus(err) == 404 {
			return "Unknown model. Run 'geminichat config' to check the model name"
		}
	case apierrors.KindTransport:
		if apierrors.IsTimeoutError(err) {
			return "Request timed out. Raise timeout_seconds or try again"
		}
		return "Check your internet connection and try again"
	}
	return ""
}
