package render

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the color set used by the terminal chat
type Palette struct {
	Name string

	Border lipgloss.Color
	// UserBubble and BotBubble color the bubble borders and sender labels
	UserBubble lipgloss.Color
	BotBubble  lipgloss.Color
	Accent     lipgloss.Color
	Error      lipgloss.Color

	Text lipgloss.Color
	Dim  lipgloss.Color
	Mute lipgloss.Color
}

var palettes = map[string]Palette{
	"tokyonight": {
		Name:       "tokyonight",
		Border:     lipgloss.Color("#414868"),
		UserBubble: lipgloss.Color("#7aa2f7"),
		BotBubble:  lipgloss.Color("#9ece6a"),
		Accent:     lipgloss.Color("#bb9af7"),
		Error:      lipgloss.Color("#f7768e"),
		Text:       lipgloss.Color("#c0caf5"),
		Dim:        lipgloss.Color("#565f89"),
		Mute:       lipgloss.Color("#3b4261"),
	},
	"catppuccin": {
		Name:       "catppuccin",
		Border:     lipgloss.Color("#45475a"),
		UserBubble: lipgloss.Color("#89b4fa"),
		BotBubble:  lipgloss.Color("#a6e3a1"),
		Accent:     lipgloss.Color("#cba6f7"),
		Error:      lipgloss.Color("#f38ba8"),
		Text:       lipgloss.Color("#cdd6f4"),
		Dim:        lipgloss.Color("#6c7086"),
		Mute:       lipgloss.Color("#45475a"),
	},
	"nord": {
		Name:       "nord",
		Border:     lipgloss.Color("#4c566a"),
		UserBubble: lipgloss.Color("#88c0d0"),
		BotBubble:  lipgloss.Color("#a3be8c"),
		Accent:     lipgloss.Color("#b48ead"),
		Error:      lipgloss.Color("#bf616a"),
		Text:       lipgloss.Color("#eceff4"),
		Dim:        lipgloss.Color("#7b88a1"),
		Mute:       lipgloss.Color("#4c566a"),
	},
}

// DefaultPalette is used when the configured name is unknown
const DefaultPalette = "tokyonight"

// PaletteByName returns the named palette, or the default one with ok=false
func PaletteByName(name string) (Palette, bool) {
	p, ok := palettes[name]
	if !ok {
		return palettes[DefaultPalette], false
	}
	return p, true
}

// PaletteNames lists the built-in palettes in alphabetical order
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
