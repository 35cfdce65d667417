package tui

import (
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/pulse-view/display/color"
)

// ThemePreset is a named palette plus layout flags, selected by the
// display.theme config key.
type ThemePreset struct {
	Name        string
	Description string
	Palette     color.Palette
	ShowBorders bool
	CompactMode bool
}

// Predefined theme presets.
var (
	// DefaultTheme is the dark dashboard theme.
	DefaultTheme = ThemePreset{
		Name:        "default",
		Description: "Dark dashboard theme",
		Palette:     color.DefaultPalette(),
		ShowBorders: true,
	}

	// MinimalTheme drops panel borders and padding.
	MinimalTheme = ThemePreset{
		Name:        "minimal",
		Description: "Borderless compact theme",
		Palette: color.Palette{
			OK:         lipgloss.Color("#4ADE80"),
			Warn:       lipgloss.Color("#FCD34D"),
			Critical:   lipgloss.Color("#F87171"),
			Text:       lipgloss.Color("#E5E7EB"),
			Muted:      lipgloss.Color("#9CA3AF"),
			Border:     lipgloss.Color("#374151"),
			Accent:     lipgloss.Color("#8B5CF6"),
			Background: lipgloss.Color("#0F172A"),
		},
		CompactMode: true,
	}

	// HighContrastTheme uses saturated level colors on black.
	HighContrastTheme = ThemePreset{
		Name:        "high-contrast",
		Description: "Saturated colors on black",
		Palette: color.Palette{
			OK:         lipgloss.Color("#00FF00"),
			Warn:       lipgloss.Color("#FFFF00"),
			Critical:   lipgloss.Color("#FF0000"),
			Text:       lipgloss.Color("#FFFFFF"),
			Muted:      lipgloss.Color("#BBBBBB"),
			Border:     lipgloss.Color("#FFFFFF"),
			Accent:     lipgloss.Color("#00FFFF"),
			Background: lipgloss.Color("#000000"),
		},
		ShowBorders: true,
	}
)

var allPresets = []ThemePreset{DefaultTheme, MinimalTheme, HighContrastTheme}

// GetThemePreset returns the theme preset matching the given name.
// Unknown names return DefaultTheme.
func GetThemePreset(name string) ThemePreset {
	for _, p := range allPresets {
		if p.Name == name {
			return p
		}
	}
	return DefaultTheme
}

// AllThemePresets returns all available theme presets.
func AllThemePresets() []ThemePreset {
	out := make([]ThemePreset, len(allPresets))
	copy(out, allPresets)
	return out
}

// styles are the lipgloss styles derived from a theme.
type styles struct {
	title        lipgloss.Style
	header       lipgloss.Style
	panel        lipgloss.Style
	panelFocused lipgloss.Style
	panelTitle   lipgloss.Style
	muted        lipgloss.Style
	footer       lipgloss.Style
	errorText    lipgloss.Style
}

func newStyles(preset ThemePreset) styles {
	p := preset.Palette
	s := styles{
		title:      lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		panelTitle: lipgloss.NewStyle().Bold(true).Foreground(p.Text),
		muted:      lipgloss.NewStyle().Foreground(p.Muted),
		footer:     lipgloss.NewStyle().Foreground(p.Muted),
		errorText:  lipgloss.NewStyle().Foreground(p.Critical),
	}

	if preset.ShowBorders {
		s.header = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(p.Border)
		s.panel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Border)
		s.panelFocused = s.panel.BorderForeground(p.Accent)
	} else {
		s.header = lipgloss.NewStyle()
		s.panel = lipgloss.NewStyle()
		s.panelFocused = lipgloss.NewStyle()
	}
	return s
}

// frame reports the rows and columns a panel style adds around its body.
func (s styles) frame() (w, h int) {
	return s.panel.GetHorizontalFrameSize(), s.panel.GetVerticalFrameSize()
}

// headerHeight is the title line plus the header border.
func (s styles) headerHeight() int {
	return 1 + s.header.GetVerticalFrameSize()
}
