// Package color decides whether output is colored and holds the palette
// shared by lipgloss widgets and raster charts.
//
// It implements the NO_COLOR convention (https://no-color.org/) and
// pipe/redirect detection. When color is disabled, lipgloss is set to the
// Ascii profile so every styled render produces plain text.
package color

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"gitlab.com/tinyland/lab/pulse-view/display/gauge"
)

// Color modes accepted by Apply.
const (
	ModeAuto   = "auto"
	ModeAlways = "always"
	ModeNever  = "never"
)

// ShouldDisableColor returns true if color output should be suppressed:
// NO_COLOR is set (any value), or stdout is not a terminal.
func ShouldDisableColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return true
	}
	return false
}

// Enabled resolves a mode to a yes/no answer. Unknown modes behave like auto.
func Enabled(mode string) bool {
	switch mode {
	case ModeAlways:
		return true
	case ModeNever:
		return false
	default:
		return !ShouldDisableColor()
	}
}

// Apply configures the global lipgloss renderer for mode and returns
// whether color is enabled. "always" forces a true-color profile even when
// stdout is piped.
func Apply(mode string) bool {
	switch {
	case mode == ModeAlways:
		lipgloss.SetColorProfile(termenv.TrueColor)
		return true
	case Enabled(mode):
		return true
	default:
		lipgloss.SetColorProfile(termenv.Ascii)
		return false
	}
}

// ForceDisable sets the lipgloss color profile to Ascii. Useful in tests.
func ForceDisable() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// StripANSI removes all ANSI escape sequences from a string.
func StripANSI(s string) string {
	var result []byte
	inEscape := false
	for i := 0; i < len(s); i++ {
		if inEscape {
			if (s[i] >= 'a' && s[i] <= 'z') || (s[i] >= 'A' && s[i] <= 'Z') || s[i] == '~' {
				inEscape = false
			}
			continue
		}
		if s[i] == '\x1b' {
			inEscape = true
			continue
		}
		result = append(result, s[i])
	}
	return string(result)
}

// Palette is the set of colors the dashboard draws with.
type Palette struct {
	OK       lipgloss.Color
	Warn     lipgloss.Color
	Critical lipgloss.Color

	Text       lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
}

// DefaultPalette returns the stock dashboard colors.
func DefaultPalette() Palette {
	return Palette{
		OK:         lipgloss.Color("#51cf66"),
		Warn:       lipgloss.Color("#ffd43b"),
		Critical:   lipgloss.Color("#ff6b6b"),
		Text:       lipgloss.Color("#E2E8F0"),
		Muted:      lipgloss.Color("#6B7280"),
		Border:     lipgloss.Color("#3F3F5A"),
		Accent:     lipgloss.Color("#667eea"),
		Background: lipgloss.Color("#1E1B2E"),
	}
}

// ForLevel returns the color of a gauge level.
func (p Palette) ForLevel(l gauge.Level) lipgloss.Color {
	switch l {
	case gauge.LevelCritical:
		return p.Critical
	case gauge.LevelWarn:
		return p.Warn
	default:
		return p.OK
	}
}
