package widgets

import (
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/pulse-view/display/color"
	"gitlab.com/tinyland/lab/pulse-view/metrics"
)

// StatusLevel represents the severity or state of a status indicator.
type StatusLevel int

const (
	// StatusOK indicates a healthy or successful state.
	StatusOK StatusLevel = iota
	// StatusWarning indicates a degraded or warning state.
	StatusWarning
	// StatusCritical indicates an error or critical failure.
	StatusCritical
	// StatusPending indicates a pending or in-progress state.
	StatusPending
)

// StatusConfig holds the configuration for rendering a status indicator.
type StatusConfig struct {
	Level    StatusLevel
	Text     string
	ShowIcon bool
	Palette  color.Palette
}

var statusIcons = map[StatusLevel]string{
	StatusOK:       "●",
	StatusWarning:  "●",
	StatusCritical: "●",
	StatusPending:  "◌",
}

func (l StatusLevel) color(p color.Palette) lipgloss.Color {
	switch l {
	case StatusOK:
		return p.OK
	case StatusWarning:
		return p.Warn
	case StatusCritical:
		return p.Critical
	default:
		return p.Accent
	}
}

// RenderStatus renders a status indicator with an optional colored icon and text.
func RenderStatus(cfg StatusConfig) string {
	style := lipgloss.NewStyle().Foreground(cfg.Level.color(cfg.Palette))

	if cfg.ShowIcon {
		coloredIcon := style.Render(statusIcons[cfg.Level])
		if cfg.Text == "" {
			return coloredIcon
		}
		return coloredIcon + " " + cfg.Text
	}

	return style.Render(cfg.Text)
}

// StatusLevelFromState maps a connection state to an indicator level.
func StatusLevelFromState(s metrics.ConnectionState) StatusLevel {
	switch s {
	case metrics.StateConnected:
		return StatusOK
	case metrics.StateDisconnected:
		return StatusWarning
	case metrics.StateError:
		return StatusCritical
	default:
		return StatusPending
	}
}

// RenderConnection renders the connection indicator: a colored dot and the
// state's label.
func RenderConnection(s metrics.ConnectionState, p color.Palette) string {
	return RenderStatus(StatusConfig{
		Level:    StatusLevelFromState(s),
		Text:     s.Label(),
		ShowIcon: true,
		Palette:  p,
	})
}
