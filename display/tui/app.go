// Package tui is the interactive terminal dashboard: a bubbletea model that
// owns the dashboard controller, feeds it transport events, and renders its
// gauges and chart rasters with lipgloss.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/pulse-view/dashboard"
	"gitlab.com/tinyland/lab/pulse-view/display/chart"
	"gitlab.com/tinyland/lab/pulse-view/display/gauge"
	"gitlab.com/tinyland/lab/pulse-view/display/render"
	"gitlab.com/tinyland/lab/pulse-view/display/surface"
	"gitlab.com/tinyland/lab/pulse-view/display/widgets"
	"gitlab.com/tinyland/lab/pulse-view/internal/format"
	"gitlab.com/tinyland/lab/pulse-view/metrics"
	"gitlab.com/tinyland/lab/pulse-view/transport"
)

// Options configures a Model.
type Options struct {
	// Dashboard configures the controller the model owns.
	Dashboard dashboard.Config
	// Events is the stream of transport events. A nil channel leaves the
	// dashboard idle.
	Events <-chan transport.Event
	// Theme picks the palette and panel borders.
	Theme ThemePreset
	// Color enables raster charts. When false every chart renders as a
	// sparkline.
	Color bool
	// Oversample is the raster supersampling factor.
	Oversample int
	// Source labels the header, e.g. the server URL or "local".
	Source string
	// Logger receives controller failures. Nil discards them.
	Logger *slog.Logger
}

// Model is the top-level bubbletea model of the dashboard.
type Model struct {
	ctrl    *dashboard.Controller
	events  <-chan transport.Event
	rasters map[string]*surface.Raster
	frame   dashboard.Frame

	theme  ThemePreset
	styles styles
	help   help.Model
	zones  *zone.Manager

	layout   layout
	width    int
	height   int
	ready    bool
	focus    int
	expanded string

	color      bool
	source     string
	rateUnit   float64
	thresholds gauge.Thresholds
	lastUpdate time.Time
	now        func() time.Time
	closed     bool

	// resizePending is set when the layout changed while hidden. The
	// rasters keep their old size and charts until focus returns.
	resizePending bool
}

// NewModel returns a Model with empty windows. Charts get their size from
// the first tea.WindowSizeMsg.
func NewModel(opts Options) Model {
	if opts.Theme.Name == "" {
		opts.Theme = DefaultTheme
	}
	if opts.Dashboard.Logger == nil {
		opts.Dashboard.Logger = opts.Logger
	}
	dash := opts.Dashboard
	if dash.RateUnit <= 0 {
		dash.RateUnit = metrics.MiB
	}
	if dash.Thresholds == (gauge.Thresholds{}) {
		dash.Thresholds = gauge.DefaultThresholds()
	}

	bg := string(opts.Theme.Palette.Background)
	rasters := make(map[string]*surface.Raster, len(chartOrder))
	for _, name := range chartOrder {
		rasters[name] = surface.NewRaster(0, 0, opts.Oversample, bg)
	}

	m := Model{
		events:     opts.Events,
		rasters:    rasters,
		theme:      opts.Theme,
		styles:     newStyles(opts.Theme),
		help:       help.New(),
		zones:      zone.New(),
		color:      opts.Color,
		source:     opts.Source,
		rateUnit:   dash.RateUnit,
		thresholds: dash.Thresholds,
		now:        time.Now,
	}
	m.ctrl = dashboard.New(dash, dashboard.Targets{})
	m.frame = m.ctrl.Frame()
	return m
}

// Controller returns the dashboard controller the model drives.
func (m Model) Controller() *dashboard.Controller { return m.ctrl }

// eventMsg carries one transport event into Update.
type eventMsg transport.Event

// eventsClosedMsg is sent once the event channel is closed.
type eventsClosedMsg struct{}

// tickMsg refreshes relative times in the footer.
type tickMsg time.Time

// waitForEvent returns a tea.Cmd that blocks on the next transport event.
func waitForEvent(events <-chan transport.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model. It starts the event loop and the footer clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tick())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		ev := transport.Event(msg)
		m.frame = m.ctrl.Apply(ev)
		if ev.Kind == transport.EventSnapshot {
			m.lastUpdate = m.now()
		}
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		m.closed = true

	case tickMsg:
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.relayout()

	case tea.FocusMsg:
		m.frame = m.ctrl.OnVisibilityRestore()
		if m.resizePending {
			m.relayout()
		}

	case tea.BlurMsg:
		m.ctrl.OnVisibilityLost()

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			break
		}
		for i, name := range chartOrder {
			if z := m.zones.Get(name); z != nil && z.InBounds(msg) {
				m.focus = i
				m.toggleExpand(name)
				break
			}
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.zones.Close()
			return m, tea.Quit
		case key.Matches(msg, keys.NextChart):
			m.focus = (m.focus + 1) % len(chartOrder)
			if m.expanded != "" {
				m.setExpanded(chartOrder[m.focus])
			}
		case key.Matches(msg, keys.PrevChart):
			m.focus = (m.focus - 1 + len(chartOrder)) % len(chartOrder)
			if m.expanded != "" {
				m.setExpanded(chartOrder[m.focus])
			}
		case key.Matches(msg, keys.Expand):
			m.toggleExpand(chartOrder[m.focus])
		case key.Matches(msg, keys.Collapse):
			m.setExpanded("")
		case key.Matches(msg, keys.CPU):
			m.focus = 0
			m.toggleExpand(chartOrder[0])
		case key.Matches(msg, keys.Temp):
			m.focus = 1
			m.toggleExpand(chartOrder[1])
		case key.Matches(msg, keys.Network):
			m.focus = 2
			m.toggleExpand(chartOrder[2])
		case key.Matches(msg, keys.Redraw):
			m.frame = m.ctrl.OnViewportChange()
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.relayout()
		}
	}

	return m, nil
}

func (m *Model) toggleExpand(name string) {
	if m.expanded == name {
		m.setExpanded("")
		return
	}
	m.setExpanded(name)
}

func (m *Model) setExpanded(name string) {
	if m.expanded == name {
		return
	}
	m.expanded = name
	m.relayout()
}

// relayout recomputes panel sizes, resizes the rasters and redraws every
// chart through the controller. While hidden only the layout changes.
func (m *Model) relayout() {
	if !m.ready {
		return
	}
	height := m.height
	if m.help.ShowAll {
		height -= len(keys.FullHelp()[0]) - 1
	}
	m.layout = computeLayout(m.width, height, m.styles, m.expanded)
	if !m.ctrl.Visible() {
		m.resizePending = true
		return
	}
	m.resizePending = false

	var t dashboard.Targets
	for _, name := range chartOrder {
		box := m.layout.boxes[name]
		r := m.rasters[name]
		if !m.color || !box.drawable() {
			r.Resize(0, 0)
			continue
		}
		r.Resize(box.pixels())
		switch name {
		case dashboard.MetricCPU:
			t.CPU = r
		case dashboard.MetricTemperature:
			t.Temperature = r
		case dashboard.MetricNetwork:
			t.Network = r
		}
	}
	m.ctrl.SetTargets(t)
	m.frame = m.ctrl.OnViewportChange()
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	sections := []string{m.renderHeader(), m.renderGauges(), m.renderCharts(), m.renderFooter()}
	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderHeader() string {
	status := widgets.RenderConnection(m.frame.Connection, m.theme.Palette)
	if m.closed {
		status = m.styles.muted.Render("stream ended")
	}
	title := "pulse-view"
	if m.source != "" {
		title += " · " + m.source
	}
	title = format.TruncateWithEllipsis(title, max(m.width-lipgloss.Width(status)-8, 10))
	line := m.styles.title.Render(title)
	gap := max(m.width-lipgloss.Width(line)-lipgloss.Width(status), 1)
	return m.styles.header.Width(m.width).Render(line + strings.Repeat(" ", gap) + status)
}

func (m Model) renderGauges() string {
	g := m.frame.Gauges
	p := m.theme.Palette
	w := m.layout.gaugeWidth
	bars := []string{
		widgets.CircularBar("CPU ", g.CPU, w, p),
		widgets.CircularBar("MEM ", g.Memory, w, p),
		widgets.CircularBar("DISK", g.Disk, w, p),
		widgets.TemperatureBar("TEMP", g.Temperature, m.thresholds, w, p),
	}
	if m.layout.gaugeColumns < 2 {
		return lipgloss.JoinVertical(lipgloss.Left, bars...)
	}
	colWidth := m.width / 2
	left := lipgloss.NewStyle().Width(colWidth).Render(lipgloss.JoinVertical(lipgloss.Left, bars[0], bars[2]))
	right := lipgloss.JoinVertical(lipgloss.Left, bars[1], bars[3])
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderCharts() string {
	var panels []string
	for i, name := range chartOrder {
		box := m.layout.boxes[name]
		if box.cols == 0 || box.rows == 0 {
			continue
		}
		panels = append(panels, m.renderChartPanel(name, box, i == m.focus))
	}
	if m.expanded == "" && m.layout.size == LayoutWide {
		return lipgloss.JoinHorizontal(lipgloss.Top, panels...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

func (m Model) renderChartPanel(name string, box chartBox, focused bool) string {
	style := m.styles.panel
	if focused {
		style = m.styles.panelFocused
	}
	text := format.TruncateWithEllipsis(m.chartTitle(name), box.cols)
	if !m.theme.ShowBorders {
		text = sectionTitle(text, box.cols)
	}
	title := m.styles.panelTitle.Render(text)
	body := m.chartBody(name, box)
	panel := style.Width(box.cols).Height(box.rows + 1).Render(title + "\n" + body)
	return m.zones.Mark(name, panel)
}

func (m Model) chartTitle(name string) string {
	s := m.frame.Snapshot
	switch name {
	case dashboard.MetricCPU:
		if s == nil {
			return "CPU"
		}
		return "CPU " + format.Percent(s.CPUPercent)
	case dashboard.MetricTemperature:
		if s == nil {
			return "Temperature"
		}
		return fmt.Sprintf("Temperature %.1f°C", s.TemperatureCelsius)
	default:
		rates := m.ctrl.RateValues()
		if len(rates) == 0 {
			return "Network"
		}
		last := rates[len(rates)-1]
		return fmt.Sprintf("Network ↓%.2f ↑%.2f %s", last.Rx, last.Tx, rateUnitLabel(m.rateUnit))
	}
}

func (m Model) chartBody(name string, box chartBox) string {
	if err := m.frame.Errors[name]; err != nil && !errors.Is(err, chart.ErrSurfaceUnavailable) {
		return m.styles.errorText.Render(format.TruncateWithEllipsis(err.Error(), box.cols))
	}

	colors := m.ctrl.Colors()
	var values []float64
	switch name {
	case dashboard.MetricCPU:
		values = m.ctrl.CPUValues()
	case dashboard.MetricTemperature:
		values = m.ctrl.TemperatureValues()
	default:
		values = make([]float64, len(m.ctrl.RateValues()))
	}
	if len(values) < 2 {
		return m.styles.muted.Render("waiting for data...")
	}

	if m.color && box.drawable() {
		if out, err := render.HalfBlock(m.rasters[name].Image(), box.cols, box.rows); err == nil {
			return out
		}
	}

	switch name {
	case dashboard.MetricCPU:
		return widgets.RenderChartFallback(values, box.cols, lipgloss.Color(colors.CPU))
	case dashboard.MetricTemperature:
		return widgets.RenderChartFallback(values, box.cols, lipgloss.Color(colors.Temperature))
	default:
		rx, tx := metrics.SplitRates(m.ctrl.RateValues())
		if box.rows < 2 {
			return widgets.RenderChartFallback(rx, box.cols, lipgloss.Color(colors.Rx))
		}
		return widgets.RenderDualFallback(rx, tx, box.cols, lipgloss.Color(colors.Rx), lipgloss.Color(colors.Tx))
	}
}

func (m Model) renderFooter() string {
	info := m.styles.muted.Render("waiting for first snapshot")
	if s := m.frame.Snapshot; s != nil {
		parts := []string{
			fmt.Sprintf("MEM %s/%s", format.MiB(s.MemoryUsedBytes), format.MiB(s.MemoryTotalBytes)),
			fmt.Sprintf("DISK %s/%s", format.GiB(s.DiskUsedBytes), format.GiB(s.DiskTotalBytes)),
			fmt.Sprintf("NET ↓%s ↑%s", format.Bytes(s.NetworkRxBytes), format.Bytes(s.NetworkTxBytes)),
			"UP " + format.Uptime(s.UptimeSeconds),
			fmt.Sprintf("GOROUTINES %d", s.ConcurrencyCount),
			fmt.Sprintf("LOAD %.2f", s.LoadAverage),
		}
		if !m.lastUpdate.IsZero() {
			parts = append(parts, "updated "+format.FormatTimeSince(m.lastUpdate))
		}
		info = m.styles.footer.Render(strings.Join(parts, "  "))
	}
	return lipgloss.JoinVertical(lipgloss.Left, info, m.help.View(keys))
}

func rateUnitLabel(unit float64) string {
	switch unit {
	case 1:
		return "B/s"
	case 1 << 10:
		return "KiB/s"
	case metrics.MiB:
		return "MiB/s"
	case 1 << 30:
		return "GiB/s"
	default:
		return "units/s"
	}
}
