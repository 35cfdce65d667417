// Package manpage generates roff-formatted man pages for pulse-view and
// pulse-agent.
//
// The keybinding section is generated from the dashboard key map, so the
// page stays in sync with the code.
//
// Usage:
//
//	pulse-view -man | man -l -
//	pulse-view -man-dir ~/.local/share/man
package manpage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/pulse-view/display/tui"
)

type option struct {
	flag string
	arg  string
	desc string
}

// Generate produces the pulse-view(1) page. The version, commit and date
// come from the build-time linker variables.
func Generate(version, commit, date string) string {
	var b strings.Builder

	writeHeader(&b, "PULSE-VIEW", "pulse-view", version)
	b.WriteString(`.SH NAME
pulse\-view \- live terminal dashboard for a system metrics stream
.SH SYNOPSIS
.B pulse\-view
[\fIOPTIONS\fR]
.SH DESCRIPTION
.B pulse\-view
connects to a
.BR pulse\-agent (1)
websocket, keeps a sliding window of recent snapshots, and renders CPU,
memory, disk and temperature gauges plus CPU, temperature and network
charts.
.PP
The tool operates in several modes:
.IP \(bu 2
.B TUI mode
(default): an interactive Bubbletea dashboard. Charts are rasterized and
drawn with half-block characters.
.IP \(bu 2
.B Export mode
(\fB\-export\fR \fIDIR\fR): headless; rewrites one PNG per chart and a
frame.json after every snapshot.
.IP \(bu 2
.B One-shot mode
(\fB\-once\fR): collects a few snapshots, prints one frame to stdout and
exits. Kitty and iTerm2 terminals get inline images.
`)
	writeOptions(&b, []option{
		{"config", "PATH", "Path to the YAML configuration file. Default: ~/.config/pulse\\-view/config.yaml."},
		{"url", "URL", "Websocket endpoint. Overrides the config file and \\fBPULSE_URL\\fR."},
		{"local", "", "Sample this host directly instead of connecting to an agent."},
		{"export", "DIR", "Write chart PNGs and frame.json to DIR instead of starting the TUI."},
		{"once", "", "Print one rendered frame and exit."},
		{"samples", "N", "Snapshots to collect before \\fB\\-once\\fR prints. Default: 3."},
		{"verbose", "", "Enable debug logging."},
		{"version", "", "Print the version, commit hash and build date, then exit."},
		{"man", "", "Print this man page in roff format."},
		{"man\\-dir", "DIR", "Write the pulse\\-view and pulse\\-agent pages to DIR/man1."},
	})
	writeKeybindings(&b)
	writeConfiguration(&b)
	b.WriteString(`.SH FILES
.TP
.I ~/.config/pulse\-view/config.yaml
Configuration file.
.TP
.I ~/.local/state/pulse\-view/pulse\-view.log
TUI log file. The TUI owns the terminal, so logs never go to stderr.
.TP
.I DIR/cpu.png, DIR/temperature.png, DIR/network.png, DIR/frame.json
Files maintained by export mode. Each is replaced atomically.
.SH EXAMPLES
.TP
.B pulse\-view \-url ws://pi.local:8080/ws
Watch a remote agent.
.TP
.B pulse\-view \-local \-once \-samples 5
Print one frame of this host after five samples.
.TP
.B pulse\-view \-export /var/lib/pulse
Keep chart images current for a status page.
`)
	writeEnvironment(&b)
	b.WriteString(`.SH EXIT STATUS
.TP
.B 0
Normal exit.
.TP
.B 1
Invalid configuration, or the stream ended before \fB\-once\fR could print.
.SH SEE ALSO
.BR pulse\-agent (1)
`)
	writeFooter(&b, version, commit, date)
	return b.String()
}

// GenerateAgent produces the pulse-agent(1) page.
func GenerateAgent(version, commit, date string) string {
	var b strings.Builder

	writeHeader(&b, "PULSE-AGENT", "pulse-agent", version)
	b.WriteString(`.SH NAME
pulse\-agent \- stream host metrics to pulse\-view over a websocket
.SH SYNOPSIS
.B pulse\-agent
[\fIOPTIONS\fR]
.SH DESCRIPTION
.B pulse\-agent
samples CPU, memory, disk, temperature, network counters, uptime and load
once per interval and broadcasts each snapshot as JSON to every client of
\fB/ws\fR. A new client receives the latest snapshot immediately.
.SH ENDPOINTS
.TP
.B GET /ws
Snapshot stream.
.TP
.B GET /api/stats
The latest snapshot.
.TP
.B GET /health
Liveness and client count.
`)
	writeOptions(&b, []option{
		{"config", "PATH", "Path to the YAML configuration file."},
		{"listen", "ADDR", "Listen address or bare port. Overrides \\fBPORT\\fR."},
		{"verbose", "", "Enable debug logging."},
		{"version", "", "Print the version and exit."},
	})
	writeEnvironment(&b)
	b.WriteString(`.SH SEE ALSO
.BR pulse\-view (1)
`)
	writeFooter(&b, version, commit, date)
	return b.String()
}

// WriteAll writes both pages to dir/man1 and returns how many were written.
func WriteAll(dir, version, commit, date string) (int, error) {
	man1 := filepath.Join(dir, "man1")
	if err := os.MkdirAll(man1, 0o755); err != nil {
		return 0, fmt.Errorf("create %s: %w", man1, err)
	}
	pages := map[string]string{
		"pulse-view.1":  Generate(version, commit, date),
		"pulse-agent.1": GenerateAgent(version, commit, date),
	}
	n := 0
	for name, page := range pages {
		if err := os.WriteFile(filepath.Join(man1, name), []byte(page), 0o644); err != nil {
			return n, fmt.Errorf("write %s: %w", name, err)
		}
		n++
	}
	return n, nil
}

// roffEscape escapes special roff characters in a string.
func roffEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `-`, `\-`)
	s = strings.ReplaceAll(s, `.`, `\&.`)
	return s
}

func writeHeader(b *strings.Builder, title, name, version string) {
	month := time.Now().Format("January 2006")
	fmt.Fprintf(b, ".TH %s 1 \"%s\" \"%s %s\" \"User Commands\"\n", title, month, name, version)
}

func writeOptions(b *strings.Builder, opts []option) {
	b.WriteString(".SH OPTIONS\n")
	for _, o := range opts {
		b.WriteString(".TP\n")
		if o.arg != "" {
			fmt.Fprintf(b, ".BR \\-%s \" \\fI%s\\fR\"\n", o.flag, o.arg)
		} else {
			fmt.Fprintf(b, ".B \\-%s\n", o.flag)
		}
		b.WriteString(o.desc + "\n")
	}
}

func writeKeybindings(b *strings.Builder) {
	b.WriteString(`.SH KEYBINDINGS
Active in TUI mode. Clicking a chart expands it.
`)
	for _, k := range tui.KeyBindings() {
		names := make([]string, len(k.Keys))
		for i, key := range k.Keys {
			if key == " " {
				key = "space"
			}
			names[i] = roffEscape(key)
		}
		fmt.Fprintf(b, ".TP\n.B %s\n%s\n", strings.Join(names, ", "), roffEscape(k.Description))
	}
}

func writeConfiguration(b *strings.Builder) {
	b.WriteString(`.SH CONFIGURATION
The configuration file is YAML. Every field is optional; missing fields
keep their defaults.
.PP
.nf
.RS
server:
  url: ws://localhost:8080/ws
  reconnect_delay: 3s
  pong_wait: 60s
agent:
  listen: ":8080"
  interval: 1s
  disk_path: /
dashboard:
  capacity: 60
  rate_unit_bytes: 1048576
  stale_after: 10s
  thresholds:
    warn: 60
    critical: 80
display:
  theme: default        # default, minimal, high-contrast
  color: auto           # auto, always, never
  oversample: 2
  export_width: 600
  export_height: 200
log:
  level: info
  file: ~/.local/state/pulse\-view/pulse\-view.log
.RE
.fi
`)
}

func writeEnvironment(b *strings.Builder) {
	b.WriteString(`.SH ENVIRONMENT
Variables are also read from a \fI.env\fR file in the working directory.
.TP
.B PULSE_URL
Websocket endpoint.
.TP
.B PULSE_LOG_LEVEL
Log level: debug, info, warn or error.
.TP
.B PULSE_LOG_FILE
Log file path.
.TP
.B PORT
pulse\-agent listen port.
.TP
.B NO_COLOR
Disable color output when color is auto.
`)
}

func writeFooter(b *strings.Builder, version, commit, date string) {
	fmt.Fprintf(b, ".SH VERSION\n%s (commit %s, built %s)\n", roffEscape(version), roffEscape(commit), roffEscape(date))
}
