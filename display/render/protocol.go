// Package render turns chart rasters into terminal output. Half-block text
// works everywhere and composes with lipgloss layouts; the Kitty and iTerm2
// inline image protocols give full resolution for one-shot output.
package render

import (
	"os"
	"strings"
)

// Protocol identifies a terminal image encoding.
type Protocol int

const (
	// ProtocolUnicode uses upper half-block characters with 24-bit color.
	ProtocolUnicode Protocol = iota
	// ProtocolKitty uses the Kitty graphics protocol (Kitty, Ghostty, WezTerm).
	ProtocolKitty
	// ProtocolITerm2 uses iTerm2 inline images.
	ProtocolITerm2
)

// String returns the protocol name.
func (p Protocol) String() string {
	switch p {
	case ProtocolUnicode:
		return "unicode"
	case ProtocolKitty:
		return "kitty"
	case ProtocolITerm2:
		return "iterm2"
	default:
		return "unknown"
	}
}

// ParseProtocol maps a name to a Protocol. "auto" and unknown names return
// Detect().
func ParseProtocol(name string) Protocol {
	switch strings.ToLower(name) {
	case "unicode", "halfblock":
		return ProtocolUnicode
	case "kitty":
		return ProtocolKitty
	case "iterm2":
		return ProtocolITerm2
	default:
		return Detect()
	}
}

// Detect inspects the environment for an inline image protocol. SSH and
// tmux sessions fall back to half-blocks, which survive any transport.
func Detect() Protocol {
	p := detectTerminal()
	if p != ProtocolUnicode && (IsSSHSession() || IsTmuxSession()) {
		return ProtocolUnicode
	}
	return p
}

func detectTerminal() Protocol {
	switch strings.ToLower(os.Getenv("TERM_PROGRAM")) {
	case "ghostty", "kitty", "wezterm":
		return ProtocolKitty
	case "iterm.app":
		return ProtocolITerm2
	}
	if os.Getenv("TERM") == "xterm-kitty" || os.Getenv("KITTY_WINDOW_ID") != "" {
		return ProtocolKitty
	}
	if os.Getenv("ITERM_SESSION_ID") != "" || os.Getenv("LC_TERMINAL") == "iTerm2" {
		return ProtocolITerm2
	}
	if os.Getenv("WEZTERM_EXECUTABLE") != "" {
		return ProtocolKitty
	}
	return ProtocolUnicode
}

// IsSSHSession reports whether we're running inside an SSH session.
func IsSSHSession() bool {
	return os.Getenv("SSH_CLIENT") != "" || os.Getenv("SSH_CONNECTION") != "" ||
		os.Getenv("SSH_TTY") != ""
}

// IsTmuxSession reports whether we're running inside tmux.
func IsTmuxSession() bool {
	return os.Getenv("TMUX") != ""
}
