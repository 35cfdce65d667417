package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings for the dashboard.
// It implements the help.KeyMap interface for bubbles/help integration.
type keyMap struct {
	Quit      key.Binding
	NextChart key.Binding
	PrevChart key.Binding
	Expand    key.Binding
	Collapse  key.Binding
	CPU       key.Binding
	Temp      key.Binding
	Network   key.Binding
	Redraw    key.Binding
	Help      key.Binding
}

// ShortHelp returns the compact set of keybindings shown by default in the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.NextChart, k.Expand, k.Quit}
}

// FullHelp returns the expanded keybinding groups shown when help is toggled.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextChart, k.PrevChart, k.Expand, k.Collapse},
		{k.CPU, k.Temp, k.Network},
		{k.Redraw, k.Help, k.Quit},
	}
}

// keys holds the default key bindings used by the application.
var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	NextChart: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next chart")),
	PrevChart: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev chart")),
	Expand:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand")),
	Collapse:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "collapse")),
	CPU:       key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "cpu")),
	Temp:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "temperature")),
	Network:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "network")),
	Redraw:    key.NewBinding(key.WithKeys("r", "ctrl+l"), key.WithHelp("r", "redraw")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// KeyBinding describes one dashboard key for documentation.
type KeyBinding struct {
	Keys        []string
	Description string
}

// KeyBindings lists the dashboard keys in help order.
func KeyBindings() []KeyBinding {
	var out []KeyBinding
	for _, group := range keys.FullHelp() {
		for _, b := range group {
			out = append(out, KeyBinding{Keys: b.Keys(), Description: b.Help().Desc})
		}
	}
	return out
}
