package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings the app handles before routing keys to the
// focused pane. Pane-level navigation lives in the panes.
type KeyMap struct {
	Quit    key.Binding
	Focus   key.Binding
	OpenURL key.Binding
	Back    key.Binding
}

var Keys = KeyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Focus:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch pane")),
	OpenURL: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "show url")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back to stories")),
}
