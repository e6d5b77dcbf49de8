package fix

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the fix browser
type KeyMap struct {
	Help      key.Binding
	Quit      key.Binding
	NextIssue key.Binding
	PrevIssue key.Binding
	ApplyFix  key.Binding
}

// DefaultKeyMap returns the default key map
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		NextIssue: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n", "next issue"),
		),
		PrevIssue: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p", "previous issue"),
		),
		ApplyFix: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "apply fix"),
		),
	}
}

// Keys is the keymap instance used by the model
var Keys = DefaultKeyMap()

// ShortHelp returns the bindings for the one-line help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit, k.NextIssue, k.PrevIssue, k.ApplyFix}
}

// FullHelp returns the bindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Help, k.Quit},
		{k.NextIssue, k.PrevIssue, k.ApplyFix},
	}
}
