package editor

import "github.com/charmbracelet/bubbles/v2/key"

// KeyMap binds editor and completion commands to keys.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Left     key.Binding
	Right    key.Binding
	Home     key.Binding
	End      key.Binding

	Return     key.Binding
	Tab        key.Binding
	Escape     key.Binding
	Backspace  key.Binding
	Delete     key.Binding
	DeleteWord key.Binding

	Invoke           key.Binding
	CommitUnique     key.Binding
	ToggleSuggestion key.Binding
	Help             key.Binding
	Quit             key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Left:  key.NewBinding(key.WithKeys("left", "ctrl+b")),
		Right: key.NewBinding(key.WithKeys("right", "ctrl+f")),
		Home:  key.NewBinding(key.WithKeys("home", "ctrl+a")),
		End:   key.NewBinding(key.WithKeys("end", "ctrl+e")),

		Return: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "commit"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "commit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss"),
		),
		Backspace:  key.NewBinding(key.WithKeys("backspace")),
		Delete:     key.NewBinding(key.WithKeys("delete", "ctrl+d")),
		DeleteWord: key.NewBinding(key.WithKeys("ctrl+w", "alt+backspace")),

		Invoke: key.NewBinding(
			key.WithKeys("ctrl+space", "ctrl+@", "ctrl+n"),
			key.WithHelp("ctrl+space", "complete"),
		),
		CommitUnique: key.NewBinding(
			key.WithKeys("alt+space", "ctrl+k"),
			key.WithHelp("ctrl+k", "complete word"),
		),
		ToggleSuggestion: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "suggestion mode"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Invoke, k.Tab, k.Escape, k.ToggleSuggestion, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Return, k.Tab, k.Escape},
		{k.Invoke, k.CommitUnique, k.ToggleSuggestion},
		{k.Help, k.Quit},
	}
}
