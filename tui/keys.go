package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Sync    key.Binding
	Next    key.Binding
	Prev    key.Binding
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Back    key.Binding
	Config  key.Binding
	Email   key.Binding
	Send    key.Binding
	Save    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Sync:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sync now")),
		Next:    key.NewBinding(key.WithKeys("n", "right", "l"), key.WithHelp("n/→", "next page")),
		Prev:    key.NewBinding(key.WithKeys("p", "left", "h"), key.WithHelp("p/←", "prev page")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run detail")),
		Back:    key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Config:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "ltv field")),
		Email:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "email")),
		Send:    key.NewBinding(key.WithKeys("t", "enter"), key.WithHelp("t", "send test email")),
		Save:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save field")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sync, k.Next, k.Prev, k.Open, k.Config, k.Email, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Sync, k.Refresh},
		{k.Up, k.Down, k.Open},
		{k.Next, k.Prev},
		{k.Config, k.Email, k.Back},
		{k.Help, k.Quit},
	}
}
