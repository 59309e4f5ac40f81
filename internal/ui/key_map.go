package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	yes      key.Binding
	no       key.Binding
	create   key.Binding
	join     key.Binding
	add      key.Binding
	moveUp   key.Binding
	moveDown key.Binding
	remove   key.Binding
	leave    key.Binding
	export   key.Binding
	toggle   key.Binding
	invite   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "accept")),
		no:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "ignore")),
		create:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "create room")),
		join:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "join by id")),
		add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add track")),
		moveUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		moveDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		remove:   key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete track")),
		leave:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "leave")),
		export:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export to mtv")),
		toggle:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "public/private")),
		invite:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "invite-only edits")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.create, k.join, k.yes, k.no},
		{k.add, k.moveUp, k.moveDown, k.remove},
		{k.leave, k.export, k.quit},
	}
}
