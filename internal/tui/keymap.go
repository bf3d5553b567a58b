package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding; ShortHelp and FullHelp show the ones that
// apply to the active screen.
type keyMap struct {
	screen Screen

	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Toggle  key.Binding
	Range   key.Binding
	Cancel  key.Binding
	Clear   key.Binding
	Submit  key.Binding
	Name    key.Binding
	Exclude key.Binding
	Include key.Binding
	Plan    key.Binding
	Switch  key.Binding
	Copy    key.Binding
	Reload  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev day"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle"),
		),
		Range: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "range"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
		Submit: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "submit"),
		),
		Name: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "name"),
		),
		Exclude: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "hide person"),
		),
		Include: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "show all"),
		),
		Plan: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "schedule"),
		),
		Switch: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch view"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy id"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	if k.screen == ScreenHeatmap {
		return []key.Binding{k.Toggle, k.Range, k.Exclude, k.Plan, k.Switch, k.Help, k.Quit}
	}
	return []key.Binding{k.Toggle, k.Range, k.Submit, k.Name, k.Switch, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	nav := []key.Binding{k.Up, k.Down, k.Left, k.Right}
	common := []key.Binding{k.Switch, k.Copy, k.Reload, k.Help, k.Quit}
	if k.screen == ScreenHeatmap {
		return [][]key.Binding{nav, {k.Toggle, k.Range, k.Cancel, k.Clear, k.Plan}, {k.Exclude, k.Include}, common}
	}
	return [][]key.Binding{nav, {k.Toggle, k.Range, k.Cancel, k.Clear}, {k.Submit, k.Name}, common}
}
