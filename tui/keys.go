package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the key bindings of the authenticated pages
type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Enter       key.Binding
	Close       key.Binding
	Tab         key.Binding
	Refresh     key.Binding
	Search      key.Binding
	FriendsOnly key.Binding
	AddFriend   key.Binding
	Unfriend    key.Binding
	Message     key.Binding
	Session     key.Binding
	Logout      key.Binding
	Quit        key.Binding
}

// ShortHelp returns the bindings for the help bar
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Close, k.Tab, k.Search, k.Refresh, k.Quit}
}

// FullHelp returns the bindings grouped for expanded help
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Close},
		{k.Tab, k.Search, k.FriendsOnly, k.Refresh},
		{k.AddFriend, k.Unfriend, k.Message, k.Session},
		{k.Logout, k.Quit},
	}
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
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch page"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		FriendsOnly: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "friends only"),
		),
		AddFriend: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add friend"),
		),
		Unfriend: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remove friend"),
		),
		Message: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "message"),
		),
		Session: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "current session"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// inputKeyMap holds the key bindings while typing a search or message
type inputKeyMap struct {
	Submit key.Binding
	Cancel key.Binding
}

// ShortHelp returns the bindings for the help bar
func (k inputKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Cancel}
}

// FullHelp returns the bindings grouped for expanded help
func (k inputKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Submit, k.Cancel}}
}

func defaultInputKeyMap() inputKeyMap {
	return inputKeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// loginKeyMap holds the key bindings of the login page, letters go to the inputs
type loginKeyMap struct {
	Next   key.Binding
	Submit key.Binding
	Quit   key.Binding
}

// ShortHelp returns the bindings for the help bar
func (k loginKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Quit}
}

// FullHelp returns the bindings grouped for expanded help
func (k loginKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Submit, k.Quit}}
}

func defaultLoginKeyMap() loginKeyMap {
	return loginKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "shift+tab", "up", "down"),
			key.WithHelp("tab", "next field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "log in"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}
