package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/chrisvdg/peeps/api"
	"github.com/chrisvdg/peeps/app"
)

// DefaultFrameInterval is how often a frame runs without input
const DefaultFrameInterval = 250 * time.Millisecond

// Config represents the terminal UI configuration
type Config struct {
	// FrameInterval is the time between two frames when nothing asked for a repaint
	FrameInterval time.Duration
}

// frameMsg drives the periodic frame
type frameMsg time.Time

// RepaintMsg asks for a frame outside of the periodic ones
type RepaintMsg struct{}

// Repainter returns a repainter sending RepaintMsg to the program.
// The send happens on its own goroutine as repaints are requested from within Update.
func Repainter(p *tea.Program) app.Repainter {
	return app.RepaintFunc(func() {
		go p.Send(RepaintMsg{})
	})
}

// inputMode represents what the typed keys go to on the authenticated pages
type inputMode int

const (
	modeNone inputMode = iota
	modeSearch
	modeMessage
)

const (
	fieldIdentifier = iota
	fieldPassword
	fieldTOTP
	fieldCount
)

// NewModel returns the root model drawing the app state
func NewModel(a *app.App, c *Config) Model {
	if c.FrameInterval <= 0 {
		c.FrameInterval = DefaultFrameInterval
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].CharLimit = 128
	}
	inputs[fieldIdentifier].Placeholder = "username or email"
	inputs[fieldIdentifier].SetValue(a.Preferences().Identifier)
	inputs[fieldIdentifier].Focus()
	inputs[fieldPassword].Placeholder = "password"
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldTOTP].Placeholder = "2FA code (optional)"
	inputs[fieldTOTP].CharLimit = 6

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search users"
	search.CharLimit = 64
	message := textinput.New()
	message.Prompt = "> "
	message.Placeholder = "message"
	message.CharLimit = 512

	return Model{
		app:       a,
		c:         c,
		keys:      defaultKeyMap(),
		loginKeys: defaultLoginKeyMap(),
		inputKeys: defaultInputKeyMap(),
		help:      help.New(),
		spinner:   s,
		inputs:    inputs,
		search:    search,
		message:   message,
	}
}

// Model is the root Bubble Tea model.
// Every frame reconciles the background results into the app before drawing it.
type Model struct {
	app       *app.App
	c         *Config
	keys      keyMap
	loginKeys loginKeyMap
	inputKeys inputKeyMap
	help      help.Model
	spinner   spinner.Model

	inputs []textinput.Model
	field  int

	mode    inputMode
	search  textinput.Model
	message textinput.Model

	cursor int
	width  int
	height int
	frames int
}

// Init starts the frame and spinner ticks
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.nextFrame(), m.spinner.Tick, textinput.Blink)
}

func (m Model) nextFrame() tea.Cmd {
	return tea.Tick(m.c.FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update handles incoming messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case frameMsg:
		m.frame(time.Time(msg))
		return m, m.nextFrame()

	case RepaintMsg:
		m.frame(time.Now())
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.app.IsAuthenticated() {
			return m.handleLoginKey(msg)
		}
		if m.mode != modeNone {
			return m.handleInputKey(msg)
		}
		return m.handleKey(msg)
	}

	if !m.app.IsAuthenticated() {
		return m.updateInputs(msg)
	}
	if m.mode != modeNone {
		return m.updateInput(msg)
	}

	return m, nil
}

// frame applies the background results then runs the periodic work
func (m *Model) frame(now time.Time) {
	m.app.Reconcile()
	m.app.Tick(now)
	m.frames++
	if n := m.rows(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if m.mode == modeMessage && m.app.UserWindow() == nil {
		m.mode = modeNone
	}
	if !m.app.IsAuthenticated() {
		m.mode = modeNone
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Tab):
		prefs := m.app.Preferences()
		if prefs.Page == app.PageSessions {
			prefs.Page = app.PagePeeps
		} else {
			prefs.Page = app.PageSessions
		}
		m.cursor = 0
	case key.Matches(msg, m.keys.Refresh):
		m.app.RefreshFriends()
		m.app.RefreshSessions()
		m.app.RefreshMessages()
	case key.Matches(msg, m.keys.Enter):
		m.open()
	case key.Matches(msg, m.keys.Close):
		m.app.CloseUser()
		m.app.CloseSession()
	case key.Matches(msg, m.keys.Search):
		if m.app.Preferences().Page != app.PagePeeps {
			break
		}
		m.mode = modeSearch
		m.search.SetValue(m.app.Preferences().FilterSearch)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.FriendsOnly):
		m.app.SetFriendsOnly(!m.app.Preferences().FilterFriendsOnly)
		m.cursor = 0
	case key.Matches(msg, m.keys.AddFriend):
		if w := m.app.UserWindow(); w != nil && !m.app.IsFriend(w.ID) {
			m.app.AddFriend(w.ID)
		}
	case key.Matches(msg, m.keys.Unfriend):
		if w := m.app.UserWindow(); w != nil && m.app.IsFriend(w.ID) {
			m.app.RemoveFriend(w.ID)
		}
	case key.Matches(msg, m.keys.Message):
		if m.app.UserWindow() == nil {
			break
		}
		m.mode = modeMessage
		m.message.Reset()
		cmd := m.message.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Session):
		m.openCurrentSession()
	case key.Matches(msg, m.keys.Logout):
		m.app.Logout()
		m.cursor = 0
	}

	return m, nil
}

// open opens the detail window of the selected row
func (m Model) open() {
	if m.app.Preferences().Page == app.PageSessions {
		sessions := m.app.Sessions()
		if m.cursor < len(sessions) {
			s := sessions[m.cursor]
			m.app.OpenSession(s.ID, &s)
		}
		return
	}

	peeps := m.app.Peeps()
	if m.cursor >= len(peeps) {
		return
	}
	p := peeps[m.cursor]
	if p.Friend != nil {
		m.app.OpenFriend(*p.Friend)
		return
	}
	u := *p.User
	m.app.OpenUser(p.ID, &u, nil)
}

// openCurrentSession opens the session the user of the user window is in
func (m Model) openCurrentSession() {
	w := m.app.UserWindow()
	if w == nil || w.Status == nil || w.Status.CurrentSessionID == "" {
		return
	}
	id := w.Status.CurrentSessionID
	if s, ok := m.app.FindSession(id); ok {
		m.app.OpenSession(id, &s)
		return
	}
	m.app.OpenSession(id, nil)
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.inputKeys.Cancel):
		m.blurInput()
		return m, nil
	case key.Matches(msg, m.inputKeys.Submit):
		m.submitInput()
		return m, nil
	}

	return m.updateInput(msg)
}

func (m *Model) submitInput() {
	switch m.mode {
	case modeSearch:
		m.app.Search(m.search.Value())
		m.cursor = 0
	case modeMessage:
		if w := m.app.UserWindow(); w != nil {
			m.app.SendMessage(w.ID, m.message.Value())
		}
		m.message.Reset()
	}
	m.blurInput()
}

func (m *Model) blurInput() {
	m.mode = modeNone
	m.search.Blur()
	m.message.Blur()
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case modeSearch:
		m.search, cmd = m.search.Update(msg)
	case modeMessage:
		m.message, cmd = m.message.Update(msg)
	}

	return m, cmd
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.loginKeys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.loginKeys.Next):
		step := 1
		if msg.String() == "shift+tab" || msg.String() == "up" {
			step = fieldCount - 1
		}
		cmd := m.focusField((m.field + step) % fieldCount)
		return m, cmd
	case key.Matches(msg, m.loginKeys.Submit):
		if m.field < fieldPassword {
			cmd := m.focusField(fieldPassword)
			return m, cmd
		}
		m.submitLogin()
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m *Model) focusField(field int) tea.Cmd {
	m.field = field
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == field {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}

	return cmd
}

func (m *Model) submitLogin() {
	c := api.Credentials{
		Identifier: m.inputs[fieldIdentifier].Value(),
		Password:   m.inputs[fieldPassword].Value(),
		TOTP:       m.inputs[fieldTOTP].Value(),
		RememberMe: true,
	}
	if c.Identifier == "" || c.Password == "" || m.app.AuthBusy() {
		return
	}
	m.app.Login(c)
	m.inputs[fieldPassword].Reset()
	m.inputs[fieldTOTP].Reset()
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}

	return m, tea.Batch(cmds...)
}

// rows returns the amount of rows on the current page
func (m Model) rows() int {
	if !m.app.IsAuthenticated() {
		return 0
	}
	if m.app.Preferences().Page == app.PageSessions {
		return len(m.app.Sessions())
	}

	return len(m.app.Peeps())
}
