package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chrisvdg/peeps/api"
	"github.com/chrisvdg/peeps/app"
)

// View renders the login page or the current page with its detail window
func (m Model) View() string {
	if !m.app.IsAuthenticated() {
		return m.viewLogin()
	}

	page := m.app.Preferences().Page
	var body string
	if page == app.PageSessions {
		body = m.viewSessions()
	} else {
		body = m.viewFriends()
	}

	if w := m.viewWindow(); w != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", w)
	}

	helpView := m.help.View(m.keys)
	if m.mode != modeNone {
		helpView = m.help.View(m.inputKeys)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(page),
		body,
		"",
		m.viewStatus(),
		helpView,
	)
}

func (m Model) viewHeader(page app.Page) string {
	tabs := []string{titleStyle.Render("Neos Peeps")}
	for _, p := range []app.Page{app.PagePeeps, app.PageSessions} {
		style := tabStyle
		if p == page {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(string(p)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n"
}

func (m Model) viewLogin() string {
	b := &strings.Builder{}
	b.WriteString(titleStyle.Render("Neos Peeps") + "\n\n")
	b.WriteString("Log in\n\n")
	for _, in := range m.inputs {
		b.WriteString(in.View() + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.app.AuthBusy():
		b.WriteString(m.spinner.View() + " " + string(m.app.LoginOp()) + "...\n")
	case m.app.AuthError() != nil:
		b.WriteString(errorStyle.Render("Login failed: "+m.app.AuthError().Error()) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.loginKeys))

	return b.String()
}

func (m Model) viewFriends() string {
	b := &strings.Builder{}
	b.WriteString(m.viewFilter() + "\n")

	peeps := m.app.Peeps()
	if len(peeps) == 0 {
		if m.app.Preferences().FilterSearch != "" && len(m.app.Friends()) > 0 {
			b.WriteString(dimStyle.Render("Nobody matches the search"))
			return b.String()
		}
		b.WriteString(m.emptyList(app.KindFriends, "No friends loaded yet"))
		return b.String()
	}

	for i, p := range peeps {
		b.WriteString(m.row(i, m.peepLine(p)) + "\n")
	}
	if m.app.Loading().Is(app.KindUsers) {
		b.WriteString(m.spinner.View() + " searching users...\n")
	}

	return b.String()
}

func (m Model) peepLine(p app.Peep) string {
	if p.Friend == nil {
		return fmt.Sprintf("%s %s %s", m.image(iconURL(p.User.Profile)), p.Username, dimStyle.Render("not a friend"))
	}

	f := p.Friend
	line := fmt.Sprintf("%s %s %s", m.image(iconURL(f.Profile)), f.Username, statusBadge(f.Status.OnlineStatus))
	if f.Status.CurrentSessionAccessLevel > api.AccessPrivate {
		line += dimStyle.Render(" joinable")
	}

	return line
}

// viewFilter shows the search input while typing, the active filters otherwise
func (m Model) viewFilter() string {
	if m.mode == modeSearch {
		return m.search.View()
	}

	prefs := m.app.Preferences()
	scope := "friends and users"
	if prefs.FilterFriendsOnly {
		scope = "friends only"
	}
	if prefs.FilterSearch == "" {
		return dimStyle.Render(scope)
	}

	return dimStyle.Render(fmt.Sprintf("%q, %s", prefs.FilterSearch, scope))
}

func (m Model) viewSessions() string {
	sessions := m.app.Sessions()
	if len(sessions) == 0 {
		return m.emptyList(app.KindSessions, "No sessions loaded yet")
	}

	b := &strings.Builder{}
	for i, s := range sessions {
		line := fmt.Sprintf("%s %s %s", m.image(s.ThumbnailURL), s.StrippedName(),
			dimStyle.Render(fmt.Sprintf("%d/%d by %s", s.ActiveUsers, s.MaxUsers, s.HostUsername)))
		b.WriteString(m.row(i, line) + "\n")
	}

	return b.String()
}

func (m Model) emptyList(k app.Kind, empty string) string {
	if m.app.Loading().Is(k) {
		return m.spinner.View() + " Loading " + string(k) + "..."
	}

	return dimStyle.Render(empty)
}

func (m Model) row(i int, line string) string {
	if i == m.cursor {
		return selectedStyle.Render("> ") + line
	}

	return "  " + line
}

// image requests the image for this frame and returns its marker
func (m Model) image(url string) string {
	_, ok := m.app.Texture(url)
	return imageMarker(ok)
}

func (m Model) viewWindow() string {
	if w := m.app.SessionWindow(); w != nil {
		return windowStyle().Render(m.viewSessionWindow(w))
	}
	if w := m.app.UserWindow(); w != nil {
		return windowStyle().Render(m.viewUserWindow(w))
	}

	return ""
}

func (m Model) viewUserWindow(w *app.UserWindow) string {
	b := &strings.Builder{}
	if w.User == nil {
		b.WriteString(m.spinner.View() + " " + w.ID + "\n")
	} else {
		b.WriteString(fmt.Sprintf("%s %s\n", m.image(iconURL(w.User.Profile)), titleStyle.Render(w.User.Username)))
		b.WriteString(dimStyle.Render("registered "+w.User.RegisteredAt.Format("2006-01-02")) + "\n")
	}
	if m.app.IsFriend(w.ID) {
		b.WriteString(dimStyle.Render("friend") + "\n")
	} else {
		b.WriteString(dimStyle.Render("not a friend") + "\n")
	}
	if w.Status == nil {
		b.WriteString(m.spinner.View() + " status\n")
	} else {
		b.WriteString(statusBadge(w.Status.OnlineStatus) + "\n")
		if s, ok := m.app.FindSession(w.Status.CurrentSessionID); ok {
			b.WriteString("  current: " + s.StrippedName() + "\n")
		}
		for _, s := range w.Status.ActiveSessions {
			b.WriteString("  in " + s.StrippedName() + "\n")
		}
	}
	if ms := m.app.Messages(w.ID); len(ms) > 0 {
		last := ms[len(ms)-1]
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d messages, last: %s", len(ms), last.Content)) + "\n")
	}
	if m.mode == modeMessage {
		b.WriteString(m.message.View() + "\n")
	}

	return b.String()
}

func (m Model) viewSessionWindow(w *app.SessionWindow) string {
	if w.Session == nil {
		return m.spinner.View() + " " + w.ID
	}
	s := w.Session

	b := &strings.Builder{}
	b.WriteString(fmt.Sprintf("%s %s\n", m.image(s.ThumbnailURL), titleStyle.Render(s.StrippedName())))
	if s.Description != "" {
		b.WriteString(s.Description + "\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("hosted by %s, %d/%d users", s.HostUsername, s.ActiveUsers, s.MaxUsers)) + "\n")
	for _, u := range s.Users {
		if u.IsPresent {
			b.WriteString("  " + u.Username + "\n")
		}
	}

	return b.String()
}

func (m Model) viewStatus() string {
	if kinds := m.app.Loading().Kinds(); len(kinds) > 0 {
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = string(k)
		}
		return m.spinner.View() + " loading " + strings.Join(names, ", ")
	}
	if last := m.app.LastRefresh(); !last.IsZero() {
		return dimStyle.Render("refreshed at " + last.Format("15:04:05"))
	}

	return ""
}

func iconURL(p *api.UserProfile) string {
	if p == nil {
		return ""
	}

	return p.IconURL
}
