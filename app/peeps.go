package app

import (
	"strings"

	"github.com/chrisvdg/peeps/api"
)

// Peep represents a row of the peeps page, either a friend or a user found by a search
type Peep struct {
	ID       string
	Username string
	Friend   *api.Friend
	User     *api.User
}

// Peeps returns the friends matching the search filter. Unless the friends only
// filter is set, the searched users that aren't friends follow them.
func (a *App) Peeps() []Peep {
	search := a.prefs.FilterSearch
	peeps := make([]Peep, 0, len(a.friends))
	for i := range a.friends {
		f := &a.friends[i]
		if !matchesSearch(f.Username, search) {
			continue
		}
		peeps = append(peeps, Peep{ID: f.ID, Username: f.Username, Friend: f})
	}
	if a.prefs.FilterFriendsOnly || search == "" {
		return peeps
	}

	for i := range a.users {
		u := &a.users[i]
		if a.IsFriend(u.ID) || !matchesSearch(u.Username, search) {
			continue
		}
		peeps = append(peeps, Peep{ID: u.ID, Username: u.Username, User: u})
	}

	return peeps
}

// Search sets the search filter of the peeps page and looks up matching users
// when the page isn't limited to friends
func (a *App) Search(query string) {
	a.prefs.FilterSearch = strings.TrimSpace(query)
	a.searchUsers()
}

// SetFriendsOnly limits the peeps page to friends or widens it to searched users
func (a *App) SetFriendsOnly(friendsOnly bool) {
	a.prefs.FilterFriendsOnly = friendsOnly
	a.searchUsers()
}

func (a *App) searchUsers() {
	if a.prefs.FilterFriendsOnly || a.prefs.FilterSearch == "" {
		return
	}
	a.SearchUsers(a.prefs.FilterSearch)
}

func matchesSearch(username, search string) bool {
	return search == "" || strings.Contains(strings.ToLower(username), strings.ToLower(search))
}
