package app

import (
	"sort"

	"github.com/chrisvdg/peeps/api"
	"github.com/chrisvdg/peeps/channels"
)

// SortFriends orders friends by how joinable their session is, then online, then not offline
func SortFriends(friends []api.Friend) {
	sort.SliceStable(friends, func(i, j int) bool {
		return statusLess(friends[i].Status, friends[j].Status)
	})
}

func statusLess(s1, s2 api.UserStatus) bool {
	if s1.CurrentSessionAccessLevel != s2.CurrentSessionAccessLevel {
		return s1.CurrentSessionAccessLevel > s2.CurrentSessionAccessLevel
	}
	on1, on2 := s1.OnlineStatus == api.StatusOnline, s2.OnlineStatus == api.StatusOnline
	if on1 != on2 {
		return on1
	}
	off1, off2 := s1.OnlineStatus == api.StatusOffline, s2.OnlineStatus == api.StatusOffline
	if off1 != off2 {
		return off2
	}

	return false
}

// RefreshFriends fetches the friends list in the background
func (a *App) RefreshFriends() {
	ac, ok := a.authClient()
	if !ok {
		return
	}
	a.loading.start(KindFriends, a.now())
	out, gen := a.ch.Friends, a.authGen

	a.lanes.SpawnData(func() {
		friends, err := ac.Friends()
		if err == nil {
			SortFriends(friends)
		}
		out.Send(channels.From(friends, err).Tag(gen))
	})
}

// SearchUsers looks up users by name in the background
func (a *App) SearchUsers(query string) {
	client, ok := a.client()
	if !ok || query == "" {
		return
	}
	a.loading.start(KindUsers, a.now())
	out := a.ch.Users

	a.lanes.SpawnData(func() {
		out.Send(channels.From(client.SearchUsers(query)))
	})
}

// GetUser looks up a user for the user window
func (a *App) GetUser(id string) {
	client, ok := a.client()
	if !ok {
		return
	}
	a.loading.start(KindUser, a.now())
	out := a.ch.User

	a.lanes.SpawnData(func() {
		out.Send(channels.From(client.User(id)))
	})
}

// GetUserStatus looks up the presence of a user for the user window
func (a *App) GetUserStatus(id string) {
	client, ok := a.client()
	if !ok {
		return
	}
	a.loading.start(KindUserStatus, a.now())
	out := a.ch.UserStatus

	a.lanes.SpawnData(func() {
		status, err := client.UserStatus(id)
		out.Send(channels.From(channels.UserStatusMsg{UserID: id, Status: status}, err))
	})
}

// OpenUser opens the user window, what isn't known yet is looked up
func (a *App) OpenUser(id string, user *api.User, status *api.UserStatus) {
	a.userWindow = &UserWindow{ID: id, User: user, Status: status}
	if user == nil {
		a.GetUser(id)
	}
	if status == nil {
		a.GetUserStatus(id)
	}
}

// OpenFriend opens the user window of a friend, reusing what the friends list knows
func (a *App) OpenFriend(f api.Friend) {
	status := f.Status
	a.OpenUser(f.ID, nil, &status)
}

// CloseUser closes the user window
func (a *App) CloseUser() {
	a.userWindow = nil
}

// IsFriend returns true when the user is in the friends list
func (a *App) IsFriend(id string) bool {
	for _, f := range a.friends {
		if f.ID == id {
			return true
		}
	}

	return false
}

// AddFriend sends a friend request then refreshes the friends list
func (a *App) AddFriend(id string) {
	a.changeFriend(id, api.AuthClient.AddFriend)
}

// RemoveFriend removes a contact then refreshes the friends list
func (a *App) RemoveFriend(id string) {
	a.changeFriend(id, api.AuthClient.RemoveFriend)
}

func (a *App) changeFriend(id string, change func(api.AuthClient, string) error) {
	ac, ok := a.authClient()
	if !ok {
		return
	}
	a.loading.start(KindFriends, a.now())
	out, gen := a.ch.Friends, a.authGen

	a.lanes.SpawnData(func() {
		err := change(ac, id)
		if err != nil {
			out.Send(channels.Fail[[]api.Friend](err).Tag(gen))
			return
		}
		friends, err := ac.Friends()
		if err == nil {
			SortFriends(friends)
		}
		out.Send(channels.From(friends, err).Tag(gen))
	})
}
