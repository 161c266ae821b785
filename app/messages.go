package app

import (
	"sort"

	"github.com/chrisvdg/peeps/api"
	"github.com/chrisvdg/peeps/channels"
	"github.com/google/uuid"
)

// Messages represents conversations by peer id, each oldest first
type Messages map[string][]api.Message

// GroupMessages groups messages by the user on the other side of the conversation
func GroupMessages(messages []api.Message) Messages {
	grouped := Messages{}
	for _, m := range messages {
		grouped.add(m)
	}
	for _, conversation := range grouped {
		sortMessages(conversation)
	}

	return grouped
}

// add appends a message to its conversation, a message already present is replaced
func (ms Messages) add(m api.Message) {
	peer := m.Peer()
	conversation := ms[peer]
	for i := range conversation {
		if conversation[i].ID == m.ID {
			conversation[i] = m
			return
		}
	}
	ms[peer] = append(conversation, m)
}

func sortMessages(conversation []api.Message) {
	sort.SliceStable(conversation, func(i, j int) bool {
		return conversation[i].SendTime.Before(conversation[j].SendTime)
	})
}

// Messages returns the conversation with a peer, oldest first
func (a *App) Messages(peer string) []api.Message {
	return a.messages[peer]
}

// RefreshMessages fetches the latest messages in the background
func (a *App) RefreshMessages() {
	ac, ok := a.authClient()
	if !ok {
		return
	}
	a.loading.start(KindMessages, a.now())
	out, limit, gen := a.ch.Messages, a.c.MessageLimit, a.authGen

	a.lanes.SpawnData(func() {
		out.Send(channels.From(ac.Messages(limit)).Tag(gen))
	})
}

// SendMessage sends a text message, it is added to the conversation once the service accepted it
func (a *App) SendMessage(to, text string) {
	ac, ok := a.authClient()
	if !ok || to == "" || text == "" {
		return
	}
	me := ac.UserSession().UserID
	m := api.Message{
		ID:          "MSG-" + uuid.NewString(),
		OwnerID:     me,
		SenderID:    me,
		RecipientID: to,
		Type:        api.MessageText,
		Content:     text,
		SendTime:    a.now().UTC(),
	}
	out, gen := a.ch.SentMessage, a.authGen

	a.lanes.SpawnData(func() {
		out.Send(channels.From(ac.SendMessage(m)).Tag(gen))
	})
}
