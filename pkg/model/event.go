package model

import "time"

type EventType string

const (
	EventNewMessage     EventType = "newMessage"
	EventMessageDeleted EventType = "messageDeleted"
)

// Event is the flat envelope broadcast to every connected session. A
// newMessage event carries the full message fields; a messageDeleted event
// carries only the deleted id.
type Event struct {
	Type      EventType  `json:"type"`
	ID        int64      `json:"id,omitempty"`
	Username  string     `json:"username,omitempty"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	Message   string     `json:"message,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	DeletedID int64      `json:"deletedId,omitempty"`
}

func NewMessageEvent(m Message) Event {
	created := m.CreatedAt
	return Event{
		Type:      EventNewMessage,
		ID:        m.ID,
		Username:  m.Username,
		AvatarURL: m.AvatarURL,
		Message:   m.Text,
		CreatedAt: &created,
	}
}

func MessageDeletedEvent(id int64) Event {
	return Event{
		Type:      EventMessageDeleted,
		DeletedID: id,
	}
}
