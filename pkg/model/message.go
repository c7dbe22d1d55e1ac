package model

import "time"

// Message is a chat message as the service sees it. ID is assigned by the
// message store on insert; an ID of 0 means the message only ever lived in
// the in-process fallback buffer.
type Message struct {
	ID        int64
	Username  string
	AvatarURL string
	Text      string
	CreatedAt time.Time
}

// WireMessage is the JSON shape exposed over HTTP and the push channel.
// The text travels under the "message" key.
type WireMessage struct {
	ID        int64     `json:"id,omitempty"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryItem is one entry in the history response. History intentionally
// exposes no id.
type HistoryItem struct {
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (m Message) Wire() WireMessage {
	return WireMessage{
		ID:        m.ID,
		Username:  m.Username,
		AvatarURL: m.AvatarURL,
		Message:   m.Text,
		CreatedAt: m.CreatedAt,
	}
}

func (m Message) History() HistoryItem {
	return HistoryItem{
		Username:  m.Username,
		AvatarURL: m.AvatarURL,
		Message:   m.Text,
		CreatedAt: m.CreatedAt,
	}
}
