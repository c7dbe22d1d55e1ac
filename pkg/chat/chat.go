// Package chat implements the message flow of the single chat room: validate,
// persist to the message store (or the in-process fallback buffer when the
// store is unreachable), then fan the resulting event out to every connected
// session.
package chat

import (
	"context"
	"errors"

	"github.com/novachat/nova-chat/pkg/model"
)

// ErrStoreUnavailable marks any store connectivity or query failure. The
// service recovers from it via the fallback buffer; it never reaches a client.
var ErrStoreUnavailable = errors.New("message store unavailable")

// ErrValidation marks a send request with a missing required field.
var ErrValidation = errors.New("invalid message")

// Store is the durable message table.
type Store interface {
	// Insert persists msg and returns a copy with ID assigned.
	Insert(ctx context.Context, msg model.Message) (model.Message, error)
	// SelectRecent returns the most recent limit messages, oldest-first.
	SelectRecent(ctx context.Context, limit int) ([]model.Message, error)
	// DeleteByID reports whether a row was removed.
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

// Broadcaster fans events out to all currently connected sessions.
type Broadcaster interface {
	BroadcastNewMessage(msg model.Message)
	BroadcastDeletion(id int64)
}

// SendRequest is an inbound send event from either entry point.
type SendRequest struct {
	Username  string `json:"username" validate:"required"`
	AvatarURL string `json:"avatar_url"`
	Message   string `json:"message" validate:"required"`
}
