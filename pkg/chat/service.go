package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/novachat/nova-chat/pkg/model"
)

const DefaultHistoryLimit = 50

// Service is the per-connection gateway core shared by the HTTP API and the
// push channel. Every operation persists first, then broadcasts.
type Service struct {
	store        Store
	buffer       *FallbackBuffer
	broadcaster  Broadcaster
	validate     *validator.Validate
	historyLimit int
	log          *slog.Logger
}

func NewService(store Store, buffer *FallbackBuffer, broadcaster Broadcaster, historyLimit int, log *slog.Logger) *Service {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:        store,
		buffer:       buffer,
		broadcaster:  broadcaster,
		validate:     validator.New(),
		historyLimit: historyLimit,
		log:          log,
	}
}

// Send validates the request, attempts a durable write, falls back to the
// in-process buffer when the store is unreachable, and broadcasts whichever
// message resulted. Both entry points share this validation.
func (s *Service) Send(ctx context.Context, req SendRequest) (model.Message, error) {
	if err := s.validate.Struct(req); err != nil {
		return model.Message{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msg := model.Message{
		Username:  req.Username,
		AvatarURL: req.AvatarURL,
		Text:      req.Message,
		CreatedAt: time.Now().UTC(),
	}

	stored, err := s.store.Insert(ctx, msg)
	switch {
	case err == nil:
		msg = stored
	case errors.Is(err, ErrStoreUnavailable):
		s.log.Warn("store insert failed, buffering in memory", "error", err, "username", msg.Username)
		s.buffer.Append(msg)
	default:
		return model.Message{}, err
	}

	s.broadcaster.BroadcastNewMessage(msg)
	return msg, nil
}

// Delete removes the message with the given id from whichever path holds it:
// the store first, then the fallback buffer when the store is unreachable or
// reports no matching row. A deletion event is broadcast only when something
// was actually removed.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	removed, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrStoreUnavailable) {
			return false, err
		}
		s.log.Warn("store delete failed, trying fallback buffer", "error", err, "id", id)
		removed = false
	}
	if !removed {
		removed = s.buffer.RemoveByID(id)
	}

	if removed {
		s.broadcaster.BroadcastDeletion(id)
	}
	return removed, nil
}

// History returns up to limit recent messages, oldest-first. The store is
// authoritative when reachable; otherwise the fallback buffer answers. The
// two are never merged, so consecutive calls may disagree while store
// availability flips.
func (s *Service) History(ctx context.Context, limit int) ([]model.Message, error) {
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}

	msgs, err := s.store.SelectRecent(ctx, limit)
	if err != nil {
		if !errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		s.log.Warn("store read failed, serving in-memory history", "error", err)
		return s.buffer.Recent(limit), nil
	}
	return msgs, nil
}
