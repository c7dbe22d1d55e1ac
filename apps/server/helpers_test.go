package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/novachat/nova-chat/pkg/chat"
	"github.com/novachat/nova-chat/pkg/model"
)

// memStore is an in-memory chat.Store with a reachability toggle.
type memStore struct {
	mu     sync.Mutex
	down   bool
	msgs   []model.Message
	nextID int64
}

func (m *memStore) setDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.down = down
}

func (m *memStore) Insert(_ context.Context, msg model.Message) (model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return model.Message{}, fmt.Errorf("%w: connection refused", chat.ErrStoreUnavailable)
	}
	m.nextID++
	msg.ID = m.nextID
	m.msgs = append(m.msgs, msg)
	return msg, nil
}

func (m *memStore) SelectRecent(_ context.Context, limit int) ([]model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return nil, fmt.Errorf("%w: connection refused", chat.ErrStoreUnavailable)
	}
	start := len(m.msgs) - limit
	if start < 0 {
		start = 0
	}
	out := make([]model.Message, len(m.msgs)-start)
	copy(out, m.msgs[start:])
	return out, nil
}

func (m *memStore) DeleteByID(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down {
		return false, fmt.Errorf("%w: connection refused", chat.ErrStoreUnavailable)
	}
	for i, msg := range m.msgs {
		if msg.ID == id {
			m.msgs = append(m.msgs[:i], m.msgs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
