package chat

import (
	"sync"

	"github.com/novachat/nova-chat/pkg/model"
)

const DefaultBufferCapacity = 512

// FallbackBuffer is the bounded in-process message list used while the
// message store is unreachable. Oldest entries are trimmed once capacity is
// hit. Not persisted across restarts.
type FallbackBuffer struct {
	mu       sync.Mutex
	capacity int
	entries  []model.Message
}

func NewFallbackBuffer(capacity int) *FallbackBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &FallbackBuffer{capacity: capacity}
}

func (b *FallbackBuffer) Append(msg model.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, msg)
	if len(b.entries) > b.capacity {
		b.entries = append(b.entries[:0], b.entries[len(b.entries)-b.capacity:]...)
	}
}

// Recent returns up to limit entries, oldest-first.
func (b *FallbackBuffer) Recent(limit int) []model.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := len(b.entries) - limit
	if start < 0 {
		start = 0
	}
	out := make([]model.Message, len(b.entries)-start)
	copy(out, b.entries[start:])
	return out
}

// RemoveByID removes the first entry whose id matches and reports whether
// one was found. Entries that never went through the store have no id and
// can only age out.
func (b *FallbackBuffer) RemoveByID(id int64) bool {
	if id == 0 {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, msg := range b.entries {
		if msg.ID == id {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (b *FallbackBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
