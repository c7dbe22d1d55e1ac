package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/novachat/nova-chat/pkg/model"
)

const presenceKey = "chat:sessions"

// Hub owns the set of connected sessions and fans events out to all of them,
// sender included. Delivery is fire-and-forget: a session that disconnects
// mid-broadcast simply misses the event.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan model.Event

	mu sync.RWMutex

	presence *redis.Client // nil disables presence tracking
	producer *kafka.Writer // nil disables the outbound event stream
	log      *slog.Logger
}

func NewHub(presence *redis.Client, producer *kafka.Writer, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan model.Event, 64),
		presence:   presence,
		producer:   producer,
		log:        log,
	}
}

// BroadcastNewMessage implements chat.Broadcaster.
func (h *Hub) BroadcastNewMessage(msg model.Message) {
	h.events <- model.NewMessageEvent(msg)
}

// BroadcastDeletion implements chat.Broadcaster.
func (h *Hub) BroadcastDeletion(id int64) {
	h.events <- model.MessageDeletedEvent(id)
}

// Run processes registration and fan-out until the hub's channels go quiet.
// It must run in its own goroutine before any client connects.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.setPresence(client.id, true)
			h.log.Info("session registered", "session", client.id, "total", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.setPresence(client.id, false)
			h.log.Info("session unregistered", "session", client.id, "total", total)

		case evt := <-h.events:
			h.fanOut(evt)
		}
	}
}

func (h *Hub) fanOut(evt model.Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		h.log.Error("marshal event", "error", err)
		return
	}

	h.mu.Lock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			// Slow consumer; drop it rather than stall the room.
			delete(h.clients, client)
			close(client.send)
			h.log.Warn("session dropped, send buffer full", "session", client.id)
		}
	}
	h.mu.Unlock()

	h.publish(payload)
}

// publish tees the event onto the Kafka stream for downstream consumers.
// The writer is async, so a dead broker never blocks fan-out.
func (h *Hub) publish(payload []byte) {
	if h.producer == nil {
		return
	}
	err := h.producer.WriteMessages(context.Background(), kafka.Message{
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		h.log.Warn("publish event to kafka", "error", err)
	}
}

func (h *Hub) setPresence(sessionID string, online bool) {
	if h.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var err error
	if online {
		err = h.presence.SAdd(ctx, presenceKey, sessionID).Err()
	} else {
		err = h.presence.SRem(ctx, presenceKey, sessionID).Err()
	}
	if err != nil {
		h.log.Warn("update presence", "session", sessionID, "error", err)
	}
}

// OnlineSessions returns the number of sessions currently tracked in Redis.
func (h *Hub) OnlineSessions(ctx context.Context) (int64, error) {
	if h.presence == nil {
		return 0, nil
	}
	return h.presence.SCard(ctx, presenceKey).Result()
}

// ClientCount reports the number of locally connected sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
