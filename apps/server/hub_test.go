package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novachat/nova-chat/pkg/model"
)

func newHubClient(id string) *Client {
	return &Client{send: make(chan []byte, 8), id: id}
}

func receiveEvent(t *testing.T, c *Client) model.Event {
	t.Helper()
	select {
	case payload, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var evt model.Event
		require.NoError(t, json.Unmarshal(payload, &evt))
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return model.Event{}
	}
}

func TestHubFanOutReachesAllSessions(t *testing.T) {
	hub := NewHub(nil, nil, testLogger())
	go hub.Run()

	a := newHubClient("a")
	b := newHubClient("b")
	hub.register <- a
	hub.register <- b
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	sent := model.Message{ID: 9, Username: "alice", Text: "hello", CreatedAt: time.Now().UTC()}
	hub.BroadcastNewMessage(sent)

	for _, c := range []*Client{a, b} {
		evt := receiveEvent(t, c)
		assert.Equal(t, model.EventNewMessage, evt.Type)
		assert.Equal(t, int64(9), evt.ID)
		assert.Equal(t, "hello", evt.Message)
	}
}

func TestHubStopsDeliveringAfterUnregister(t *testing.T) {
	hub := NewHub(nil, nil, testLogger())
	go hub.Run()

	a := newHubClient("a")
	b := newHubClient("b")
	hub.register <- a
	hub.register <- b
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.unregister <- b
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastDeletion(4)

	evt := receiveEvent(t, a)
	assert.Equal(t, model.EventMessageDeleted, evt.Type)
	assert.Equal(t, int64(4), evt.DeletedID)

	// b's channel was closed on unregister; nothing was delivered to it.
	payload, ok := <-b.send
	assert.False(t, ok)
	assert.Nil(t, payload)
}

func TestHubDropsSlowConsumer(t *testing.T) {
	hub := NewHub(nil, nil, testLogger())
	go hub.Run()

	slow := &Client{send: make(chan []byte), id: "slow"} // no buffer, never read
	hub.register <- slow
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastDeletion(1)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}
