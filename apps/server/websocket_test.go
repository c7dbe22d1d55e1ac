package main

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novachat/nova-chat/pkg/chat"
	"github.com/novachat/nova-chat/pkg/model"
)

func newWsTestServer(t *testing.T) (*httptest.Server, *memStore, *Hub) {
	t.Helper()
	store := &memStore{}
	hub := NewHub(nil, nil, testLogger())
	go hub.Run()

	buffer := chat.NewFallbackBuffer(16)
	svc := chat.NewService(store, buffer, hub, 50, testLogger())

	srv := httptest.NewServer(newRoutes(svc, hub, testLogger()))
	t.Cleanup(srv.Close)
	return srv, store, hub
}

func dialWs(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := strings.Replace(srv.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) model.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var evt model.Event
	require.NoError(t, json.Unmarshal(payload, &evt))
	return evt
}

func TestWebsocketSendBroadcastsToAllSessionsIncludingSender(t *testing.T) {
	srv, store, hub := newWsTestServer(t)

	sender := dialWs(t, srv)
	receiver := dialWs(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, sender.WriteJSON(map[string]string{
		"type":     "sendMessage",
		"username": "alice",
		"message":  "hello room",
	}))

	for _, conn := range []*websocket.Conn{sender, receiver} {
		evt := readEvent(t, conn)
		assert.Equal(t, model.EventNewMessage, evt.Type)
		assert.Equal(t, "alice", evt.Username)
		assert.Equal(t, "hello room", evt.Message)
		assert.NotZero(t, evt.ID, "store took the write")
	}

	store.mu.Lock()
	assert.Len(t, store.msgs, 1)
	store.mu.Unlock()
}

func TestWebsocketSendWhileStoreDown(t *testing.T) {
	srv, store, hub := newWsTestServer(t)
	store.setDown(true)

	sender := dialWs(t, srv)
	receiver := dialWs(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, sender.WriteJSON(map[string]string{
		"type":     "sendMessage",
		"username": "dana",
		"message":  "still broadcast",
	}))

	for _, conn := range []*websocket.Conn{sender, receiver} {
		evt := readEvent(t, conn)
		assert.Equal(t, model.EventNewMessage, evt.Type)
		assert.Equal(t, "still broadcast", evt.Message)
		assert.Zero(t, evt.ID, "buffer-only messages carry no id")
	}
}

func TestWebsocketDeleteBroadcastsOnlyWhenRemoved(t *testing.T) {
	srv, _, hub := newWsTestServer(t)

	conn := dialWs(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type":     "sendMessage",
		"username": "alice",
		"message":  "doomed",
	}))
	created := readEvent(t, conn)
	require.NotZero(t, created.ID)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "deleteMessage", "id": created.ID}))
	evt := readEvent(t, conn)
	assert.Equal(t, model.EventMessageDeleted, evt.Type)
	assert.Equal(t, created.ID, evt.DeletedID)

	// Deleting again removes nothing, so nothing is broadcast; the next
	// send's event is the next thing on the wire.
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "deleteMessage", "id": created.ID}))
	require.NoError(t, conn.WriteJSON(map[string]string{
		"type":     "sendMessage",
		"username": "alice",
		"message":  "after the no-op",
	}))
	evt = readEvent(t, conn)
	assert.Equal(t, model.EventNewMessage, evt.Type)
	assert.Equal(t, "after the no-op", evt.Message)
}

func TestWebsocketInvalidFramesAreDropped(t *testing.T) {
	srv, store, hub := newWsTestServer(t)

	conn := dialWs(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	// Not JSON, unknown type, and a send with a missing username: all
	// silently dropped by the push channel.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "shrug"}))
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "sendMessage", "message": "no sender"}))

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type":     "sendMessage",
		"username": "alice",
		"message":  "valid",
	}))
	evt := readEvent(t, conn)
	assert.Equal(t, "valid", evt.Message)

	store.mu.Lock()
	assert.Len(t, store.msgs, 1, "only the valid send persisted")
	store.mu.Unlock()
}

func TestWebsocketDisconnectUnregisters(t *testing.T) {
	srv, _, hub := newWsTestServer(t)

	conn := dialWs(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}
