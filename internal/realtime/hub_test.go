package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, hub *Hub, topic string, snapshot interface{}) *websocket.Conn {
	t.Helper()
	return dialWith(t, hub, topic, func() (interface{}, error) { return snapshot, nil })
}

func dialWith(t *testing.T, hub *Hub, topic string, load SnapshotLoader) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hub.Serve(w, r, topic, load); err != nil {
			t.Logf("serve: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func waitForSubscribers(t *testing.T, hub *Hub, topic string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Subscribers(topic) == n }, 2*time.Second, 10*time.Millisecond)
}

func TestServeSendsSnapshotFirst(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	conn := dial(t, hub, "conv-1", []string{"a", "b"})
	ev := readEvent(t, conn)
	assert.Equal(t, EventSnapshot, ev.Type)
	assert.Equal(t, "conv-1", ev.Topic)
	assert.Equal(t, []interface{}{"a", "b"}, ev.Payload)
}

func TestEventPublishedWhileLoadingSnapshotIsDelivered(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	conn := dialWith(t, hub, "conv-race", func() (interface{}, error) {
		hub.Publish("conv-race", EventMessage, map[string]string{"body": "chegou agora"})
		return []string{"antiga"}, nil
	})

	first := readEvent(t, conn)
	assert.Equal(t, EventSnapshot, first.Type)
	assert.Equal(t, []interface{}{"antiga"}, first.Payload)

	second := readEvent(t, conn)
	assert.Equal(t, EventMessage, second.Type)
	assert.Equal(t, map[string]interface{}{"body": "chegou agora"}, second.Payload)
}

func TestSnapshotLoadFailureClosesConnection(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	conn := dialWith(t, hub, "conv-broken", func() (interface{}, error) {
		return nil, errors.New("database down")
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr))
	assert.Equal(t, 0, hub.Subscribers("conv-broken"))
}

func TestPublishReachesOnlyTopicSubscribers(t *testing.T) {
	hub := NewHub([]string{"*"})
	defer hub.Close()

	a := dial(t, hub, "conv-a", nil)
	b := dial(t, hub, "conv-b", nil)
	readEvent(t, a)
	readEvent(t, b)
	waitForSubscribers(t, hub, "conv-a", 1)
	waitForSubscribers(t, hub, "conv-b", 1)

	hub.Publish("conv-a", EventMessage, map[string]string{"body": "olá"})

	ev := readEvent(t, a)
	assert.Equal(t, EventMessage, ev.Type)
	assert.Equal(t, map[string]interface{}{"body": "olá"}, ev.Payload)

	require.NoError(t, b.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := b.ReadMessage()
	assert.Error(t, err)
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	conn := dial(t, hub, "conv-x", nil)
	readEvent(t, conn)
	waitForSubscribers(t, hub, "conv-x", 1)

	conn.Close()
	waitForSubscribers(t, hub, "conv-x", 0)
}
