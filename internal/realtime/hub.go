// Package realtime pushes conversation snapshots to websocket subscribers.
package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"salon_backend/pkg/utils"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Event is the envelope written to subscribers.
type Event struct {
	Type    string      `json:"type"`
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
}

// Event types.
const (
	EventSnapshot = "snapshot"
	EventMessage  = "message"
)

type subscriber struct {
	topic string
	conn  *websocket.Conn
	send  chan []byte
	once  sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

// Hub fans events out to every subscriber of a topic. Slow subscribers whose
// buffer is full are dropped.
type Hub struct {
	mu       sync.RWMutex
	topics   map[string]map[*subscriber]struct{}
	upgrader websocket.Upgrader
	closed   bool
}

// NewHub builds a hub accepting websocket handshakes from allowedOrigins.
// An empty list or "*" accepts any origin.
func NewHub(allowedOrigins []string) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	anyOrigin := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		if o == "*" {
			anyOrigin = true
		}
		origins[o] = true
	}
	return &Hub{
		topics: make(map[string]map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return anyOrigin || origin == "" || origins[origin]
			},
		},
	}
}

// Publish sends payload to every subscriber of topic.
func (h *Hub) Publish(topic, eventType string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventType, Topic: topic, Payload: payload})
	if err != nil {
		utils.LogError(err, "Failed to encode realtime event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.topics[topic] {
		select {
		case sub.send <- data:
		default:
			delete(h.topics[topic], sub)
			sub.close()
		}
	}
}

// Subscribers reports how many connections follow topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// SnapshotLoader reads the current state of a topic.
type SnapshotLoader func() (interface{}, error)

// Serve upgrades the request and subscribes it to topic. The snapshot is
// loaded only after the subscription is registered, so an event published in
// between is delivered after the snapshot instead of being lost.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, topic string, load SnapshotLoader) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}

	sub := &subscriber{topic: topic, conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.register(sub) {
		conn.Close()
		return fmt.Errorf("realtime hub is closed")
	}
	utils.LogDebug("Realtime subscriber registered", map[string]interface{}{"topic": topic})

	first, err := encodeSnapshot(topic, load)
	if err != nil {
		h.unregister(sub)
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "snapshot unavailable"))
		conn.Close()
		return err
	}

	go h.writePump(sub, first)
	go h.readPump(sub)
	return nil
}

func encodeSnapshot(topic string, load SnapshotLoader) ([]byte, error) {
	snapshot, err := load()
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	data, err := json.Marshal(Event{Type: EventSnapshot, Topic: topic, Payload: snapshot})
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

func (h *Hub) register(sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.topics[sub.topic] == nil {
		h.topics[sub.topic] = make(map[*subscriber]struct{})
	}
	h.topics[sub.topic][sub] = struct{}{}
	return true
}

func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.topics[sub.topic]; ok {
		if _, ok := subs[sub]; ok {
			delete(subs, sub)
			sub.close()
		}
		if len(subs) == 0 {
			delete(h.topics, sub.topic)
		}
	}
}

// readPump only watches for close and pong frames; clients never send data.
func (h *Hub) readPump(sub *subscriber) {
	defer func() {
		h.unregister(sub)
		sub.conn.Close()
	}()
	sub.conn.SetReadLimit(512)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump writes first before anything queued on send.
func (h *Hub) writePump(sub *subscriber, first []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()
	sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := sub.conn.WriteMessage(websocket.TextMessage, first); err != nil {
		return
	}
	for {
		select {
		case data, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for topic, subs := range h.topics {
		for sub := range subs {
			sub.close()
		}
		delete(h.topics, topic)
	}
}
