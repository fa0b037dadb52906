// Package realtime fans store change notifications out to WebSocket clients,
// so that every open dashboard refreshes when another client writes.
package realtime

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pkordes/crimsoncollab/backend/internal/domain"
)

// EventTypeStorage is the only event type: a collection document changed.
const EventTypeStorage = "storage"

const (
	subscriberBuffer = 16
	writeWait        = 10 * time.Second
	pongWait         = 90 * time.Second
	pingPeriod       = 30 * time.Second
)

// Event tells subscribers which collection changed.
type Event struct {
	Type string     `json:"type"`
	Key  domain.Key `json:"key"`
	At   time.Time  `json:"at"`
}

type subscriber struct {
	ch   chan Event
	keys map[domain.Key]bool // nil means every key
}

// Hub is an in-process publish/subscribe hub. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
	log  *slog.Logger
	now  func() time.Time

	upgrader websocket.Upgrader
}

// NewHub returns an empty Hub. allowOrigin decides which browser origins may
// open a WebSocket; nil allows every origin.
func NewHub(log *slog.Logger, allowOrigin func(origin string) bool) *Hub {
	h := &Hub{subs: make(map[*subscriber]struct{}), log: log, now: time.Now}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowOrigin == nil || origin == "" || allowOrigin(origin)
		},
	}
	return h
}

// Subscribe registers a subscriber for keys (all keys if none are given).
// The returned cancel func unregisters it and closes the channel.
func (h *Hub) Subscribe(keys ...domain.Key) (<-chan Event, func()) {
	s := &subscriber{ch: make(chan Event, subscriberBuffer)}
	if len(keys) > 0 {
		s.keys = make(map[domain.Key]bool, len(keys))
		for _, k := range keys {
			s.keys[k] = true
		}
	}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, s)
			h.mu.Unlock()
			close(s.ch)
		})
	}
}

// Subscribers reports how many subscribers are registered.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish notifies subscribers that key changed. Its signature matches
// store.Store.OnChange.
func (h *Hub) Publish(key domain.Key) {
	ev := Event{Type: EventTypeStorage, Key: key, At: h.now().UTC()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if s.keys != nil && !s.keys[key] {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			h.log.Warn("realtime subscriber lagging, event dropped", "key", key)
		}
	}
}

// ServeHTTP upgrades the request to a WebSocket and streams events until the
// client goes away. ?keys=a,b limits the stream to those collections.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var keys []domain.Key
	for _, k := range strings.Split(r.URL.Query().Get("keys"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, domain.Key(k))
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe(keys...)
	defer cancel()

	// The reader only services control frames and notices disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(4096)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case ev := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
