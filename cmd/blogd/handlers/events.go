package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kimhsiao/blogai/internal/logging"
	"github.com/kimhsiao/blogai/internal/services"
	"github.com/kimhsiao/blogai/internal/uuid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

// outbound is a marshalled event tagged with its type for subscription filtering.
type outbound struct {
	eventType string
	payload   []byte
}

// Hub fans article events out to connected WebSocket clients.
// It implements services.EventSink.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logging.Logger

	broadcast  chan outbound
	register   chan *wsClient
	unregister chan *wsClient
	done       chan struct{}

	mu      sync.RWMutex
	clients map[string]*wsClient
}

// NewHub creates a hub. allowedOrigin is "*" or a single origin URL.
// Call Run to start delivering events.
func NewHub(allowedOrigin string, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Get()
	}
	h := &Hub{
		logger:     logger,
		broadcast:  make(chan outbound, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		done:       make(chan struct{}),
		clients:    make(map[string]*wsClient),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigin),
	}
	return h
}

func originChecker(allowed string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if allowed == "*" || origin == "" {
			return true
		}
		a, err1 := url.Parse(allowed)
		o, err2 := url.Parse(origin)
		return err1 == nil && err2 == nil && a.Scheme == o.Scheme && a.Host == o.Host
	}
}

// Run manages client connections and broadcasts until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				c.close()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("websocket client connected", map[string]interface{}{"client_id": c.id, "total": n})

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				c.close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("websocket client disconnected", map[string]interface{}{"client_id": c.id, "total": n})

		case msg := <-h.broadcast:
			h.mu.Lock()
			for id, c := range h.clients {
				if !c.wants(msg.eventType) {
					continue
				}
				if !c.enqueue(msg.payload) {
					// Slow consumer; drop it rather than stall everyone else.
					c.close()
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish implements services.EventSink. It never blocks: when the
// broadcast queue is full or the hub has stopped the event is dropped.
func (h *Hub) Publish(event services.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", err, map[string]interface{}{"type": event.Type})
		return
	}
	select {
	case h.broadcast <- outbound{eventType: event.Type, payload: payload}:
	case <-h.done:
	default:
		h.logger.Warn("event queue full, dropping event", map[string]interface{}{"type": event.Type})
	}
}

// ServeWS handles GET /api/events
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		writeErrorMessage(w, http.StatusServiceUnavailable, "event stream closed")
		return
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Debug("websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}

	c := &wsClient{
		id:            uuid.New(),
		conn:          conn,
		hub:           h,
		send:          make(chan []byte, sendBuffer),
		subscriptions: make(map[string]bool),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
