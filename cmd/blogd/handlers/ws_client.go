package handlers

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsClient is one WebSocket connection. An empty subscription set receives
// every event.
type wsClient struct {
	id   string
	conn *websocket.Conn
	hub  *Hub

	mu            sync.Mutex
	send          chan []byte
	closed        bool
	subscriptions map[string]bool
}

// clientMessage is what clients may send.
type clientMessage struct {
	Action string   `json:"action"`
	Events []string `json:"events"`
}

// enqueue queues msg without blocking. It reports false when the client is
// closed or its buffer is full.
func (c *wsClient) enqueue(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close stops the write pump. Safe to call more than once.
func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *wsClient) wants(eventType string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subscriptions) == 0 || c.subscriptions[eventType]
}

func (c *wsClient) setSubscribed(events []string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range events {
		if on {
			c.subscriptions[e] = true
		} else {
			delete(c.subscriptions, e)
		}
	}
}

// readPump handles client control messages until the connection drops.
func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("websocket read error", map[string]interface{}{"client_id": c.id, "error": err.Error()})
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Action {
		case "subscribe":
			c.setSubscribed(msg.Events, true)
			c.reply(map[string]interface{}{"action": "subscribe_ack", "subscribed": msg.Events})
		case "unsubscribe":
			c.setSubscribed(msg.Events, false)
			c.reply(map[string]interface{}{"action": "unsubscribe_ack", "unsubscribed": msg.Events})
		case "ping":
			c.reply(map[string]interface{}{"action": "pong"})
		}
	}
}

func (c *wsClient) reply(body map[string]interface{}) {
	body["timestamp"] = time.Now().UTC()
	if b, err := json.Marshal(body); err == nil {
		c.enqueue(b)
	}
}

// writePump writes queued messages and keepalive pings.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
