package service

import (
	"context"
	"encoding/json"
	"hrm_backend/pkg/logger"
	"hrm_backend/pkg/monitoring"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = (feedPongWait * 9) / 10
	feedReadLimit  = 512
	feedBuffer     = 64
)

type feedClient struct {
	hub    *EventHub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

// EventHub pushes published events to websocket subscribers on this
// instance. A subscriber whose buffer is full loses the event; publishers
// never block.
type EventHub struct {
	mu       sync.RWMutex
	clients  map[*feedClient]struct{}
	upgrader websocket.Upgrader
}

// NewEventHub accepts browser connections only from allowedOrigins.
// Requests without an Origin header are not browser-initiated and pass.
func NewEventHub(allowedOrigins ...string) *EventHub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &EventHub{
		clients: make(map[*feedClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
	}
}

func (h *EventHub) Publish(_ context.Context, event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error("Failed to encode event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			monitoring.EventFeedDropped.Inc()
		}
	}
}

func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams events to it until the peer goes
// away.
func (h *EventHub) ServeWS(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &feedClient{hub: h, conn: conn, send: make(chan []byte, feedBuffer), userID: userID}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	monitoring.EventFeedSubscribers.Inc()
	logger.Log.Debug("Event feed subscriber connected", zap.Uint("user_id", userID))

	go c.writePump()
	go c.readPump()
	return nil
}

func (h *EventHub) remove(c *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	monitoring.EventFeedSubscribers.Dec()
}

// Close disconnects every subscriber.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		monitoring.EventFeedSubscribers.Dec()
	}
}

// readPump only drains control frames; subscribers do not send anything.
func (c *feedClient) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(feedReadLimit)
	c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Log.Warn("Event feed closed unexpectedly", zap.Uint("user_id", c.userID), zap.Error(err))
			}
			return
		}
	}
}

func (c *feedClient) writePump() {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
