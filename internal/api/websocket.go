package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"grimm.is/sincelast/internal/counter"
	"grimm.is/sincelast/internal/logging"
	"grimm.is/sincelast/internal/state"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Enforce same-origin policy for WebSocket upgrades
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// No origin header (non-browser client)
			return true
		}

		// Allow localhost for development/proxying
		if strings.Contains(origin, "://localhost:") || strings.Contains(origin, "://127.0.0.1:") {
			return true
		}

		host := r.Host
		if len(origin) > 7 && origin[:7] == "http://" {
			return origin[7:] == host
		}
		if len(origin) > 8 && origin[:8] == "https://" {
			return origin[8:] == host
		}
		return false
	},
}

// WSMessage is a topic-based message sent to clients
type WSMessage struct {
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

// wsClient represents a connected WebSocket client
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// WSManager pushes reset events to connected clients. It watches the
// state store's change stream for writes to the counter key, so a reset
// is propagated no matter which path performed it.
type WSManager struct {
	clients    map[*wsClient]bool
	register   chan *wsClient
	unregister chan *wsClient
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logging.Logger
}

// NewWSManager starts a manager fed by the given store's change stream.
// The manager runs until ctx is cancelled.
func NewWSManager(ctx context.Context, store state.Store, logger *logging.Logger) *WSManager {
	if logger == nil {
		logger = logging.Default()
	}
	m := &WSManager{
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		done:       make(chan struct{}),
		logger:     logger.WithComponent("ws"),
	}
	go m.run(ctx)
	go m.watch(ctx, store)
	return m
}

func (m *WSManager) run(ctx context.Context) {
	for {
		select {
		case client := <-m.register:
			m.mutex.Lock()
			m.clients[client] = true
			m.mutex.Unlock()
			metricWSClients.Inc()
		case client := <-m.unregister:
			m.mutex.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.send)
				client.conn.Close()
				metricWSClients.Dec()
			}
			m.mutex.Unlock()
		case <-ctx.Done():
			// Unblock pending register/unregister sends first.
			close(m.done)
			m.mutex.Lock()
			for client := range m.clients {
				delete(m.clients, client)
				close(client.send)
				client.conn.Close()
				metricWSClients.Dec()
			}
			m.mutex.Unlock()
			return
		}
	}
}

// watch converts counter-key changes from the store into reset pushes.
func (m *WSManager) watch(ctx context.Context, store state.Store) {
	for change := range store.Subscribe(ctx) {
		if change.Bucket != counter.Bucket || change.Key != counter.Key {
			continue
		}
		var epoch int64
		if err := json.Unmarshal(change.Value, &epoch); err != nil {
			m.logger.Warn("unreadable counter change", "error", err)
			continue
		}
		m.Publish("reset", CountResponse{Epoch: epoch})
	}
}

// Publish sends a message to all connected clients.
func (m *WSManager) Publish(topic string, data any) {
	msg := WSMessage{Topic: topic, Data: data}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for client := range m.clients {
		select {
		case client.send <- msgBytes:
		default:
			// Client is slow, skip this message
		}
	}
}

// ClientCount returns the number of connected clients.
func (m *WSManager) ClientCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// HandleWS upgrades the connection and registers the client.
func (m *WSManager) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 16),
	}
	select {
	case m.register <- client:
	case <-m.done:
		conn.Close()
		return
	}
	m.logger.Debug("websocket client connected", "id", client.id)

	go m.writePump(client)
	m.readPump(client)
}

// writePump forwards queued messages to the connection.
func (m *WSManager) writePump(c *wsClient) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump drains the connection until it closes; clients only listen,
// so inbound payloads are discarded.
func (m *WSManager) readPump(c *wsClient) {
	defer func() {
		select {
		case m.unregister <- c:
		case <-m.done:
			// Manager shut down; it closed the connection already.
		}
		m.logger.Debug("websocket client disconnected", "id", c.id)
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
