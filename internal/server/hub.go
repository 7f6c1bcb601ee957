package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roach88/motion/internal/control"
	"github.com/roach88/motion/internal/host"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Envelope is every message the hub writes.
type Envelope struct {
	Type string `json:"type"` // "notification" | "frame" | "error"

	Notification *host.Notification `json:"notification,omitempty"`
	Frame        *FrameSummary      `json:"frame,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// FrameSummary describes one delivered frame that had running instances.
type FrameSummary struct {
	Now       float64 `json:"now"`
	Instances int     `json:"instances"`
}

// client is one websocket connection.
type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans engine output out to websocket clients and posts their requests
// onto the engine loop.
type Hub struct {
	engine control.Engine
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func newHub(e control.Engine, logger *slog.Logger) *Hub {
	return &Hub{
		engine:  e,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Notify broadcasts an engine notification. It never blocks: a client
// whose buffer is full is disconnected.
func (h *Hub) Notify(n host.Notification) {
	h.broadcast(Envelope{Type: "notification", Notification: &n})
}

// Frame broadcasts a frame summary.
func (h *Hub) Frame(f FrameSummary) {
	h.broadcast(Envelope{Type: "frame", Frame: &f})
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("encode broadcast", "type", env.Type, "error", err)
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("websocket client too slow, disconnecting", "remote", c.conn.RemoteAddr())
		h.unregister(c)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("websocket client connected", "remote", c.conn.RemoteAddr(), "clients", n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		c.close()
		h.logger.Info("websocket client disconnected", "remote", c.conn.RemoteAddr(), "clients", n)
	}
}

// closeAll disconnects every client.
func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()
	for c := range clients {
		c.close()
	}
}

// serve upgrades the request and runs the client's pumps. It returns when
// the connection closes.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

// readPump decodes inbound requests until the connection fails.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		r, err := control.Decode(data)
		if err != nil {
			h.reply(c, Envelope{Type: "error", Error: err.Error()})
			continue
		}
		err = control.Post(h.engine, r, func(err error) {
			h.reply(c, Envelope{Type: "error", Error: err.Error()})
		})
		if err != nil {
			h.reply(c, Envelope{Type: "error", Error: err.Error()})
		}
	}
}

// reply sends to one client if it is still connected.
func (h *Hub) reply(c *client, env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump writes queued messages and pings until the send channel
// closes.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Warn("websocket write failed", "error", err)
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
