package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/docshelf/backend/internal/documents"
	"github.com/GriffinCanCode/docshelf/backend/internal/shared/id"
	"github.com/GriffinCanCode/docshelf/backend/internal/shared/types"
)

const (
	// WriteTimeout is the timeout for writing to a client
	WriteTimeout = 10 * time.Second

	// PingInterval is how often clients are pinged
	PingInterval = 30 * time.Second

	// PongTimeout is how long a client may stay silent before it is dropped
	PongTimeout = 2 * PingInterval

	// sendBuffer is the number of queued messages per client before it is
	// considered too slow and disconnected
	sendBuffer = 16
)

// Message types sent to clients
const (
	TypeConnected = "connected"
	TypePong      = "pong"
	TypeError     = "error"
)

// Recorder receives websocket metrics
type Recorder interface {
	IncWSConnections()
	DecWSConnections()
	RecordWSMessage(direction, msgType string)
}

type nopRecorder struct{}

func (nopRecorder) IncWSConnections()              {}
func (nopRecorder) DecWSConnections()              {}
func (nopRecorder) RecordWSMessage(string, string) {}

type client struct {
	id   id.ConnID
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub pushes document location events to every connected client
type Hub struct {
	logger   *zap.Logger
	metrics  Recorder
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger, metrics Recorder) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Hub{
		logger:  logger.Named("ws"),
		metrics: metrics,
		upgrader: websocket.Upgrader{
			// Local backend; CORS policy already allows any origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// PublishEvent sends a location change to all clients. It has the signature
// of documents.Options.OnChange.
func (h *Hub) PublishEvent(ev documents.Event) {
	h.Broadcast(types.WSMessage{
		Type:      string(ev.Type),
		Data:      ev,
		Timestamp: ev.At.Unix(),
	})
}

// Broadcast queues msg for every client. Clients whose queue is full are
// disconnected.
func (h *Hub) Broadcast(msg types.WSMessage) {
	data, err := sonic.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode websocket message", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
			h.metrics.RecordWSMessage("out", msg.Type)
		default:
			h.logger.Warn("Client too slow, disconnecting", zap.String("conn_id", c.id.String()))
			h.removeLocked(c)
		}
	}
}

// Handle upgrades the request and serves the client until it disconnects
func (h *Hub) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		id:   id.NewConnID(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	if !h.add(cl) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(WriteTimeout))
		conn.Close()
		return
	}

	h.logger.Info("Client connected", zap.String("conn_id", cl.id.String()))
	h.queue(cl, types.WSMessage{
		Type:      TypeConnected,
		Data:      map[string]string{"conn_id": cl.id.String()},
		Timestamp: time.Now().Unix(),
	})

	go h.writePump(cl)
	h.readPump(cl)
}

// Close disconnects every client and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.metrics.IncWSConnections()
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.close()
	h.metrics.DecWSConnections()
}

// queue sends msg to one client without blocking
func (h *Hub) queue(c *client, msg types.WSMessage) {
	data, err := sonic.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
		h.metrics.RecordWSMessage("out", msg.Type)
	default:
	}
}

// readPump consumes client messages. Only pings are understood.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
		h.logger.Info("Client disconnected", zap.String("conn_id", c.id.String()))
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(PongTimeout))
	})

	for {
		var msg types.WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.String("conn_id", c.id.String()), zap.Error(err))
			}
			return
		}
		h.metrics.RecordWSMessage("in", msg.Type)

		switch msg.Type {
		case "ping":
			h.queue(c, types.WSMessage{Type: TypePong, Timestamp: time.Now().Unix()})
		default:
			h.queue(c, types.WSMessage{
				Type:      TypeError,
				Data:      map[string]string{"error": "unknown message type"},
				Timestamp: time.Now().Unix(),
			})
		}
	}
}

// writePump is the only writer to the connection
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
