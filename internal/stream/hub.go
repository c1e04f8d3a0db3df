// Package stream broadcasts sandbox frames to websocket clients as JSON.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/san-kum/rigidbox/internal/sandbox"
)

const (
	DefaultPingInterval = 2 * time.Second
	writeWait           = 5 * time.Second
	clientBuffer        = 8
	maxReadSize         = 1024
)

type ObjectMessage struct {
	ID          int        `json:"id"`
	Shape       string     `json:"shape"`
	Position    [3]float64 `json:"position"`
	Quaternion  [4]float64 `json:"quaternion"`
	Scale       [3]float64 `json:"scale"`
	Highlighted bool       `json:"highlighted"`
}

// Message is the wire form of one frame.
type Message struct {
	Tick    int             `json:"tick"`
	Elapsed float64         `json:"elapsed"`
	Objects []ObjectMessage `json:"objects"`
}

func NewMessage(f sandbox.Frame) Message {
	msg := Message{
		Tick:    f.Tick,
		Elapsed: f.Elapsed,
		Objects: make([]ObjectMessage, len(f.Objects)),
	}
	for i, o := range f.Objects {
		msg.Objects[i] = ObjectMessage{
			ID:          o.ID,
			Shape:       o.Shape,
			Position:    o.Position,
			Quaternion:  o.Quaternion,
			Scale:       o.Scale,
			Highlighted: o.Highlighted,
		}
	}
	return msg
}

func Encode(f sandbox.Frame) ([]byte, error) {
	return json.Marshal(NewMessage(f))
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames out to every connected client. OnFrame never blocks the
// sandbox: when the hub is behind, older frames are dropped, and a client
// that cannot keep up misses frames rather than stalling the others.
type Hub struct {
	upgrader     websocket.Upgrader
	frames       chan sandbox.Frame
	pingInterval time.Duration
	logger       *log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	sent    int
	dropped int
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		frames:       make(chan sandbox.Frame, 1),
		pingInterval: DefaultPingInterval,
		logger:       logger,
		clients:      make(map[*client]struct{}),
	}
}

func (h *Hub) SetPingInterval(d time.Duration) { h.pingInterval = d }

// OnFrame queues f for broadcast, replacing a frame that has not been sent yet.
func (h *Hub) OnFrame(f sandbox.Frame) {
	select {
	case h.frames <- f:
		return
	default:
	}
	select {
	case <-h.frames:
		h.mu.Lock()
		h.dropped++
		h.mu.Unlock()
	default:
	}
	select {
	case h.frames <- f:
	default:
	}
}

// Run broadcasts queued frames until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) error {
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-h.frames:
			data, err := Encode(f)
			if err != nil {
				h.logger.Error("encode frame", "tick", f.Tick, "err", err)
				continue
			}
			h.broadcast(data)
		}
	}
}

func (h *Hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
			h.sent++
		default:
			h.dropped++
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Stats returns how many messages were delivered to client queues and how
// many frames were dropped.
func (h *Hub) Stats() (sent, dropped int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sent, h.dropped
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("client connected", "remote", r.RemoteAddr, "clients", h.Clients())

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client messages; it exists to notice disconnects and
// answer pings.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)
	c.conn.SetReadLimit(maxReadSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(3 * h.pingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(3 * h.pingInterval))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("client read", "err", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client disconnected", "clients", n)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
