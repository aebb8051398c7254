package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/microcosm/internal/platform/logger"
)

const (
	writeWait      = 10 * time.Second
	maxStreamConns = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Read-only broadcast stream; origin checks add nothing here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans simulation snapshots out to websocket subscribers. Slow
// clients are dropped rather than allowed to stall the broadcast.
type Hub struct {
	log *logger.Logger

	register   chan *streamClient
	unregister chan *streamClient
	broadcast  chan []byte
	clients    map[*streamClient]bool
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a stopped hub; call Run in a goroutine.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:        log,
		register:   make(chan *streamClient),
		unregister: make(chan *streamClient),
		broadcast:  make(chan []byte, 8),
		clients:    make(map[*streamClient]bool),
	}
}

// Run owns the client set. Blocking.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			if len(h.clients) >= maxStreamConns {
				c.conn.Close()
				continue
			}
			h.clients[c] = true
			h.log.Info().Int("clients", len(h.clients)).Msg("stream client connected")
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Info().Int("clients", len(h.clients)).Msg("stream client disconnected")
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Broadcast marshals v and queues it to every subscriber. Safe from any
// goroutine; drops the frame if the hub is backed up.
func (h *Hub) Broadcast(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- msg:
	default:
	}
}

// HandleUpgrade upgrades an HTTP request to a stream subscription.
func (h *Hub) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("stream upgrade failed")
		return
	}
	c := &streamClient{conn: conn, send: make(chan []byte, 32)}
	h.register <- c

	go c.writeLoop(h)
	go c.readLoop(h)
}

func (c *streamClient) writeLoop(h *Hub) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readLoop discards inbound frames; its job is noticing disconnects.
func (c *streamClient) readLoop(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
