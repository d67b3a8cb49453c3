package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/verte-zerg/tuidrill/internal/model"
)

const (
	clientBuffer = 16
	writeWait    = 5 * time.Second
	pingPeriod   = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// scoreMsg is the frame pushed to feed subscribers.
type scoreMsg struct {
	Type  string                 `json:"type"`
	Entry model.LeaderboardEntry `json:"entry"`
}

type feedClient struct {
	conn *websocket.Conn
	send chan scoreMsg
}

// Hub fans submitted scores out to websocket subscribers. Slow clients drop
// frames instead of blocking score submission.
type Hub struct {
	log *log.Logger

	mu      sync.Mutex
	clients map[*feedClient]struct{}
	closed  bool
}

// NewHub returns an empty hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{log: logger, clients: make(map[*feedClient]struct{})}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues e for every subscriber.
func (h *Hub) Broadcast(e model.LeaderboardEntry) {
	msg := scoreMsg{Type: "score", Entry: e}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.Warn("dropping score frame for slow client")
		}
	}
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

func (h *Hub) add(c *feedClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
}

// ServeWS upgrades the request and streams scores until the peer leaves.
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	client := &feedClient{conn: conn, send: make(chan scoreMsg, clientBuffer)}
	if !h.add(client) {
		_ = conn.WriteJSON(map[string]any{"type": "closed", "message": "server shutting down"})
		_ = conn.Close()
		return
	}

	// Reader: the feed is one-way, reads only detect the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		h.remove(client)
		_ = conn.Close()
	}()
	for {
		select {
		case <-done:
			return
		case msg, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
