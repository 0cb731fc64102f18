package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"eventrequests/internal/domain"
	"eventrequests/internal/relay"
)

const (
	sendBuffer    = 16
	writeTimeout  = 10 * time.Second
	maxFrameBytes = 64 << 10
)

type client struct {
	id       string
	identity domain.Identity
	conn     *websocket.Conn
	send     chan []byte
}

// Hub is the backend end of the push channel. Frames received from one client
// are fanned out to every other client; Broadcast reaches all of them.
// Delivery is at-most-once: a client whose buffer is full misses the frame.
type Hub struct {
	logger   *slog.Logger
	verifier domain.TokenVerifier
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub returns a Hub accepting connections from allowedOrigins (requests
// without an Origin header are always accepted).
func NewHub(verifier domain.TokenVerifier, logger *slog.Logger, allowedOrigins []string) *Hub {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimSuffix(strings.TrimSpace(o), "/")] = struct{}{}
	}
	return &Hub{
		logger:   logger,
		verifier: verifier,
		clients:  make(map[string]*client),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// ServeHTTP authenticates and upgrades the request, then pumps frames until
// the client goes away. Browsers cannot set headers on WebSocket requests, so
// the token may also come as ?token=.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	identity, err := h.verifier.Verify(token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("push upgrade failed", "err", err)
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	c := &client{id: uuid.NewString(), identity: identity, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	go h.writePump(c)
	h.readPump(c)
}

// Broadcast sends {"type": event, ...payload} to every connected client.
func (h *Hub) Broadcast(event string, payload any) error {
	frame, err := relay.EncodeFrame(event, payload)
	if err != nil {
		return err
	}
	h.fanOut(frame, "")
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()
	for _, c := range clients {
		close(c.send)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("push client connected", "client_id", c.id, "user_id", c.identity.UserID, "clients", n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	if ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()
	if ok {
		h.logger.Info("push client disconnected", "client_id", c.id, "user_id", c.identity.UserID)
	}
}

func (h *Hub) readPump(c *client) {
	defer h.unregister(c)
	for {
		typ, frame, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if typ != websocket.TextMessage {
			continue
		}
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(frame, &head); err != nil || head.Type == "" {
			h.logger.Debug("push frame dropped", "client_id", c.id, "err", err)
			continue
		}
		h.fanOut(frame, c.id)
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for frame := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			h.logger.Debug("push write failed", "client_id", c.id, "err", err)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) fanOut(frame []byte, exceptID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		if id == exceptID {
			continue
		}
		select {
		case c.send <- frame:
		default:
			h.logger.Warn("push frame dropped for slow client", "client_id", id)
		}
	}
}
