package controller

import (
	"fmt"
	"log"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Hub fans notifications out to live websocket connections, keyed by user
// id. A user may hold several connections (multiple tabs). Publish is
// best-effort: dead connections are dropped, errors reported to the caller
// who logs and moves on.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uint]map[*websocket.Conn]bool
	Logger *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		conns:  make(map[uint]map[*websocket.Conn]bool),
		Logger: logger,
	}
}

func (h *Hub) add(userID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]bool)
	}
	h.conns[userID][conn] = true
}

func (h *Hub) remove(userID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[userID], conn)
	if len(h.conns[userID]) == 0 {
		delete(h.conns, userID)
	}
}

// Publish pushes payload to every live connection of recipientID. Returns an
// error only when every delivery attempt failed.
func (h *Hub) Publish(recipientID uint, payload interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	targets := h.conns[recipientID]
	if len(targets) == 0 {
		return nil
	}

	delivered := 0
	for conn := range targets {
		if err := conn.WriteJSON(payload); err != nil {
			h.Logger.Printf("dropping dead connection for user %d: %v", recipientID, err)
			conn.Close()
			delete(targets, conn)
			continue
		}
		delivered++
	}
	if len(targets) == 0 {
		delete(h.conns, recipientID)
	}
	if delivered == 0 {
		return fmt.Errorf("no live connection reached for user %d", recipientID)
	}
	return nil
}

// HandleNotificationWS keeps a client connection registered until it closes.
// The user id is set by the JWT middleware before the upgrade.
func (h *Hub) HandleNotificationWS(c *websocket.Conn) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		c.Close()
		return
	}

	h.add(userID, c)
	defer func() {
		h.remove(userID, c)
		c.Close()
	}()

	// Drain client frames; the read error is the disconnect signal.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
