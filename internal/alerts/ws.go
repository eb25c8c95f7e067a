package alerts

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/omas1st/contestbk/internal/utils"
)

type wsEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type hub struct {
	userID  string
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

var (
	hubsMu sync.RWMutex
	hubs   = make(map[string]*hub)
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func getHub(userID string) *hub {
	hubsMu.Lock()
	defer hubsMu.Unlock()
	if h, ok := hubs[userID]; ok {
		return h
	}
	h := &hub{userID: userID, clients: make(map[*websocket.Conn]bool)}
	hubs[userID] = h
	return h
}

func (h *hub) broadcast(evt wsEvent) {
	payload, _ := json.Marshal(evt)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		_ = c.WriteMessage(websocket.TextMessage, payload)
	}
}

func (h *hub) register(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *hub) unregister(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// pushToUser fans a new notification out to the user's open sockets. Failures
// are silent; the notification row is already persisted.
func pushToUser(userID string, n Notification) {
	hubsMu.RLock()
	h, ok := hubs[userID]
	hubsMu.RUnlock()
	if !ok {
		return
	}
	h.broadcast(wsEvent{Type: "notification", Data: n})
}

// StreamNotifications upgrades the connection and keeps it registered until
// the client goes away. Auth comes from a ?token= query parameter because
// browsers can't set headers on websocket dials.
func StreamNotifications(c echo.Context) error {
	userID, err := utils.UserIDFromToken(c.QueryParam("token"))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h := getHub(userID)
	h.register(conn)
	defer func() {
		h.unregister(conn)
		conn.Close()
	}()

	// Drain control frames until the peer disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
