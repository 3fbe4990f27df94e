package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/food-listing-dashboard/utils"
)

// Event types
const (
	EventListingsChanged = "listings_changed"
)

// Listing change actions carried in a listings_changed event.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 25 * time.Second
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// ListingChange tells dashboards which listing changed so they can refresh.
type ListingChange struct {
	Action string `json:"action"`
	ID     int64  `json:"id"`
}

// Hub keeps the open dashboard connections and fans messages out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}

// Clients reports how many connections are registered.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast writes msg to every client. Clients that fail the write are
// dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("marshal %s event: %v", msg.Event, err)
		return
	}

	// writes are serialized under the write lock; a websocket conn allows
	// one writer at a time
	h.mu.Lock()
	var dead []*websocket.Conn
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Warnf("drop websocket client %s: %v", conn.RemoteAddr(), err)
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		delete(h.clients, conn)
	}
	sent := len(h.clients)
	h.mu.Unlock()

	for _, conn := range dead {
		conn.Close()
	}
	utils.InfoLogger.WithField("event", msg.Event).Debugf("broadcast to %d clients", sent)
}

// NotifyListingChange announces a create, update or delete of a listing.
func (h *Hub) NotifyListingChange(action string, id int64) {
	h.Broadcast(Message{
		Event: EventListingsChanged,
		Data:  ListingChange{Action: action, ID: id},
	})
}

// Handle upgrades the request and keeps the connection registered until the
// client goes away.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Warnf("websocket upgrade: %v", err)
		return
	}
	h.Register(conn)

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					h.Unregister(conn)
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.Unregister(conn)
			return
		}
	}
}
