package api

import (
	"net/http"
	"sync"

	"certquest_miniapp/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// Event is a progress toast pushed to the mini app over the socket.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// EventHub keeps one websocket set per telegram user and fans events
// out to every open connection of that user. Slow or dead sockets are
// dropped rather than blocking the sender.
type EventHub struct {
	mu       sync.RWMutex
	conns    map[int64]map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

func NewEventHub() *EventHub {
	return &EventHub{
		conns: make(map[int64]map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *EventHub) add(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
}

func (h *EventHub) remove(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.conns[userID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
	conn.Close()
}

// Publish sends the event to every socket the user has open. A write
// failure evicts that socket only.
func (h *EventHub) Publish(userID int64, event Event) {
	log := logger.Logger()

	data, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to marshal event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(h.conns[userID]))
	for conn := range h.conns[userID] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Info("dropping websocket after failed write",
				zap.Int64("telegram_id", userID),
				zap.Error(err))
			h.remove(userID, conn)
		}
	}
}

type wsRoutes struct {
	hub *EventHub
}

func NewWsRoutes(handler *gin.RouterGroup, hub *EventHub) {
	r := &wsRoutes{hub: hub}
	handler.GET("/ws/:telegram_id", r.Subscribe)
}

func (r *wsRoutes) Subscribe(c *gin.Context) {
	log := logger.Logger()

	id, ok := parseTelegramID(c)
	if !ok {
		return
	}

	conn, err := r.hub.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("failed to upgrade websocket", zap.Error(err))
		return
	}

	r.hub.add(id, conn)
	defer r.hub.remove(id, conn)

	// the client only listens; reads drain control frames and detect close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
