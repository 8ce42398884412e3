package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"crypto-arbitrage-scanner/internal/arbitrage"
	"crypto-arbitrage-scanner/internal/notify"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 64
)

type hubMessage struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message,omitempty"`
	Alert   *notify.Alert          `json:"alert,omitempty"`
	Cycle   *arbitrage.CycleReport `json:"cycle,omitempty"`
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans cycle reports and alert banners out to every connected websocket
// client. A client whose buffer is full is dropped.
type Hub struct {
	log     *zap.Logger
	mu      sync.RWMutex
	clients map[*hubClient]struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*hubClient]struct{}),
	}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Upgrade rejects plain HTTP requests to the websocket route.
func (h *Hub) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *Hub) Handler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := &hubClient{conn: conn, send: make(chan []byte, sendBufferSize)}
		h.register(client)
		defer h.unregister(client)

		// Reads only detect the close; clients have nothing to say.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return
			case msg, ok := <-client.send:
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage, nil)
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.log.Debug("websocket write failed", zap.Error(err))
					return
				}
			}
		}
	})
}

func (h *Hub) register(c *hubClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("websocket client connected", zap.Int("clients", h.Clients()))
}

func (h *Hub) unregister(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast queues msg for every client.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
			h.log.Warn("dropping slow websocket client")
		}
	}
}

func (h *Hub) broadcastJSON(msg hubMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

func (h *Hub) OnCycle(_ context.Context, report arbitrage.CycleReport) {
	if err := h.broadcastJSON(hubMessage{Type: "cycle", Cycle: &report}); err != nil {
		h.log.Error("Failed to marshal cycle report", zap.Error(err))
	}
}

// Name and Send make the hub the in-app banner alert sink.
func (h *Hub) Name() string {
	return "banner"
}

func (h *Hub) Send(_ context.Context, alert notify.Alert) error {
	return h.broadcastJSON(hubMessage{Type: "alert", Message: alert.Message(), Alert: &alert})
}
