package ws

import (
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/tindahan/pos-api/internal/application/notify"
	"github.com/tindahan/pos-api/pkg/logger"
)

var _ notify.Publisher = (*Hub)(nil)

// broadcast pairs a payload with the channel it belongs to.
type broadcast struct {
	channel string
	message []byte
}

// Client is one websocket connection plus the set of channels it listens to.
// An empty set means "everything".
type Client struct {
	Conn     *websocket.Conn
	Channels map[string]bool
}

func (c *Client) wants(channel string) bool {
	if len(c.Channels) == 0 {
		return true
	}
	return c.Channels[channel]
}

// Hub fans change notifications out to connected POS terminals. Publish is
// non-blocking: when the broadcast buffer is full the event is dropped, never
// stalling the request path that emitted it.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	clients   map[*Client]bool
	broadcast chan broadcast
	mu        sync.Mutex
	log       *logger.Logger
}

// NewHub builds the hub. Call Run in its own goroutine before serving.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcast, 256),
		log:        log,
	}
}

// Publish queues a message for every client subscribed to the channel.
// Never blocks; a full buffer drops the event.
func (h *Hub) Publish(channel string, message []byte) error {
	select {
	case h.broadcast <- broadcast{channel: channel, message: message}:
	default:
		h.log.Warn().Str("channel", channel).Msg("ws broadcast buffer full, dropping event")
	}
	return nil
}

// Run is the hub event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug().Int("clients", h.count()).Msg("ws client connected")

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Conn.Close()
			}
			h.mu.Unlock()

		case b := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.wants(b.channel) {
					continue
				}
				if err := client.Conn.WriteMessage(websocket.TextMessage, b.message); err != nil {
					client.Conn.Close()
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
