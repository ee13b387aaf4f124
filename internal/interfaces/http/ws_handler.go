package http

import (
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/tindahan/pos-api/internal/infrastructure/ws"
	"github.com/tindahan/pos-api/pkg/jwt"
)

// WSUpgrade rejects plain HTTP requests on the websocket route and
// authenticates the upgrade via a token query parameter (browsers cannot set
// an Authorization header on a websocket dial).
func WSUpgrade(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		token := c.Query("token")
		if token == "" {
			return fiber.ErrUnauthorized
		}
		userID, _, err := jwt.Parse(jwtSecret, token)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}

// WSHandler registers the connection with the hub and blocks reading until
// the client goes away. Channel subscriptions come from the channels query
// parameter, comma-separated; none means all channels.
func WSHandler(hub *ws.Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		channels := make(map[string]bool)
		if raw := conn.Query("channels"); raw != "" {
			for _, ch := range strings.Split(raw, ",") {
				if ch = strings.TrimSpace(ch); ch != "" {
					channels[ch] = true
				}
			}
		}

		client := &ws.Client{Conn: conn, Channels: channels}
		hub.Register <- client
		defer func() { hub.Unregister <- client }()

		// Inbound frames are ignored; the read loop only detects disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
