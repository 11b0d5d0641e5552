package handlers

import (
	"encoding/json"
	"errors"
	"sync"

	"marketplace/internal/middleware"
	"marketplace/internal/services"
	"marketplace/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

// ChatHandler upgrades authenticated clients to a websocket and bridges it
// to the chat topic exchange. Messages sent over the socket are persisted
// through MessageService exactly like the REST path, then relayed; the
// socket only adds live delivery.
type ChatHandler struct {
	authService    *services.AuthService
	messageService *services.MessageService
	mqClient       *rabbitmq.Client // nil when RabbitMQ is unavailable; sockets still accept sends
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(
	authService *services.AuthService,
	messageService *services.MessageService,
	mqClient *rabbitmq.Client,
) *ChatHandler {
	return &ChatHandler{
		authService:    authService,
		messageService: messageService,
		mqClient:       mqClient,
	}
}

// RegisterRoutes registers the websocket endpoint. The upgrade guard
// authenticates before the protocol switch; browsers cannot set headers on
// websocket handshakes, so a ?token= query parameter is accepted alongside
// the usual cookie and Bearer transports.
func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	router.Use("/ws/chat", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		tokenString := middleware.TokenFromRequest(c)
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "No token provided",
			})
		}

		claims, err := h.authService.ValidateToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.Locals("user_id", claims["user_id"])
		return c.Next()
	})
	router.Get("/ws/chat", websocket.New(h.handleConnection))
}

// ChatFrame is a client-to-server websocket frame.
type ChatFrame struct {
	Type       string `json:"type"`
	ReceiverID string `json:"receiverId,omitempty"`
	ItemID     string `json:"itemId,omitempty"`
	Content    string `json:"content,omitempty"`
}

// ChatEvent is a server-to-client websocket frame.
type ChatEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (h *ChatHandler) handleConnection(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	if userID == "" {
		conn.Close()
		return
	}

	// The gorilla-based conn allows one concurrent writer; the relay
	// goroutine and the read loop share it.
	var writeMu sync.Mutex
	writeEvent := func(event ChatEvent) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(event)
	}

	var subscription *rabbitmq.Subscription
	defer func() {
		if subscription != nil {
			subscription.Close()
		}
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Printf("Websocket read error for user %s: %v", userID, err)
			}
			return
		}

		var frame ChatFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			writeEvent(ChatEvent{Type: "chat.error", Error: "invalid frame"})
			continue
		}

		switch frame.Type {
		case "chat.addUser":
			if subscription != nil {
				continue
			}
			if h.mqClient == nil {
				writeEvent(ChatEvent{Type: "chat.error", Error: "live delivery unavailable"})
				continue
			}
			sub, err := h.mqClient.SubscribeChat("chat.*." + userID)
			if err != nil {
				logrus.Printf("Failed to subscribe user %s to chat: %v", userID, err)
				writeEvent(ChatEvent{Type: "chat.error", Error: "live delivery unavailable"})
				continue
			}
			subscription = sub
			go h.forwardDeliveries(sub, writeEvent)
			writeEvent(ChatEvent{Type: "chat.joined"})

		case "chat.sendMessage":
			message, err := h.messageService.SendMessage(userID, frame.ReceiverID, frame.ItemID, frame.Content)
			if err != nil {
				if errors.Is(err, services.ErrNotFound) {
					writeEvent(ChatEvent{Type: "chat.error", Error: "receiver or item not found"})
				} else {
					logrus.Printf("Error sending chat message for user %s: %v", userID, err)
					writeEvent(ChatEvent{Type: "chat.error", Error: "could not send message"})
				}
				continue
			}
			writeEvent(ChatEvent{Type: "chat.sent", Payload: message})

		default:
			writeEvent(ChatEvent{Type: "chat.error", Error: "unknown frame type"})
		}
	}
}

// forwardDeliveries pushes relayed messages from the subscription to the
// socket until either side closes.
func (h *ChatHandler) forwardDeliveries(sub *rabbitmq.Subscription, writeEvent func(ChatEvent) error) {
	for delivery := range sub.Deliveries {
		var payload json.RawMessage = delivery.Body
		if err := writeEvent(ChatEvent{Type: "chat.message", Payload: payload}); err != nil {
			return
		}
	}
}
