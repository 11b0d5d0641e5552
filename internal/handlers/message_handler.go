package handlers

import (
	"errors"

	"marketplace/internal/middleware"
	"marketplace/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// MessageHandler handles HTTP requests for the persisted side of chat:
// sending messages, reading conversations, and the inbox.
type MessageHandler struct {
	messageService *services.MessageService
	validate       *validator.Validate
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the messaging routes. Everything requires a
// session.
func (h *MessageHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	messageRoutes := router.Group("/messages", authRequired)
	messageRoutes.Post("/", h.HandleSendMessage)
	messageRoutes.Get("/conversations", h.HandleGetUserMessages)
	messageRoutes.Get("/conversation/:itemId/:userId", h.HandleGetConversation)
}

// SendMessageRequest is the body for sending a chat message.
type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	ItemID     string `json:"itemId" validate:"required"`
	Content    string `json:"content" validate:"required,max=2000"`
}

// HandleSendMessage persists a message and relays it to the receiver.
func (h *MessageHandler) HandleSendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	message, err := h.messageService.SendMessage(middleware.CurrentUserID(c), req.ReceiverID, req.ItemID, req.Content)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Receiver or item not found",
			})
		}
		logrus.Printf("Error sending message: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not send message",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// HandleGetConversation returns the full exchange between the caller and
// another user about an item, oldest first. Either participant gets the
// same view.
func (h *MessageHandler) HandleGetConversation(c *fiber.Ctx) error {
	otherUserID := c.Params("userId")
	itemID := c.Params("itemId")

	messages, err := h.messageService.GetConversation(middleware.CurrentUserID(c), otherUserID, itemID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User or item not found",
			})
		}
		logrus.Printf("Error getting conversation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve conversation",
		})
	}
	return c.JSON(messages)
}

// HandleGetUserMessages returns the caller's inbox, newest first.
func (h *MessageHandler) HandleGetUserMessages(c *fiber.Ctx) error {
	messages, err := h.messageService.GetUserMessages(middleware.CurrentUserID(c))
	if err != nil {
		logrus.Printf("Error getting user messages: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve messages",
		})
	}
	return c.JSON(messages)
}
