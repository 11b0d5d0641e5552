package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
)

// MessageService persists conversations and relays new messages over the
// chat topic exchange to connected clients.
type MessageService struct {
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	itemRepo    repositories.ItemRepository
	mqClient    *rabbitmq.Client // nil when RabbitMQ is unavailable; relay degrades to persistence only
}

// NewMessageService creates a new MessageService.
func NewMessageService(
	messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository,
	itemRepo repositories.ItemRepository,
	mqClient *rabbitmq.Client,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		itemRepo:    itemRepo,
		mqClient:    mqClient,
	}
}

// ChatRoutingKey is the topic a saved message is relayed on: one topic per
// (item, receiver) pair.
func ChatRoutingKey(itemID, receiverID string) string {
	return fmt.Sprintf("chat.%s.%s", itemID, receiverID)
}

// SendMessage validates the participants, persists the message, then
// republishes it to the receiver's chat topic. The relay is fire-and-forget:
// a publish failure is logged and the saved message is still returned.
func (s *MessageService) SendMessage(senderID, receiverID, itemID, content string) (*models.Message, error) {
	if _, err := s.userRepo.GetByID(receiverID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("receiver %s: %w", receiverID, ErrNotFound)
		}
		return nil, err
	}
	if _, err := s.itemRepo.GetByID(itemID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}
		return nil, err
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		ItemID:     itemID,
		Content:    content,
		Timestamp:  time.Now(),
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	if s.mqClient != nil {
		body, err := json.Marshal(message)
		if err != nil {
			logrus.Printf("Failed to marshal message %s for relay: %v", message.ID, err)
		} else if err := s.mqClient.PublishChat(ChatRoutingKey(itemID, receiverID), body); err != nil {
			logrus.Printf("Warning: failed to relay message %s: %v", message.ID, err)
		}
	}

	return message, nil
}

// GetConversation returns the full exchange between the current user and
// another user about an item, oldest first. The result is identical no
// matter which participant asks.
func (s *MessageService) GetConversation(currentUserID, otherUserID, itemID string) ([]models.Message, error) {
	if _, err := s.userRepo.GetByID(otherUserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", otherUserID, ErrNotFound)
		}
		return nil, err
	}
	if _, err := s.itemRepo.GetByID(itemID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}
		return nil, err
	}
	return s.messageRepo.GetConversation(currentUserID, otherUserID, itemID)
}

// GetUserMessages returns every message the user participates in, newest
// first, for the inbox view.
func (s *MessageService) GetUserMessages(userID string) ([]models.Message, error) {
	return s.messageRepo.GetByUser(userID)
}
