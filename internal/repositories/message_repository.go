package repositories

import "marketplace/internal/models"

// MessageRepository defines the interface for message data access.
type MessageRepository interface {
	Create(message *models.Message) error
	// GetConversation returns all messages between the two users about the
	// item, in either direction, ordered by timestamp ascending.
	GetConversation(userID1, userID2, itemID string) ([]models.Message, error)
	// GetByUser returns all messages the user sent or received, ordered by
	// timestamp descending for an inbox view.
	GetByUser(userID string) ([]models.Message, error)
}
