package repositories

import (
	"fmt"

	"marketplace/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMMessageRepository is a GORM implementation of MessageRepository.
type GORMMessageRepository struct {
	db *gorm.DB
}

// NewGORMMessageRepository creates a new instance of GORMMessageRepository.
func NewGORMMessageRepository(db *gorm.DB) *GORMMessageRepository {
	return &GORMMessageRepository{
		db: db,
	}
}

// Create creates a new message in the database.
func (r *GORMMessageRepository) Create(message *models.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetConversation returns the messages exchanged between two users about an
// item, in either direction, oldest first. The pair is symmetric: querying
// as either participant yields the same set.
func (r *GORMMessageRepository) GetConversation(userID1, userID2, itemID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Where("item_id = ?", itemID).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID1, userID2, userID2, userID1).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation for item %s: %w", itemID, err)
	}
	return messages, nil
}

// GetByUser returns every message the user participates in, newest first.
func (r *GORMMessageRepository) GetByUser(userID string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("timestamp DESC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get messages for user %s: %w", userID, err)
	}
	return messages, nil
}
