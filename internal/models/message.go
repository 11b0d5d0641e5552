package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is one chat message about an item. Messages are immutable once
// created and ordered by Timestamp for conversation replay.
type Message struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	SenderID   string    `json:"senderId" gorm:"type:varchar(36);index"`
	ReceiverID string    `json:"receiverId" gorm:"type:varchar(36);index"`
	ItemID     string    `json:"itemId" gorm:"type:varchar(36);index"`
	Content    string    `json:"content" validate:"required,max=2000"`
	Timestamp  time.Time `json:"timestamp"`
	gorm.Model           // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
