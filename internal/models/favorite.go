package models

import (
	"time"

	"gorm.io/gorm"
)

// Favorite is a user's bookmark of an item. At most one row may exist per
// (user, item) pair; the composite unique index enforces it.
type Favorite struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID     string    `json:"userId" gorm:"type:varchar(36);uniqueIndex:idx_favorites_user_item"`
	ItemID     string    `json:"itemId" gorm:"type:varchar(36);uniqueIndex:idx_favorites_user_item"`
	DateAdded  time.Time `json:"dateAdded"`
	gorm.Model           // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
