package models

import "gorm.io/gorm"

// Image is the metadata row for a file stored on disk under the upload
// directory. Images live and die with their item.
type Image struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ItemID     string `json:"itemId" gorm:"type:varchar(36);index"`
	ImageURL   string `json:"imageUrl" gorm:"type:varchar(255)"`
	AltText    string `json:"altText" gorm:"type:varchar(255)"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
