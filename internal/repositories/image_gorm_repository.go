package repositories

import (
	"fmt"

	"marketplace/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMImageRepository is a GORM implementation of ImageRepository.
type GORMImageRepository struct {
	db *gorm.DB
}

// NewGORMImageRepository creates a new instance of GORMImageRepository.
func NewGORMImageRepository(db *gorm.DB) *GORMImageRepository {
	return &GORMImageRepository{
		db: db,
	}
}

// Create creates a new image metadata row.
func (r *GORMImageRepository) Create(image *models.Image) error {
	if image.ID == "" {
		image.ID = uuid.New().String()
	}
	if err := r.db.Create(image).Error; err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

// GetByItem retrieves all image rows for an item.
func (r *GORMImageRepository) GetByItem(itemID string) ([]models.Image, error) {
	var images []models.Image
	if err := r.db.Find(&images, "item_id = ?", itemID).Error; err != nil {
		return nil, fmt.Errorf("failed to get images for item %s: %w", itemID, err)
	}
	return images, nil
}

// DeleteByItem removes all image rows belonging to an item.
func (r *GORMImageRepository) DeleteByItem(itemID string) error {
	if err := r.db.Delete(&models.Image{}, "item_id = ?", itemID).Error; err != nil {
		return fmt.Errorf("failed to delete images for item %s: %w", itemID, err)
	}
	return nil
}
