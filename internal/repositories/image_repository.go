package repositories

import "marketplace/internal/models"

// ImageRepository defines the interface for image metadata access.
type ImageRepository interface {
	Create(image *models.Image) error
	GetByItem(itemID string) ([]models.Image, error)
	DeleteByItem(itemID string) error
}
