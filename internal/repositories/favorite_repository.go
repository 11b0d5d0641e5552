package repositories

import "marketplace/internal/models"

// FavoriteRepository defines the interface for favorite data access.
type FavoriteRepository interface {
	Create(favorite *models.Favorite) error
	GetByUserAndItem(userID, itemID string) (*models.Favorite, error)
	GetByUser(userID string) ([]models.Favorite, error)
	Delete(userID, itemID string) error
}
