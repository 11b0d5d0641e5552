package repositories

import (
	"errors"
	"fmt"

	"marketplace/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMFavoriteRepository is a GORM implementation of FavoriteRepository.
type GORMFavoriteRepository struct {
	db *gorm.DB
}

// NewGORMFavoriteRepository creates a new instance of GORMFavoriteRepository.
func NewGORMFavoriteRepository(db *gorm.DB) *GORMFavoriteRepository {
	return &GORMFavoriteRepository{
		db: db,
	}
}

// Create creates a new favorite row. The composite unique index on
// (user_id, item_id) rejects duplicates at the database level.
func (r *GORMFavoriteRepository) Create(favorite *models.Favorite) error {
	if favorite.ID == "" {
		favorite.ID = uuid.New().String()
	}
	if err := r.db.Create(favorite).Error; err != nil {
		return fmt.Errorf("failed to create favorite: %w", err)
	}
	return nil
}

// GetByUserAndItem retrieves the favorite row for a (user, item) pair.
func (r *GORMFavoriteRepository) GetByUserAndItem(userID, itemID string) (*models.Favorite, error) {
	var favorite models.Favorite
	err := r.db.First(&favorite, "user_id = ? AND item_id = ?", userID, itemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("favorite for user %s and item %s: %w", userID, itemID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get favorite for user %s and item %s: %w", userID, itemID, err)
	}
	return &favorite, nil
}

// GetByUser retrieves all favorites of a user.
func (r *GORMFavoriteRepository) GetByUser(userID string) ([]models.Favorite, error) {
	var favorites []models.Favorite
	if err := r.db.Find(&favorites, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to get favorites for user %s: %w", userID, err)
	}
	return favorites, nil
}

// Delete removes the favorite row for a (user, item) pair. Deleting an
// absent row is not an error.
func (r *GORMFavoriteRepository) Delete(userID, itemID string) error {
	if err := r.db.Delete(&models.Favorite{}, "user_id = ? AND item_id = ?", userID, itemID).Error; err != nil {
		return fmt.Errorf("failed to delete favorite for user %s and item %s: %w", userID, itemID, err)
	}
	return nil
}
