package repositories

import (
	"errors"
	"fmt"
	"time"

	"marketplace/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMItemRepository is a GORM implementation of ItemRepository.
type GORMItemRepository struct {
	db *gorm.DB
}

// NewGORMItemRepository creates a new instance of GORMItemRepository.
func NewGORMItemRepository(db *gorm.DB) *GORMItemRepository {
	return &GORMItemRepository{
		db: db,
	}
}

// GetAll retrieves all items with their images preloaded.
func (r *GORMItemRepository) GetAll() ([]models.Item, error) {
	var items []models.Item
	if err := r.db.Preload("Images").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get all items: %w", err)
	}
	return items, nil
}

// GetByID retrieves a single item by its ID with images preloaded.
func (r *GORMItemRepository) GetByID(id string) (*models.Item, error) {
	var item models.Item
	if err := r.db.Preload("Images").First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get item by ID %s: %w", id, err)
	}
	return &item, nil
}

// GetByUser retrieves all items owned by the given user.
func (r *GORMItemRepository) GetByUser(userID string) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.Preload("Images").Find(&items, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to get items for user %s: %w", userID, err)
	}
	return items, nil
}

// GetByCategory retrieves all items in the given category.
func (r *GORMItemRepository) GetByCategory(categoryID string) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.Preload("Images").Find(&items, "category_id = ?", categoryID).Error; err != nil {
		return nil, fmt.Errorf("failed to get items for category %s: %w", categoryID, err)
	}
	return items, nil
}

// SearchByDescription retrieves items whose brief or full description
// contains the keyword.
func (r *GORMItemRepository) SearchByDescription(keyword string) ([]models.Item, error) {
	var items []models.Item
	pattern := "%" + keyword + "%"
	err := r.db.Preload("Images").
		Where("brief_description LIKE ? OR full_description LIKE ?", pattern, pattern).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search items by description: %w", err)
	}
	return items, nil
}

// GetByPriceRange retrieves items priced within [minPrice, maxPrice].
func (r *GORMItemRepository) GetByPriceRange(minPrice, maxPrice float64) ([]models.Item, error) {
	var items []models.Item
	err := r.db.Preload("Images").
		Where("price BETWEEN ? AND ?", minPrice, maxPrice).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get items by price range: %w", err)
	}
	return items, nil
}

// Create creates a new item in the database.
func (r *GORMItemRepository) Create(item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Update updates an existing item in the database.
func (r *GORMItemRepository) Update(item *models.Item) error {
	res := r.db.Save(item)
	if res.Error != nil {
		return fmt.Errorf("failed to update item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item with ID %s for update: %w", item.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes an item. Image rows are the image repository's concern
// and are removed by the service before the item goes.
func (r *GORMItemRepository) Delete(id string) error {
	res := r.db.Delete(&models.Item{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item with ID %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// Reserve places a hold via a single conditional UPDATE so two concurrent
// callers cannot both win. The guard admits items that are not RESERVED and
// items whose hold is at least the reservation window old.
func (r *GORMItemRepository) Reserve(id, userID string, now time.Time) (bool, error) {
	cutoff := now.Add(-models.ReservationWindow)
	res := r.db.Model(&models.Item{}).
		Where("id = ?", id).
		Where("status <> ? OR reservation_date IS NULL OR reservation_date <= ?",
			models.ItemStatusReserved, cutoff).
		Updates(map[string]interface{}{
			"status":           models.ItemStatusReserved,
			"reservation_date": now,
			"reserved_by_id":   userID,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to reserve item %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ClearReservation resets the item to ACTIVE and nulls both hold fields.
func (r *GORMItemRepository) ClearReservation(id string) error {
	res := r.db.Model(&models.Item{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           models.ItemStatusActive,
			"reservation_date": nil,
			"reserved_by_id":   nil,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to clear reservation for item %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item with ID %s for reservation clear: %w", id, ErrNotFound)
	}
	return nil
}

// SetStatus moves the item to the given lifecycle status.
func (r *GORMItemRepository) SetStatus(id string, status models.ItemStatus) error {
	res := r.db.Model(&models.Item{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to set status for item %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item with ID %s for status update: %w", id, ErrNotFound)
	}
	return nil
}
