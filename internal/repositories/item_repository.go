package repositories

import (
	"time"

	"marketplace/internal/models"
)

// ItemRepository defines the interface for item data access.
type ItemRepository interface {
	GetAll() ([]models.Item, error)
	GetByID(id string) (*models.Item, error)
	GetByUser(userID string) ([]models.Item, error)
	GetByCategory(categoryID string) ([]models.Item, error)
	SearchByDescription(keyword string) ([]models.Item, error)
	GetByPriceRange(minPrice, maxPrice float64) ([]models.Item, error)
	Create(item *models.Item) error
	Update(item *models.Item) error
	Delete(id string) error

	// Reserve atomically places a hold on the item. It succeeds when the
	// item is not RESERVED, or its existing hold is older than the
	// reservation window. Returns false when another live hold won.
	Reserve(id, userID string, now time.Time) (bool, error)
	// ClearReservation resets the item to ACTIVE with both reservation
	// fields nulled.
	ClearReservation(id string) error
	// SetStatus moves the item to the given lifecycle status.
	SetStatus(id string, status models.ItemStatus) error
}
