package repositories

import "marketplace/internal/models"

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetByBuyer(buyerID string) ([]models.Order, error)
	UpdateStatus(id string, status models.OrderStatus, transactionID string) error
}
