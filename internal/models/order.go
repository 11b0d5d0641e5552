package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus tracks a purchase from initiation through the payment
// gateway's asynchronous result.
type OrderStatus string

const (
	OrderStatusReserved  OrderStatus = "RESERVED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order represents a purchase of a single item.
type Order struct {
	ID            string      `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	BuyerID       string      `json:"buyerId" gorm:"type:varchar(36);index"`
	ItemID        string      `json:"itemId" gorm:"type:varchar(36);index"`
	OrderDate     time.Time   `json:"orderDate"`
	Status        OrderStatus `json:"status" gorm:"type:varchar(16)"`
	PaymentMethod string      `json:"paymentMethod" gorm:"type:varchar(32)"`
	TransactionID string      `json:"transactionId" gorm:"type:varchar(64)"`
	gorm.Model                // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// NewOrder starts a purchase in the RESERVED state.
func NewOrder(buyerID, itemID, paymentMethod string) *Order {
	return &Order{
		BuyerID:       buyerID,
		ItemID:        itemID,
		PaymentMethod: paymentMethod,
		OrderDate:     time.Now(),
		Status:        OrderStatusReserved,
	}
}
