package models

import (
	"time"

	"gorm.io/gorm"
)

// ItemStatus tracks where a listing is in its lifecycle.
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "ACTIVE"
	ItemStatusReserved ItemStatus = "RESERVED"
	ItemStatusSold     ItemStatus = "SOLD"
	ItemStatusArchived ItemStatus = "ARCHIVED"
)

// ReservationWindow is how long a reservation holds an item before anyone
// else may take it over.
const ReservationWindow = time.Hour

// Item represents a listing posted for sale.
//
// Invariant: Status == RESERVED implies ReservationDate and ReservedByID are
// both set; Status == ACTIVE implies both are nil.
type Item struct {
	ID               string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title            string     `json:"title" gorm:"type:varchar(100)" validate:"required,min=3,max=100"`
	BriefDescription string     `json:"briefDescription" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	FullDescription  string     `json:"fullDescription" validate:"omitempty,max=2000"`
	Price            float64    `json:"price" validate:"required,gt=0"`
	Latitude         float64    `json:"latitude" validate:"omitempty,latitude"`
	Longitude        float64    `json:"longitude" validate:"omitempty,longitude"`
	PublishDate      time.Time  `json:"publishDate"`
	Status           ItemStatus `json:"status" gorm:"type:varchar(16);index"`
	UserID           string     `json:"userId" gorm:"type:varchar(36);index"`
	CategoryID       string     `json:"categoryId" gorm:"type:varchar(36);index"`
	ReservationDate  *time.Time `json:"reservationDate,omitempty"`
	ReservedByID     *string    `json:"reservedById,omitempty" gorm:"type:varchar(36)"`
	Images           []Image    `json:"images" gorm:"constraint:OnDelete:CASCADE"`
	gorm.Model                  // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// ItemParams carries the validated fields needed to publish a new listing.
type ItemParams struct {
	Title            string  `validate:"required,min=3,max=100"`
	BriefDescription string  `validate:"omitempty,max=255"`
	FullDescription  string  `validate:"omitempty,max=2000"`
	Price            float64 `validate:"required,gt=0"`
	Latitude         float64 `validate:"omitempty,latitude"`
	Longitude        float64 `validate:"omitempty,longitude"`
	UserID           string  `validate:"required"`
	CategoryID       string  `validate:"required"`
}

// NewItem builds a fresh ACTIVE listing from validated parameters.
func NewItem(p ItemParams) *Item {
	return &Item{
		Title:            p.Title,
		BriefDescription: p.BriefDescription,
		FullDescription:  p.FullDescription,
		Price:            p.Price,
		Latitude:         p.Latitude,
		Longitude:        p.Longitude,
		UserID:           p.UserID,
		CategoryID:       p.CategoryID,
		PublishDate:      time.Now(),
		Status:           ItemStatusActive,
	}
}
