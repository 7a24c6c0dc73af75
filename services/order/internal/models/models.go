package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusShipped    = "SHIPPED"
	StatusDelivered  = "DELIVERED"
	StatusCancelled  = "CANCELLED"
)

// statusTransitions is the legal state machine; DELIVERED and CANCELLED
// are terminal.
var statusTransitions = map[string][]string{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

func CanTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey"     json:"id"`
	CustomerID      uuid.UUID   `gorm:"type:uuid;index;not null" json:"customerId"`
	Status          string      `gorm:"not null"                 json:"status"`
	Total           float64     `gorm:"not null"                 json:"total"`
	DeliveryAddress string      `gorm:"not null"                 json:"deliveryAddress"`
	Notes           *string     `json:"notes,omitempty"`
	Items           []OrderItem `gorm:"foreignKey:OrderID"       json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OrderItem snapshots name and unit price at order time, so later
// catalog edits do not rewrite history.
type OrderItem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"  json:"-"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null"  json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"        json:"productId"`
	Name      string    `gorm:"not null"                  json:"name"`
	Quantity  int       `gorm:"not null;check:quantity>0" json:"quantity"`
	UnitPrice float64   `gorm:"not null"                  json:"unitPrice"`
	Subtotal  float64   `gorm:"not null"                  json:"subtotal"`
}
