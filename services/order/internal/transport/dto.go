package transport

import "github.com/natjoub/factory/services/order/internal/models"

type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity"  validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"           validate:"required,min=1,max=50,dive"`
	DeliveryAddress string             `json:"deliveryAddress" validate:"required,min=5,max=500"`
	Notes           *string            `json:"notes"           validate:"omitempty,max=500"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PROCESSING SHIPPED DELIVERED CANCELLED"`
}

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}
