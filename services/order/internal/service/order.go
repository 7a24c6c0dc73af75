package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/logging"
	"github.com/natjoub/factory/services/order/internal/client"
	"github.com/natjoub/factory/services/order/internal/models"
	"github.com/natjoub/factory/services/order/internal/repo"
	"github.com/natjoub/factory/services/order/internal/transport"
)

const OrderEventsTopic = "order_events"

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// ItemFetcher is the slice of the inventory client the service needs.
type ItemFetcher interface {
	GetItem(ctx context.Context, itemID, bearerToken string) (*client.Item, error)
}

type Service struct {
	Repo      *repo.GormRepo
	Inventory ItemFetcher
	Events    EventPublisher
}

type orderEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId"`
	CustomerID string    `json:"customerId"`
	Status     string    `json:"status,omitempty"`
	Total      float64   `json:"total,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Create builds an order from server-side item facts: names and unit
// prices come from the inventory service, the total is computed here.
// An unknown or inactive item fails the whole order.
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, req transport.CreateOrderRequest, bearerToken string) (*models.Order, error) {
	seen := make(map[string]bool, len(req.Items))
	items := make([]models.OrderItem, 0, len(req.Items))
	var total float64

	for _, line := range req.Items {
		if seen[line.ProductID] {
			return nil, apierr.BadRequest("items", "duplicate product "+line.ProductID)
		}
		seen[line.ProductID] = true

		item, err := s.Inventory.GetItem(ctx, line.ProductID, bearerToken)
		if err != nil {
			if errors.Is(err, client.ErrItemNotFound) {
				return nil, apierr.BadRequest("items", "unknown product "+line.ProductID)
			}
			return nil, apierr.ErrInternal.WithMessage("inventory service unavailable")
		}
		if !item.IsActive {
			return nil, apierr.BadRequest("items", "product "+line.ProductID+" is unavailable")
		}

		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, apierr.BadRequest("items", "invalid product id")
		}

		subtotal := round2(item.Price * float64(line.Quantity))
		items = append(items, models.OrderItem{
			ProductID: productID,
			Name:      item.Name,
			Quantity:  line.Quantity,
			UnitPrice: item.Price,
			Subtotal:  subtotal,
		})
		total += subtotal
	}

	order := &models.Order{
		ID:              uuid.New(),
		CustomerID:      customerID,
		Status:          models.StatusPending,
		Total:           round2(total),
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		Items:           items,
	}
	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, orderEvent{
		Type:       "order_created",
		OrderID:    order.ID.String(),
		CustomerID: customerID.String(),
		Status:     order.Status,
		Total:      order.Total,
		Timestamp:  time.Now().UTC(),
	})
	return order, nil
}

// Get enforces ownership: customers see only their own orders, staff
// see all. A foreign order reads as NOT_FOUND, not FORBIDDEN, so order
// ids cannot be probed.
func (s *Service) Get(ctx context.Context, id, requesterID uuid.UUID, role string) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.ErrNotFound
		}
		return nil, err
	}
	if !isStaff(role) && order.CustomerID != requesterID {
		return nil, apierr.ErrNotFound
	}
	return order, nil
}

func (s *Service) List(ctx context.Context, requesterID uuid.UUID, role string, limit, offset int) (*transport.OrderListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var customerID *uuid.UUID
	if !isStaff(role) {
		customerID = &requesterID
	}

	total, orders, err := s.Repo.ListOrders(ctx, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &transport.OrderListResponse{Orders: orders, Total: total, Limit: limit, Offset: offset}, nil
}

// UpdateStatus applies one legal transition. The repo update is
// conditional on the current status, so a concurrent transition simply
// loses and surfaces as an illegal move.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus string) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.ErrNotFound
		}
		return nil, err
	}

	if !models.CanTransition(order.Status, newStatus) {
		return nil, apierr.BadRequest("status",
			"cannot transition from "+order.Status+" to "+newStatus)
	}

	applied, err := s.Repo.UpdateStatus(ctx, id, order.Status, newStatus)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apierr.BadRequest("status", "order status changed concurrently")
	}

	order.Status = newStatus
	s.publish(ctx, orderEvent{
		Type:       "order_status_changed",
		OrderID:    order.ID.String(),
		CustomerID: order.CustomerID.String(),
		Status:     newStatus,
		Timestamp:  time.Now().UTC(),
	})
	return order, nil
}

// Cancel is the customer-facing path: owners may cancel their own order
// while it is still PENDING or PROCESSING.
func (s *Service) Cancel(ctx context.Context, id, requesterID uuid.UUID, role string) (*models.Order, error) {
	order, err := s.Get(ctx, id, requesterID, role)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(order.Status, models.StatusCancelled) {
		return nil, apierr.BadRequest("status", "order can no longer be cancelled")
	}
	return s.UpdateStatus(ctx, id, models.StatusCancelled)
}

// Delete removes an order outright. Orders still moving through
// fulfilment cannot be deleted; cancel them first.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apierr.ErrNotFound
		}
		return err
	}
	if order.Status == models.StatusProcessing || order.Status == models.StatusShipped {
		return apierr.BadRequest("status", "cannot delete an order in fulfilment")
	}

	if err := s.Repo.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apierr.ErrNotFound
		}
		return err
	}

	s.publish(ctx, orderEvent{
		Type:       "order_deleted",
		OrderID:    id.String(),
		CustomerID: order.CustomerID.String(),
		Timestamp:  time.Now().UTC(),
	})
	return nil
}

func isStaff(role string) bool {
	return role == "admin" || role == "employee"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *Service) publish(ctx context.Context, event orderEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishEvent(ctx, OrderEventsTopic, event.OrderID, event); err != nil {
		logging.FromContext(ctx).Error("failed to publish order event",
			"type", event.Type, "error", err)
	}
}
