package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Lixing-Zhang/pizza-api/internal/apperr"
	"github.com/Lixing-Zhang/pizza-api/internal/models"
	"github.com/Lixing-Zhang/pizza-api/internal/query"
	"github.com/Lixing-Zhang/pizza-api/internal/repository"
	"github.com/Lixing-Zhang/pizza-api/internal/validate"
)

const (
	msgOrderNotFound = "Order not found"
	msgInvalidOrder  = "Invalid order"
)

// maxCreateAttempts bounds the retries when another writer took the id.
const maxCreateAttempts = 5

// OrderService handles order business logic
type OrderService struct {
	table repository.Table[models.Order]
	log   *slog.Logger
	now   func() time.Time
	ids   MillisIDs
}

// OrderOption customizes an OrderService
type OrderOption func(*OrderService)

// WithClock replaces the wall clock used for createdAt and for identifiers.
func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) {
		s.now = now
	}
}

// NewOrderService creates a new order service
func NewOrderService(table repository.Table[models.Order], log *slog.Logger, opts ...OrderOption) *OrderService {
	s := &OrderService{
		table: table,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns an order by ID
func (s *OrderService) Get(ctx context.Context, id string) (models.Order, error) {
	order, err := s.table.Get(ctx, id)
	if err != nil {
		return models.Order{}, storeError(err, msgOrderNotFound, "Failed to get order")
	}
	return order, nil
}

// Find returns the orders matching f, newest first. An empty result is not an error.
func (s *OrderService) Find(ctx context.Context, f query.Filter) ([]models.Order, error) {
	orders, err := s.table.Scan(ctx, f)
	if err != nil {
		return nil, storeError(err, msgOrderNotFound, "Failed to get orders")
	}

	slices.SortFunc(orders, func(a, b models.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(b.ID, a.ID)
	})
	return orders, nil
}

// Create validates req, assigns an ID and the defaults, and stores the order
func (s *OrderService) Create(ctx context.Context, req models.CreateOrderRequest) (models.Order, error) {
	if err := validate.Payload(req, msgInvalidOrder); err != nil {
		return models.Order{}, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	order := models.Order{
		CatalogItemID: req.CatalogItemID,
		Address:       req.Address,
		CustomerName:  req.CustomerName,
		Phone:         req.Phone,
		CreatedAt:     now,
		Status:        models.OrderStatusPending,
	}

	// Another instance may issue the same millisecond id; Insert refuses to
	// overwrite, so move on to the next id.
	var err error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		order.ID = s.ids.Next(now)
		order.CustomerName = withDefaultName(req.CustomerName, order.ID)

		err = s.table.Insert(ctx, order)
		if !errors.Is(err, repository.ErrAlreadyExists) {
			break
		}
		s.log.Warn("order id taken, retrying", "order_id", order.ID, "attempt", attempt+1)
	}
	if err != nil {
		return models.Order{}, storeError(err, msgOrderNotFound, "Failed to create order")
	}

	s.log.Info("order created", "order_id", order.ID, "pizza_id", order.CatalogItemID)
	return order, nil
}

// Update merges patch over the stored order. The ID and createdAt are kept.
func (s *OrderService) Update(ctx context.Context, id string, patch models.OrderPatch) (models.Order, error) {
	if patch.Status != nil {
		if _, ok := models.ParseOrderStatus(string(*patch.Status)); !ok {
			return models.Order{}, apperr.New(apperr.InvalidStatus, "Invalid status value")
		}
	}
	if err := validate.Payload(patch, msgInvalidOrder); err != nil {
		return models.Order{}, err
	}

	current, err := s.table.Get(ctx, id)
	if err != nil {
		return models.Order{}, storeError(err, msgOrderNotFound, "Failed to update order")
	}

	updated := patch.Apply(current)
	updated.CustomerName = withDefaultName(updated.CustomerName, updated.ID)
	if err := s.table.Put(ctx, updated); err != nil {
		return models.Order{}, storeError(err, msgOrderNotFound, "Failed to update order")
	}

	s.log.Info("order updated", "order_id", id, "status", updated.Status)
	return updated, nil
}

// Delete removes the order and returns what was stored
func (s *OrderService) Delete(ctx context.Context, id string) (models.Order, error) {
	order, err := s.table.Get(ctx, id)
	if err != nil {
		return models.Order{}, storeError(err, msgOrderNotFound, "Failed to delete order")
	}

	if err := s.table.Delete(ctx, id); err != nil {
		return models.Order{}, storeError(err, msgOrderNotFound, "Failed to delete order")
	}

	s.log.Info("order deleted", "order_id", id)
	return order, nil
}

// withDefaultName returns "Customer <id>" for a blank name.
func withDefaultName(name, id string) string {
	if strings.TrimSpace(name) == "" {
		return "Customer " + id
	}
	return name
}

// compareIDs orders decimal identifiers numerically: a shorter id is smaller
// and ids of equal length compare as text.
func compareIDs(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}
