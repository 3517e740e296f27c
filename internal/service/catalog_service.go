package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/pizza-api/internal/models"
	"github.com/Lixing-Zhang/pizza-api/internal/query"
	"github.com/Lixing-Zhang/pizza-api/internal/repository"
	"github.com/Lixing-Zhang/pizza-api/internal/validate"
)

const (
	msgPizzaNotFound = "Pizza not found"
	msgInvalidPizza  = "Invalid pizza"
)

// CatalogService handles business logic for catalog items
type CatalogService struct {
	table repository.Table[models.CatalogItem]
	log   *slog.Logger
	newID func() string
}

// NewCatalogService creates a new catalog service
func NewCatalogService(table repository.Table[models.CatalogItem], log *slog.Logger) *CatalogService {
	return &CatalogService{
		table: table,
		log:   log,
		newID: uuid.NewString,
	}
}

// List returns every catalog item, sorted by name descending
func (s *CatalogService) List(ctx context.Context) ([]models.CatalogItem, error) {
	items, err := s.table.Scan(ctx, query.Filter{})
	if err != nil {
		return nil, storeError(err, msgPizzaNotFound, "Failed to get pizzas")
	}

	for i := range items {
		items[i] = normalize(items[i])
	}
	slices.SortStableFunc(items, func(a, b models.CatalogItem) int {
		return strings.Compare(b.Name, a.Name)
	})
	return items, nil
}

// Get returns a catalog item by ID
func (s *CatalogService) Get(ctx context.Context, id string) (models.CatalogItem, error) {
	item, err := s.table.Get(ctx, id)
	if err != nil {
		return models.CatalogItem{}, storeError(err, msgPizzaNotFound, "Failed to get pizza")
	}
	return normalize(item), nil
}

// Create validates req and stores it under a fresh UUID
func (s *CatalogService) Create(ctx context.Context, req models.CreateCatalogItemRequest) (models.CatalogItem, error) {
	if err := validate.Payload(req, msgInvalidPizza); err != nil {
		return models.CatalogItem{}, err
	}

	item := normalize(models.CatalogItem{
		ID:          s.newID(),
		Name:        req.Name,
		Price:       req.Price,
		Ingredients: req.Ingredients,
	})

	if err := s.table.Insert(ctx, item); err != nil {
		return models.CatalogItem{}, storeError(err, msgPizzaNotFound, "Failed to create pizza")
	}

	s.log.Info("pizza created", "pizza_id", item.ID, "name", item.Name)
	return item, nil
}

// Update merges patch over the stored item
func (s *CatalogService) Update(ctx context.Context, id string, patch models.CatalogItemPatch) (models.CatalogItem, error) {
	if err := validate.Payload(patch, msgInvalidPizza); err != nil {
		return models.CatalogItem{}, err
	}

	current, err := s.table.Get(ctx, id)
	if err != nil {
		return models.CatalogItem{}, storeError(err, msgPizzaNotFound, "Failed to update pizza")
	}

	updated := normalize(patch.Apply(current))
	if err := s.table.Put(ctx, updated); err != nil {
		return models.CatalogItem{}, storeError(err, msgPizzaNotFound, "Failed to update pizza")
	}

	s.log.Info("pizza updated", "pizza_id", id)
	return updated, nil
}

// Delete removes the item and returns what was stored
func (s *CatalogService) Delete(ctx context.Context, id string) (models.CatalogItem, error) {
	item, err := s.table.Get(ctx, id)
	if err != nil {
		return models.CatalogItem{}, storeError(err, msgPizzaNotFound, "Failed to delete pizza")
	}

	if err := s.table.Delete(ctx, id); err != nil {
		return models.CatalogItem{}, storeError(err, msgPizzaNotFound, "Failed to delete pizza")
	}

	s.log.Info("pizza deleted", "pizza_id", id)
	return normalize(item), nil
}

// normalize replaces a missing ingredient list with an empty one so it
// serializes as [] rather than null.
func normalize(item models.CatalogItem) models.CatalogItem {
	if item.Ingredients == nil {
		item.Ingredients = []string{}
	}
	return item
}

