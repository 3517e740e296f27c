package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/pizza-api/internal/models"
	"github.com/Lixing-Zhang/pizza-api/internal/service"
	"github.com/Lixing-Zhang/pizza-api/internal/validate"
)

// CatalogHandler serves the /pizzas and /pizza routes
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger,
	}
}

// catalogItemEnvelope is the body of successful writes
type catalogItemEnvelope struct {
	Message string             `json:"message"`
	Pizza   models.CatalogItem `json:"pizza"`
}

// List handles GET /pizzas
func (h *CatalogHandler) List(ctx context.Context, _ Request, _ map[string]string) (result, error) {
	items, err := h.service.List(ctx)
	if err != nil {
		return result{}, err
	}
	h.logger.Debug("listed pizzas", "count", len(items))
	return result{status: http.StatusOK, body: items}, nil
}

// Get handles GET /pizza/{id}
func (h *CatalogHandler) Get(ctx context.Context, _ Request, params map[string]string) (result, error) {
	id, err := validate.Identifier(params)
	if err != nil {
		return result{}, err
	}

	item, err := h.service.Get(ctx, id)
	if err != nil {
		return result{}, err
	}
	return result{status: http.StatusOK, body: item}, nil
}

// Create handles POST /pizza
func (h *CatalogHandler) Create(ctx context.Context, req Request, _ map[string]string) (result, error) {
	var body models.CreateCatalogItemRequest
	if err := validate.DecodeBody(req.Headers, req.Body, &body); err != nil {
		return result{}, err
	}

	item, err := h.service.Create(ctx, body)
	if err != nil {
		return result{}, err
	}
	return result{
		status: http.StatusCreated,
		body:   catalogItemEnvelope{Message: "Pizza created successfully", Pizza: item},
	}, nil
}

// Update handles PUT /pizza/{id}
func (h *CatalogHandler) Update(ctx context.Context, req Request, params map[string]string) (result, error) {
	id, err := validate.Identifier(params)
	if err != nil {
		return result{}, err
	}

	var patch models.CatalogItemPatch
	if err := validate.DecodeBody(req.Headers, req.Body, &patch); err != nil {
		return result{}, err
	}

	item, err := h.service.Update(ctx, id, patch)
	if err != nil {
		return result{}, err
	}
	return result{
		status: http.StatusOK,
		body:   catalogItemEnvelope{Message: "Pizza updated successfully", Pizza: item},
	}, nil
}

// Delete handles DELETE /pizza/{id}
func (h *CatalogHandler) Delete(ctx context.Context, _ Request, params map[string]string) (result, error) {
	id, err := validate.Identifier(params)
	if err != nil {
		return result{}, err
	}

	item, err := h.service.Delete(ctx, id)
	if err != nil {
		return result{}, err
	}
	return result{
		status: http.StatusOK,
		body:   catalogItemEnvelope{Message: "Pizza deleted successfully", Pizza: item},
	}, nil
}
