package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Lixing-Zhang/pizza-api/internal/apperr"
	"github.com/Lixing-Zhang/pizza-api/internal/models"
	"github.com/Lixing-Zhang/pizza-api/internal/query"
	"github.com/Lixing-Zhang/pizza-api/internal/service"
	"github.com/Lixing-Zhang/pizza-api/internal/validate"
)

// OrderHandler serves the /order and /orders* routes
type OrderHandler struct {
	service *service.OrderService
	log     *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: orderService,
		log:     log,
	}
}

type orderEnvelope struct {
	Message string       `json:"message"`
	Order   models.Order `json:"order"`
}

// orderCriterion is a single-criterion search route. An empty result is
// reported as 404 with the given message.
type orderCriterion struct {
	pattern string
	field   query.Field
	empty   string
}

var orderCriteria = []orderCriterion{
	{"/orders-date/{date}", query.FieldDate, "No orders found for this date"},
	{"/orders-phone/{phone}", query.FieldPhone, "No orders found for this phone"},
	{"/orders-address/{address}", query.FieldAddress, "No orders found for this address"},
	{"/orders-customer/{customerName}", query.FieldCustomerName, "No orders found for this customer"},
	{"/orders-pizza/{pizzaID}", query.FieldCatalogItemID, "No orders found for this pizza"},
	{"/orders-status/{status}", query.FieldStatus, "No orders found for this status"},
}

// List handles GET /orders. Query-string criteria narrow the result.
func (h *OrderHandler) List(ctx context.Context, req Request, _ map[string]string) (result, error) {
	values := make(map[query.Field]string)
	for _, field := range query.Fields() {
		if v, ok := req.QueryParameters[string(field)]; ok {
			values[field] = v
		}
	}

	f, err := query.Compile(req.QueryParameters["id"], values)
	if err != nil {
		return result{}, err
	}

	orders, err := h.service.Find(ctx, f)
	if err != nil {
		return result{}, err
	}
	return result{status: http.StatusOK, body: orders}, nil
}

// findBy builds the operation behind a single-criterion search route.
func (h *OrderHandler) findBy(c orderCriterion) operation {
	return func(ctx context.Context, _ Request, params map[string]string) (result, error) {
		var value string
		for _, v := range params {
			value = v
		}
		if strings.TrimSpace(value) == "" {
			return result{}, apperr.New(apperr.InvalidFilterValue, "Missing "+string(c.field)+" value")
		}

		f, err := query.Compile("", map[query.Field]string{c.field: value})
		if err != nil {
			return result{}, err
		}

		orders, err := h.service.Find(ctx, f)
		if err != nil {
			return result{}, err
		}
		h.log.Debug("order search", "field", c.field, "matches", len(orders))
		if len(orders) == 0 {
			return result{}, apperr.New(apperr.NotFound, c.empty)
		}
		return result{status: http.StatusOK, body: orders}, nil
	}
}

// Get handles GET /order/{id}
func (h *OrderHandler) Get(ctx context.Context, _ Request, params map[string]string) (result, error) {
	id, err := validate.Identifier(params)
	if err != nil {
		return result{}, err
	}

	order, err := h.service.Get(ctx, id)
	if err != nil {
		return result{}, err
	}
	return result{status: http.StatusOK, body: order}, nil
}

// Create handles POST /order
func (h *OrderHandler) Create(ctx context.Context, req Request, _ map[string]string) (result, error) {
	var body models.CreateOrderRequest
	if err := validate.DecodeBody(req.Headers, req.Body, &body); err != nil {
		return result{}, err
	}

	order, err := h.service.Create(ctx, body)
	if err != nil {
		return result{}, err
	}
	return result{
		status: http.StatusCreated,
		body:   orderEnvelope{Message: "Order created successfully", Order: order},
	}, nil
}

// Update handles PUT /order/{id}
func (h *OrderHandler) Update(ctx context.Context, req Request, params map[string]string) (result, error) {
	id, err := validate.Identifier(params)
	if err != nil {
		return result{}, err
	}

	var patch models.OrderPatch
	if err := validate.DecodeBody(req.Headers, req.Body, &patch); err != nil {
		return result{}, err
	}

	order, err := h.service.Update(ctx, id, patch)
	if err != nil {
		return result{}, err
	}
	return result{
		status: http.StatusOK,
		body:   orderEnvelope{Message: "Order updated successfully", Order: order},
	}, nil
}

// Delete handles DELETE /order/{id}
func (h *OrderHandler) Delete(ctx context.Context, _ Request, params map[string]string) (result, error) {
	id, err := validate.Identifier(params)
	if err != nil {
		return result{}, err
	}

	order, err := h.service.Delete(ctx, id)
	if err != nil {
		return result{}, err
	}
	return result{
		status: http.StatusOK,
		body:   orderEnvelope{Message: "Order deleted successfully", Order: order},
	}, nil
}
