package models

import "time"

// OrderStatus describes where an order is in its lifecycle
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

// ParseOrderStatus accepts only the known statuses, case-sensitively.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusCompleted:
		return OrderStatus(s), true
	}
	return "", false
}

// Order attribute names, as stored and as filtered on.
const (
	AttrID            = "id"
	AttrCatalogItemID = "catalogItemId"
	AttrAddress       = "address"
	AttrCustomerName  = "customerName"
	AttrPhone         = "phone"
	AttrCreatedAt     = "createdAt"
	AttrStatus        = "status"
)

// Order represents a customer order for a single catalog item
type Order struct {
	ID            string      `json:"id" dynamodbav:"orderId"`
	CatalogItemID int64       `json:"catalogItemId" dynamodbav:"catalogItemId"`
	Address       string      `json:"address" dynamodbav:"address"`
	CustomerName  string      `json:"customerName" dynamodbav:"customerName"`
	Phone         string      `json:"phone" dynamodbav:"phone"`
	CreatedAt     time.Time   `json:"createdAt" dynamodbav:"createdAt"`
	Status        OrderStatus `json:"status" dynamodbav:"status"`
}

// Key returns the primary key of the order
func (o Order) Key() string {
	return o.ID
}

// Attr returns the value of a named attribute for filtering.
// createdAt is exposed in its stored RFC 3339 text form so prefix matches work
// the same way in every store.
func (o Order) Attr(name string) (any, bool) {
	switch name {
	case AttrID:
		return o.ID, true
	case AttrCatalogItemID:
		return o.CatalogItemID, true
	case AttrAddress:
		return o.Address, true
	case AttrCustomerName:
		return o.CustomerName, true
	case AttrPhone:
		return o.Phone, true
	case AttrCreatedAt:
		return o.CreatedAt.UTC().Format(time.RFC3339Nano), true
	case AttrStatus:
		return string(o.Status), true
	}
	return nil, false
}

// CreateOrderRequest is the body of POST /order
type CreateOrderRequest struct {
	CatalogItemID int64  `json:"catalogItemId" validate:"required"`
	Address       string `json:"address" validate:"required"`
	CustomerName  string `json:"customerName"`
	Phone         string `json:"phone"`
}

// OrderPatch is the body of PUT /order/{id}. Nil fields keep the stored value;
// id and createdAt are not patchable.
type OrderPatch struct {
	CatalogItemID *int64       `json:"catalogItemId" validate:"omitnil,ne=0"`
	Address       *string      `json:"address" validate:"omitnil,min=1"`
	CustomerName  *string      `json:"customerName"`
	Phone         *string      `json:"phone"`
	Status        *OrderStatus `json:"status"`
}

// Apply merges the patch over order.
func (p OrderPatch) Apply(order Order) Order {
	if p.CatalogItemID != nil {
		order.CatalogItemID = *p.CatalogItemID
	}
	if p.Address != nil {
		order.Address = *p.Address
	}
	if p.CustomerName != nil {
		order.CustomerName = *p.CustomerName
	}
	if p.Phone != nil {
		order.Phone = *p.Phone
	}
	if p.Status != nil {
		order.Status = *p.Status
	}
	return order
}
