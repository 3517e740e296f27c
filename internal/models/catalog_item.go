package models

// CatalogItem represents a pizza available for order
type CatalogItem struct {
	ID          string   `json:"id" dynamodbav:"pizzaId"`
	Name        string   `json:"name" dynamodbav:"name"`
	Price       float64  `json:"price" dynamodbav:"price"`
	Ingredients []string `json:"ingredients" dynamodbav:"ingredients"`
}

// Catalog item attribute names, as stored and as filtered on.
const (
	AttrName        = "name"
	AttrPrice       = "price"
	AttrIngredients = "ingredients"
)

// Key returns the primary key of the item
func (c CatalogItem) Key() string {
	return c.ID
}

// Attr returns the value of a named attribute for filtering.
func (c CatalogItem) Attr(name string) (any, bool) {
	switch name {
	case AttrID:
		return c.ID, true
	case AttrName:
		return c.Name, true
	case AttrPrice:
		return c.Price, true
	case AttrIngredients:
		return c.Ingredients, true
	}
	return nil, false
}

// CreateCatalogItemRequest is the body of POST /pizza
type CreateCatalogItemRequest struct {
	Name        string   `json:"name" validate:"required"`
	Price       float64  `json:"price" validate:"gte=0"`
	Ingredients []string `json:"ingredients"`
}

// CatalogItemPatch is the body of PUT /pizza/{id}. Nil fields keep the stored value.
type CatalogItemPatch struct {
	Name        *string   `json:"name" validate:"omitnil,min=1"`
	Price       *float64  `json:"price" validate:"omitnil,gte=0"`
	Ingredients *[]string `json:"ingredients"`
}

// Apply merges the patch over item. The identifier is never touched.
func (p CatalogItemPatch) Apply(item CatalogItem) CatalogItem {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Ingredients != nil {
		item.Ingredients = append([]string{}, (*p.Ingredients)...)
	}
	return item
}
