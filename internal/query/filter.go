// Package query compiles order search criteria into a filter that every store
// can evaluate: in process through Match, or server-side by translating the
// conditions into the store's native filter language.
package query

import (
	"strconv"
	"strings"

	"github.com/Lixing-Zhang/pizza-api/internal/apperr"
	"github.com/Lixing-Zhang/pizza-api/internal/models"
)

// All is the reserved identifier meaning "the whole collection".
const All = "all"

// Operator is the comparison a condition applies to an attribute.
type Operator int

const (
	OpEquals Operator = iota
	OpBeginsWith
	OpContains
)

func (o Operator) String() string {
	switch o {
	case OpEquals:
		return "equals"
	case OpBeginsWith:
		return "begins_with"
	case OpContains:
		return "contains"
	}
	return "unknown"
}

// Field names a supported search criterion.
type Field string

const (
	FieldDate          Field = "date"
	FieldPhone         Field = "phone"
	FieldAddress       Field = "address"
	FieldCustomerName  Field = "customerName"
	FieldCatalogItemID Field = "catalogItemId"
	FieldStatus        Field = "status"
)

// Record is anything a condition can be evaluated against.
type Record interface {
	Attr(name string) (any, bool)
}

// Condition is one compiled criterion.
type Condition struct {
	Attribute string
	Op        Operator
	Value     any
}

// Match evaluates the condition against r.
func (c Condition) Match(r Record) bool {
	v, ok := r.Attr(c.Attribute)
	if !ok {
		return false
	}

	switch c.Op {
	case OpEquals:
		return v == c.Value
	case OpBeginsWith, OpContains:
		s, ok := v.(string)
		if !ok {
			return false
		}
		needle, ok := c.Value.(string)
		if !ok {
			return false
		}
		if c.Op == OpBeginsWith {
			return strings.HasPrefix(s, needle)
		}
		return strings.Contains(s, needle)
	}
	return false
}

// Filter is either a single-key lookup or a conjunction of conditions for a scan.
type Filter struct {
	Key        string
	Conditions []Condition
}

// IsKeyLookup reports whether the filter addresses exactly one record by key.
func (f Filter) IsKeyLookup() bool {
	return f.Key != ""
}

// Match reports whether r satisfies every condition. An empty scan filter
// matches everything.
func (f Filter) Match(r Record) bool {
	if f.IsKeyLookup() {
		id, ok := r.Attr(models.AttrID)
		return ok && id == f.Key
	}
	for _, c := range f.Conditions {
		if !c.Match(r) {
			return false
		}
	}
	return true
}

// criterion maps a search field onto a stored attribute.
type criterion struct {
	field     Field
	attribute string
	op        Operator
	parse     func(string) (any, error)
}

var criteria = []criterion{
	{field: FieldDate, attribute: models.AttrCreatedAt, op: OpBeginsWith, parse: parseDate},
	{field: FieldPhone, attribute: models.AttrPhone, op: OpEquals, parse: parseString},
	{field: FieldAddress, attribute: models.AttrAddress, op: OpContains, parse: parseString},
	{field: FieldCustomerName, attribute: models.AttrCustomerName, op: OpContains, parse: parseString},
	{field: FieldCatalogItemID, attribute: models.AttrCatalogItemID, op: OpEquals, parse: parseCatalogItemID},
	{field: FieldStatus, attribute: models.AttrStatus, op: OpEquals, parse: parseStatus},
}

// Fields lists the supported criteria in evaluation order.
func Fields() []Field {
	fields := make([]Field, len(criteria))
	for i, c := range criteria {
		fields[i] = c.field
	}
	return fields
}

// Compile builds a filter. A key other than "" or All short-circuits into a key
// lookup and the remaining criteria are neither validated nor applied. Blank
// criterion values are omitted.
func Compile(key string, values map[Field]string) (Filter, error) {
	key = strings.TrimSpace(key)
	if key != "" && key != All {
		return Filter{Key: key}, nil
	}

	var f Filter
	for _, c := range criteria {
		raw := strings.TrimSpace(values[c.field])
		if raw == "" {
			continue
		}
		v, err := c.parse(raw)
		if err != nil {
			return Filter{}, err
		}
		f.Conditions = append(f.Conditions, Condition{Attribute: c.attribute, Op: c.op, Value: v})
	}
	return f, nil
}

func parseString(s string) (any, error) {
	return s, nil
}

// parseDate keeps only the date part of an ISO-8601 timestamp.
func parseDate(s string) (any, error) {
	date, _, _ := strings.Cut(s, "T")
	return date, nil
}

func parseCatalogItemID(s string) (any, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidFilterValue, "Invalid pizza ID", err)
	}
	return id, nil
}

func parseStatus(s string) (any, error) {
	status, ok := models.ParseOrderStatus(s)
	if !ok {
		return nil, apperr.New(apperr.InvalidStatus, "Invalid status value")
	}
	return string(status), nil
}
