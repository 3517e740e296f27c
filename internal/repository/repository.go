// Package repository holds the key-value stores behind the resource services.
// Every driver exposes the same Table contract: get by key, put, delete and a
// filtered scan.
package repository

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/Lixing-Zhang/pizza-api/internal/query"
)

var (
	// ErrNotFound is returned when no record exists for a key.
	ErrNotFound = errors.New("record not found")
	// ErrTableNotFound is returned when the backing table does not exist.
	ErrTableNotFound = errors.New("table not found")
	// ErrMissingKey is returned when persisting a record without a key.
	ErrMissingKey = errors.New("record has no key")
	// ErrAlreadyExists is returned by Insert when the key is taken.
	ErrAlreadyExists = errors.New("record already exists")
)

// Record is a persistable entity.
type Record interface {
	Key() string
	query.Record
}

// Table is a key-value collection of records of one type.
type Table[T Record] interface {
	// Get returns the record stored under key or ErrNotFound.
	Get(ctx context.Context, key string) (T, error)
	// Put creates or replaces the record under its key.
	Put(ctx context.Context, rec T) error
	// Insert stores rec only if its key is free, otherwise ErrAlreadyExists.
	Insert(ctx context.Context, rec T) error
	// Delete removes the record under key or returns ErrNotFound.
	Delete(ctx context.Context, key string) error
	// Scan returns every record matching f. Key lookups return at most one record.
	Scan(ctx context.Context, f query.Filter) ([]T, error)
	// Ping checks that the table is reachable.
	Ping(ctx context.Context) error
}

// Table names used by every driver.
const (
	CatalogTable = "pizza-store"
	OrdersTable  = "pizza-orders"
)

// scanByKey serves a key-lookup filter through Get.
func scanByKey[T Record](ctx context.Context, t Table[T], key string) ([]T, error) {
	rec, err := t.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []T{rec}, nil
}

// sortByKey gives scans a stable order; callers apply their own ordering on top.
func sortByKey[T Record](recs []T) {
	slices.SortFunc(recs, func(a, b T) int {
		return strings.Compare(a.Key(), b.Key())
	})
}
