package repository

import (
	"context"
	"sync"

	"github.com/Lixing-Zhang/pizza-api/internal/models"
	"github.com/Lixing-Zhang/pizza-api/internal/query"
)

// MemoryTable implements Table with in-memory storage.
// It is used by tests and by the "memory" store driver for local development;
// its contents vanish with the process.
type MemoryTable[T Record] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewMemoryTable creates an in-memory table holding the given seed records
func NewMemoryTable[T Record](seed ...T) *MemoryTable[T] {
	items := make(map[string]T, len(seed))
	for _, rec := range seed {
		items[rec.Key()] = rec
	}
	return &MemoryTable[T]{items: items}
}

// Get returns a record by its key
func (t *MemoryTable[T]) Get(ctx context.Context, key string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rec, ok := t.items[key]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return rec, nil
}

// Put stores rec under its key
func (t *MemoryTable[T]) Put(ctx context.Context, rec T) error {
	if rec.Key() == "" {
		return ErrMissingKey
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.items[rec.Key()] = rec
	return nil
}

// Insert stores rec unless its key is already taken
func (t *MemoryTable[T]) Insert(ctx context.Context, rec T) error {
	if rec.Key() == "" {
		return ErrMissingKey
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.items[rec.Key()]; ok {
		return ErrAlreadyExists
	}
	t.items[rec.Key()] = rec
	return nil
}

// Delete removes a record by its key
func (t *MemoryTable[T]) Delete(ctx context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.items[key]; !ok {
		return ErrNotFound
	}
	delete(t.items, key)
	return nil
}

// Scan returns all records matching f
func (t *MemoryTable[T]) Scan(ctx context.Context, f query.Filter) ([]T, error) {
	if f.IsKeyLookup() {
		return scanByKey[T](ctx, t, f.Key)
	}

	t.mu.RLock()
	result := make([]T, 0, len(t.items))
	for _, rec := range t.items {
		if f.Match(rec) {
			result = append(result, rec)
		}
	}
	t.mu.RUnlock()

	sortByKey(result)
	return result, nil
}

// Ping always succeeds.
func (t *MemoryTable[T]) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored records
func (t *MemoryTable[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// DefaultCatalog is the menu the memory driver starts with.
func DefaultCatalog() []models.CatalogItem {
	return []models.CatalogItem{
		{ID: "8c6e3b1a-6a57-4f6e-9a3c-1f2d4b5c6d01", Name: "Margherita", Price: 9.5, Ingredients: []string{"tomato sauce", "mozzarella", "basil"}},
		{ID: "8c6e3b1a-6a57-4f6e-9a3c-1f2d4b5c6d02", Name: "Pepperoni", Price: 11, Ingredients: []string{"tomato sauce", "mozzarella", "pepperoni"}},
		{ID: "8c6e3b1a-6a57-4f6e-9a3c-1f2d4b5c6d03", Name: "Quattro Formaggi", Price: 12.5, Ingredients: []string{"mozzarella", "gorgonzola", "parmesan", "fontina"}},
		{ID: "8c6e3b1a-6a57-4f6e-9a3c-1f2d4b5c6d04", Name: "Hawaiian", Price: 10.5, Ingredients: []string{"tomato sauce", "mozzarella", "ham", "pineapple"}},
	}
}

var (
	_ Table[models.CatalogItem] = (*MemoryTable[models.CatalogItem])(nil)
	_ Table[models.Order]       = (*MemoryTable[models.Order])(nil)
)
