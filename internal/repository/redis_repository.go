package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Lixing-Zhang/pizza-api/internal/models"
	"github.com/Lixing-Zhang/pizza-api/internal/query"
)

// RedisTable implements Table on Redis. Each record is a JSON string under
// "<table>:<key>"; the set "<table>:ids" indexes the keys for scans.
type RedisTable[T Record] struct {
	client redis.UniversalClient
	table  string
}

// NewRedisTable creates a table stored in Redis
func NewRedisTable[T Record](client redis.UniversalClient, table string) *RedisTable[T] {
	return &RedisTable[T]{
		client: client,
		table:  table,
	}
}

func (t *RedisTable[T]) recordKey(key string) string {
	return t.table + ":" + key
}

func (t *RedisTable[T]) indexKey() string {
	return t.table + ":ids"
}

// Get returns a record by its key
func (t *RedisTable[T]) Get(ctx context.Context, key string) (T, error) {
	var rec T

	data, err := t.client.Get(ctx, t.recordKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("get %s: %w", t.recordKey(key), err)
	}

	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decode %s: %w", t.recordKey(key), err)
	}
	return rec, nil
}

// Put stores rec and indexes its key in one transaction
func (t *RedisTable[T]) Put(ctx context.Context, rec T) error {
	key := rec.Key()
	if key == "" {
		return ErrMissingKey
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", t.recordKey(key), err)
	}

	_, err = t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, t.recordKey(key), data, 0)
		pipe.SAdd(ctx, t.indexKey(), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", t.recordKey(key), err)
	}
	return nil
}

// Insert claims the record key with SETNX, then indexes it
func (t *RedisTable[T]) Insert(ctx context.Context, rec T) error {
	key := rec.Key()
	if key == "" {
		return ErrMissingKey
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", t.recordKey(key), err)
	}

	ok, err := t.client.SetNX(ctx, t.recordKey(key), data, 0).Result()
	if err != nil {
		return fmt.Errorf("insert %s: %w", t.recordKey(key), err)
	}
	if !ok {
		return ErrAlreadyExists
	}

	if err := t.client.SAdd(ctx, t.indexKey(), key).Err(); err != nil {
		return fmt.Errorf("index %s: %w", t.recordKey(key), err)
	}
	return nil
}

// Delete removes the record and its index entry
func (t *RedisTable[T]) Delete(ctx context.Context, key string) error {
	var deleted *redis.IntCmd

	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, t.recordKey(key))
		pipe.SRem(ctx, t.indexKey(), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.recordKey(key), err)
	}

	if deleted.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// Scan loads every indexed record and keeps those matching f
func (t *RedisTable[T]) Scan(ctx context.Context, f query.Filter) ([]T, error) {
	if f.IsKeyLookup() {
		return scanByKey[T](ctx, t, f.Key)
	}

	ids, err := t.client.SMembers(ctx, t.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.indexKey(), err)
	}

	result := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = t.recordKey(id)
	}

	values, err := t.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", t.table, err)
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// Index entry without a record; a concurrent delete won the race.
			continue
		}

		var rec T
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		if f.Match(rec) {
			result = append(result, rec)
		}
	}

	sortByKey(result)
	return result, nil
}

// Ping checks the Redis connection
func (t *RedisTable[T]) Ping(ctx context.Context) error {
	if err := t.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

var (
	_ Table[models.CatalogItem] = (*RedisTable[models.CatalogItem])(nil)
	_ Table[models.Order]       = (*RedisTable[models.Order])(nil)
)
