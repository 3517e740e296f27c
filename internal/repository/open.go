package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Lixing-Zhang/pizza-api/internal/config"
	"github.com/Lixing-Zhang/pizza-api/internal/models"
)

// Tables holds the two tables of the service on one driver
type Tables struct {
	Catalog Table[models.CatalogItem]
	Orders  Table[models.Order]

	close func() error
}

// Close releases the driver's connections
func (t *Tables) Close() error {
	if t.close == nil {
		return nil
	}
	return t.close()
}

// Open builds the tables for the configured driver. The memory driver starts
// with DefaultCatalog.
func Open(ctx context.Context, cfg config.StoreConfig) (*Tables, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return &Tables{
			Catalog: NewMemoryTable(DefaultCatalog()...),
			Orders:  NewMemoryTable[models.Order](),
		}, nil

	case config.DriverDynamoDB:
		client, err := NewDynamoClient(ctx, cfg.AWSRegion, cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		return &Tables{
			Catalog: NewDynamoTable[models.CatalogItem](client, cfg.CatalogTable, CatalogKeyAttribute),
			Orders:  NewDynamoTable[models.Order](client, cfg.OrdersTable, OrdersKeyAttribute),
		}, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		return &Tables{
			Catalog: NewRedisTable[models.CatalogItem](client, cfg.CatalogTable),
			Orders:  NewRedisTable[models.Order](client, cfg.OrdersTable),
			close:   client.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
