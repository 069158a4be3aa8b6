package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/models"
)

// ProductCache is an explicit cache abstraction. Writers call Invalidate at
// the point the underlying write commits.
type ProductCache interface {
	Get(ctx context.Context, id uint64) (*models.Product, error)
	Set(ctx context.Context, product *models.Product) error
	Invalidate(ctx context.Context, id uint64) error
}

type RedisProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProductCache(client *redis.Client, ttl time.Duration) *RedisProductCache {
	return &RedisProductCache{client: client, ttl: ttl}
}

func (c *RedisProductCache) key(id uint64) string {
	return fmt.Sprintf("product-cache:%d", id)
}

// Get returns (nil, nil) on a cache miss.
func (c *RedisProductCache) Get(ctx context.Context, id uint64) (*models.Product, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal([]byte(data), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *RedisProductCache) Set(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(product.ID), data, c.ttl).Err()
}

func (c *RedisProductCache) Invalidate(ctx context.Context, id uint64) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
