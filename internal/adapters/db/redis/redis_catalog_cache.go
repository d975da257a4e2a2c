package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kilnworks/brickline/internal/domain/catalog/model"
)

const (
	productKeyPrefix  = "catalog:product:"
	categoryKeyPrefix = "catalog:category:"
	categoriesKey     = "catalog:categories"

	defaultTTL = 5 * time.Minute
)

// RedisCatalogCache holds serialized catalog reads with a short TTL.
// It carries no authority: every entry can be rebuilt from Postgres, and
// mutations drop the affected keys.
type RedisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCatalogCache(client *redis.Client, ttl time.Duration) *RedisCatalogCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisCatalogCache{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisCatalogCache) GetProduct(ctx context.Context, id uint) (model.Product, bool, error) {
	var p model.Product
	ok, err := r.getJSON(ctx, productKey(id), &p)
	return p, ok, err
}

func (r *RedisCatalogCache) SetProduct(ctx context.Context, p model.Product) error {
	return r.setJSON(ctx, productKey(p.ID), p)
}

func (r *RedisCatalogCache) GetCategoryList(ctx context.Context, category string) ([]model.Product, bool, error) {
	var list []model.Product
	ok, err := r.getJSON(ctx, categoryKeyPrefix+category, &list)
	return list, ok, err
}

func (r *RedisCatalogCache) SetCategoryList(ctx context.Context, category string, products []model.Product) error {
	return r.setJSON(ctx, categoryKeyPrefix+category, products)
}

func (r *RedisCatalogCache) GetCategories(ctx context.Context) ([]string, bool, error) {
	var list []string
	ok, err := r.getJSON(ctx, categoriesKey, &list)
	return list, ok, err
}

func (r *RedisCatalogCache) SetCategories(ctx context.Context, categories []string) error {
	return r.setJSON(ctx, categoriesKey, categories)
}

func (r *RedisCatalogCache) Invalidate(ctx context.Context, id uint, category string) error {
	return r.client.Del(ctx, productKey(id), categoryKeyPrefix+category, categoriesKey).Err()
}

func (r *RedisCatalogCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == redis.Nil:
		return false, nil
	case err != nil:
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// Corrupt entry: drop it and report a miss.
		_ = r.client.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

func (r *RedisCatalogCache) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, raw, r.ttl).Err()
}

func productKey(id uint) string {
	return productKeyPrefix + strconv.FormatUint(uint64(id), 10)
}
