package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"

	"github.com/kilnworks/brickline/internal/domain/catalog/model"
)

func newCache(t *testing.T) (*RedisCatalogCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	return NewRedisCatalogCache(client, time.Minute), mr
}

func TestCatalogCache_ProductRoundTrip(t *testing.T) {
	cache, _ := newCache(t)
	ctx := context.Background()

	p := model.Product{ID: 1, Name: "Red clay brick", SKU: "BRK-001", Category: "bricks", Price: 0.85}
	if err := cache.SetProduct(ctx, p); err != nil {
		t.Fatalf("set %v", err)
	}

	got, ok, err := cache.GetProduct(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("get %v %v", ok, err)
	}
	if got.SKU != "BRK-001" || got.Price != 0.85 {
		t.Fatalf("unexpected product %+v", got)
	}
}

func TestCatalogCache_MissIsNotAnError(t *testing.T) {
	cache, _ := newCache(t)

	_, ok, err := cache.GetProduct(context.Background(), 404)
	if err != nil {
		t.Fatalf("miss must not error: %v", err)
	}
	if ok {
		t.Fatal("unexpected hit")
	}
}

func TestCatalogCache_CorruptEntryBecomesMiss(t *testing.T) {
	cache, mr := newCache(t)
	ctx := context.Background()

	mr.Set("catalog:product:7", "{not json")
	_, ok, err := cache.GetProduct(ctx, 7)
	if err != nil || ok {
		t.Fatalf("corrupt entry should read as miss, got %v %v", ok, err)
	}
	if mr.Exists("catalog:product:7") {
		t.Fatal("corrupt entry was not dropped")
	}
}

func TestCatalogCache_Invalidate(t *testing.T) {
	cache, mr := newCache(t)
	ctx := context.Background()

	p := model.Product{ID: 3, Category: "tiles"}
	if err := cache.SetProduct(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := cache.SetCategoryList(ctx, "tiles", []model.Product{p}); err != nil {
		t.Fatal(err)
	}
	if err := cache.SetCategories(ctx, []string{"tiles"}); err != nil {
		t.Fatal(err)
	}

	if err := cache.Invalidate(ctx, 3, "tiles"); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"catalog:product:3", "catalog:category:tiles", "catalog:categories"} {
		if mr.Exists(key) {
			t.Fatalf("%s survived invalidation", key)
		}
	}
}

func TestCatalogCache_EntriesExpire(t *testing.T) {
	cache, mr := newCache(t)
	ctx := context.Background()

	if err := cache.SetCategories(ctx, []string{"bricks"}); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.GetCategories(ctx)
	if err != nil || ok {
		t.Fatalf("expired entry should read as miss, got %v %v", ok, err)
	}
}
