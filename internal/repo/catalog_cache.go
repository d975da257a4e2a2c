package repo

import (
	"context"

	"github.com/kilnworks/brickline/internal/domain/catalog/model"
)

// CatalogCache is a read-through cache in front of the product store.
// Misses are reported with (ok=false, err=nil); a cache outage must never
// fail a read path, so callers treat errors as misses too.
type CatalogCache interface {
	GetProduct(ctx context.Context, id uint) (model.Product, bool, error)

	SetProduct(ctx context.Context, p model.Product) error

	GetCategoryList(ctx context.Context, category string) ([]model.Product, bool, error)

	SetCategoryList(ctx context.Context, category string, products []model.Product) error

	GetCategories(ctx context.Context) ([]string, bool, error)

	SetCategories(ctx context.Context, categories []string) error

	// Invalidate drops every cached view touching the given product.
	Invalidate(ctx context.Context, id uint, category string) error
}
