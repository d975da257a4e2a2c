package repo

import (
	"context"

	"github.com/kilnworks/brickline/internal/domain/catalog/model"
)

type ProductRepo interface {
	CreateProduct(ctx context.Context, p model.Product) (uint, error)

	GetProductByID(ctx context.Context, id uint) (model.Product, error)

	GetProductBySKU(ctx context.Context, sku string) (model.Product, error)

	ListProducts(ctx context.Context, params model.SearchParams) (model.ProductPage, error)

	ListByCategory(ctx context.Context, category string, limit int) ([]model.Product, error)

	ListCategories(ctx context.Context) ([]string, error)

	UpdateProduct(ctx context.Context, p model.Product) error

	UpdateStock(ctx context.Context, id uint, stock int) error

	DeleteProduct(ctx context.Context, id uint) error
}
