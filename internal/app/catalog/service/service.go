package service

import (
	"context"

	validate "github.com/go-playground/validator/v10"

	"github.com/kilnworks/brickline/internal/app/dto"
	"github.com/kilnworks/brickline/internal/domain/catalog/model"
	"github.com/kilnworks/brickline/internal/repo"
)

// CatalogService is the product side of the API. Reads go through the
// catalog cache when one is configured; any cache failure degrades to a
// database read, never to a request failure.
type CatalogService interface {
	List(ctx context.Context, params model.SearchParams) (model.ProductPage, error)
	Search(ctx context.Context, params model.SearchParams) (model.ProductPage, error)
	Get(ctx context.Context, id uint) (model.Product, error)
	ByCategory(ctx context.Context, category string, limit int) ([]model.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, dto dto.CreateProductDTO) (model.Product, error)
	Update(ctx context.Context, id uint, dto dto.UpdateProductDTO) (model.Product, error)
	UpdateStock(ctx context.Context, id uint, stock int) error
	Delete(ctx context.Context, id uint) error
}

func NewCatalogService(products repo.ProductRepo, cache repo.CatalogCache, v *validate.Validate) CatalogService {
	return &catalogService{
		products: products,
		cache:    cache,
		v:        v,
	}
}
