package service

import (
	"context"

	validate "github.com/go-playground/validator/v10"

	"github.com/kilnworks/brickline/internal/app/dto"
	customErrors "github.com/kilnworks/brickline/internal/domain/auth/errors"
	"github.com/kilnworks/brickline/internal/domain/catalog/model"
	"github.com/kilnworks/brickline/internal/repo"
)

type catalogService struct {
	products repo.ProductRepo
	cache    repo.CatalogCache
	v        *validate.Validate
}

func (c *catalogService) List(ctx context.Context, params model.SearchParams) (model.ProductPage, error) {
	params.Normalize()
	page, err := c.products.ListProducts(ctx, params)
	if err != nil {
		return model.ProductPage{}, customErrors.WrapInternal(err, "List")
	}
	return page, nil
}

func (c *catalogService) Search(ctx context.Context, params model.SearchParams) (model.ProductPage, error) {
	if params.Query == "" && params.Category == "" {
		return model.ProductPage{}, customErrors.NewInvalidArgument("search query or category is required")
	}
	return c.List(ctx, params)
}

func (c *catalogService) Get(ctx context.Context, id uint) (model.Product, error) {
	if c.cache != nil {
		if p, ok, err := c.cache.GetProduct(ctx, id); err == nil && ok {
			return p, nil
		}
	}

	p, err := c.products.GetProductByID(ctx, id)
	if customErrors.IsNotFound(err) {
		return model.Product{}, customErrors.ErrNotFound
	}
	if err != nil {
		return model.Product{}, customErrors.WrapInternal(err, "Get")
	}

	if c.cache != nil {
		_ = c.cache.SetProduct(ctx, p)
	}
	return p, nil
}

func (c *catalogService) ByCategory(ctx context.Context, category string, limit int) ([]model.Product, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}

	if c.cache != nil {
		if list, ok, err := c.cache.GetCategoryList(ctx, category); err == nil && ok {
			if len(list) > limit {
				list = list[:limit]
			}
			return list, nil
		}
	}

	list, err := c.products.ListByCategory(ctx, category, limit)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ByCategory")
	}

	if c.cache != nil {
		_ = c.cache.SetCategoryList(ctx, category, list)
	}
	return list, nil
}

func (c *catalogService) Categories(ctx context.Context) ([]string, error) {
	if c.cache != nil {
		if list, ok, err := c.cache.GetCategories(ctx); err == nil && ok {
			return list, nil
		}
	}

	list, err := c.products.ListCategories(ctx)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "Categories")
	}

	if c.cache != nil {
		_ = c.cache.SetCategories(ctx, list)
	}
	return list, nil
}

func (c *catalogService) Create(ctx context.Context, dto dto.CreateProductDTO) (model.Product, error) {
	if err := c.v.Struct(dto); err != nil {
		return model.Product{}, customErrors.NewInvalidArgument(err.Error())
	}

	if _, err := c.products.GetProductBySKU(ctx, dto.SKU); err == nil {
		return model.Product{}, customErrors.NewConflict("product with this SKU already exists")
	} else if !customErrors.IsNotFound(err) {
		return model.Product{}, customErrors.WrapInternal(err, "Create")
	}

	p := model.Product{
		Name:           dto.Name,
		Description:    dto.Description,
		Price:          dto.Price,
		Category:       dto.Category,
		SKU:            dto.SKU,
		Stock:          dto.Stock,
		ImageURL:       dto.ImageURL,
		Images:         dto.Images,
		Location:       dto.Location,
		Year:           dto.Year,
		Specifications: dto.Specifications,
		IsActive:       true,
	}

	id, err := c.products.CreateProduct(ctx, p)
	if err != nil {
		if customErrors.IsAlreadyExists(err) {
			return model.Product{}, customErrors.NewConflict("product with this SKU already exists")
		}
		return model.Product{}, customErrors.WrapInternal(err, "Create")
	}
	p.ID = id

	c.invalidate(ctx, p.ID, p.Category)
	return p, nil
}

func (c *catalogService) Update(ctx context.Context, id uint, dto dto.UpdateProductDTO) (model.Product, error) {
	if err := c.v.Struct(dto); err != nil {
		return model.Product{}, customErrors.NewInvalidArgument(err.Error())
	}

	existing, err := c.products.GetProductByID(ctx, id)
	if customErrors.IsNotFound(err) {
		return model.Product{}, customErrors.ErrNotFound
	}
	if err != nil {
		return model.Product{}, customErrors.WrapInternal(err, "Update")
	}

	oldCategory := existing.Category

	if dto.SKU != nil && *dto.SKU != existing.SKU {
		if _, err := c.products.GetProductBySKU(ctx, *dto.SKU); err == nil {
			return model.Product{}, customErrors.NewConflict("product with this SKU already exists")
		} else if !customErrors.IsNotFound(err) {
			return model.Product{}, customErrors.WrapInternal(err, "Update")
		}
		existing.SKU = *dto.SKU
	}

	applyProductUpdate(&existing, dto)

	if err := c.products.UpdateProduct(ctx, existing); err != nil {
		if customErrors.IsAlreadyExists(err) {
			return model.Product{}, customErrors.NewConflict("product with this SKU already exists")
		}
		return model.Product{}, customErrors.WrapInternal(err, "Update")
	}

	c.invalidate(ctx, id, oldCategory)
	if existing.Category != oldCategory {
		c.invalidate(ctx, id, existing.Category)
	}
	return existing, nil
}

func (c *catalogService) UpdateStock(ctx context.Context, id uint, stock int) error {
	if stock < 0 {
		return customErrors.NewInvalidArgument("stock must not be negative")
	}

	existing, err := c.products.GetProductByID(ctx, id)
	if customErrors.IsNotFound(err) {
		return customErrors.ErrNotFound
	}
	if err != nil {
		return customErrors.WrapInternal(err, "UpdateStock")
	}

	if err := c.products.UpdateStock(ctx, id, stock); err != nil {
		return customErrors.WrapInternal(err, "UpdateStock")
	}

	c.invalidate(ctx, id, existing.Category)
	return nil
}

func (c *catalogService) Delete(ctx context.Context, id uint) error {
	existing, err := c.products.GetProductByID(ctx, id)
	if customErrors.IsNotFound(err) {
		return customErrors.ErrNotFound
	}
	if err != nil {
		return customErrors.WrapInternal(err, "Delete")
	}

	if err := c.products.DeleteProduct(ctx, id); err != nil {
		if customErrors.IsNotFound(err) {
			return customErrors.ErrNotFound
		}
		return customErrors.WrapInternal(err, "Delete")
	}

	c.invalidate(ctx, id, existing.Category)
	return nil
}

func (c *catalogService) invalidate(ctx context.Context, id uint, category string) {
	if c.cache == nil {
		return
	}
	_ = c.cache.Invalidate(ctx, id, category)
}

func applyProductUpdate(p *model.Product, dto dto.UpdateProductDTO) {
	if dto.Name != nil {
		p.Name = *dto.Name
	}
	if dto.Description != nil {
		p.Description = *dto.Description
	}
	if dto.Price != nil {
		p.Price = *dto.Price
	}
	if dto.Category != nil {
		p.Category = *dto.Category
	}
	if dto.Stock != nil {
		p.Stock = *dto.Stock
	}
	if dto.ImageURL != nil {
		p.ImageURL = *dto.ImageURL
	}
	if dto.Images != nil {
		p.Images = dto.Images
	}
	if dto.Location != nil {
		p.Location = *dto.Location
	}
	if dto.Year != nil {
		p.Year = *dto.Year
	}
	if dto.Specifications != nil {
		p.Specifications = dto.Specifications
	}
	if dto.IsActive != nil {
		p.IsActive = *dto.IsActive
	}
}
