package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	customErrors "github.com/kilnworks/brickline/internal/domain/auth/errors"
	"github.com/kilnworks/brickline/internal/domain/catalog/model"
)

type PostgresProductRepo struct {
	db *gorm.DB
}

func NewPostgresProductRepo(db *gorm.DB) *PostgresProductRepo {
	return &PostgresProductRepo{db: db}
}

func (p *PostgresProductRepo) CreateProduct(ctx context.Context, product model.Product) (uint, error) {
	res := p.db.WithContext(ctx).Create(&product)
	if err := res.Error; err != nil {
		if isUniqueViolation(err) {
			return 0, customErrors.ErrAlreadyExists
		}
		return 0, customErrors.WrapInternal(err, "CreateProduct")
	}
	return product.ID, nil
}

func (p *PostgresProductRepo) GetProductByID(ctx context.Context, id uint) (model.Product, error) {
	var product model.Product
	res := p.db.WithContext(ctx).Where("id = ?", id).First(&product)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Product{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Product{}, customErrors.WrapInternal(err, "GetProductByID")
	}

	return product, nil
}

func (p *PostgresProductRepo) GetProductBySKU(ctx context.Context, sku string) (model.Product, error) {
	var product model.Product
	res := p.db.WithContext(ctx).Where("sku = ?", sku).First(&product)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return model.Product{}, customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return model.Product{}, customErrors.WrapInternal(err, "GetProductBySKU")
	}

	return product, nil
}

func (p *PostgresProductRepo) ListProducts(ctx context.Context, params model.SearchParams) (model.ProductPage, error) {
	q := p.db.WithContext(ctx).Model(&model.Product{})

	if params.Query != "" {
		pattern := "%" + params.Query + "%"
		q = q.Where("name ILIKE ? OR description ILIKE ? OR sku ILIKE ?", pattern, pattern, pattern)
	}
	if params.Category != "" {
		q = q.Where("category = ?", params.Category)
	}
	if params.MinPrice != nil {
		q = q.Where("price >= ?", *params.MinPrice)
	}
	if params.MaxPrice != nil {
		q = q.Where("price <= ?", *params.MaxPrice)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return model.ProductPage{}, customErrors.WrapInternal(err, "ListProducts")
	}

	order := params.SortBy + " ASC"
	if params.SortDesc {
		order = params.SortBy + " DESC"
	}

	var products []model.Product
	err := q.Order(order).
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&products).Error
	if err != nil {
		return model.ProductPage{}, customErrors.WrapInternal(err, "ListProducts")
	}

	return model.ProductPage{Products: products, Total: total}, nil
}

func (p *PostgresProductRepo) ListByCategory(ctx context.Context, category string, limit int) ([]model.Product, error) {
	var products []model.Product
	err := p.db.WithContext(ctx).
		Where("category = ? AND is_active = ?", category, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListByCategory")
	}

	return products, nil
}

func (p *PostgresProductRepo) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := p.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("is_active = ?", true).
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, customErrors.WrapInternal(err, "ListCategories")
	}

	return categories, nil
}

func (p *PostgresProductRepo) UpdateProduct(ctx context.Context, product model.Product) error {
	res := p.db.WithContext(ctx).Save(&product)
	if err := res.Error; err != nil {
		if isUniqueViolation(err) {
			return customErrors.ErrAlreadyExists
		}
		return customErrors.WrapInternal(err, "UpdateProduct")
	}

	return nil
}

func (p *PostgresProductRepo) UpdateStock(ctx context.Context, id uint, stock int) error {
	res := p.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Update("stock", stock)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "UpdateStock")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}

	return nil
}

func (p *PostgresProductRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := p.db.WithContext(ctx).Delete(&model.Product{}, id)
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "DeleteProduct")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}

	return nil
}
