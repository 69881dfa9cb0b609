package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tiaadeals/server/internal/models"
	"github.com/tiaadeals/server/internal/repo"
)

type CatalogService struct {
	Repo *repo.GormRepo
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) GetProducts(ctx context.Context, f repo.ProductFilter, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.GetProducts(ctx, f, offset, limit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.Name == "" {
		return fmt.Errorf("product name is required: %w", ErrValidation)
	}
	if product.Price <= 0 || product.OriginalPrice <= 0 {
		return fmt.Errorf("price must be positive: %w", ErrValidation)
	}
	if product.Stock < 0 {
		return fmt.Errorf("stock cannot be negative: %w", ErrValidation)
	}
	if _, err := s.Repo.GetCategory(ctx, product.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("category %d: %w", product.CategoryID, ErrNotFound)
		}
		return err
	}
	return s.Repo.CreateProduct(ctx, product)
}

// ProductPatch updates only the fields that are set.
type ProductPatch struct {
	Name                *string  `json:"name"`
	Description         *string  `json:"description"`
	Price               *float64 `json:"price"`
	OriginalPrice       *float64 `json:"original_price"`
	ImageURL            *string  `json:"image_url"`
	Company             *string  `json:"company"`
	SKU                 *string  `json:"sku"`
	CategoryID          *uint    `json:"category_id"`
	Stock               *int     `json:"stock"`
	IsActive            *bool    `json:"is_active"`
	IsFeatured          *bool    `json:"is_featured"`
	IsShippingAvailable *bool    `json:"is_shipping_available"`
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		if *patch.Price <= 0 {
			return nil, fmt.Errorf("price must be positive: %w", ErrValidation)
		}
		product.Price = *patch.Price
	}
	if patch.OriginalPrice != nil {
		if *patch.OriginalPrice <= 0 {
			return nil, fmt.Errorf("original price must be positive: %w", ErrValidation)
		}
		product.OriginalPrice = *patch.OriginalPrice
	}
	if patch.ImageURL != nil {
		product.ImageURL = *patch.ImageURL
	}
	if patch.Company != nil {
		product.Company = *patch.Company
	}
	if patch.SKU != nil {
		product.SKU = *patch.SKU
	}
	if patch.CategoryID != nil {
		if _, err := s.Repo.GetCategory(ctx, *patch.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("category %d: %w", *patch.CategoryID, ErrNotFound)
			}
			return nil, err
		}
		product.CategoryID = *patch.CategoryID
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, fmt.Errorf("stock cannot be negative: %w", ErrValidation)
		}
		product.Stock = *patch.Stock
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
	}
	if patch.IsFeatured != nil {
		product.IsFeatured = *patch.IsFeatured
	}
	if patch.IsShippingAvailable != nil {
		product.IsShippingAvailable = *patch.IsShippingAvailable
	}

	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateStock adjusts the aggregate stock counter by delta. Color variant
// quantities are left alone on purpose; the two are independently writable.
func (s *CatalogService) UpdateStock(ctx context.Context, id uint, delta int) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	newStock := product.Stock + delta
	if newStock < 0 {
		return nil, fmt.Errorf("stock cannot go negative: %w", ErrValidation)
	}
	product.Stock = newStock

	if err := s.Repo.SaveProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) SetProductColors(ctx context.Context, id uint, colors []models.ProductColor) (*models.Product, error) {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	for i := range colors {
		if colors[i].Color == "" {
			return nil, fmt.Errorf("color label is required: %w", ErrValidation)
		}
		if colors[i].Quantity < 0 {
			return nil, fmt.Errorf("color quantity cannot be negative: %w", ErrValidation)
		}
	}
	if err := s.Repo.ReplaceProductColors(ctx, id, colors); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *CatalogService) ProductStatistics(ctx context.Context) (*repo.ProductStats, error) {
	return s.Repo.ProductStatistics(ctx)
}

func (s *CatalogService) GetCategories(ctx context.Context) ([]models.Category, error) {
	return s.Repo.GetCategories(ctx)
}

func (s *CatalogService) GetCategoriesByUsage(ctx context.Context, withProducts bool) ([]models.Category, error) {
	return s.Repo.GetCategoriesByUsage(ctx, withProducts)
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	cat, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return cat, nil
}

func (s *CatalogService) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	cat, err := s.Repo.GetCategoryByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
		}
		return nil, err
	}
	return cat, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, cat *models.Category) error {
	if cat.Name == "" {
		return fmt.Errorf("category name is required: %w", ErrValidation)
	}
	created, err := s.Repo.CreateCategoryIfNotExists(ctx, cat)
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("category %q: %w", cat.Name, ErrAlreadyExists)
	}
	return nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, name, description, imageURL string) (*models.Category, error) {
	cat, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		cat.Name = name
	}
	if description != "" {
		cat.Description = description
	}
	if imageURL != "" {
		cat.ImageURL = imageURL
	}

	if err := s.Repo.SaveCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}
