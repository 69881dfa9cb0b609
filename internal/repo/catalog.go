package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tiaadeals/server/internal/models"
)

// ProductFilter narrows paginated product listings. Zero values mean "no
// constraint" except MinPrice/MaxPrice which only apply when positive.
type ProductFilter struct {
	CategoryID   uint
	CategoryName string
	Company      string
	MinPrice     float64
	MaxPrice     float64
	InStock      bool
	OutOfStock   bool
	LowStockAt   int
	Featured     bool
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).
		Preload("Colors").
		Preload("Category").
		First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Save(prod).Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) productQuery(ctx context.Context, f ProductFilter) *gorm.DB {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.CategoryName != "" {
		q = q.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.name = ?", f.CategoryName)
	}
	if f.Company != "" {
		q = q.Where("company = ?", f.Company)
	}
	if f.MinPrice > 0 {
		q = q.Where("price >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price <= ?", f.MaxPrice)
	}
	if f.InStock {
		q = q.Where("stock > 0")
	}
	if f.OutOfStock {
		q = q.Where("stock = 0")
	}
	if f.LowStockAt > 0 {
		q = q.Where("stock <= ?", f.LowStockAt)
	}
	if f.Featured {
		q = q.Where("is_featured = ?", true)
	}
	return q
}

func (r *GormRepo) GetProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.productQuery(ctx, f).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Product
	if err := r.productQuery(ctx, f).
		Preload("Category").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// ProductStats aggregates catalog-wide counters for the admin dashboard.
type ProductStats struct {
	Total      int64 `json:"total"`
	InStock    int64 `json:"in_stock"`
	OutOfStock int64 `json:"out_of_stock"`
	Featured   int64 `json:"featured"`
}

func (r *GormRepo) ProductStatistics(ctx context.Context) (*ProductStats, error) {
	var stats ProductStats
	base := r.DB.WithContext(ctx).Model(&models.Product{})

	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("stock > 0").Count(&stats.InStock).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("stock = 0").Count(&stats.OutOfStock).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("is_featured = ?", true).Count(&stats.Featured).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *GormRepo) ReplaceProductColors(ctx context.Context, productID uint, colors []models.ProductColor) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&models.ProductColor{}).Error; err != nil {
			return err
		}
		for i := range colors {
			colors[i].ID = 0
			colors[i].ProductID = productID
		}
		if len(colors) == 0 {
			return nil
		}
		return tx.Create(&colors).Error
	})
}

func (r *GormRepo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var cat models.Category
	if err := r.DB.WithContext(ctx).First(&cat, id).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *GormRepo) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var cat models.Category
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *GormRepo) GetCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

// GetCategoriesByUsage splits categories by whether any product references
// them. withProducts selects the populated side.
func (r *GormRepo) GetCategoriesByUsage(ctx context.Context, withProducts bool) ([]models.Category, error) {
	sub := r.DB.WithContext(ctx).Model(&models.Product{}).Select("DISTINCT category_id")
	q := r.DB.WithContext(ctx).Order("name ASC")
	if withProducts {
		q = q.Where("id IN (?)", sub)
	} else {
		q = q.Where("id NOT IN (?)", sub)
	}

	var cats []models.Category
	if err := q.Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

// CreateCategoryIfNotExists inserts the category unless the name is taken.
func (r *GormRepo) CreateCategoryIfNotExists(ctx context.Context, cat *models.Category) (bool, error) {
	tx := r.DB.WithContext(ctx).Where("name = ?", cat.Name).FirstOrCreate(cat)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *GormRepo) SaveCategory(ctx context.Context, cat *models.Category) error {
	return r.DB.WithContext(ctx).Save(cat).Error
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
