package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tiaadeals/server/internal/models"
)

func (r *GormRepo) GetCartItem(ctx context.Context, userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// GetCartItems loads a user's cart joined with live product and category
// rows, so derived fields always reflect the current catalog state.
func (r *GormRepo) GetCartItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Create(item).Error
}

func (r *GormRepo) SaveCartItem(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Save(item).Error
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, userID, productID uint) error {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteAllCartItems(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}

func (r *GormRepo) CountCartItems(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *GormRepo) CartContainsProduct(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PopularProduct pairs a product with the number of distinct carts holding it.
type PopularProduct struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	CartCount int64  `json:"cart_count"`
}

func (r *GormRepo) PopularProductsInCarts(ctx context.Context, limit int) ([]PopularProduct, error) {
	var rows []PopularProduct
	if err := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Select("cart_items.product_id AS product_id, products.name AS name, COUNT(DISTINCT cart_items.user_id) AS cart_count").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Group("cart_items.product_id, products.name").
		Order("cart_count DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
