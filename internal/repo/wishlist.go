package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tiaadeals/server/internal/models"
)

func (r *GormRepo) GetWishlistItems(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
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

// AddWishlistItem inserts the item unless the (user, product) pair already
// exists; the existing row wins and is returned unchanged.
func (r *GormRepo) AddWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
		FirstOrCreate(item).Error
}

func (r *GormRepo) DeleteWishlistItem(ctx context.Context, userID, productID uint) error {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteAllWishlistItems(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.WishlistItem{}).Error
}
