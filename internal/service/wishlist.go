package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tiaadeals/server/internal/models"
	"github.com/tiaadeals/server/internal/repo"
)

// WishlistEntry mirrors CartEntry for the wishlist: product fields come from
// the live catalog row at read time.
type WishlistEntry struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"user_id"`
	ProductID       uint      `json:"product_id"`
	SelectedColor   string    `json:"selected_color,omitempty"`
	ProductName     string    `json:"product_name"`
	ProductPrice    float64   `json:"product_price"`
	OriginalPrice   float64   `json:"original_price"`
	ProductImageURL string    `json:"product_image_url,omitempty"`
	Company         string    `json:"company,omitempty"`
	CategoryName    string    `json:"category_name,omitempty"`
	IsInStock       bool      `json:"is_in_stock"`
	CreatedAt       time.Time `json:"created_at"`
}

type WishlistService struct {
	Repo *repo.GormRepo
}

func wishlistEntry(item *models.WishlistItem) WishlistEntry {
	return WishlistEntry{
		ID:              item.ID,
		UserID:          item.UserID,
		ProductID:       item.ProductID,
		SelectedColor:   item.SelectedColor,
		ProductName:     item.Product.Name,
		ProductPrice:    item.Product.Price,
		OriginalPrice:   item.Product.OriginalPrice,
		ProductImageURL: item.Product.ImageURL,
		Company:         item.Product.Company,
		CategoryName:    item.Product.Category.Name,
		IsInStock:       item.Product.Stock > 0,
		CreatedAt:       item.CreatedAt,
	}
}

func (s *WishlistService) Get(ctx context.Context, userID uint) ([]WishlistEntry, error) {
	items, err := s.Repo.GetWishlistItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]WishlistEntry, 0, len(items))
	for i := range items {
		entries = append(entries, wishlistEntry(&items[i]))
	}
	return entries, nil
}

// Add is idempotent for a (user, product) pair: repeating it keeps the
// original entry rather than duplicating or failing.
func (s *WishlistService) Add(ctx context.Context, userID, productID uint, selectedColor string) (*WishlistEntry, error) {
	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, err
	}

	item := &models.WishlistItem{
		UserID:        userID,
		ProductID:     productID,
		SelectedColor: selectedColor,
	}
	if err := s.Repo.AddWishlistItem(ctx, item); err != nil {
		return nil, err
	}

	item.Product = *product
	e := wishlistEntry(item)
	return &e, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID uint) error {
	if err := s.Repo.DeleteWishlistItem(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("wishlist entry: %w", ErrNotFound)
		}
		return err
	}
	return nil
}

// Clear shares ClearCart's contract: an already-empty wishlist is success.
func (s *WishlistService) Clear(ctx context.Context, userID uint) error {
	return s.Repo.DeleteAllWishlistItems(ctx, userID)
}
