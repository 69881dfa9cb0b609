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

// DefaultLowStockThreshold marks a cart line as low-stock when the product
// has this many units or fewer left.
const DefaultLowStockThreshold = 5

// CartEntry is the read-side view of one cart line. Product fields and the
// stock flags are taken from the catalog row at read time, never cached, so
// a stale price or stock count cannot leak to callers.
type CartEntry struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"user_id"`
	ProductID       uint      `json:"product_id"`
	Quantity        int       `json:"quantity"`
	ProductName     string    `json:"product_name"`
	ProductPrice    float64   `json:"product_price"`
	ProductImageURL string    `json:"product_image_url,omitempty"`
	CategoryName    string    `json:"category_name,omitempty"`
	AvailableStock  int       `json:"available_stock"`
	TotalPrice      float64   `json:"total_price"`
	IsInStock       bool      `json:"is_in_stock"`
	IsLowStock      bool      `json:"is_low_stock"`
	IsOutOfStock    bool      `json:"is_out_of_stock"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CartService keeps per-user cart contents consistent with current product
// stock. Stock checks and writes are not atomic against concurrent stock
// mutations from other flows; overcommit detected later via ValidateStock.
type CartService struct {
	Repo              *repo.GormRepo
	LowStockThreshold int
}

func NewCartService(r *repo.GormRepo) *CartService {
	return &CartService{Repo: r, LowStockThreshold: DefaultLowStockThreshold}
}

func (s *CartService) entry(item *models.CartItem, product *models.Product) CartEntry {
	threshold := s.LowStockThreshold
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return CartEntry{
		ID:              item.ID,
		UserID:          item.UserID,
		ProductID:       item.ProductID,
		Quantity:        item.Quantity,
		ProductName:     product.Name,
		ProductPrice:    product.Price,
		ProductImageURL: product.ImageURL,
		CategoryName:    product.Category.Name,
		AvailableStock:  product.Stock,
		TotalPrice:      product.Price * float64(item.Quantity),
		IsInStock:       product.Stock > 0,
		IsLowStock:      product.Stock > 0 && product.Stock <= threshold,
		IsOutOfStock:    product.Stock == 0,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

// AddToCart merges the requested quantity into the user's cart. A second add
// for the same product is additive: the stock check runs against the merged
// total and a rejection leaves the existing entry untouched.
func (s *CartService) AddToCart(ctx context.Context, userID, productID uint, quantity int) (*CartEntry, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}

	if _, err := s.Repo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, fmt.Errorf("product is not available for purchase: %w", ErrValidation)
	}

	item, err := s.Repo.GetCartItem(ctx, userID, productID)
	switch {
	case err == nil:
		newQuantity := item.Quantity + quantity
		if product.Stock < newQuantity {
			return nil, &InsufficientStockError{
				ProductName: product.Name,
				Requested:   newQuantity,
				Available:   product.Stock,
			}
		}
		item.Quantity = newQuantity
		if err := s.Repo.SaveCartItem(ctx, item); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if product.Stock < quantity {
			return nil, &InsufficientStockError{
				ProductName: product.Name,
				Requested:   quantity,
				Available:   product.Stock,
			}
		}
		item = &models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
		if err := s.Repo.CreateCartItem(ctx, item); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	e := s.entry(item, product)
	return &e, nil
}

// UpdateQuantity replaces the entry's quantity outright, unlike AddToCart.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) (*CartEntry, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}

	item, err := s.Repo.GetCartItem(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart entry: %w", ErrNotFound)
		}
		return nil, err
	}

	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, err
	}
	if product.Stock < quantity {
		return nil, &InsufficientStockError{
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}

	item.Quantity = quantity
	if err := s.Repo.SaveCartItem(ctx, item); err != nil {
		return nil, err
	}

	e := s.entry(item, product)
	return &e, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID uint) error {
	if err := s.Repo.DeleteCartItem(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("cart entry: %w", ErrNotFound)
		}
		return err
	}
	return nil
}

// ClearCart never fails on an absent cart: deleting nothing is success.
func (s *CartService) ClearCart(ctx context.Context, userID uint) error {
	return s.Repo.DeleteAllCartItems(ctx, userID)
}

func (s *CartService) GetCart(ctx context.Context, userID uint) ([]CartEntry, error) {
	items, err := s.Repo.GetCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]CartEntry, 0, len(items))
	for i := range items {
		entries = append(entries, s.entry(&items[i], &items[i].Product))
	}
	return entries, nil
}

// ValidateStock reports the entries whose reserved quantity now exceeds the
// product's stock. The ledger holds no reservation between add-time and
// checkout-time, so this post-hoc check is how overcommit surfaces.
func (s *CartService) ValidateStock(ctx context.Context, userID uint) ([]CartEntry, error) {
	items, err := s.Repo.GetCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	invalid := make([]CartEntry, 0)
	for i := range items {
		if items[i].Quantity > items[i].Product.Stock {
			invalid = append(invalid, s.entry(&items[i], &items[i].Product))
		}
	}
	return invalid, nil
}

// CartTotal sums quantity x current price over the cart; zero for no entries.
func (s *CartService) CartTotal(ctx context.Context, userID uint) (float64, error) {
	items, err := s.Repo.GetCartItems(ctx, userID)
	if err != nil {
		return 0, err
	}

	var total float64
	for i := range items {
		total += items[i].Product.Price * float64(items[i].Quantity)
	}
	return total, nil
}

func (s *CartService) ItemCount(ctx context.Context, userID uint) (int64, error) {
	return s.Repo.CountCartItems(ctx, userID)
}

func (s *CartService) ContainsProduct(ctx context.Context, userID, productID uint) (bool, error) {
	return s.Repo.CartContainsProduct(ctx, userID, productID)
}

func (s *CartService) EntriesByCategory(ctx context.Context, userID, categoryID uint) ([]CartEntry, error) {
	items, err := s.Repo.GetCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]CartEntry, 0)
	for i := range items {
		if items[i].Product.CategoryID == categoryID {
			entries = append(entries, s.entry(&items[i], &items[i].Product))
		}
	}
	return entries, nil
}

// EntriesAboveValue keeps lines whose quantity x price meets minValue.
func (s *CartService) EntriesAboveValue(ctx context.Context, userID uint, minValue float64) ([]CartEntry, error) {
	items, err := s.Repo.GetCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]CartEntry, 0)
	for i := range items {
		if items[i].Product.Price*float64(items[i].Quantity) >= minValue {
			entries = append(entries, s.entry(&items[i], &items[i].Product))
		}
	}
	return entries, nil
}

func (s *CartService) LowStockEntries(ctx context.Context, userID uint, threshold int) ([]CartEntry, error) {
	if threshold <= 0 {
		threshold = s.LowStockThreshold
	}

	items, err := s.Repo.GetCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]CartEntry, 0)
	for i := range items {
		if items[i].Product.Stock <= threshold {
			entries = append(entries, s.entry(&items[i], &items[i].Product))
		}
	}
	return entries, nil
}

func (s *CartService) OutOfStockEntries(ctx context.Context, userID uint) ([]CartEntry, error) {
	items, err := s.Repo.GetCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]CartEntry, 0)
	for i := range items {
		if items[i].Product.Stock == 0 {
			entries = append(entries, s.entry(&items[i], &items[i].Product))
		}
	}
	return entries, nil
}

// PopularProducts ranks products by how many distinct carts hold them.
func (s *CartService) PopularProducts(ctx context.Context, limit int) ([]repo.PopularProduct, error) {
	if limit < 1 {
		limit = 10
	}
	return s.Repo.PopularProductsInCarts(ctx, limit)
}
