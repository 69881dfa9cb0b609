package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddToCartCreatesEntry(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	user := seedUser(t, r, "shopper@example.com")
	cat := seedCategory(t, r, "electronics")
	product := seedProduct(t, r, "headphones", cat.ID, 59.99, 10)

	entry, err := svc.AddToCart(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 2, entry.Quantity)
	require.Equal(t, "headphones", entry.ProductName)
	require.Equal(t, 59.99*2, entry.TotalPrice)
	require.True(t, entry.IsInStock)
}

func TestAddToCartMergesQuantities(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	user := seedUser(t, r, "shopper@example.com")
	cat := seedCategory(t, r, "electronics")
	product := seedProduct(t, r, "headphones", cat.ID, 59.99, 10)

	_, err := svc.AddToCart(ctx, user.ID, product.ID, 3)
	require.NoError(t, err)

	entry, err := svc.AddToCart(ctx, user.ID, product.ID, 4)
	require.NoError(t, err)
	require.Equal(t, 7, entry.Quantity)

	count, err := svc.ItemCount(ctx, user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestAddToCartRejectsMergedTotalOverStock(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	user := seedUser(t, r, "shopper@example.com")
	cat := seedCategory(t, r, "electronics")
	product := seedProduct(t, r, "headphones", cat.ID, 59.99, 10)

	_, err := svc.AddToCart(ctx, user.ID, product.ID, 6)
	require.NoError(t, err)

	_, err = svc.AddToCart(ctx, user.ID, product.ID, 5)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "headphones", stockErr.ProductName)
	require.Equal(t, 11, stockErr.Requested)
	require.Equal(t, 10, stockErr.Available)

	// the existing entry survives the rejection
	cart, err := svc.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	require.Equal(t, 6, cart[0].Quantity)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	user := seedUser(t, r, "shopper@example.com")

	_, err := svc.AddToCart(ctx, user.ID, 999, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAddToCartRejectsZeroQuantity(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	user := seedUser(t, r, "shopper@example.com")
	cat := seedCategory(t, r, "electronics")
	product := seedProduct(t, r, "headphones", cat.ID, 59.99, 10)

	_, err := svc.AddToCart(ctx, user.ID, product.ID, 0)
	require.ErrorIs(t, err, ErrValidation)
}

func TestAddToCartInactiveProduct(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	user := seedUser(t, r, "shopper@example.com")
	cat := seedCategory(t, r, "electronics")
	product := seedProduct(t, r, "headphones", cat.ID, 59.99, 10)
	require.NoError(t, r.DB.Model(product).Update("is_active", false).Error)

	_, err := svc.AddToCart(ctx, user.ID, product.ID, 1)
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateQuantityReplacesOutright(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	user := seedUser(t, r, "shopper@example.com")
	cat := seedCategory(t, r, "electronics")
	product := seedProduct(t, r, "headphones", cat.ID, 59.99, 10)

	_, err := svc.AddToCart(ctx, user.ID, product.ID, 3)
	require.NoError(t, err)

	entry, err := svc.UpdateQuantity(ctx, user.ID, product.ID, 8)
	require.NoError(t, err)
	require.Equal(t, 8, entry.Quantity)
}

func TestUpdateQuantityMissingEntry(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	user := seedUser(t, r, "shopper@example.com")
	cat := seedCategory(t, r, "electronics")
	product := seedProduct(t, r, "headphones", cat.ID, 59.99, 10)

	_, err := svc.UpdateQuantity(ctx, user.ID, product.ID, 2)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateQuantityOverStock(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	user := seedUser(t, r, "shopper@example.com")
	cat := seedCategory(t, r, "electronics")
	product := seedProduct(t, r, "headphones", cat.ID, 59.99, 5)

	_, err := svc.AddToCart(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, user.ID, product.ID, 6)
	require.ErrorIs(t, err, ErrInsufficientStock)

	cart, err := svc.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 2, cart[0].Quantity)
}

func TestRemoveFromCart(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	user := seedUser(t, r, "shopper@example.com")
	cat := seedCategory(t, r, "electronics")
	product := seedProduct(t, r, "headphones", cat.ID, 59.99, 10)

	_, err := svc.AddToCart(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFromCart(ctx, user.ID, product.ID))

	err = svc.RemoveFromCart(ctx, user.ID, product.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClearCartNeverFails(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	user := seedUser(t, r, "shopper@example.com")

	require.NoError(t, svc.ClearCart(ctx, user.ID))
	require.NoError(t, svc.ClearCart(ctx, user.ID))

	cat := seedCategory(t, r, "electronics")
	product := seedProduct(t, r, "headphones", cat.ID, 59.99, 10)
	_, err := svc.AddToCart(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, user.ID))
	count, err := svc.ItemCount(ctx, user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}

func TestCartTotal(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	user := seedUser(t, r, "shopper@example.com")
	cat := seedCategory(t, r, "electronics")
	p1 := seedProduct(t, r, "headphones", cat.ID, 50, 10)
	p2 := seedProduct(t, r, "keyboard", cat.ID, 120, 10)

	total, err := svc.CartTotal(ctx, user.ID)
	require.NoError(t, err)
	require.Zero(t, total)

	_, err = svc.AddToCart(ctx, user.ID, p1.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, user.ID, p2.ID, 1)
	require.NoError(t, err)

	total, err = svc.CartTotal(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 220.0, total)
}

func TestValidateStockFlagsOvercommit(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	user := seedUser(t, r, "shopper@example.com")
	cat := seedCategory(t, r, "electronics")
	product := seedProduct(t, r, "headphones", cat.ID, 59.99, 10)

	_, err := svc.AddToCart(ctx, user.ID, product.ID, 8)
	require.NoError(t, err)

	invalid, err := svc.ValidateStock(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, invalid)

	// stock drops after the cart was filled
	require.NoError(t, r.DB.Model(product).Update("stock", 3).Error)

	invalid, err = svc.ValidateStock(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, invalid, 1)
	require.Equal(t, product.ID, invalid[0].ProductID)
	require.Equal(t, 8, invalid[0].Quantity)
	require.Equal(t, 3, invalid[0].AvailableStock)
}

func TestContainsProduct(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	user := seedUser(t, r, "shopper@example.com")
	cat := seedCategory(t, r, "electronics")
	product := seedProduct(t, r, "headphones", cat.ID, 59.99, 10)

	ok, err := svc.ContainsProduct(ctx, user.ID, product.ID)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = svc.AddToCart(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)

	ok, err = svc.ContainsProduct(ctx, user.ID, product.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFilteredCartViews(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	user := seedUser(t, r, "shopper@example.com")
	audio := seedCategory(t, r, "audio")
	desks := seedCategory(t, r, "desks")
	cheap := seedProduct(t, r, "cable", audio.ID, 5, 100)
	pricey := seedProduct(t, r, "standing desk", desks.ID, 400, 2)
	gone := seedProduct(t, r, "discontinued amp", audio.ID, 250, 1)

	for _, p := range []uint{cheap.ID, pricey.ID, gone.ID} {
		_, err := svc.AddToCart(ctx, user.ID, p, 1)
		require.NoError(t, err)
	}
	require.NoError(t, r.DB.Model(gone).Update("stock", 0).Error)

	byCat, err := svc.EntriesByCategory(ctx, user.ID, audio.ID)
	require.NoError(t, err)
	require.Len(t, byCat, 2)

	above, err := svc.EntriesAboveValue(ctx, user.ID, 200)
	require.NoError(t, err)
	require.Len(t, above, 2)

	low, err := svc.LowStockEntries(ctx, user.ID, 5)
	require.NoError(t, err)
	require.Len(t, low, 2) // the desk at 2 and the amp at 0

	oos, err := svc.OutOfStockEntries(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, oos, 1)
	require.Equal(t, gone.ID, oos[0].ProductID)
}

func TestPopularProducts(t *testing.T) {
	r := newTestRepo(t)
	svc := NewCartService(r)
	ctx := context.Background()

	u1 := seedUser(t, r, "a@example.com")
	u2 := seedUser(t, r, "b@example.com")
	u3 := seedUser(t, r, "c@example.com")
	cat := seedCategory(t, r, "electronics")
	hot := seedProduct(t, r, "hot item", cat.ID, 10, 100)
	cold := seedProduct(t, r, "cold item", cat.ID, 10, 100)

	for _, u := range []uint{u1.ID, u2.ID, u3.ID} {
		_, err := svc.AddToCart(ctx, u, hot.ID, 1)
		require.NoError(t, err)
	}
	_, err := svc.AddToCart(ctx, u1.ID, cold.ID, 1)
	require.NoError(t, err)

	popular, err := svc.PopularProducts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	require.Equal(t, hot.ID, popular[0].ProductID)
	require.EqualValues(t, 3, popular[0].CartCount)
	require.Equal(t, cold.ID, popular[1].ProductID)
}

func TestInsufficientStockErrorMatchesSentinel(t *testing.T) {
	err := &InsufficientStockError{ProductName: "x", Requested: 2, Available: 1}
	require.True(t, errors.Is(err, ErrInsufficientStock))
	require.False(t, errors.Is(err, ErrNotFound))
}
