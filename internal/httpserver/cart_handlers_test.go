package httpserver

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tiaadeals/server/internal/service"
)

func TestCartEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/cart", "", map[string]any{
		"product_id": 1, "quantity": 1,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddAndGetCart(t *testing.T) {
	env := newTestEnv(t)
	access, _, _ := env.registerAndLogin(t, "shopper@example.com")
	product := env.seedProductWithCategory(t, "headphones", 59.99, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/cart", access, map[string]any{
		"product_id": product.ID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry service.CartEntry
	decode(t, rec, &entry)
	require.Equal(t, product.ID, entry.ProductID)
	require.Equal(t, 2, entry.Quantity)
	require.Equal(t, "headphones", entry.ProductName)

	rec = env.do(t, http.MethodGet, "/api/v1/cart", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cart struct {
		Items []service.CartEntry `json:"items"`
		Count int                 `json:"count"`
	}
	decode(t, rec, &cart)
	require.Equal(t, 1, cart.Count)
	require.Equal(t, 2, cart.Items[0].Quantity)
}

func TestAddToCartInsufficientStockResponse(t *testing.T) {
	env := newTestEnv(t)
	access, _, _ := env.registerAndLogin(t, "shopper@example.com")
	product := env.seedProductWithCategory(t, "headphones", 59.99, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/cart", access, map[string]any{
		"product_id": product.ID,
		"quantity":   6,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// the merged total of 11 exceeds the 10 in stock
	rec = env.do(t, http.MethodPost, "/api/v1/cart", access, map[string]any{
		"product_id": product.ID,
		"quantity":   5,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Error     string `json:"error"`
		Product   string `json:"product"`
		Requested int    `json:"requested"`
		Available int    `json:"available"`
	}
	decode(t, rec, &resp)
	require.Equal(t, "insufficient stock", resp.Error)
	require.Equal(t, "headphones", resp.Product)
	require.Equal(t, 11, resp.Requested)
	require.Equal(t, 10, resp.Available)
}

func TestUpdateQuantityEndpoint(t *testing.T) {
	env := newTestEnv(t)
	access, _, _ := env.registerAndLogin(t, "shopper@example.com")
	product := env.seedProductWithCategory(t, "headphones", 59.99, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/cart", access, map[string]any{
		"product_id": product.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/cart/items/%d", product.ID), access, map[string]any{
		"quantity": 7,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var entry service.CartEntry
	decode(t, rec, &entry)
	require.Equal(t, 7, entry.Quantity)
}

func TestUpdateQuantityMissingEntryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	access, _, _ := env.registerAndLogin(t, "shopper@example.com")
	product := env.seedProductWithCategory(t, "headphones", 59.99, 10)

	rec := env.do(t, http.MethodPut, fmt.Sprintf("/api/v1/cart/items/%d", product.ID), access, map[string]any{
		"quantity": 1,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveAndClearCartEndpoints(t *testing.T) {
	env := newTestEnv(t)
	access, _, _ := env.registerAndLogin(t, "shopper@example.com")
	p1 := env.seedProductWithCategory(t, "headphones", 59.99, 10)
	p2 := env.seedProductWithCategory(t, "keyboard", 120, 10)

	for _, p := range []uint{p1.ID, p2.ID} {
		rec := env.do(t, http.MethodPost, "/api/v1/cart", access, map[string]any{
			"product_id": p, "quantity": 1,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/cart/items/%d", p1.ID), access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/cart/items/%d", p1.ID), access, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// clearing is idempotent
	rec = env.do(t, http.MethodDelete, "/api/v1/cart", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/v1/cart", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/cart/count", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"count":0}`, rec.Body.String())
}

func TestCartTotalEndpoint(t *testing.T) {
	env := newTestEnv(t)
	access, _, _ := env.registerAndLogin(t, "shopper@example.com")
	p1 := env.seedProductWithCategory(t, "headphones", 50, 10)
	p2 := env.seedProductWithCategory(t, "keyboard", 120, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/cart", access, map[string]any{
		"product_id": p1.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/v1/cart", access, map[string]any{
		"product_id": p2.ID, "quantity": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/cart/total", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"total":220}`, rec.Body.String())
}

func TestCartValidateEndpoint(t *testing.T) {
	env := newTestEnv(t)
	access, _, _ := env.registerAndLogin(t, "shopper@example.com")
	product := env.seedProductWithCategory(t, "headphones", 59.99, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/cart", access, map[string]any{
		"product_id": product.ID, "quantity": 8,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/cart/validate", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Valid        bool                `json:"valid"`
		InvalidItems []service.CartEntry `json:"invalid_items"`
	}
	decode(t, rec, &resp)
	require.True(t, resp.Valid)
	require.Empty(t, resp.InvalidItems)

	require.NoError(t, env.DB.Model(product).Update("stock", 3).Error)

	rec = env.do(t, http.MethodGet, "/api/v1/cart/validate", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	require.False(t, resp.Valid)
	require.Len(t, resp.InvalidItems, 1)
	require.Equal(t, product.ID, resp.InvalidItems[0].ProductID)
}

func TestCartContainsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	access, _, _ := env.registerAndLogin(t, "shopper@example.com")
	product := env.seedProductWithCategory(t, "headphones", 59.99, 10)

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/cart/items/%d/contains", product.ID), access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"in_cart":false`)

	rec = env.do(t, http.MethodPost, "/api/v1/cart", access, map[string]any{
		"product_id": product.ID, "quantity": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/cart/items/%d/contains", product.ID), access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"in_cart":true`)
}

func TestPopularProductsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	admin := env.loginAdmin(t)
	a1, _, _ := env.registerAndLogin(t, "a@example.com")
	a2, _, _ := env.registerAndLogin(t, "b@example.com")
	product := env.seedProductWithCategory(t, "hot item", 10, 100)

	for _, token := range []string{a1, a2} {
		rec := env.do(t, http.MethodPost, "/api/v1/cart", token, map[string]any{
			"product_id": product.ID, "quantity": 1,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/admin/cart/popular", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []struct {
			ProductID uint  `json:"product_id"`
			CartCount int64 `json:"cart_count"`
		} `json:"products"`
	}
	decode(t, rec, &resp)
	require.Len(t, resp.Products, 1)
	require.Equal(t, product.ID, resp.Products[0].ProductID)
	require.EqualValues(t, 2, resp.Products[0].CartCount)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	env := newTestEnv(t)
	a, _, _ := env.registerAndLogin(t, "a@example.com")
	b, _, _ := env.registerAndLogin(t, "b@example.com")
	product := env.seedProductWithCategory(t, "headphones", 59.99, 10)

	rec := env.do(t, http.MethodPost, "/api/v1/cart", a, map[string]any{
		"product_id": product.ID, "quantity": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/cart/count", b, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"count":0}`, rec.Body.String())
}
