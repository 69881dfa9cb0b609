package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tiaadeals/server/internal/events"
	"github.com/tiaadeals/server/internal/logging"
	"github.com/tiaadeals/server/internal/metrics"
	authmw "github.com/tiaadeals/server/internal/middleware/auth"
	"github.com/tiaadeals/server/internal/service"
)

type CartHTTP struct {
	Svc      *service.CartService
	Producer *events.Producer
}

func (h *CartHTTP) publish(c echo.Context, userID uint, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicCartEvents, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka_publish_error", "error", err)
	}
}

func paramUint(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(v), nil
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	entries, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries, "count": len(entries)})
}

type addToCartRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"   validate:"required,min=1"`
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	entry, err := h.Svc.AddToCart(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, l, err)
	}

	metrics.CartMutationsTotal.WithLabelValues("add").Inc()
	h.publish(c, userID, map[string]any{
		"type":       "cart_item_added",
		"user_id":    userID,
		"product_id": req.ProductID,
		"quantity":   entry.Quantity,
	})

	return c.JSON(http.StatusCreated, entry)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}
	productID, err := paramUint(c, "productID")
	if err != nil {
		return err
	}

	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	entry, err := h.Svc.UpdateQuantity(ctx, userID, productID, req.Quantity)
	if err != nil {
		return respondError(c, l, err)
	}

	metrics.CartMutationsTotal.WithLabelValues("update").Inc()
	h.publish(c, userID, map[string]any{
		"type":       "cart_item_updated",
		"user_id":    userID,
		"product_id": productID,
		"quantity":   entry.Quantity,
	})

	return c.JSON(http.StatusOK, entry)
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}
	productID, err := paramUint(c, "productID")
	if err != nil {
		return err
	}

	if err := h.Svc.RemoveFromCart(ctx, userID, productID); err != nil {
		return respondError(c, l, err)
	}

	metrics.CartMutationsTotal.WithLabelValues("remove").Inc()
	h.publish(c, userID, map[string]any{
		"type":       "cart_item_removed",
		"user_id":    userID,
		"product_id": productID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "item removed"})
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.ClearCart(ctx, userID); err != nil {
		return respondError(c, l, err)
	}

	metrics.CartMutationsTotal.WithLabelValues("clear").Inc()
	h.publish(c, userID, map[string]any{
		"type":    "cart_cleared",
		"user_id": userID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "cart cleared"})
}

func (h *CartHTTP) Total(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.total")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	total, err := h.Svc.CartTotal(ctx, userID)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total})
}

func (h *CartHTTP) Count(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.count")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	count, err := h.Svc.ItemCount(ctx, userID)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

func (h *CartHTTP) Contains(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.contains")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}
	productID, err := paramUint(c, "productID")
	if err != nil {
		return err
	}

	ok, err := h.Svc.ContainsProduct(ctx, userID, productID)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"product_id": productID, "in_cart": ok})
}

// Validate reports the cart lines whose quantity can no longer be covered by
// current stock. An empty list means the cart is purchasable as-is.
func (h *CartHTTP) Validate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.validate")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	invalid, err := h.Svc.ValidateStock(ctx, userID)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": len(invalid) == 0, "invalid_items": invalid})
}

func (h *CartHTTP) ByCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.by_category")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}
	categoryID, err := paramUint(c, "categoryID")
	if err != nil {
		return err
	}

	entries, err := h.Svc.EntriesByCategory(ctx, userID, categoryID)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries, "count": len(entries)})
}

func (h *CartHTTP) AboveValue(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.above_value")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	minValue, err := strconv.ParseFloat(c.QueryParam("min"), 64)
	if err != nil || minValue < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "min must be a non-negative number"})
	}

	entries, err := h.Svc.EntriesAboveValue(ctx, userID, minValue)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries, "count": len(entries)})
}

func (h *CartHTTP) LowStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.low_stock")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	threshold := 0
	if raw := c.QueryParam("threshold"); raw != "" {
		threshold, err = strconv.Atoi(raw)
		if err != nil || threshold < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "threshold must be a positive integer"})
		}
	}

	entries, err := h.Svc.LowStockEntries(ctx, userID, threshold)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries, "count": len(entries)})
}

func (h *CartHTTP) OutOfStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.out_of_stock")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	entries, err := h.Svc.OutOfStockEntries(ctx, userID)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries, "count": len(entries)})
}

func (h *CartHTTP) Popular(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.popular")

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a positive integer"})
		}
	}

	popular, err := h.Svc.PopularProducts(ctx, limit)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": popular})
}
