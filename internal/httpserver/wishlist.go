package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tiaadeals/server/internal/logging"
	authmw "github.com/tiaadeals/server/internal/middleware/auth"
	"github.com/tiaadeals/server/internal/service"
)

type WishlistHTTP struct {
	Svc *service.WishlistService
}

func (h *WishlistHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.get")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	entries, err := h.Svc.Get(ctx, userID)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries, "count": len(entries)})
}

type addWishlistRequest struct {
	ProductID     uint   `json:"product_id" validate:"required"`
	SelectedColor string `json:"selected_color"`
}

func (h *WishlistHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.add")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req addWishlistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	entry, err := h.Svc.Add(ctx, userID, req.ProductID, req.SelectedColor)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *WishlistHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.remove")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}
	productID, err := paramUint(c, "productID")
	if err != nil {
		return err
	}

	if err := h.Svc.Remove(ctx, userID, productID); err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "item removed"})
}

func (h *WishlistHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.clear")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Clear(ctx, userID); err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "wishlist cleared"})
}
