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
	"github.com/tiaadeals/server/internal/models"
	"github.com/tiaadeals/server/internal/repo"
	"github.com/tiaadeals/server/internal/service"
	"github.com/tiaadeals/server/internal/util"
)

type ProductHTTP struct {
	Svc      *service.CatalogService
	Producer *events.Producer
}

func (h *ProductHTTP) publish(c echo.Context, productID uint, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicProductEvents, fmt.Sprint(productID), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka_publish_error", "error", err)
	}
}

func productFilterFromQuery(c echo.Context) (repo.ProductFilter, error) {
	var f repo.ProductFilter

	if raw := c.QueryParam("category_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid category_id")
		}
		f.CategoryID = uint(v)
	}
	f.CategoryName = c.QueryParam("category")
	f.Company = c.QueryParam("company")

	if raw := c.QueryParam("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid min_price")
		}
		f.MinPrice = v
	}
	if raw := c.QueryParam("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid max_price")
		}
		f.MaxPrice = v
	}

	f.InStock = c.QueryParam("in_stock") == "true"
	f.OutOfStock = c.QueryParam("out_of_stock") == "true"
	f.Featured = c.QueryParam("featured") == "true"

	if raw := c.QueryParam("low_stock"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid low_stock")
		}
		f.LowStockAt = v
	}
	return f, nil
}

func pageFromQuery(c echo.Context) (offset, limit int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	return util.Calculate(page, size)
}

func (h *ProductHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	f, err := productFilterFromQuery(c)
	if err != nil {
		return err
	}
	offset, limit := pageFromQuery(c)

	total, products, err := h.Svc.GetProducts(ctx, f, offset, limit)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}

func (h *ProductHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, product)
}

type createProductRequest struct {
	Name                string  `json:"name"           validate:"required"`
	Description         string  `json:"description"`
	Price               float64 `json:"price"          validate:"required,gt=0"`
	OriginalPrice       float64 `json:"original_price" validate:"required,gt=0"`
	ImageURL            string  `json:"image_url"`
	Company             string  `json:"company"`
	SKU                 string  `json:"sku"`
	CategoryID          uint    `json:"category_id"    validate:"required"`
	Stock               int     `json:"stock"          validate:"gte=0"`
	IsActive            *bool   `json:"is_active"`
	IsFeatured          bool    `json:"is_featured"`
	IsShippingAvailable bool    `json:"is_shipping_available"`
}

func (h *ProductHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	product := &models.Product{
		Name:                req.Name,
		Description:         req.Description,
		Price:               req.Price,
		OriginalPrice:       req.OriginalPrice,
		ImageURL:            req.ImageURL,
		Company:             req.Company,
		SKU:                 req.SKU,
		CategoryID:          req.CategoryID,
		Stock:               req.Stock,
		IsActive:            active,
		IsFeatured:          req.IsFeatured,
		IsShippingAvailable: req.IsShippingAvailable,
	}

	if err := h.Svc.CreateProduct(ctx, product); err != nil {
		return respondError(c, l, err)
	}

	h.publish(c, product.ID, map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"name":       product.Name,
	})
	l.Info("product_created", "product_id", product.ID)

	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	var patch service.ProductPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	product, err := h.Svc.PatchProduct(ctx, id, patch)
	if err != nil {
		return respondError(c, l, err)
	}

	h.publish(c, product.ID, map[string]any{
		"type":       "product_updated",
		"product_id": product.ID,
	})

	return c.JSON(http.StatusOK, product)
}

type updateStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

func (h *ProductHTTP) UpdateStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_stock")

	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	var req updateStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	product, err := h.Svc.UpdateStock(ctx, id, req.Delta)
	if err != nil {
		return respondError(c, l, err)
	}

	h.publish(c, product.ID, map[string]any{
		"type":       "product_stock_changed",
		"product_id": product.ID,
		"stock":      product.Stock,
	})

	return c.JSON(http.StatusOK, product)
}

type setColorsRequest struct {
	Colors []struct {
		Color    string `json:"color"    validate:"required"`
		Quantity int    `json:"quantity" validate:"gte=0"`
	} `json:"colors" validate:"required,dive"`
}

func (h *ProductHTTP) SetColors(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.set_colors")

	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	var req setColorsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	colors := make([]models.ProductColor, 0, len(req.Colors))
	for _, cl := range req.Colors {
		colors = append(colors, models.ProductColor{Color: cl.Color, Quantity: cl.Quantity})
	}

	product, err := h.Svc.SetProductColors(ctx, id, colors)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return respondError(c, l, err)
	}

	h.publish(c, id, map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}

func (h *ProductHTTP) Statistics(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.statistics")

	stats, err := h.Svc.ProductStatistics(ctx)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, stats)
}
