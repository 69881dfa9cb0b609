package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tiaadeals/server/internal/logging"
	"github.com/tiaadeals/server/internal/models"
	"github.com/tiaadeals/server/internal/service"
)

type CategoryHTTP struct {
	Svc *service.CatalogService
}

func (h *CategoryHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	var (
		cats []models.Category
		err  error
	)
	switch c.QueryParam("usage") {
	case "with_products":
		cats, err = h.Svc.GetCategoriesByUsage(ctx, true)
	case "empty":
		cats, err = h.Svc.GetCategoriesByUsage(ctx, false)
	default:
		cats, err = h.Svc.GetCategories(ctx)
	}
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": cats})
}

func (h *CategoryHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get")

	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	cat, err := h.Svc.GetCategory(ctx, id)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, cat)
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

func (h *CategoryHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	cat := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if err := h.Svc.CreateCategory(ctx, cat); err != nil {
		return respondError(c, l, err)
	}

	l.Info("category_created", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	cat, err := h.Svc.UpdateCategory(ctx, id, req.Name, req.Description, req.ImageURL)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
}
