package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tiaadeals/server/internal/metrics"
	"github.com/tiaadeals/server/internal/service"
	"github.com/tiaadeals/server/internal/tokens"
)

// insufficientStockResponse renders the rejection with enough structure for
// the client to show the shortfall directly.
type insufficientStockResponse struct {
	Error     string `json:"error"`
	Product   string `json:"product"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// respondError maps service errors to HTTP responses. Unknown errors are
// logged and surface as a generic 500.
func respondError(c echo.Context, l *slog.Logger, err error) error {
	var stockErr *service.InsufficientStockError
	if errors.As(err, &stockErr) {
		metrics.InsufficientStockTotal.Inc()
		return c.JSON(http.StatusConflict, insufficientStockResponse{
			Error:     "insufficient stock",
			Product:   stockErr.ProductName,
			Requested: stockErr.Requested,
			Available: stockErr.Available,
		})
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, tokens.ErrExpiredToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token expired"})
	case errors.Is(err, tokens.ErrInvalidRefreshToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	case errors.Is(err, tokens.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	l.Error("internal_error", "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
