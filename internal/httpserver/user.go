package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tiaadeals/server/internal/logging"
	authmw "github.com/tiaadeals/server/internal/middleware/auth"
	"github.com/tiaadeals/server/internal/service"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.me")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	user, err := h.Svc.GetUser(ctx, userID)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_profile")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var patch service.ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	user, err := h.Svc.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8"`
}

func (h *UserHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.change_password")

	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	if err := h.Svc.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, l, err)
	}

	l.Info("password_changed", "user_id", userID)
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

// Admin endpoints.

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	offset, limit := pageFromQuery(c)
	total, users, err := h.Svc.GetUsers(ctx, offset, limit)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "users": users})
}

func (h *UserHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	user, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		return respondError(c, l, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) Activate(c echo.Context) error {
	return h.setActive(c, true)
}

func (h *UserHTTP) Deactivate(c echo.Context) error {
	return h.setActive(c, false)
}

func (h *UserHTTP) setActive(c echo.Context, active bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.set_active")

	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}

	user, err := h.Svc.SetActive(ctx, id, active)
	if err != nil {
		return respondError(c, l, err)
	}

	l.Info("user_active_changed", "user_id", id, "active", active)
	return c.JSON(http.StatusOK, user)
}
