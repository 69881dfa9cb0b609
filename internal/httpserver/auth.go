package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tiaadeals/server/internal/events"
	"github.com/tiaadeals/server/internal/logging"
	authmw "github.com/tiaadeals/server/internal/middleware/auth"
	"github.com/tiaadeals/server/internal/metrics"
	"github.com/tiaadeals/server/internal/service"
)

type AuthHTTP struct {
	Svc      *service.AuthService
	Producer *events.Producer
}

func (h *AuthHTTP) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.TopicUserEvents, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka_publish_error", "error", err)
	}
}

type registerRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"    validate:"required,email"`
	Username    string `json:"username"`
	Password    string `json:"password" validate:"required,min=8"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	user, err := h.Svc.Register(ctx, service.RegisterParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		return respondError(c, l, err)
	}

	metrics.RegistrationsTotal.Inc()
	h.publish(c, fmt.Sprint(user.ID), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.JSON(http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	AccessExp    int64  `json:"access_expires_at"`
	RefreshExp   int64  `json:"refresh_expires_at"`
	TokenType    string `json:"token_type"`
}

func tokenPair(res *service.LoginResult) tokenPairResponse {
	return tokenPairResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		AccessExp:    res.AccessExp.Unix(),
		RefreshExp:   res.RefreshExp.Unix(),
		TokenType:    "Bearer",
	}
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return respondError(c, l, err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.publish(c, fmt.Sprint(res.User.ID), map[string]any{
		"type":    "user_logged_in",
		"user_id": res.User.ID,
		"email":   res.User.Email,
	})

	l.Info("login_ok", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, tokenPair(res))
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		return respondError(c, l, err)
	}

	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, tokenPair(res))
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout is stateless unless revocation is configured: without a denylist
// the tokens stay valid until expiry and this endpoint only acknowledges.
func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	var req logoutRequest
	_ = c.Bind(&req)

	accessToken, _ := authmw.BearerToken(c)
	if err := h.Svc.Logout(ctx, accessToken, req.RefreshToken); err != nil {
		return respondError(c, l, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
