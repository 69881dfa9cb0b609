package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tiaadeals/server/internal/denylist"
	"github.com/tiaadeals/server/internal/tokens"
)

// Middleware authenticates requests from the Authorization header and
// enforces the role-to-action table. The denylist is optional; nil means
// issued tokens cannot be revoked before expiry.
type Middleware struct {
	Tokens   *tokens.Issuer
	Denylist *denylist.Denylist
}

func New(issuer *tokens.Issuer, dl *denylist.Denylist) *Middleware {
	return &Middleware{Tokens: issuer, Denylist: dl}
}

// BearerToken extracts the raw token from "Authorization: Bearer <token>".
func BearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

// RequireAuth validates the bearer token, fails closed on every parse or
// signature problem, and injects the verified principal into the context.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, err := BearerToken(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}

		claims, err := m.Tokens.ParseAccess(raw)
		if err != nil {
			if errors.Is(err, tokens.ErrExpiredToken) {
				return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		if revoked, err := m.Denylist.Contains(c.Request().Context(), claims.ID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		} else if revoked {
			return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		return next(c)
	}
}

// Require wraps RequireAuth and additionally checks the action against the
// principal's role.
func (m *Middleware) Require(action Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.RequireAuth(func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if !Allowed(role, action) {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		})
	}
}

// UserID returns the authenticated user's ID set by RequireAuth.
func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get("user_id").(uint)
	if !ok || id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}
