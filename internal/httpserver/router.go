package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/tiaadeals/server/internal/logging"
	authmw "github.com/tiaadeals/server/internal/middleware/auth"
)

// Deps carries everything the HTTP layer needs. Search is optional and its
// route is only mounted when an Elasticsearch client was configured.
type Deps struct {
	Logger *slog.Logger
	DB     *gorm.DB
	AuthMW *authmw.Middleware

	Auth     *AuthHTTP
	Cart     *CartHTTP
	Product  *ProductHTTP
	Category *CategoryHTTP
	Wishlist *WishlistHTTP
	User     *UserHTTP
	Search   *SearchHTTP
}

// New builds the echo server with all routes and shared middleware mounted.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Validator = NewValidator()

	e.GET("/health/live", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/health/ready", func(c echo.Context) error {
		sqlDB, err := d.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "db unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")

	// Public.
	v1.POST("/auth/register", d.Auth.Register)
	v1.POST("/auth/login", d.Auth.Login)
	v1.POST("/auth/refresh", d.Auth.Refresh)
	v1.POST("/auth/logout", d.Auth.Logout)

	v1.GET("/products", d.Product.List)
	v1.GET("/products/:id", d.Product.Get)
	v1.GET("/categories", d.Category.List)
	v1.GET("/categories/:id", d.Category.Get)

	if d.Search != nil {
		v1.GET("/search", d.Search.Search)
	}

	// Authenticated shopper surface.
	cart := v1.Group("/cart", d.AuthMW.Require(authmw.ActionUseCart))
	cart.GET("", d.Cart.GetCart)
	cart.POST("", d.Cart.AddToCart)
	cart.DELETE("", d.Cart.ClearCart)
	cart.PUT("/items/:productID", d.Cart.UpdateQuantity)
	cart.DELETE("/items/:productID", d.Cart.RemoveFromCart)
	cart.GET("/items/:productID/contains", d.Cart.Contains)
	cart.GET("/total", d.Cart.Total)
	cart.GET("/count", d.Cart.Count)
	cart.GET("/validate", d.Cart.Validate)
	cart.GET("/category/:categoryID", d.Cart.ByCategory)
	cart.GET("/above-value", d.Cart.AboveValue)
	cart.GET("/low-stock", d.Cart.LowStock)
	cart.GET("/out-of-stock", d.Cart.OutOfStock)

	wishlist := v1.Group("/wishlist", d.AuthMW.Require(authmw.ActionUseWishlist))
	wishlist.GET("", d.Wishlist.Get)
	wishlist.POST("", d.Wishlist.Add)
	wishlist.DELETE("", d.Wishlist.Clear)
	wishlist.DELETE("/items/:productID", d.Wishlist.Remove)

	profile := v1.Group("/users/me", d.AuthMW.Require(authmw.ActionManageProfile))
	profile.GET("", d.User.Me)
	profile.PATCH("", d.User.UpdateProfile)
	profile.PUT("/password", d.User.ChangePassword)

	// Admin surface.
	catalog := v1.Group("/admin", d.AuthMW.Require(authmw.ActionManageCatalog))
	catalog.POST("/products", d.Product.Create)
	catalog.PATCH("/products/:id", d.Product.Patch)
	catalog.PUT("/products/:id/stock", d.Product.UpdateStock)
	catalog.PUT("/products/:id/colors", d.Product.SetColors)
	catalog.DELETE("/products/:id", d.Product.Delete)
	catalog.GET("/products/statistics", d.Product.Statistics)
	catalog.POST("/categories", d.Category.Create)
	catalog.PUT("/categories/:id", d.Category.Update)
	catalog.DELETE("/categories/:id", d.Category.Delete)
	catalog.GET("/cart/popular", d.Cart.Popular)

	users := v1.Group("/admin/users", d.AuthMW.Require(authmw.ActionManageUsers))
	users.GET("", d.User.List)
	users.GET("/:id", d.User.Get)
	users.PUT("/:id/activate", d.User.Activate)
	users.PUT("/:id/deactivate", d.User.Deactivate)

	return e
}

// requestLogger binds a request-scoped logger into the request context so
// handlers and services pick it up via logging.FromContext.
func requestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := base.With(
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"method", req.Method,
				"path", req.URL.Path,
			)
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
			return next(c)
		}
	}
}
