package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	authmw "github.com/tiaadeals/server/internal/middleware/auth"
	"github.com/tiaadeals/server/internal/models"
	"github.com/tiaadeals/server/internal/repo"
	"github.com/tiaadeals/server/internal/service"
	"github.com/tiaadeals/server/internal/tokens"
)

type testEnv struct {
	E    *echo.Echo
	DB   *gorm.DB
	Repo *repo.GormRepo
	Auth *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ProductColor{},
		&models.CartItem{},
		&models.WishlistItem{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	r := repo.New(db)
	issuer := tokens.NewIssuer([]byte("test-secret"), time.Hour, 24*time.Hour)
	authSvc := &service.AuthService{Repo: r, Tokens: issuer}

	deps := &Deps{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		DB:       db,
		AuthMW:   authmw.New(issuer, nil),
		Auth:     &AuthHTTP{Svc: authSvc},
		Cart:     &CartHTTP{Svc: service.NewCartService(r)},
		Product:  &ProductHTTP{Svc: &service.CatalogService{Repo: r}},
		Category: &CategoryHTTP{Svc: &service.CatalogService{Repo: r}},
		Wishlist: &WishlistHTTP{Svc: &service.WishlistService{Repo: r}},
		User:     &UserHTTP{Svc: &service.UserService{Repo: r}},
	}

	return &testEnv{E: New(deps), DB: db, Repo: r, Auth: authSvc}
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// registerAndLogin creates an account through the API and returns the token
// pair with the user's ID.
func (env *testEnv) registerAndLogin(t *testing.T, email string) (access, refresh string, userID uint) {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	decode(t, rec, &user)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var pair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	decode(t, rec, &pair)
	return pair.AccessToken, pair.RefreshToken, user.ID
}

func (env *testEnv) loginAdmin(t *testing.T) string {
	t.Helper()

	_, _, userID := env.registerAndLogin(t, "admin@example.com")

	require.NoError(t, env.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("role", models.RoleAdmin).Error)

	// re-login so the access token carries the admin role
	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var pair struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, rec, &pair)
	return pair.AccessToken
}

func (env *testEnv) seedProductWithCategory(t *testing.T, name string, price float64, stock int) *models.Product {
	t.Helper()

	cat := &models.Category{Name: name + " category"}
	require.NoError(t, env.DB.Create(cat).Error)

	p := &models.Product{
		Name:          name,
		Price:         price,
		OriginalPrice: price,
		CategoryID:    cat.ID,
		Stock:         stock,
		IsActive:      true,
	}
	require.NoError(t, env.DB.Create(p).Error)
	return p
}
