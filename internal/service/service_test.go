package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/tiaadeals/server/internal/models"
	"github.com/tiaadeals/server/internal/repo"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
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
	return repo.New(db)
}

func seedUser(t *testing.T, r *repo.GormRepo, email string) *models.User {
	t.Helper()
	u := &models.User{
		Email:        email,
		Username:     email,
		PasswordHash: "x",
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := r.DB.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedCategory(t *testing.T, r *repo.GormRepo, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name}
	if err := r.DB.Create(c).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return c
}

func seedProduct(t *testing.T, r *repo.GormRepo, name string, categoryID uint, price float64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:          name,
		Price:         price,
		OriginalPrice: price,
		CategoryID:    categoryID,
		Stock:         stock,
		IsActive:      true,
	}
	if err := r.DB.Create(p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}
