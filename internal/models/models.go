package models

import (
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName    string    `gorm:"not null"                 json:"first_name"`
	LastName     string    `gorm:"not null"                 json:"last_name"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	Username     string    `gorm:"unique;not null"          json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Address      string    `json:"address,omitempty"`
	Role         string    `gorm:"not null;default:USER"    json:"role"`
	IsActive     bool      `gorm:"not null;default:true"    json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"unique;not null"          json:"name"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID            uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string   `gorm:"not null;index"           json:"name"`
	Description   string   `json:"description"`
	Price         float64  `gorm:"not null"                 json:"price"`
	OriginalPrice float64  `gorm:"not null"                 json:"original_price"`
	ImageURL      string   `json:"image_url,omitempty"`
	Company       string   `gorm:"index"                    json:"company,omitempty"`
	SKU           string   `json:"sku,omitempty"`
	CategoryID    uint     `gorm:"not null;index"           json:"category_id"`
	Category      Category `json:"category,omitempty"`

	// Stock is the authoritative availability counter. Color variant
	// quantities below are descriptive and never reconciled with it.
	Stock int `gorm:"not null;default:0;check:stock >= 0" json:"stock"`

	IsActive            bool    `gorm:"not null;default:true"  json:"is_active"`
	IsFeatured          bool    `gorm:"not null;default:false" json:"is_featured"`
	IsShippingAvailable bool    `gorm:"not null;default:true"  json:"is_shipping_available"`
	Stars               float64 `gorm:"not null;default:0"     json:"stars"`
	ReviewCount         int     `gorm:"not null;default:0"     json:"review_count"`

	Colors []ProductColor `gorm:"constraint:OnDelete:CASCADE" json:"colors,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProductColor struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint   `gorm:"not null;index"           json:"product_id"`
	Color     string `gorm:"not null"                 json:"color"`
	Quantity  int    `gorm:"not null;default:0"       json:"quantity"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                   json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Product   Product   `json:"-"`
	Quantity  int       `gorm:"not null;check:quantity > 0"                json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartItem) TableName() string { return "cart_items" }

type WishlistItem struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"                       json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID     uint      `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"product_id"`
	Product       Product   `json:"-"`
	SelectedColor string    `json:"selected_color,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func (WishlistItem) TableName() string { return "wishlist_items" }
