package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	ImageURL    string          `json:"image_url" db:"image_url"`
	CategoryID  uuid.UUID       `json:"category_id" db:"category_id"`
	BrandID     uuid.UUID       `json:"brand_id" db:"brand_id"`
	MaterialID  uuid.UUID       `json:"material_id" db:"material_id"`
	Active      bool            `json:"active" db:"active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`

	// Populated on admin listings
	CategoryName string `json:"category_name,omitempty" db:"-"`
	BrandName    string `json:"brand_name,omitempty" db:"-"`
	MaterialName string `json:"material_name,omitempty" db:"-"`
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	ProductCount int `json:"product_count,omitempty" db:"-"`
}

// Brand represents a product brand
type Brand struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	ProductCount int `json:"product_count,omitempty" db:"-"`
}

// Material represents a product material with its base price
type Material struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`

	ProductCount int `json:"product_count,omitempty" db:"-"`
}
