package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a storefront customer or administrator
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Country      string    `json:"country" db:"country"`
	Address      string    `json:"address" db:"address"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	// Populated on admin listings
	OrderCount    int `json:"order_count,omitempty" db:"-"`
	FavoriteCount int `json:"favorite_count,omitempty" db:"-"`
}
