package domain

import (
	"time"

	"github.com/google/uuid"
)

// Favorite marks a product as a favorite of a user. The (user, product)
// pair is unique.
type Favorite struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Product *Product `json:"product,omitempty" db:"-"`

	// Populated on admin listings
	UserName string `json:"user_name,omitempty" db:"-"`
}
