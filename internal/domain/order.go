package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses. A pending order doubles as the user's shopping cart;
// completed and cancelled orders are immutable history.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order represents a customer order. While status is pending it is the
// user's cart; checkout transitions it to completed.
type Order struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	Status    string          `json:"status" db:"status"`
	Total     decimal.Decimal `json:"total" db:"total"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`

	Items []OrderItem `json:"items,omitempty" db:"-"`

	// Populated on admin listings
	UserName  string `json:"user_name,omitempty" db:"-"`
	UserEmail string `json:"user_email,omitempty" db:"-"`
}

// OrderItem is a single line of an order. UnitPrice is snapshotted from
// the product at the time the line was added, not a live reference.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`

	ProductName  string `json:"product_name,omitempty" db:"-"`
	ProductImage string `json:"product_image,omitempty" db:"-"`
	ProductStock int    `json:"product_stock,omitempty" db:"-"`
}

// Subtotal returns quantity x unit price for the line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotal sums quantity x unit price over the given lines. It is
// the authoritative total; stored totals are always recomputed from it
// after a line mutation.
func ComputeTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
