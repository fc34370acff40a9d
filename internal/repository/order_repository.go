package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"luzzen/internal/database"
	"luzzen/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrEmptyCart         = errors.New("cart is empty")
)

// InsufficientStockError reports a line whose quantity exceeds the
// product's available stock.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// OrderRepository defines the interface for order and order line data
// access. A pending order is the user's cart.
type OrderRepository interface {
	GetOrCreatePending(ctx context.Context, userID uuid.UUID) (*domain.Order, error)
	FindPendingByUser(ctx context.Context, userID uuid.UUID) (*domain.Order, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListCompletedByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListArchived(ctx context.Context) ([]*domain.Order, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, status string) (int, error)
	CountByUserAndStatus(ctx context.Context, userID uuid.UUID, status string) (int, error)
	SumCompletedTotals(ctx context.Context, userID *uuid.UUID) (decimal.Decimal, error)

	ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)
	FindItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*domain.OrderItem, error)
	CreateItem(ctx context.Context, item *domain.OrderItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	CountItems(ctx context.Context, orderID uuid.UUID) (int, error)
	RecomputeTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)

	CompleteCheckout(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, user_id, status, total, created_at, updated_at`

func scanOrder(scanner interface{ Scan(...interface{}) error }, order *domain.Order) error {
	return scanner.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.Total,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
}

// GetOrCreatePending returns the user's pending order, creating an
// empty one if none exists. The partial unique index on
// (user_id) WHERE status = 'pending' makes concurrent calls converge
// on a single cart.
func (r *orderRepository) GetOrCreatePending(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	now := time.Now().UTC()
	insert := `
		INSERT INTO orders (id, user_id, status, total, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $4)
		ON CONFLICT (user_id) WHERE status = 'pending' DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, insert, uuid.New(), userID, domain.OrderStatusPending, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create pending order: %w", err)
	}

	return r.FindPendingByUser(ctx, userID)
}

// FindPendingByUser retrieves the user's pending order, if any
func (r *orderRepository) FindPendingByUser(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE user_id = $1 AND status = $2`, orderColumns)

	order := &domain.Order{}
	err := scanOrder(r.db.QueryRowContext(ctx, query, userID, domain.OrderStatusPending), order)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find pending order: %w", err)
	}

	return order, nil
}

// FindByIDForUser retrieves an order scoped to its owner
func (r *orderRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1 AND user_id = $2`, orderColumns)

	order := &domain.Order{}
	err := scanOrder(r.db.QueryRowContext(ctx, query, id, userID), order)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	return order, nil
}

// FindByID retrieves an order by ID
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	order := &domain.Order{}
	err := scanOrder(r.db.QueryRowContext(ctx, query, id), order)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	return order, nil
}

// ListCompletedByUser retrieves the user's completed orders, newest first
func (r *orderRepository) ListCompletedByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
	`, orderColumns)

	rows, err := r.db.QueryContext(ctx, query, userID, domain.OrderStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// ListArchived retrieves completed and cancelled orders with user info,
// for the admin listing. Pending orders are carts and excluded.
func (r *orderRepository) ListArchived(ctx context.Context) ([]*domain.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.status, o.total, o.created_at, o.updated_at, u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.status IN ($1, $2)
		ORDER BY o.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, domain.OrderStatusCompleted, domain.OrderStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived orders: %w", err)
	}
	defer rows.Close()

	return collectOrdersWithUser(rows)
}

// ListRecent retrieves the most recent orders with user info
func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Order, error) {
	query := `
		SELECT o.id, o.user_id, o.status, o.total, o.created_at, o.updated_at, u.name, u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	defer rows.Close()

	return collectOrdersWithUser(rows)
}

func collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		if err := scanOrder(rows, order); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}

func collectOrdersWithUser(rows *sql.Rows) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Status,
			&order.Total,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.UserName,
			&order.UserEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets an order's status
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Delete removes an order and its lines via cascade
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// CountByStatus returns the number of orders in the given status
func (r *orderRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders by status: %w", err)
	}
	return count, nil
}

// CountByUserAndStatus returns the number of a user's orders in the given status
func (r *orderRepository) CountByUserAndStatus(ctx context.Context, userID uuid.UUID, status string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1 AND status = $2`,
		userID, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count user orders: %w", err)
	}
	return count, nil
}

// SumCompletedTotals returns the aggregate total of completed orders,
// for all users or for a single user when userID is non-nil.
func (r *orderRepository) SumCompletedTotals(ctx context.Context, userID *uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(total), 0) FROM orders WHERE status = $1`
	args := []interface{}{domain.OrderStatusCompleted}

	if userID != nil {
		query += ` AND user_id = $2`
		args = append(args, *userID)
	}

	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum completed totals: %w", err)
	}

	return total, nil
}

// ListItems retrieves an order's lines with product info
func (r *orderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.unit_price, i.created_at,
		       p.name, p.image_url, p.stock
		FROM order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = $1
		ORDER BY i.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.CreatedAt,
			&item.ProductName,
			&item.ProductImage,
			&item.ProductStock,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// FindItemForUser retrieves a cart line only when it belongs to a
// pending order owned by userID. Lines of completed or cancelled orders
// are history and unreachable here.
func (r *orderRepository) FindItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*domain.OrderItem, error) {
	query := `
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.unit_price, i.created_at,
		       p.name, p.image_url, p.stock
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		JOIN products p ON p.id = i.product_id
		WHERE i.id = $1 AND o.user_id = $2 AND o.status = $3
	`

	item := &domain.OrderItem{}
	err := r.db.QueryRowContext(ctx, query, itemID, userID, domain.OrderStatusPending).Scan(
		&item.ID,
		&item.OrderID,
		&item.ProductID,
		&item.Quantity,
		&item.UnitPrice,
		&item.CreatedAt,
		&item.ProductName,
		&item.ProductImage,
		&item.ProductStock,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderItemNotFound
		}
		return nil, fmt.Errorf("failed to find order item: %w", err)
	}

	return item, nil
}

// CreateItem inserts a new order line
func (r *orderRepository) CreateItem(ctx context.Context, item *domain.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.OrderID,
		item.ProductID,
		item.Quantity,
		item.UnitPrice,
		item.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}

	return nil
}

// UpdateItemQuantity sets a line's quantity
func (r *orderRepository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE order_items SET quantity = $2 WHERE id = $1`,
		itemID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update order item quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderItemNotFound
	}

	return nil
}

// DeleteItem removes a line
func (r *orderRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete order item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderItemNotFound
	}

	return nil
}

// CountItems returns the number of lines in an order
func (r *orderRepository) CountItems(ctx context.Context, orderID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_items WHERE order_id = $1`,
		orderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count order items: %w", err)
	}
	return count, nil
}

// RecomputeTotal recalculates an order's total from its lines and
// persists it. The stored total is never patched incrementally.
func (r *orderRepository) RecomputeTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	query := `
		UPDATE orders
		SET total = (
			SELECT COALESCE(SUM(quantity * unit_price), 0)
			FROM order_items
			WHERE order_id = $1
		), updated_at = $2
		WHERE id = $1
		RETURNING total
	`

	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, orderID, time.Now().UTC()).Scan(&total)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, ErrOrderNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to recompute order total: %w", err)
	}

	return total, nil
}

// CompleteCheckout transitions a pending order to completed inside a
// single transaction: lock the order and every referenced product,
// validate all line quantities against stock, then decrement stock and
// flip the status. Any failure rolls the whole checkout back, so stock
// is decremented for all lines or for none.
func (r *orderRepository) CompleteCheckout(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	var order *domain.Order

	err := database.WithTransaction(ctx, r.db, func(tx *sql.Tx) error {
		lockQuery := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1 AND status = $2 FOR UPDATE`, orderColumns)

		locked := &domain.Order{}
		err := scanOrder(tx.QueryRowContext(ctx, lockQuery, orderID, domain.OrderStatusPending), locked)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to lock order: %w", err)
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT i.product_id, i.quantity, p.name, p.stock
			FROM order_items i
			JOIN products p ON p.id = i.product_id
			WHERE i.order_id = $1
			FOR UPDATE OF p
		`, orderID)
		if err != nil {
			return fmt.Errorf("failed to lock order items: %w", err)
		}

		type line struct {
			productID uuid.UUID
			quantity  int
			name      string
			stock     int
		}

		var lines []line
		for rows.Next() {
			var l line
			if err := rows.Scan(&l.productID, &l.quantity, &l.name, &l.stock); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan order line: %w", err)
			}
			lines = append(lines, l)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("error iterating order lines: %w", err)
		}
		rows.Close()

		if len(lines) == 0 {
			return ErrEmptyCart
		}

		// Validate every line before touching any stock
		for _, l := range lines {
			if l.quantity > l.stock {
				return &InsufficientStockError{
					ProductID:   l.productID,
					ProductName: l.name,
					Requested:   l.quantity,
					Available:   l.stock,
				}
			}
		}

		now := time.Now().UTC()

		for _, l := range lines {
			result, err := tx.ExecContext(ctx, `
				UPDATE products
				SET stock = stock - $1, updated_at = $2
				WHERE id = $3 AND stock >= $1
			`, l.quantity, now, l.productID)
			if err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}

			if rowsAffected == 0 {
				return &InsufficientStockError{
					ProductID:   l.productID,
					ProductName: l.name,
					Requested:   l.quantity,
					Available:   l.stock,
				}
			}
		}

		completed := &domain.Order{}
		err = scanOrder(tx.QueryRowContext(ctx, fmt.Sprintf(`
			UPDATE orders
			SET status = $2,
			    total = (SELECT COALESCE(SUM(quantity * unit_price), 0) FROM order_items WHERE order_id = $1),
			    updated_at = $3
			WHERE id = $1
			RETURNING %s
		`, orderColumns), orderID, domain.OrderStatusCompleted, now), completed)
		if err != nil {
			return fmt.Errorf("failed to complete order: %w", err)
		}

		order = completed
		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}
