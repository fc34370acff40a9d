package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"luzzen/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrFavoriteNotFound = errors.New("favorite not found")
)

// FavoriteStats summarizes favorites for the admin overview
type FavoriteStats struct {
	Total            int `json:"total"`
	DistinctUsers    int `json:"distinct_users"`
	DistinctProducts int `json:"distinct_products"`
}

// FavoriteRepository defines the interface for favorite data access
type FavoriteRepository interface {
	GetOrCreate(ctx context.Context, userID, productID uuid.UUID) (*domain.Favorite, bool, error)
	DeleteForUser(ctx context.Context, id, userID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Favorite, error)
	ListAll(ctx context.Context) ([]*domain.Favorite, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	Stats(ctx context.Context) (*FavoriteStats, error)
}

type favoriteRepository struct {
	db *sql.DB
}

// NewFavoriteRepository creates a new instance of FavoriteRepository
func NewFavoriteRepository(db *sql.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// GetOrCreate inserts the (user, product) pair unless it already
// exists, and reports whether a new row was created. The unique
// constraint keeps concurrent adds to a single row.
func (r *favoriteRepository) GetOrCreate(ctx context.Context, userID, productID uuid.UUID) (*domain.Favorite, bool, error) {
	insert := `
		INSERT INTO favorites (id, user_id, product_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, insert, uuid.New(), userID, productID, time.Now().UTC())
	if err != nil {
		return nil, false, fmt.Errorf("failed to create favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	created := rowsAffected > 0

	favorite := &domain.Favorite{}
	err = r.db.QueryRowContext(ctx, `
		SELECT id, user_id, product_id, created_at
		FROM favorites
		WHERE user_id = $1 AND product_id = $2
	`, userID, productID).Scan(
		&favorite.ID,
		&favorite.UserID,
		&favorite.ProductID,
		&favorite.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load favorite: %w", err)
	}

	return favorite, created, nil
}

// DeleteForUser removes a favorite only when it belongs to userID.
// A favorite owned by someone else is indistinguishable from a missing
// one.
func (r *favoriteRepository) DeleteForUser(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrFavoriteNotFound
	}

	return nil
}

// ListByUser retrieves a user's favorites with product info
func (r *favoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Favorite, error) {
	query := `
		SELECT f.id, f.user_id, f.product_id, f.created_at,
		       p.id, p.name, p.description, p.price, p.stock, p.image_url,
		       p.category_id, p.brand_id, p.material_id, p.active, p.created_at, p.updated_at
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	return collectFavoritesWithProduct(rows, false)
}

// ListAll retrieves every favorite with user and product info, for the
// admin overview.
func (r *favoriteRepository) ListAll(ctx context.Context) ([]*domain.Favorite, error) {
	query := `
		SELECT f.id, f.user_id, f.product_id, f.created_at,
		       p.id, p.name, p.description, p.price, p.stock, p.image_url,
		       p.category_id, p.brand_id, p.material_id, p.active, p.created_at, p.updated_at,
		       u.name
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		JOIN users u ON u.id = f.user_id
		ORDER BY f.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list all favorites: %w", err)
	}
	defer rows.Close()

	return collectFavoritesWithProduct(rows, true)
}

func collectFavoritesWithProduct(rows *sql.Rows, withUser bool) ([]*domain.Favorite, error) {
	favorites := []*domain.Favorite{}
	for rows.Next() {
		favorite := &domain.Favorite{Product: &domain.Product{}}
		dest := []interface{}{
			&favorite.ID,
			&favorite.UserID,
			&favorite.ProductID,
			&favorite.CreatedAt,
			&favorite.Product.ID,
			&favorite.Product.Name,
			&favorite.Product.Description,
			&favorite.Product.Price,
			&favorite.Product.Stock,
			&favorite.Product.ImageURL,
			&favorite.Product.CategoryID,
			&favorite.Product.BrandID,
			&favorite.Product.MaterialID,
			&favorite.Product.Active,
			&favorite.Product.CreatedAt,
			&favorite.Product.UpdatedAt,
		}
		if withUser {
			dest = append(dest, &favorite.UserName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, favorite)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}

	return favorites, nil
}

// CountByUser returns the number of favorites a user has
func (r *favoriteRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = $1`,
		userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return count, nil
}

// Stats returns aggregate favorite counts for the admin overview
func (r *favoriteRepository) Stats(ctx context.Context) (*FavoriteStats, error) {
	stats := &FavoriteStats{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT user_id), COUNT(DISTINCT product_id)
		FROM favorites
	`).Scan(&stats.Total, &stats.DistinctUsers, &stats.DistinctProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite stats: %w", err)
	}
	return stats, nil
}
