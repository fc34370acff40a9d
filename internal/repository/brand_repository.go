package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"luzzen/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrBrandNotFound = errors.New("brand not found")
)

// BrandRepository defines the interface for brand data access
type BrandRepository interface {
	Create(ctx context.Context, brand *domain.Brand) error
	Update(ctx context.Context, brand *domain.Brand) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Brand, error)
	List(ctx context.Context) ([]*domain.Brand, error)
	ListWithProductCount(ctx context.Context) ([]*domain.Brand, error)
}

type brandRepository struct {
	db *sql.DB
}

// NewBrandRepository creates a new instance of BrandRepository
func NewBrandRepository(db *sql.DB) BrandRepository {
	return &brandRepository{db: db}
}

func (r *brandRepository) Create(ctx context.Context, brand *domain.Brand) error {
	query := `
		INSERT INTO brands (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, brand.ID, brand.Name, brand.Description, brand.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create brand: %w", err)
	}

	return nil
}

func (r *brandRepository) Update(ctx context.Context, brand *domain.Brand) error {
	query := `
		UPDATE brands
		SET name = $2, description = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, brand.ID, brand.Name, brand.Description)
	if err != nil {
		return fmt.Errorf("failed to update brand: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrBrandNotFound
	}

	return nil
}

func (r *brandRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrBrandNotFound
	}

	return nil
}

func (r *brandRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Brand, error) {
	query := `
		SELECT id, name, description, created_at
		FROM brands
		WHERE id = $1
	`

	brand := &domain.Brand{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&brand.ID,
		&brand.Name,
		&brand.Description,
		&brand.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("failed to find brand by ID: %w", err)
	}

	return brand, nil
}

func (r *brandRepository) List(ctx context.Context) ([]*domain.Brand, error) {
	query := `
		SELECT id, name, description, created_at
		FROM brands
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	brands := []*domain.Brand{}
	for rows.Next() {
		brand := &domain.Brand{}
		err := rows.Scan(&brand.ID, &brand.Name, &brand.Description, &brand.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, brand)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating brands: %w", err)
	}

	return brands, nil
}

// ListWithProductCount retrieves all brands with their product counts
func (r *brandRepository) ListWithProductCount(ctx context.Context) ([]*domain.Brand, error) {
	query := `
		SELECT b.id, b.name, b.description, b.created_at, COUNT(p.id)
		FROM brands b
		LEFT JOIN products p ON p.brand_id = b.id
		GROUP BY b.id, b.name, b.description, b.created_at
		ORDER BY b.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands with product count: %w", err)
	}
	defer rows.Close()

	brands := []*domain.Brand{}
	for rows.Next() {
		brand := &domain.Brand{}
		err := rows.Scan(&brand.ID, &brand.Name, &brand.Description, &brand.CreatedAt, &brand.ProductCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, brand)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating brands: %w", err)
	}

	return brands, nil
}
