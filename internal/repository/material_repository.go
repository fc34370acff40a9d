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
	ErrMaterialNotFound = errors.New("material not found")
)

// MaterialRepository defines the interface for material data access
type MaterialRepository interface {
	Create(ctx context.Context, material *domain.Material) error
	Update(ctx context.Context, material *domain.Material) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Material, error)
	List(ctx context.Context) ([]*domain.Material, error)
	ListWithProductCount(ctx context.Context) ([]*domain.Material, error)
}

type materialRepository struct {
	db *sql.DB
}

// NewMaterialRepository creates a new instance of MaterialRepository
func NewMaterialRepository(db *sql.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) Create(ctx context.Context, material *domain.Material) error {
	query := `
		INSERT INTO materials (id, name, description, price, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		material.ID,
		material.Name,
		material.Description,
		material.Price,
		material.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}

	return nil
}

func (r *materialRepository) Update(ctx context.Context, material *domain.Material) error {
	query := `
		UPDATE materials
		SET name = $2, description = $3, price = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, material.ID, material.Name, material.Description, material.Price)
	if err != nil {
		return fmt.Errorf("failed to update material: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrMaterialNotFound
	}

	return nil
}

func (r *materialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrMaterialNotFound
	}

	return nil
}

func (r *materialRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Material, error) {
	query := `
		SELECT id, name, description, price, created_at
		FROM materials
		WHERE id = $1
	`

	material := &domain.Material{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&material.ID,
		&material.Name,
		&material.Description,
		&material.Price,
		&material.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to find material by ID: %w", err)
	}

	return material, nil
}

func (r *materialRepository) List(ctx context.Context) ([]*domain.Material, error) {
	query := `
		SELECT id, name, description, price, created_at
		FROM materials
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	defer rows.Close()

	materials := []*domain.Material{}
	for rows.Next() {
		material := &domain.Material{}
		err := rows.Scan(
			&material.ID,
			&material.Name,
			&material.Description,
			&material.Price,
			&material.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, material)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating materials: %w", err)
	}

	return materials, nil
}

// ListWithProductCount retrieves all materials with their product counts
func (r *materialRepository) ListWithProductCount(ctx context.Context) ([]*domain.Material, error) {
	query := `
		SELECT m.id, m.name, m.description, m.price, m.created_at, COUNT(p.id)
		FROM materials m
		LEFT JOIN products p ON p.material_id = m.id
		GROUP BY m.id, m.name, m.description, m.price, m.created_at
		ORDER BY m.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials with product count: %w", err)
	}
	defer rows.Close()

	materials := []*domain.Material{}
	for rows.Next() {
		material := &domain.Material{}
		err := rows.Scan(
			&material.ID,
			&material.Name,
			&material.Description,
			&material.Price,
			&material.CreatedAt,
			&material.ProductCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, material)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating materials: %w", err)
	}

	return materials, nil
}
