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
	ErrProductNotFound = errors.New("product not found")
)

// ProductFilter narrows catalog listings. Nil fields are ignored.
type ProductFilter struct {
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	MaterialID *uuid.UUID
	Search     string
	ActiveOnly bool
	Limit      int
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	ListWithTaxonomy(ctx context.Context) ([]*domain.Product, error)
	ListRelated(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]*domain.Product, error)
	Count(ctx context.Context) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, description, price, stock, image_url, category_id, brand_id, material_id, active, created_at, updated_at`

func scanProduct(scanner interface{ Scan(...interface{}) error }, product *domain.Product) error {
	return scanner.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Stock,
		&product.ImageURL,
		&product.CategoryID,
		&product.BrandID,
		&product.MaterialID,
		&product.Active,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, stock, image_url, category_id, brand_id, material_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.ImageURL,
		product.CategoryID,
		product.BrandID,
		product.MaterialID,
		product.Active,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5,
		    image_url = $6, category_id = $7, brand_id = $8, material_id = $9,
		    active = $10, updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.ImageURL,
		product.CategoryID,
		product.BrandID,
		product.MaterialID,
		product.Active,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the database using parameterized queries
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product := &domain.Product{}
	err := scanProduct(r.db.QueryRowContext(ctx, query, id), product)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products matching the given filter
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE 1=1`, productColumns)
	args := []interface{}{}
	argIndex := 1

	if filter.ActiveOnly {
		query += " AND active = TRUE"
	}
	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND category_id = $%d", argIndex)
		args = append(args, *filter.CategoryID)
		argIndex++
	}
	if filter.BrandID != nil {
		query += fmt.Sprintf(" AND brand_id = $%d", argIndex)
		args = append(args, *filter.BrandID)
		argIndex++
	}
	if filter.MaterialID != nil {
		query += fmt.Sprintf(" AND material_id = $%d", argIndex)
		args = append(args, *filter.MaterialID)
		argIndex++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		if err := scanProduct(rows, product); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// ListWithTaxonomy retrieves all products joined with their category,
// brand and material names, for the admin listing.
func (r *productRepository) ListWithTaxonomy(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT p.id, p.name, p.description, p.price, p.stock, p.image_url,
		       p.category_id, p.brand_id, p.material_id, p.active, p.created_at, p.updated_at,
		       c.name, b.name, m.name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		JOIN brands b ON b.id = p.brand_id
		JOIN materials m ON m.id = p.material_id
		ORDER BY p.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products with taxonomy: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.Stock,
			&product.ImageURL,
			&product.CategoryID,
			&product.BrandID,
			&product.MaterialID,
			&product.Active,
			&product.CreatedAt,
			&product.UpdatedAt,
			&product.CategoryName,
			&product.BrandName,
			&product.MaterialName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// ListRelated retrieves active products from the same category,
// excluding the product itself.
func (r *productRepository) ListRelated(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE category_id = $1 AND id <> $2 AND active = TRUE
		ORDER BY created_at DESC
		LIMIT $3
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, categoryID, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list related products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		if err := scanProduct(rows, product); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating related products: %w", err)
	}

	return products, nil
}

// Count returns the total number of products
func (r *productRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
