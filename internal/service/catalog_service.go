package service

import (
	"context"
	"fmt"
	"time"

	"luzzen/internal/domain"
	"luzzen/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	homeCategoryLimit = 3
	homeProductLimit  = 6
	relatedLimit      = 4
)

// HomePage is the storefront landing data: a few categories and the
// most recent active products.
type HomePage struct {
	Categories []*domain.Category `json:"categories"`
	Featured   []*domain.Product  `json:"featured"`
}

// CatalogPage is the filterable product listing with the taxonomies
// used to build the filter controls.
type CatalogPage struct {
	Products   []*domain.Product  `json:"products"`
	Categories []*domain.Category `json:"categories"`
	Brands     []*domain.Brand    `json:"brands"`
	Materials  []*domain.Material `json:"materials"`
}

// ProductPage is a product detail with related products from the same
// category.
type ProductPage struct {
	Product *domain.Product   `json:"product"`
	Related []*domain.Product `json:"related"`
}

// ProductInput carries the fields for creating or updating a product
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURL    string
	CategoryID  uuid.UUID
	BrandID     uuid.UUID
	MaterialID  uuid.UUID
	Active      bool
}

// CatalogService serves the public storefront pages and the admin CRUD
// for products and their taxonomies.
type CatalogService interface {
	Home(ctx context.Context) (*HomePage, error)
	Catalog(ctx context.Context, filter repository.ProductFilter) (*CatalogPage, error)
	ProductDetail(ctx context.Context, id uuid.UUID) (*ProductPage, error)

	ListProducts(ctx context.Context) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name, description string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListBrands(ctx context.Context) ([]*domain.Brand, error)
	CreateBrand(ctx context.Context, name, description string) (*domain.Brand, error)
	UpdateBrand(ctx context.Context, id uuid.UUID, name, description string) (*domain.Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error

	ListMaterials(ctx context.Context) ([]*domain.Material, error)
	CreateMaterial(ctx context.Context, name, description string, price decimal.Decimal) (*domain.Material, error)
	UpdateMaterial(ctx context.Context, id uuid.UUID, name, description string, price decimal.Decimal) (*domain.Material, error)
	DeleteMaterial(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	brandRepo    repository.BrandRepository
	materialRepo repository.MaterialRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	brandRepo repository.BrandRepository,
	materialRepo repository.MaterialRepository,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		brandRepo:    brandRepo,
		materialRepo: materialRepo,
	}
}

func (s *catalogService) Home(ctx context.Context) (*HomePage, error) {
	categories, err := s.categoryRepo.List(ctx, homeCategoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	featured, err := s.productRepo.List(ctx, repository.ProductFilter{
		ActiveOnly: true,
		Limit:      homeProductLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}

	return &HomePage{Categories: categories, Featured: featured}, nil
}

// Catalog lists active products narrowed by the filter, alongside the
// full taxonomy lists.
func (s *catalogService) Catalog(ctx context.Context, filter repository.ProductFilter) (*CatalogPage, error) {
	filter.ActiveOnly = true

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	categories, err := s.categoryRepo.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	brands, err := s.brandRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}

	materials, err := s.materialRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}

	return &CatalogPage{
		Products:   products,
		Categories: categories,
		Brands:     brands,
		Materials:  materials,
	}, nil
}

// ProductDetail returns an active product with related products from
// the same category. Inactive products are not exposed here.
func (s *catalogService) ProductDetail(ctx context.Context, id uuid.UUID) (*ProductPage, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, repository.ErrProductNotFound
	}

	related, err := s.productRepo.ListRelated(ctx, product.CategoryID, product.ID, relatedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list related products: %w", err)
	}

	return &ProductPage{Product: product, Related: related}, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.productRepo.ListWithTaxonomy(ctx)
}

// CreateProduct validates the taxonomy references and inserts the
// product.
func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if err := s.checkTaxonomy(ctx, input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
		CategoryID:  input.CategoryID,
		BrandID:     input.BrandID,
		MaterialID:  input.MaterialID,
		Active:      input.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkTaxonomy(ctx, input); err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Stock = input.Stock
	product.ImageURL = input.ImageURL
	product.CategoryID = input.CategoryID
	product.BrandID = input.BrandID
	product.MaterialID = input.MaterialID
	product.Active = input.Active

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

func (s *catalogService) checkTaxonomy(ctx context.Context, input ProductInput) error {
	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return err
	}
	if _, err := s.brandRepo.FindByID(ctx, input.BrandID); err != nil {
		return err
	}
	if _, err := s.materialRepo.FindByID(ctx, input.MaterialID); err != nil {
		return err
	}
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.ListWithProductCount(ctx)
}

func (s *catalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name, description string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.Description = description

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, id)
}

func (s *catalogService) ListBrands(ctx context.Context) ([]*domain.Brand, error) {
	return s.brandRepo.ListWithProductCount(ctx)
}

func (s *catalogService) CreateBrand(ctx context.Context, name, description string) (*domain.Brand, error) {
	brand := &domain.Brand{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.brandRepo.Create(ctx, brand); err != nil {
		return nil, err
	}

	return brand, nil
}

func (s *catalogService) UpdateBrand(ctx context.Context, id uuid.UUID, name, description string) (*domain.Brand, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	brand.Name = name
	brand.Description = description

	if err := s.brandRepo.Update(ctx, brand); err != nil {
		return nil, err
	}

	return brand, nil
}

func (s *catalogService) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	return s.brandRepo.Delete(ctx, id)
}

func (s *catalogService) ListMaterials(ctx context.Context) ([]*domain.Material, error) {
	return s.materialRepo.ListWithProductCount(ctx)
}

func (s *catalogService) CreateMaterial(ctx context.Context, name, description string, price decimal.Decimal) (*domain.Material, error) {
	material := &domain.Material{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Price:       price,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.materialRepo.Create(ctx, material); err != nil {
		return nil, err
	}

	return material, nil
}

func (s *catalogService) UpdateMaterial(ctx context.Context, id uuid.UUID, name, description string, price decimal.Decimal) (*domain.Material, error) {
	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	material.Name = name
	material.Description = description
	material.Price = price

	if err := s.materialRepo.Update(ctx, material); err != nil {
		return nil, err
	}

	return material, nil
}

func (s *catalogService) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	return s.materialRepo.Delete(ctx, id)
}
