package service

import (
	"context"
	"fmt"

	"luzzen/internal/domain"
	"luzzen/internal/repository"

	"github.com/google/uuid"
)

// FavoriteAddResult reports whether the add created a new favorite or
// found an existing one.
type FavoriteAddResult struct {
	Favorite *domain.Favorite
	Created  bool
}

// FavoritesOverview is the admin view: every favorite with its stats
// and a handful of products for filtering.
type FavoritesOverview struct {
	Favorites []*domain.Favorite        `json:"favorites"`
	Stats     *repository.FavoriteStats `json:"stats"`
	Products  []*domain.Product         `json:"products"`
}

// FavoriteService manages the per-user set of favorited products
type FavoriteService interface {
	Add(ctx context.Context, userID, productID uuid.UUID) (*FavoriteAddResult, error)
	Remove(ctx context.Context, userID, favoriteID uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Favorite, error)
	Overview(ctx context.Context) (*FavoritesOverview, error)
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
}

// NewFavoriteService creates a new instance of FavoriteService
func NewFavoriteService(favoriteRepo repository.FavoriteRepository, productRepo repository.ProductRepository) FavoriteService {
	return &favoriteService{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
	}
}

// Add favorites a product for the user. Adding an already-favorited
// product returns the existing favorite with Created false; the set
// never holds duplicates.
func (s *favoriteService) Add(ctx context.Context, userID, productID uuid.UUID) (*FavoriteAddResult, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	favorite, created, err := s.favoriteRepo.GetOrCreate(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	return &FavoriteAddResult{Favorite: favorite, Created: created}, nil
}

// Remove deletes a favorite owned by the caller. Another user's
// favorite is indistinguishable from a missing one.
func (s *favoriteService) Remove(ctx context.Context, userID, favoriteID uuid.UUID) error {
	return s.favoriteRepo.DeleteForUser(ctx, favoriteID, userID)
}

// ListForUser returns the caller's favorites with their products
func (s *favoriteService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Favorite, error) {
	return s.favoriteRepo.ListByUser(ctx, userID)
}

// Overview returns every favorite across all users with aggregate stats
func (s *favoriteService) Overview(ctx context.Context) (*FavoritesOverview, error) {
	favorites, err := s.favoriteRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.favoriteRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite stats: %w", err)
	}

	products, err := s.productRepo.List(ctx, repository.ProductFilter{Limit: 10})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &FavoritesOverview{
		Favorites: favorites,
		Stats:     stats,
		Products:  products,
	}, nil
}
