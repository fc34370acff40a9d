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

// Cart is the user's pending order with its lines and recomputed totals
type Cart struct {
	Order    *domain.Order      `json:"order"`
	Items    []domain.OrderItem `json:"items"`
	Subtotal decimal.Decimal    `json:"subtotal"`
	Total    decimal.Decimal    `json:"total"`
}

// AddResult reports the outcome of adding a product to the cart
type AddResult struct {
	Item      *domain.OrderItem
	CartCount int
}

// QuantityResult reports the outcome of a quantity adjustment
type QuantityResult struct {
	NewQuantity int
	Subtotal    decimal.Decimal
}

// CartService owns the order-as-cart aggregate: lazily creating the
// pending order, mutating its lines and keeping the stored total equal
// to the sum of its lines after every mutation.
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*AddResult, error)
	AdjustItemQuantity(ctx context.Context, userID, itemID uuid.UUID, delta int) (*QuantityResult, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (int, error)
}

type cartService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// GetCart returns the user's pending order, creating an empty one if
// none exists. Repeated calls never create a second cart.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	order, err := s.orderRepo.GetOrCreatePending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}

	items, err := s.orderRepo.ListItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	order.Items = items

	subtotal := domain.ComputeTotal(items)

	return &Cart{
		Order:    order,
		Items:    items,
		Subtotal: subtotal,
		Total:    subtotal,
	}, nil
}

// AddItem adds quantity units of a product to the user's cart. An
// existing line for the product is incremented; a new line snapshots
// the product's current price. The cumulative quantity may never exceed
// the product's stock.
func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*AddResult, error) {
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, repository.ErrProductNotFound
	}

	if product.Stock <= 0 {
		return nil, &repository.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   0,
		}
	}

	order, err := s.orderRepo.GetOrCreatePending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}

	items, err := s.orderRepo.ListItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	var existing *domain.OrderItem
	for i := range items {
		if items[i].ProductID == productID {
			existing = &items[i]
			break
		}
	}

	var item *domain.OrderItem
	if existing != nil {
		newQuantity := existing.Quantity + quantity
		if newQuantity > product.Stock {
			return nil, &repository.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   newQuantity,
				Available:   product.Stock,
			}
		}

		if err := s.orderRepo.UpdateItemQuantity(ctx, existing.ID, newQuantity); err != nil {
			return nil, err
		}
		existing.Quantity = newQuantity
		item = existing
	} else {
		if quantity > product.Stock {
			return nil, &repository.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   quantity,
				Available:   product.Stock,
			}
		}

		item = &domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  quantity,
			UnitPrice: product.Price,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.orderRepo.CreateItem(ctx, item); err != nil {
			return nil, err
		}
	}

	if _, err := s.orderRepo.RecomputeTotal(ctx, order.ID); err != nil {
		return nil, err
	}

	count, err := s.orderRepo.CountItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	return &AddResult{Item: item, CartCount: count}, nil
}

// AdjustItemQuantity changes a line's quantity by delta. Quantity is
// clamped at 1; a decrement that would go below 1 is a no-op, not a
// removal. The line must belong to the caller's pending order.
func (s *cartService) AdjustItemQuantity(ctx context.Context, userID, itemID uuid.UUID, delta int) (*QuantityResult, error) {
	item, err := s.orderRepo.FindItemForUser(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}

	newQuantity := item.Quantity + delta
	if newQuantity < 1 {
		newQuantity = item.Quantity
	}

	if newQuantity != item.Quantity {
		if err := s.orderRepo.UpdateItemQuantity(ctx, itemID, newQuantity); err != nil {
			return nil, err
		}
	}
	item.Quantity = newQuantity

	if _, err := s.orderRepo.RecomputeTotal(ctx, item.OrderID); err != nil {
		return nil, err
	}

	return &QuantityResult{
		NewQuantity: item.Quantity,
		Subtotal:    item.Subtotal(),
	}, nil
}

// RemoveItem deletes a line from the caller's pending order,
// recomputes the total and returns the remaining line count.
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (int, error) {
	item, err := s.orderRepo.FindItemForUser(ctx, itemID, userID)
	if err != nil {
		return 0, err
	}

	if err := s.orderRepo.DeleteItem(ctx, item.ID); err != nil {
		return 0, err
	}

	if _, err := s.orderRepo.RecomputeTotal(ctx, item.OrderID); err != nil {
		return 0, err
	}

	return s.orderRepo.CountItems(ctx, item.OrderID)
}
