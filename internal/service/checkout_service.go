package service

import (
	"context"
	"fmt"

	"luzzen/internal/domain"
	"luzzen/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutService converts a pending order into a completed one,
// decrementing product stock atomically.
type CheckoutService interface {
	Preview(ctx context.Context, userID uuid.UUID) (*Cart, error)
	Checkout(ctx context.Context, userID uuid.UUID) (*domain.Order, error)
}

type checkoutService struct {
	orderRepo repository.OrderRepository
	logger    *zap.Logger
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(orderRepo repository.OrderRepository, logger *zap.Logger) CheckoutService {
	return &checkoutService{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// Preview returns the pending order and its lines for review before
// payment. A missing or empty cart is an error, not an empty page.
func (s *checkoutService) Preview(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	order, err := s.orderRepo.FindPendingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.orderRepo.ListItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	if len(items) == 0 {
		return nil, repository.ErrEmptyCart
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

// Checkout completes the caller's pending order. Every line is
// validated against current stock and all stock decrements plus the
// status change happen in one transaction: if any line lacks stock,
// nothing changes. A second checkout finds no pending order and fails.
func (s *checkoutService) Checkout(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	pending, err := s.orderRepo.FindPendingByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.CompleteCheckout(ctx, pending.ID)
	if err != nil {
		return nil, err
	}

	items, err := s.orderRepo.ListItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	order.Items = items

	s.logger.Info("order completed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", order.Total.StringFixed(2)),
		zap.Int("items", len(items)))

	return order, nil
}
