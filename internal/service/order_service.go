package service

import (
	"context"
	"errors"
	"fmt"

	"luzzen/internal/domain"
	"luzzen/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidOrderStatus = errors.New("invalid order status")

const dashboardRecentLimit = 5

// DashboardStats feeds the admin landing page
type DashboardStats struct {
	TotalProducts int             `json:"total_products"`
	TotalUsers    int             `json:"total_users"`
	PendingOrders int             `json:"pending_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	RecentOrders  []*domain.Order `json:"recent_orders"`
}

// OrdersOverview is the admin order archive with its aggregates
type OrdersOverview struct {
	Orders       []*domain.Order `json:"orders"`
	TotalOrders  int             `json:"total_orders"`
	ActiveCarts  int             `json:"active_carts"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// OrderService serves order history for customers and order
// administration for staff.
type OrderService interface {
	History(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	Detail(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)
	Overview(ctx context.Context) (*OrdersOverview, error)
	AdminDetail(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) error
	Delete(ctx context.Context, orderID uuid.UUID) error
	Dashboard(ctx context.Context) (*DashboardStats, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

// History lists the caller's completed orders, newest first
func (s *orderService) History(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.orderRepo.ListCompletedByUser(ctx, userID)
}

// Detail returns one of the caller's orders with its lines. Another
// user's order is indistinguishable from a missing one.
func (s *orderService) Detail(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.orderRepo.ListItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	order.Items = items

	return order, nil
}

// Overview returns the archived orders with order counts and revenue
func (s *orderService) Overview(ctx context.Context) (*OrdersOverview, error) {
	orders, err := s.orderRepo.ListArchived(ctx)
	if err != nil {
		return nil, err
	}

	completed, err := s.orderRepo.CountByStatus(ctx, domain.OrderStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed orders: %w", err)
	}

	pending, err := s.orderRepo.CountByStatus(ctx, domain.OrderStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}

	revenue, err := s.orderRepo.SumCompletedTotals(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	return &OrdersOverview{
		Orders:       orders,
		TotalOrders:  completed,
		ActiveCarts:  pending,
		TotalRevenue: revenue,
	}, nil
}

// AdminDetail returns any order with its lines, regardless of owner
func (s *orderService) AdminDetail(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := s.orderRepo.ListItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	order.Items = items

	return order, nil
}

// UpdateStatus moves an order to another status. Only the known
// statuses are accepted; this path does not touch stock.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	if !domain.ValidOrderStatus(status) {
		return ErrInvalidOrderStatus
	}
	return s.orderRepo.UpdateStatus(ctx, orderID, status)
}

// Delete removes an order and its lines
func (s *orderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	return s.orderRepo.Delete(ctx, orderID)
}

// Dashboard aggregates the counters shown on the admin landing page
func (s *orderService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	pending, err := s.orderRepo.CountByStatus(ctx, domain.OrderStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}

	revenue, err := s.orderRepo.SumCompletedTotals(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	recent, err := s.orderRepo.ListRecent(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}

	return &DashboardStats{
		TotalProducts: products,
		TotalUsers:    users,
		PendingOrders: pending,
		TotalRevenue:  revenue,
		RecentOrders:  recent,
	}, nil
}
