package service

import (
	"context"
	"sort"
	"time"

	"luzzen/internal/domain"
	"luzzen/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory repositories for testing. The order mock mirrors the
// database behavior the services rely on: one pending order per user,
// stored totals recomputed from lines, and an all-or-nothing checkout.

type mockProductRepository struct {
	products map[uuid.UUID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	copy := *product
	return &copy, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	var result []*domain.Product
	for _, product := range m.products {
		if filter.ActiveOnly && !product.Active {
			continue
		}
		copy := *product
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID.String() < result[j].ID.String() })
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (m *mockProductRepository) ListWithTaxonomy(ctx context.Context) ([]*domain.Product, error) {
	return m.List(ctx, repository.ProductFilter{})
}

func (m *mockProductRepository) ListRelated(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]*domain.Product, error) {
	var result []*domain.Product
	for _, product := range m.products {
		if product.CategoryID != categoryID || product.ID == excludeID || !product.Active {
			continue
		}
		copy := *product
		result = append(result, &copy)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *mockProductRepository) Count(ctx context.Context) (int, error) {
	return len(m.products), nil
}

type mockOrderRepository struct {
	products *mockProductRepository
	orders   map[uuid.UUID]*domain.Order
	items    map[uuid.UUID]*domain.OrderItem
}

func newMockOrderRepository(products *mockProductRepository) *mockOrderRepository {
	return &mockOrderRepository{
		products: products,
		orders:   make(map[uuid.UUID]*domain.Order),
		items:    make(map[uuid.UUID]*domain.OrderItem),
	}
}

func (m *mockOrderRepository) GetOrCreatePending(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	for _, order := range m.orders {
		if order.UserID == userID && order.Status == domain.OrderStatusPending {
			copy := *order
			return &copy, nil
		}
	}
	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    domain.OrderStatusPending,
		Total:     decimal.Zero,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	m.orders[order.ID] = order
	copy := *order
	return &copy, nil
}

func (m *mockOrderRepository) FindPendingByUser(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	for _, order := range m.orders {
		if order.UserID == userID && order.Status == domain.OrderStatusPending {
			copy := *order
			return &copy, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (m *mockOrderRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok || order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	copy := *order
	return &copy, nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	copy := *order
	return &copy, nil
}

func (m *mockOrderRepository) ListCompletedByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	var result []*domain.Order
	for _, order := range m.orders {
		if order.UserID == userID && order.Status == domain.OrderStatusCompleted {
			copy := *order
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *mockOrderRepository) ListArchived(ctx context.Context) ([]*domain.Order, error) {
	var result []*domain.Order
	for _, order := range m.orders {
		if order.Status != domain.OrderStatusPending {
			copy := *order
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *mockOrderRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Order, error) {
	orders, _ := m.ListArchived(ctx)
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	order, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (m *mockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(m.orders, id)
	for itemID, item := range m.items {
		if item.OrderID == id {
			delete(m.items, itemID)
		}
	}
	return nil
}

func (m *mockOrderRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	count := 0
	for _, order := range m.orders {
		if order.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *mockOrderRepository) CountByUserAndStatus(ctx context.Context, userID uuid.UUID, status string) (int, error) {
	count := 0
	for _, order := range m.orders {
		if order.UserID == userID && order.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *mockOrderRepository) SumCompletedTotals(ctx context.Context, userID *uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, order := range m.orders {
		if order.Status != domain.OrderStatusCompleted {
			continue
		}
		if userID != nil && order.UserID != *userID {
			continue
		}
		sum = sum.Add(order.Total)
	}
	return sum, nil
}

func (m *mockOrderRepository) ListItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	var result []domain.OrderItem
	for _, item := range m.items {
		if item.OrderID == orderID {
			result = append(result, *item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *mockOrderRepository) FindItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*domain.OrderItem, error) {
	item, ok := m.items[itemID]
	if !ok {
		return nil, repository.ErrOrderItemNotFound
	}
	order, ok := m.orders[item.OrderID]
	if !ok || order.UserID != userID || order.Status != domain.OrderStatusPending {
		return nil, repository.ErrOrderItemNotFound
	}
	copy := *item
	return &copy, nil
}

func (m *mockOrderRepository) CreateItem(ctx context.Context, item *domain.OrderItem) error {
	copy := *item
	m.items[item.ID] = &copy
	return nil
}

func (m *mockOrderRepository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	item, ok := m.items[itemID]
	if !ok {
		return repository.ErrOrderItemNotFound
	}
	item.Quantity = quantity
	return nil
}

func (m *mockOrderRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	if _, ok := m.items[itemID]; !ok {
		return repository.ErrOrderItemNotFound
	}
	delete(m.items, itemID)
	return nil
}

func (m *mockOrderRepository) CountItems(ctx context.Context, orderID uuid.UUID) (int, error) {
	items, _ := m.ListItems(ctx, orderID)
	return len(items), nil
}

func (m *mockOrderRepository) RecomputeTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return decimal.Zero, repository.ErrOrderNotFound
	}
	items, _ := m.ListItems(ctx, orderID)
	order.Total = domain.ComputeTotal(items)
	return order.Total, nil
}

func (m *mockOrderRepository) CompleteCheckout(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, ok := m.orders[orderID]
	if !ok || order.Status != domain.OrderStatusPending {
		return nil, repository.ErrOrderNotFound
	}

	items, _ := m.ListItems(ctx, orderID)
	if len(items) == 0 {
		return nil, repository.ErrEmptyCart
	}

	// Validate every line before touching any stock
	for _, item := range items {
		product, ok := m.products.products[item.ProductID]
		if !ok {
			return nil, repository.ErrProductNotFound
		}
		if item.Quantity > product.Stock {
			return nil, &repository.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   item.Quantity,
				Available:   product.Stock,
			}
		}
	}

	for _, item := range items {
		m.products.products[item.ProductID].Stock -= item.Quantity
	}
	order.Status = domain.OrderStatusCompleted
	order.Total = domain.ComputeTotal(items)

	copy := *order
	return &copy, nil
}

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	for email, existing := range m.users {
		if existing.ID == user.ID {
			if email != user.Email {
				if _, taken := m.users[user.Email]; taken {
					return repository.ErrUserAlreadyExists
				}
				delete(m.users, email)
			}
			m.users[user.Email] = user
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	for email, user := range m.users {
		if user.ID == id {
			delete(m.users, email)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) ListWithStats(ctx context.Context) ([]*domain.User, error) {
	var result []*domain.User
	for _, user := range m.users {
		result = append(result, user)
	}
	return result, nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

type mockFavoriteRepository struct {
	favorites map[uuid.UUID]*domain.Favorite
}

func newMockFavoriteRepository() *mockFavoriteRepository {
	return &mockFavoriteRepository{favorites: make(map[uuid.UUID]*domain.Favorite)}
}

func (m *mockFavoriteRepository) GetOrCreate(ctx context.Context, userID, productID uuid.UUID) (*domain.Favorite, bool, error) {
	for _, favorite := range m.favorites {
		if favorite.UserID == userID && favorite.ProductID == productID {
			copy := *favorite
			return &copy, false, nil
		}
	}
	favorite := &domain.Favorite{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}
	m.favorites[favorite.ID] = favorite
	copy := *favorite
	return &copy, true, nil
}

func (m *mockFavoriteRepository) DeleteForUser(ctx context.Context, id, userID uuid.UUID) error {
	favorite, ok := m.favorites[id]
	if !ok || favorite.UserID != userID {
		return repository.ErrFavoriteNotFound
	}
	delete(m.favorites, id)
	return nil
}

func (m *mockFavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Favorite, error) {
	var result []*domain.Favorite
	for _, favorite := range m.favorites {
		if favorite.UserID == userID {
			copy := *favorite
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *mockFavoriteRepository) ListAll(ctx context.Context) ([]*domain.Favorite, error) {
	var result []*domain.Favorite
	for _, favorite := range m.favorites {
		copy := *favorite
		result = append(result, &copy)
	}
	return result, nil
}

func (m *mockFavoriteRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	favorites, _ := m.ListByUser(ctx, userID)
	return len(favorites), nil
}

func (m *mockFavoriteRepository) Stats(ctx context.Context) (*repository.FavoriteStats, error) {
	users := make(map[uuid.UUID]struct{})
	products := make(map[uuid.UUID]struct{})
	for _, favorite := range m.favorites {
		users[favorite.UserID] = struct{}{}
		products[favorite.ProductID] = struct{}{}
	}
	return &repository.FavoriteStats{
		Total:            len(m.favorites),
		DistinctUsers:    len(users),
		DistinctProducts: len(products),
	}, nil
}

// newTestProduct seeds the product mock with an active product
func newTestProduct(products *mockProductRepository, price string, stock int) *domain.Product {
	product := &domain.Product{
		ID:         uuid.New(),
		Name:       "Product " + uuid.NewString()[:8],
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: uuid.New(),
		BrandID:    uuid.New(),
		MaterialID: uuid.New(),
		Active:     true,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	products.products[product.ID] = product
	return product
}
