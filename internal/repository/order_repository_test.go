package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"luzzen/internal/domain"

	"github.com/google/uuid"
)

func addLine(t *testing.T, repo OrderRepository, orderID uuid.UUID, product *domain.Product, quantity int) *domain.OrderItem {
	t.Helper()
	item := &domain.OrderItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.Price,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateItem(context.Background(), item); err != nil {
		t.Fatalf("failed to create order item: %v", err)
	}
	return item
}

// Feature: storefront, Property 13: One pending order per user
// Validates: Requirements 4.1
func TestGetOrCreatePendingIsIdempotent(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()
	user := seedUser(t)

	first, err := repo.GetOrCreatePending(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreatePending failed: %v", err)
	}
	second, err := repo.GetOrCreatePending(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreatePending failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected the same pending order, got %s and %s", first.ID, second.ID)
	}

	count, err := repo.CountByUserAndStatus(ctx, user.ID, domain.OrderStatusPending)
	if err != nil {
		t.Fatalf("CountByUserAndStatus failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one pending order, got %d", count)
	}
}

func TestGetOrCreatePendingAfterCheckoutCreatesFreshCart(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()
	user := seedUser(t)
	product := seedProduct(t, "10.00", 10)

	cart, err := repo.GetOrCreatePending(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreatePending failed: %v", err)
	}
	addLine(t, repo, cart.ID, product, 1)

	if _, err := repo.CompleteCheckout(ctx, cart.ID); err != nil {
		t.Fatalf("CompleteCheckout failed: %v", err)
	}

	fresh, err := repo.GetOrCreatePending(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreatePending failed: %v", err)
	}
	if fresh.ID == cart.ID {
		t.Error("expected a new pending order after checkout")
	}
	items, _ := repo.ListItems(ctx, fresh.ID)
	if len(items) != 0 {
		t.Errorf("fresh cart should be empty, has %d lines", len(items))
	}
}

func TestRecomputeTotalMatchesLines(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()
	user := seedUser(t)
	first := seedProduct(t, "10.50", 100)
	second := seedProduct(t, "3.25", 100)

	cart, err := repo.GetOrCreatePending(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreatePending failed: %v", err)
	}
	addLine(t, repo, cart.ID, first, 2)
	addLine(t, repo, cart.ID, second, 3)

	total, err := repo.RecomputeTotal(ctx, cart.ID)
	if err != nil {
		t.Fatalf("RecomputeTotal failed: %v", err)
	}
	if total.StringFixed(2) != "30.75" {
		t.Errorf("expected total 30.75, got %s", total.StringFixed(2))
	}

	stored, err := repo.FindByID(ctx, cart.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if !stored.Total.Equal(total) {
		t.Errorf("stored total %s != recomputed %s", stored.Total, total)
	}

	items, _ := repo.ListItems(ctx, cart.ID)
	if !domain.ComputeTotal(items).Equal(total) {
		t.Errorf("line sum does not match recomputed total")
	}
}

// Feature: storefront, Property 6: Checkout decrements stock by the
// purchased quantities
// Validates: Requirements 5.1, 5.2
func TestCompleteCheckout(t *testing.T) {
	repo := NewOrderRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()
	user := seedUser(t)
	product := seedProduct(t, "10.00", 5)

	cart, err := repo.GetOrCreatePending(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreatePending failed: %v", err)
	}
	addLine(t, repo, cart.ID, product, 5)
	if _, err := repo.RecomputeTotal(ctx, cart.ID); err != nil {
		t.Fatalf("RecomputeTotal failed: %v", err)
	}

	order, err := repo.CompleteCheckout(ctx, cart.ID)
	if err != nil {
		t.Fatalf("CompleteCheckout failed: %v", err)
	}
	if order.Status != domain.OrderStatusCompleted {
		t.Errorf("expected status completed, got %s", order.Status)
	}
	if order.Total.StringFixed(2) != "50.00" {
		t.Errorf("expected total 50.00, got %s", order.Total.StringFixed(2))
	}

	current, err := productRepo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if current.Stock != 0 {
		t.Errorf("expected stock 0, got %d", current.Stock)
	}

	// Checkout is not repeatable
	if _, err := repo.CompleteCheckout(ctx, cart.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound on second checkout, got %v", err)
	}
}

// Feature: storefront, Property 7: A failed checkout changes nothing
// Validates: Requirements 5.3
func TestCompleteCheckoutInsufficientStockRollsBack(t *testing.T) {
	repo := NewOrderRepository(testDB)
	productRepo := NewProductRepository(testDB)
	ctx := context.Background()
	user := seedUser(t)
	healthy := seedProduct(t, "10.00", 10)
	scarce := seedProduct(t, "5.00", 10)

	cart, err := repo.GetOrCreatePending(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreatePending failed: %v", err)
	}
	addLine(t, repo, cart.ID, healthy, 4)
	addLine(t, repo, cart.ID, scarce, 8)

	// Stock drops after the line was added
	scarce.Stock = 3
	if err := productRepo.Update(ctx, scarce); err != nil {
		t.Fatalf("failed to shrink stock: %v", err)
	}

	_, err = repo.CompleteCheckout(ctx, cart.ID)
	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductID != scarce.ID || stockErr.Requested != 8 || stockErr.Available != 3 {
		t.Errorf("unexpected error detail: %+v", stockErr)
	}

	// Nothing changed: stocks intact, order still pending with its lines
	healthyNow, _ := productRepo.FindByID(ctx, healthy.ID)
	if healthyNow.Stock != 10 {
		t.Errorf("healthy product stock changed to %d", healthyNow.Stock)
	}
	scarceNow, _ := productRepo.FindByID(ctx, scarce.ID)
	if scarceNow.Stock != 3 {
		t.Errorf("scarce product stock changed to %d", scarceNow.Stock)
	}
	pending, err := repo.FindPendingByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("pending order gone: %v", err)
	}
	items, _ := repo.ListItems(ctx, pending.ID)
	if len(items) != 2 {
		t.Errorf("expected 2 surviving lines, got %d", len(items))
	}
}

func TestCompleteCheckoutEmptyCart(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()
	user := seedUser(t)

	cart, err := repo.GetOrCreatePending(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreatePending failed: %v", err)
	}

	if _, err := repo.CompleteCheckout(ctx, cart.ID); !errors.Is(err, ErrEmptyCart) {
		t.Errorf("expected ErrEmptyCart, got %v", err)
	}

	// The empty cart survives the failed checkout
	if _, err := repo.FindPendingByUser(ctx, user.ID); err != nil {
		t.Errorf("pending order should survive: %v", err)
	}
}

func TestFindItemForUserEnforcesOwnership(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()
	owner := seedUser(t)
	intruder := seedUser(t)
	product := seedProduct(t, "10.00", 10)

	cart, err := repo.GetOrCreatePending(ctx, owner.ID)
	if err != nil {
		t.Fatalf("GetOrCreatePending failed: %v", err)
	}
	item := addLine(t, repo, cart.ID, product, 1)

	found, err := repo.FindItemForUser(ctx, item.ID, owner.ID)
	if err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if found.ID != item.ID {
		t.Errorf("wrong item returned")
	}

	if _, err := repo.FindItemForUser(ctx, item.ID, intruder.ID); !errors.Is(err, ErrOrderItemNotFound) {
		t.Errorf("expected ErrOrderItemNotFound for foreign item, got %v", err)
	}
}

func TestOrderHistoryScopedToUserAndStatus(t *testing.T) {
	repo := NewOrderRepository(testDB)
	ctx := context.Background()
	buyer := seedUser(t)
	other := seedUser(t)
	product := seedProduct(t, "10.00", 20)

	cart, err := repo.GetOrCreatePending(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("GetOrCreatePending failed: %v", err)
	}
	addLine(t, repo, cart.ID, product, 2)
	if _, err := repo.CompleteCheckout(ctx, cart.ID); err != nil {
		t.Fatalf("CompleteCheckout failed: %v", err)
	}

	// The other user keeps an open cart and no history
	if _, err := repo.GetOrCreatePending(ctx, other.ID); err != nil {
		t.Fatalf("GetOrCreatePending failed: %v", err)
	}

	history, err := repo.ListCompletedByUser(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("ListCompletedByUser failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 completed order, got %d", len(history))
	}
	if history[0].Total.StringFixed(2) != "20.00" {
		t.Errorf("expected total 20.00, got %s", history[0].Total.StringFixed(2))
	}

	otherHistory, err := repo.ListCompletedByUser(ctx, other.ID)
	if err != nil {
		t.Fatalf("ListCompletedByUser failed: %v", err)
	}
	if len(otherHistory) != 0 {
		t.Errorf("expected no completed orders for the other user, got %d", len(otherHistory))
	}

	if _, err := repo.FindByIDForUser(ctx, history[0].ID, other.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("foreign order must be invisible, got %v", err)
	}
}
