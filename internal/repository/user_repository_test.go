package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"luzzen/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func TestUserCreateAndFindByEmail(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         "Ana",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: string(hash),
		Country:      "ES",
		Address:      "Calle Mayor 1",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := repo.FindByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if found.ID != user.ID || found.Name != "Ana" || found.Country != "ES" {
		t.Errorf("unexpected user: %+v", found)
	}
	if found.PasswordHash == "password123" {
		t.Error("password stored as plaintext")
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()
	existing := seedUser(t)

	now := time.Now().UTC()
	duplicate := &domain.User{
		ID:           uuid.New(),
		Name:         "Copycat",
		Email:        existing.Email,
		PasswordHash: existing.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, duplicate); !errors.Is(err, ErrUserAlreadyExists) {
		t.Errorf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestUserFindByIDNotFound(t *testing.T) {
	repo := NewUserRepository(testDB)

	if _, err := repo.FindByID(context.Background(), uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserUpdate(t *testing.T) {
	repo := NewUserRepository(testDB)
	ctx := context.Background()
	user := seedUser(t)

	user.Name = "Renamed"
	user.IsAdmin = true
	if err := repo.Update(ctx, user); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	found, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Name != "Renamed" || !found.IsAdmin {
		t.Errorf("update not persisted: %+v", found)
	}

	found.IsAdmin = false
	if err := repo.Update(ctx, found); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	found, err = repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.IsAdmin {
		t.Errorf("admin revocation not persisted: %+v", found)
	}
}

func TestUserDeleteCascadesOrdersAndFavorites(t *testing.T) {
	userRepo := NewUserRepository(testDB)
	orderRepo := NewOrderRepository(testDB)
	favoriteRepo := NewFavoriteRepository(testDB)
	ctx := context.Background()
	user := seedUser(t)
	product := seedProduct(t, "10.00", 5)

	cart, err := orderRepo.GetOrCreatePending(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreatePending failed: %v", err)
	}
	addLine(t, orderRepo, cart.ID, product, 1)
	if _, _, err := favoriteRepo.GetOrCreate(ctx, user.ID, product.ID); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	if err := userRepo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := orderRepo.FindByID(ctx, cart.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected order to cascade, got %v", err)
	}
	if count, _ := favoriteRepo.CountByUser(ctx, user.ID); count != 0 {
		t.Errorf("expected favorites to cascade, count %d", count)
	}
}
