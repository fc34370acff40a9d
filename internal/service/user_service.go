package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"luzzen/internal/domain"
	"luzzen/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// Profile bundles a user's account data with their activity counters
type Profile struct {
	User           *domain.User    `json:"user"`
	CompletedCount int             `json:"completed_count"`
	FavoriteCount  int             `json:"favorite_count"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
}

// RegisterInput carries the fields collected at sign-up
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Country         string
	Address         string
}

// UserUpdateInput carries the editable account fields. An empty
// Password leaves the stored hash untouched.
type UserUpdateInput struct {
	Name     string
	Email    string
	Password string
	Country  string
	Address  string
	IsAdmin  bool
}

// UserService handles registration, credential checks and account
// administration.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input UserUpdateInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	userRepo     repository.UserRepository
	orderRepo    repository.OrderRepository
	favoriteRepo repository.FavoriteRepository
}

// NewUserService creates a new instance of UserService
func NewUserService(userRepo repository.UserRepository, orderRepo repository.OrderRepository, favoriteRepo repository.FavoriteRepository) UserService {
	return &userService{
		userRepo:     userRepo,
		orderRepo:    orderRepo,
		favoriteRepo: favoriteRepo,
	}
}

// Register creates an account with a bcrypt password hash. The email
// must not already be taken and both password fields must match.
func (s *userService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Password != input.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Country:      input.Country,
		Address:      input.Address,
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the password against the stored hash. A missing user
// and a wrong password both map to ErrInvalidCredentials so callers
// cannot probe which emails are registered.
func (s *userService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetProfile returns the account with its completed order count,
// favorite count and lifetime spend.
func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	completed, err := s.orderRepo.CountByUserAndStatus(ctx, userID, domain.OrderStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed orders: %w", err)
	}

	favorites, err := s.favoriteRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count favorites: %w", err)
	}

	spent, err := s.orderRepo.SumCompletedTotals(ctx, &userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum completed totals: %w", err)
	}

	return &Profile{
		User:           user,
		CompletedCount: completed,
		FavoriteCount:  favorites,
		TotalSpent:     spent,
	}, nil
}

// ListUsers returns all accounts with per-user order and favorite counts
func (s *userService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.ListWithStats(ctx)
}

// UpdateUser rewrites the editable account fields. A non-empty Password
// is re-hashed; an empty one keeps the current hash.
func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, input UserUpdateInput) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = input.Name
	user.Email = input.Email
	user.Country = input.Country
	user.Address = input.Address
	user.IsAdmin = input.IsAdmin

	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteUser removes the account; orders and favorites cascade
func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, id)
}
