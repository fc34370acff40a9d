package transport

import (
	"errors"
	"net/http"
	"time"

	"luzzen/internal/domain"
	"luzzen/internal/middleware"
	"luzzen/internal/repository"
	"luzzen/internal/service"
	"luzzen/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Country         string `json:"country"`
	Address         string `json:"address"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserProfile represents user profile data
type UserProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Country string `json:"country"`
	Address string `json:"address"`
	IsAdmin bool   `json:"is_admin"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	User UserProfile `json:"user"`
}

// ProfileResponse bundles the profile with its activity counters
type ProfileResponse struct {
	User           UserProfile `json:"user"`
	CompletedCount int         `json:"completed_count"`
	FavoriteCount  int         `json:"favorite_count"`
	TotalSpent     string      `json:"total_spent"`
}

// UserHandler handles HTTP requests for accounts and sessions
type UserHandler struct {
	userService  service.UserService
	sessions     session.Store
	cookieName   string
	sessionTTL   time.Duration
	secureCookie bool
	logger       *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, sessions session.Store, cookieName string, sessionTTL time.Duration, secureCookie bool, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService:  userService,
		sessions:     sessions,
		cookieName:   cookieName,
		sessionTTL:   sessionTTL,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// RegisterRoutes registers all account routes
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	// Public routes
	r.Post("/api/register", h.Register)
	r.Post("/api/login", h.Login)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/api/logout", h.Logout)
		r.Get("/api/profile", h.GetProfile)
	})
}

// Register handles account creation
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), service.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Country:         req.Country,
		Address:         req.Address,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "email is already registered")
			return
		}
		if errors.Is(err, service.ErrPasswordMismatch) {
			middleware.RespondWithError(w, http.StatusBadRequest, "passwords do not match")
			return
		}

		h.logger.Error("Registration failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	h.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, toUserProfile(user))
}

// Login handles credential verification and session creation
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		h.logger.Error("Login failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	token, err := h.sessions.Create(r.Context(), session.Session{
		UserID:   user.ID,
		UserName: user.Name,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		h.logger.Error("Failed to create session", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{User: toUserProfile(user)})
}

// Logout destroys the server-side session and expires the cookie
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			h.logger.Error("Failed to delete session", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to logout")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// GetProfile returns the caller's account with activity counters
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}

		h.logger.Error("Failed to get profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProfileResponse{
		User:           toUserProfile(profile.User),
		CompletedCount: profile.CompletedCount,
		FavoriteCount:  profile.FavoriteCount,
		TotalSpent:     profile.TotalSpent.StringFixed(2),
	})
}

func toUserProfile(user *domain.User) UserProfile {
	return UserProfile{
		ID:      user.ID.String(),
		Name:    user.Name,
		Email:   user.Email,
		Country: user.Country,
		Address: user.Address,
		IsAdmin: user.IsAdmin,
	}
}
