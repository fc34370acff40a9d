package transport

import (
	"errors"
	"net/http"

	"luzzen/internal/middleware"
	"luzzen/internal/repository"
	"luzzen/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddFavoriteRequest represents the add-favorite request payload
type AddFavoriteRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// FavoriteResponse is returned after a favorite mutation
type FavoriteResponse struct {
	Success bool   `json:"success"`
	Created bool   `json:"created"`
	Message string `json:"message"`
}

// FavoriteHandler handles the per-user favorites endpoints
type FavoriteHandler struct {
	favoriteService service.FavoriteService
	logger          *zap.Logger
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(favoriteService service.FavoriteService, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		logger:          logger,
	}
}

// RegisterRoutes registers all favorites routes
func (h *FavoriteHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/api/favorites", h.List)
		r.Post("/api/favorites", h.Add)
		r.Delete("/api/favorites/{id}", h.Remove)
	})
}

// List returns the caller's favorites with their products
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	favorites, err := h.favoriteService.ListForUser(r.Context(), sess.UserID)
	if err != nil {
		h.logger.Error("Failed to list favorites", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load favorites")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, favorites)
}

// Add favorites a product. A repeat add reports the existing favorite
// instead of creating a duplicate.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddFavoriteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	result, err := h.favoriteService.Add(r.Context(), sess.UserID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to add favorite", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add favorite")
		return
	}

	message := "product already in favorites"
	if result.Created {
		message = "product added to favorites"
	}

	middleware.RespondWithJSON(w, http.StatusOK, FavoriteResponse{
		Success: true,
		Created: result.Created,
		Message: message,
	})
}

// Remove deletes one of the caller's favorites
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	favoriteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid favorite ID")
		return
	}

	if err := h.favoriteService.Remove(r.Context(), sess.UserID, favoriteID); err != nil {
		if errors.Is(err, repository.ErrFavoriteNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "favorite not found")
			return
		}

		h.logger.Error("Failed to remove favorite", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove favorite")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, FavoriteResponse{
		Success: true,
		Message: "product removed from favorites",
	})
}
