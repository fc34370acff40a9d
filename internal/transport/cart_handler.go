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

// AddItemRequest represents the add-to-cart request payload
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

// AdjustItemRequest represents the quantity adjustment payload
type AdjustItemRequest struct {
	Action string `json:"action" validate:"required,oneof=increment decrement"`
}

// CartMutationResponse is returned after adding or removing a line
type CartMutationResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	CartCount int    `json:"cart_count"`
}

// QuantityResponse is returned after a quantity adjustment
type QuantityResponse struct {
	Success     bool   `json:"success"`
	NewQuantity int    `json:"new_quantity"`
	Subtotal    string `json:"subtotal"`
}

// CartHandler handles the cart, checkout and order history endpoints.
// Every route requires an authenticated session.
type CartHandler struct {
	cartService     service.CartService
	checkoutService service.CheckoutService
	orderService    service.OrderService
	logger          *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, checkoutService service.CheckoutService, orderService service.OrderService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		checkoutService: checkoutService,
		orderService:    orderService,
		logger:          logger,
	}
}

// RegisterRoutes registers all cart and order routes
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/api/cart", h.GetCart)
		r.Post("/api/cart/items", h.AddItem)
		r.Patch("/api/cart/items/{id}", h.AdjustItem)
		r.Delete("/api/cart/items/{id}", h.RemoveItem)

		r.Get("/api/checkout", h.Preview)
		r.Post("/api/checkout", h.Checkout)

		r.Get("/api/orders", h.History)
		r.Get("/api/orders/{id}", h.OrderDetail)
	})
}

// GetCart returns the caller's cart, creating an empty one on first use
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), sess.UserID)
	if err != nil {
		h.logger.Error("Failed to load cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// AddItem adds a product to the caller's cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddItemRequest
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

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	result, err := h.cartService.AddItem(r.Context(), sess.UserID, productID, quantity)
	if err != nil {
		var stockErr *repository.InsufficientStockError
		if errors.As(err, &stockErr) {
			middleware.RespondWithError(w, http.StatusConflict, stockErr.Error())
			return
		}
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to add cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add product to cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartMutationResponse{
		Success:   true,
		Message:   "product added to cart",
		CartCount: result.CartCount,
	})
}

// AdjustItem increments or decrements a line's quantity
func (h *CartHandler) AdjustItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	var req AdjustItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	delta := 1
	if req.Action == "decrement" {
		delta = -1
	}

	result, err := h.cartService.AdjustItemQuantity(r.Context(), sess.UserID, itemID, delta)
	if err != nil {
		if errors.Is(err, repository.ErrOrderItemNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "cart item not found")
			return
		}

		h.logger.Error("Failed to adjust cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, QuantityResponse{
		Success:     true,
		NewQuantity: result.NewQuantity,
		Subtotal:    result.Subtotal.StringFixed(2),
	})
}

// RemoveItem deletes a line from the caller's cart
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	count, err := h.cartService.RemoveItem(r.Context(), sess.UserID, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderItemNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "cart item not found")
			return
		}

		h.logger.Error("Failed to remove cart item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartMutationResponse{
		Success:   true,
		Message:   "product removed from cart",
		CartCount: count,
	})
}

// Preview returns the pending order for review before payment
func (h *CartHandler) Preview(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cart, err := h.checkoutService.Preview(r.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "no pending order")
			return
		}
		if errors.Is(err, repository.ErrEmptyCart) {
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
			return
		}

		h.logger.Error("Failed to load checkout preview", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load checkout")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// Checkout completes the caller's pending order. Stock shortfalls and
// an empty cart fail the whole request with nothing changed.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	order, err := h.checkoutService.Checkout(r.Context(), sess.UserID)
	if err != nil {
		var stockErr *repository.InsufficientStockError
		if errors.As(err, &stockErr) {
			middleware.RespondWithError(w, http.StatusConflict, stockErr.Error())
			return
		}
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "no pending order")
			return
		}
		if errors.Is(err, repository.ErrEmptyCart) {
			middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
			return
		}

		h.logger.Error("Checkout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to complete checkout")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// History lists the caller's completed orders
func (h *CartHandler) History(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.orderService.History(r.Context(), sess.UserID)
	if err != nil {
		h.logger.Error("Failed to load order history", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load order history")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// OrderDetail returns one of the caller's orders with its lines
func (h *CartHandler) OrderDetail(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orderService.Detail(r.Context(), sess.UserID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}

		h.logger.Error("Failed to load order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}
