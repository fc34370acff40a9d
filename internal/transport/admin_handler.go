package transport

import (
	"errors"
	"net/http"

	"luzzen/internal/middleware"
	"luzzen/internal/repository"
	"luzzen/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest represents the admin create/update product payload.
// Price travels as a string so it can be parsed exactly.
type ProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       string `json:"price" validate:"required"`
	Stock       int    `json:"stock" validate:"min=0"`
	ImageURL    string `json:"image_url"`
	CategoryID  string `json:"category_id" validate:"required,uuid"`
	BrandID     string `json:"brand_id" validate:"required,uuid"`
	MaterialID  string `json:"material_id" validate:"required,uuid"`
	Active      bool   `json:"active"`
}

// TaxonomyRequest represents the category and brand payloads
type TaxonomyRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// MaterialRequest represents the material payload
type MaterialRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       string `json:"price" validate:"required"`
}

// UserUpdateRequest represents the admin user edit payload. An empty
// password keeps the current one.
type UserUpdateRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Country  string `json:"country"`
	Address  string `json:"address"`
	IsAdmin  bool   `json:"is_admin"`
}

// OrderStatusRequest represents the order status change payload
type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed cancelled"`
}

// AdminHandler handles the staff-only management endpoints
type AdminHandler struct {
	catalogService  service.CatalogService
	userService     service.UserService
	orderService    service.OrderService
	favoriteService service.FavoriteService
	logger          *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	catalogService service.CatalogService,
	userService service.UserService,
	orderService service.OrderService,
	favoriteService service.FavoriteService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		catalogService:  catalogService,
		userService:     userService,
		orderService:    orderService,
		favoriteService: favoriteService,
		logger:          logger,
	}
}

// RegisterRoutes registers all admin routes behind the auth and admin
// middlewares.
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)

		r.Get("/dashboard", h.Dashboard)

		r.Get("/products", h.ListProducts)
		r.Post("/products", h.CreateProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)

		r.Get("/categories", h.ListCategories)
		r.Post("/categories", h.CreateCategory)
		r.Put("/categories/{id}", h.UpdateCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)

		r.Get("/brands", h.ListBrands)
		r.Post("/brands", h.CreateBrand)
		r.Put("/brands/{id}", h.UpdateBrand)
		r.Delete("/brands/{id}", h.DeleteBrand)

		r.Get("/materials", h.ListMaterials)
		r.Post("/materials", h.CreateMaterial)
		r.Put("/materials/{id}", h.UpdateMaterial)
		r.Delete("/materials/{id}", h.DeleteMaterial)

		r.Get("/users", h.ListUsers)
		r.Put("/users/{id}", h.UpdateUser)
		r.Delete("/users/{id}", h.DeleteUser)

		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{id}", h.OrderDetail)
		r.Patch("/orders/{id}/status", h.UpdateOrderStatus)
		r.Delete("/orders/{id}", h.DeleteOrder)

		r.Get("/favorites", h.ListFavorites)
	})
}

// Dashboard returns the admin landing page counters
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orderService.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("Failed to load dashboard", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogService.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeProductInput(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), *input)
	if err != nil {
		h.respondCatalogError(w, err, "failed to create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	input, ok := h.decodeProductInput(w, r)
	if !ok {
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, *input)
	if err != nil {
		h.respondCatalogError(w, err, "failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		h.respondCatalogError(w, err, "failed to delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req TaxonomyRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(r.Context(), req.Name, req.Description)
	if err != nil {
		h.respondCatalogError(w, err, "failed to create category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req TaxonomyRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.catalogService.UpdateCategory(r.Context(), id, req.Name, req.Description)
	if err != nil {
		h.respondCatalogError(w, err, "failed to update category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategory(r.Context(), id); err != nil {
		h.respondCatalogError(w, err, "failed to delete category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

func (h *AdminHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalogService.ListBrands(r.Context())
	if err != nil {
		h.logger.Error("Failed to list brands", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list brands")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, brands)
}

func (h *AdminHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var req TaxonomyRequest
	if !h.decode(w, r, &req) {
		return
	}

	brand, err := h.catalogService.CreateBrand(r.Context(), req.Name, req.Description)
	if err != nil {
		h.respondCatalogError(w, err, "failed to create brand")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, brand)
}

func (h *AdminHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req TaxonomyRequest
	if !h.decode(w, r, &req) {
		return
	}

	brand, err := h.catalogService.UpdateBrand(r.Context(), id, req.Name, req.Description)
	if err != nil {
		h.respondCatalogError(w, err, "failed to update brand")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, brand)
}

func (h *AdminHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteBrand(r.Context(), id); err != nil {
		h.respondCatalogError(w, err, "failed to delete brand")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "brand deleted"})
}

func (h *AdminHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.catalogService.ListMaterials(r.Context())
	if err != nil {
		h.logger.Error("Failed to list materials", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list materials")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, materials)
}

func (h *AdminHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req MaterialRequest
	if !h.decode(w, r, &req) {
		return
	}

	price, ok := parsePrice(w, req.Price)
	if !ok {
		return
	}

	material, err := h.catalogService.CreateMaterial(r.Context(), req.Name, req.Description, price)
	if err != nil {
		h.respondCatalogError(w, err, "failed to create material")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, material)
}

func (h *AdminHandler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req MaterialRequest
	if !h.decode(w, r, &req) {
		return
	}

	price, ok := parsePrice(w, req.Price)
	if !ok {
		return
	}

	material, err := h.catalogService.UpdateMaterial(r.Context(), id, req.Name, req.Description, price)
	if err != nil {
		h.respondCatalogError(w, err, "failed to update material")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, material)
}

func (h *AdminHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteMaterial(r.Context(), id); err != nil {
		h.respondCatalogError(w, err, "failed to delete material")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "material deleted"})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req UserUpdateRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), id, service.UserUpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Country:  req.Country,
		Address:  req.Address,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "email is already registered")
			return
		}

		h.logger.Error("Failed to update user", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toUserProfile(user))
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}

		h.logger.Error("Failed to delete user", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	overview, err := h.orderService.Overview(r.Context())
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, overview)
}

func (h *AdminHandler) OrderDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.AdminDetail(r.Context(), id)
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

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req OrderStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.orderService.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		if errors.Is(err, service.ErrInvalidOrderStatus) {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid order status")
			return
		}

		h.logger.Error("Failed to update order status", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order status")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "order status updated"})
}

func (h *AdminHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.orderService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}

		h.logger.Error("Failed to delete order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}

func (h *AdminHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	overview, err := h.favoriteService.Overview(r.Context())
	if err != nil {
		h.logger.Error("Failed to load favorites overview", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load favorites")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, overview)
}

// decode runs DecodeAndValidate and writes the error response itself,
// returning false when the request was rejected.
func (h *AdminHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := middleware.DecodeAndValidate(r, dst); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *AdminHandler) decodeProductInput(w http.ResponseWriter, r *http.Request) (*service.ProductInput, bool) {
	var req ProductRequest
	if !h.decode(w, r, &req) {
		return nil, false
	}

	price, ok := parsePrice(w, req.Price)
	if !ok {
		return nil, false
	}

	categoryID, _ := uuid.Parse(req.CategoryID)
	brandID, _ := uuid.Parse(req.BrandID)
	materialID, _ := uuid.Parse(req.MaterialID)

	return &service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  categoryID,
		BrandID:     brandID,
		MaterialID:  materialID,
		Active:      req.Active,
	}, true
}

func (h *AdminHandler) respondCatalogError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "category not found")
	case errors.Is(err, repository.ErrBrandNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "brand not found")
	case errors.Is(err, repository.ErrMaterialNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "material not found")
	default:
		h.logger.Error("Catalog operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

// parsePrice parses a decimal price string and rejects negatives
func parsePrice(w http.ResponseWriter, raw string) (decimal.Decimal, bool) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid price")
		return decimal.Zero, false
	}
	if price.IsNegative() {
		middleware.RespondWithError(w, http.StatusBadRequest, "price must not be negative")
		return decimal.Zero, false
	}
	return price, true
}
