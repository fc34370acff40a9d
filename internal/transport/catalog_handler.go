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

// CatalogHandler handles the public storefront endpoints
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all storefront routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/home", h.Home)
	r.Get("/api/catalog", h.Catalog)
	r.Get("/api/products/{id}", h.ProductDetail)
}

// Home returns the landing page data
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalogService.Home(r.Context())
	if err != nil {
		h.logger.Error("Failed to load home page", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load home page")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// Catalog returns the filtered product listing. Filters arrive as
// query parameters; an unparseable ID is rejected rather than ignored.
func (h *CatalogHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	var filter repository.ProductFilter

	q := r.URL.Query()
	for param, target := range map[string]**uuid.UUID{
		"category_id": &filter.CategoryID,
		"brand_id":    &filter.BrandID,
		"material_id": &filter.MaterialID,
	} {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+param)
			return
		}
		*target = &id
	}
	filter.Search = q.Get("search")

	page, err := h.catalogService.Catalog(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to load catalog", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// ProductDetail returns one active product with related products
func (h *CatalogHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	page, err := h.catalogService.ProductDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to load product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}
