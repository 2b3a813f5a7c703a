package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/gizmo_store/internal/catalog"
	"github.com/fjod/gizmo_store/internal/domain"
	"github.com/fjod/gizmo_store/internal/logger"
	"github.com/fjod/gizmo_store/internal/repository"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Catalog interface {
	List(ctx context.Context) ([]*domain.Product, error)
	ListAI(ctx context.Context) ([]*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in catalog.NewProduct) (*domain.Product, error)
}

type ProductHandler struct {
	catalog Catalog
	timeout time.Duration
	logger  *zap.Logger
}

func NewProductHandler(c Catalog, timeout time.Duration, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: c,
		timeout: timeout,
		logger:  logger,
	}
}

// AddProductRequestDTO accepts the price as a JSON number or string.
type AddProductRequestDTO struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	ImageURL    string          `json:"imageUrl"`
}

// GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.List(ctx)
	if err != nil {
		logger.FromContext(ctx, h.logger).Error("failed to list products", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /api/ai-products
func (h *ProductHandler) ListAIProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListAI(ctx)
	if err != nil {
		logger.FromContext(ctx, h.logger).Error("failed to list ai products", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch AI products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.catalog.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, repository.ErrProductNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "Product not found")
		return
	}
	if err != nil {
		logger.FromContext(ctx, h.logger).Error("failed to get product", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch product")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// POST /api/products/add
func (h *ProductHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddProductRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	p, err := h.catalog.Create(ctx, catalog.NewProduct{
		Name:        req.Name,
		Description: req.Description,
		Price:       priceText(req.Price),
		ImageURL:    req.ImageURL,
	})
	if errors.Is(err, catalog.ErrInvalidProduct) {
		respondError(w, http.StatusBadRequest, "invalid_product", err.Error())
		return
	}
	if err != nil {
		logger.FromContext(ctx, h.logger).Error("failed to add product", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "Failed to add product")
		return
	}
	log := logger.FromContext(ctx, h.logger)
	if admin := adminClaims(ctx); admin != nil {
		log = log.With(zap.String("admin", admin.Username))
	}
	log.Info("product added", zap.String("product_id", p.ID))

	respondJSON(w, http.StatusCreated, p)
}

func priceText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
