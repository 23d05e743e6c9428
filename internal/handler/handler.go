// Package handler exposes the storefront API over HTTP. It decodes requests,
// delegates to the domain services, and maps domain errors to stable status
// codes without leaking storage detail.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/storefront-go/storefront/internal/domain/catalog"
	"github.com/storefront-go/storefront/internal/domain/order"
	"github.com/storefront-go/storefront/internal/domain/product"
	"github.com/storefront-go/storefront/internal/domain/user"
)

// Handler holds the domain dependencies of the HTTP layer.
type Handler struct {
	orders  *order.Service
	catalog *catalog.Service
	users   user.Repository
	pepper  []byte
}

// NewHandler constructs a Handler. pepper is the HMAC key for API key
// hashing, shared with the seeding command.
func NewHandler(orders *order.Service, cat *catalog.Service, users user.Repository, pepper []byte) *Handler {
	return &Handler{
		orders:  orders,
		catalog: cat,
		users:   users,
		pepper:  pepper,
	}
}

// Router builds the API route tree. The caller mounts it under /api.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	// Public catalog reads.
	r.Get("/products", h.listProducts)
	r.Get("/product/{id}", h.getProduct)

	// Authenticated routes.
	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)

		r.Post("/order/new", h.createOrder)
		r.Get("/order/{id}", h.getOrder)
		r.Get("/orders/me", h.myOrders)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)

			r.Get("/admin/orders", h.adminListOrders)
			r.Delete("/admin/order/{id}", h.adminDeleteOrder)
			r.Put("/admin/order/{id}/status", h.adminAdvanceOrder)

			r.Get("/admin/products", h.adminListProducts)
			r.Post("/admin/product/new", h.adminCreateProduct)
			r.Put("/admin/product/{id}", h.adminUpdateProduct)
			r.Delete("/admin/product/{id}", h.adminDeleteProduct)
		})
	})

	return r
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorCode(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Code: code, Message: message})
}

// writeError maps domain errors onto the API's error taxonomy:
// validation failures are 400/422, missing entities 404, external storage
// failures 502, everything else an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		quantityErr   *order.InvalidQuantityError
		priceErr      *order.InvalidPriceError
		mismatchErr   *order.TotalMismatchError
		missingErr    *order.ProductNotFoundError
		transitionErr *order.InvalidTransitionError
		upstreamErr   *catalog.UpstreamError
	)

	switch {
	case errors.Is(err, order.ErrEmptyItems):
		writeErrorCode(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &quantityErr),
		errors.As(err, &priceErr),
		errors.As(err, &mismatchErr),
		errors.As(err, &missingErr),
		errors.As(err, &transitionErr),
		errors.Is(err, order.ErrNegativeCharge),
		errors.Is(err, catalog.ErrInvalidInput):
		writeErrorCode(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, err.Error())
	case errors.As(err, &upstreamErr):
		zctx.From(r.Context()).Warn("upstream storage failure", zap.Error(err))
		writeErrorCode(w, http.StatusBadGateway, "external storage unavailable")
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeErrorCode(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}
