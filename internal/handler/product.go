package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/storefront-go/storefront/internal/domain/catalog"
	"github.com/storefront-go/storefront/internal/domain/product"
)

type productRequest struct {
	Name     string               `json:"name"`
	Price    decimal.Decimal      `json:"price"`
	Stock    int                  `json:"stock"`
	Category string               `json:"category"`
	Images   product.ImagePayload `json:"images"`
}

type productView struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     string          `json:"price"`
	Stock     int             `json:"stock"`
	Category  string          `json:"category"`
	Images    []product.Image `json:"images"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toProductView(p product.Product) productView {
	images := p.Images
	if images == nil {
		images = []product.Image{}
	}
	return productView{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price.StringFixed(2),
		Stock:     p.Stock,
		Category:  p.Category,
		Images:    images,
		CreatedAt: p.CreatedAt,
	}
}

func toProductViews(list []product.Product) []productView {
	views := make([]productView, len(list))
	for i, p := range list {
		views[i] = toProductView(p)
	}
	return views
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("perPage"))

	filter := product.ListFilter{
		Keyword:  q.Get("keyword"),
		Category: q.Get("category"),
		Page:     page,
		PerPage:  perPage,
	}.Normalize()

	items, total, err := h.catalog.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"count":    total,
		"perPage":  filter.PerPage,
		"products": toProductViews(items),
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"product": toProductView(*p),
	})
}

func (h *Handler) adminListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListAdmin(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"products": toProductViews(items),
	})
}

func (h *Handler) adminCreateProduct(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "missing api key")
		return
	}

	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	images, err := decodeImages(req.Images.Refs())
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.catalog.Create(r.Context(), u.ID, catalog.CreateInput{
		Name:     req.Name,
		Price:    req.Price,
		Stock:    req.Stock,
		Category: req.Category,
		Images:   images,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"product": toProductView(*p),
	})
}

func (h *Handler) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	images, err := decodeImages(req.Images.Refs())
	if err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), catalog.UpdateInput{
		Name:     req.Name,
		Price:    req.Price,
		Stock:    req.Stock,
		Category: req.Category,
		Images:   images,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"product": toProductView(*p),
	})
}

func (h *Handler) adminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "product deleted",
	})
}
