package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/storefront-go/storefront/internal/domain/order"
)

type orderItemPayload struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type shippingPayload struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type paymentPayload struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type createOrderRequest struct {
	Items         []orderItemPayload `json:"orderedItems"`
	Shipping      shippingPayload    `json:"shippingDetails"`
	Payment       paymentPayload     `json:"paymentInfo"`
	ShippingPrice decimal.Decimal    `json:"shippingPrice"`
	TaxPrice      decimal.Decimal    `json:"taxPrice"`
	TotalPrice    decimal.Decimal    `json:"totalPrice"`
}

type orderItemView struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type orderView struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Items         []orderItemView `json:"orderedItems"`
	Shipping      shippingPayload `json:"shippingDetails"`
	Payment       paymentPayload  `json:"paymentInfo"`
	ItemsPrice    string          `json:"itemsPrice"`
	ShippingPrice string          `json:"shippingPrice"`
	TaxPrice      string          `json:"taxPrice"`
	TotalPrice    string          `json:"totalPrice"`
	Status        string          `json:"status"`
	PaidAt        time.Time       `json:"paidAt"`
	DeliveredAt   *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type orderOwnerView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toOrderView(o order.Order) orderView {
	items := make([]orderItemView, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemView{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice.StringFixed(2),
		}
	}
	return orderView{
		ID:     o.ID,
		UserID: o.UserID,
		Items:  items,
		Shipping: shippingPayload{
			Address:    o.Shipping.Address,
			City:       o.Shipping.City,
			PostalCode: o.Shipping.PostalCode,
			Country:    o.Shipping.Country,
			Phone:      o.Shipping.Phone,
		},
		Payment:       paymentPayload{ID: o.Payment.ID, Status: o.Payment.Status},
		ItemsPrice:    o.ItemsPrice.StringFixed(2),
		ShippingPrice: o.ShippingPrice.StringFixed(2),
		TaxPrice:      o.TaxPrice.StringFixed(2),
		TotalPrice:    o.TotalPrice.StringFixed(2),
		Status:        string(o.Status),
		PaidAt:        o.PaidAt,
		DeliveredAt:   o.DeliveredAt,
		CreatedAt:     o.CreatedAt,
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "missing api key")
		return
	}

	var req createOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	items := make([]order.CartItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.CartItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
		}
	}

	o, err := h.orders.Create(r.Context(), u.ID, order.CreateRequest{
		Items: items,
		Shipping: order.ShippingDetails{
			Address:    req.Shipping.Address,
			City:       req.Shipping.City,
			PostalCode: req.Shipping.PostalCode,
			Country:    req.Shipping.Country,
			Phone:      req.Shipping.Phone,
		},
		Payment:       order.PaymentInfo{ID: req.Payment.ID, Status: req.Payment.Status},
		ShippingPrice: req.ShippingPrice,
		TaxPrice:      req.TaxPrice,
		TotalPrice:    req.TotalPrice,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"order":   toOrderView(*o),
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	detail, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   toOrderView(detail.Order),
		"user": orderOwnerView{
			Name:  detail.Owner.Name,
			Email: detail.Owner.Email,
		},
	})
}

func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		writeErrorCode(w, http.StatusUnauthorized, "missing api key")
		return
	}

	list, err := h.orders.ListByUser(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]orderView, len(list))
	for i, o := range list {
		views[i] = toOrderView(o)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"orders":  views,
	})
}

func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]orderView, len(list.Orders))
	for i, o := range list.Orders {
		views[i] = toOrderView(o)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"totalPrice": list.TotalPrice.StringFixed(2),
		"orders":     views,
	})
}

func (h *Handler) adminDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "order deleted",
	})
}

func (h *Handler) adminAdvanceOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.orders.AdvanceStatus(r.Context(), chi.URLParam(r, "id"), order.Status(req.Status))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   toOrderView(*o),
	})
}
