//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

const (
	waffleID   = "6f1f5cb3-3c2e-4a2e-9a57-2b0b3c8f1a01" // $6.50
	tiramisuID = "6f1f5cb3-3c2e-4a2e-9a57-2b0b3c8f1a04" // $5.50
)

func validOrder() orderRequest {
	return orderRequest{
		Items: []orderItemRequest{
			{ProductID: waffleID, Name: "Waffle with Berries", Quantity: 2, Price: "6.50"},
			{ProductID: tiramisuID, Name: "Classic Tiramisu", Quantity: 1, Price: "5.50"},
		},
		Shipping: shippingRequest{
			Address:    "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
			Phone:      "555-0100",
		},
		Payment:       map[string]string{"id": "pi_test", "status": "succeeded"},
		ShippingPrice: "2.00",
		TaxPrice:      "1.30",
		TotalPrice:    "21.80",
	}
}

func TestCreateOrder_NoAuth(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/order/new", validOrder(), "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_InvalidKey(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/order/new", validOrder(), "wrong-key")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	req := validOrder()
	req.Items = nil

	resp := doJSON(t, http.MethodPost, "/api/order/new", req, adminAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	req := validOrder()
	req.Items[0].ProductID = "00000000-0000-0000-0000-000000000000"

	resp := doJSON(t, http.MethodPost, "/api/order/new", req, adminAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_TotalMismatch(t *testing.T) {
	req := validOrder()
	req.TotalPrice = "99.99"

	resp := doJSON(t, http.MethodPost, "/api/order/new", req, adminAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != http.StatusUnprocessableEntity {
		t.Errorf("error code: got %d, want 422", errResp.Code)
	}
}

func TestOrderLifecycle(t *testing.T) {
	// Create.
	resp := doJSON(t, http.MethodPost, "/api/order/new", validOrder(), adminAPIKey)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[orderEnvelope](t, resp)
	resp.Body.Close()

	if !uuidPattern.MatchString(created.Order.ID) {
		t.Fatalf("order ID is not a UUID: %q", created.Order.ID)
	}
	if created.Order.ItemsPrice != "18.50" {
		t.Errorf("itemsPrice: got %s, want 18.50", created.Order.ItemsPrice)
	}
	if created.Order.TotalPrice != "21.80" {
		t.Errorf("totalPrice: got %s, want 21.80", created.Order.TotalPrice)
	}
	if created.Order.Status != "paid" {
		t.Errorf("status: got %s, want paid", created.Order.Status)
	}

	// Get with resolved owner.
	resp = doGet(t, "/api/order/"+created.Order.ID, adminAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}
	fetched := decodeJSON[orderEnvelope](t, resp)
	resp.Body.Close()

	if fetched.Order.ID != created.Order.ID {
		t.Errorf("fetched wrong order: %s", fetched.Order.ID)
	}
	if fetched.User.Email == "" {
		t.Error("owner email not resolved")
	}

	// Own listing contains it.
	resp = doGet(t, "/api/orders/me", adminAPIKey)
	mine := decodeJSON[orderListEnvelope](t, resp)
	resp.Body.Close()

	found := false
	for _, o := range mine.Orders {
		if o.ID == created.Order.ID {
			found = true
		}
	}
	if !found {
		t.Error("created order missing from own listing")
	}

	// Advance to delivered; backward transition must fail.
	resp = doJSON(t, http.MethodPut, "/api/admin/order/"+created.Order.ID+"/status",
		map[string]string{"status": "delivered"}, adminAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("advance: expected 200, got %d", resp.StatusCode)
	}
	advanced := decodeJSON[orderEnvelope](t, resp)
	resp.Body.Close()
	if advanced.Order.Status != "delivered" {
		t.Errorf("status after advance: got %s, want delivered", advanced.Order.Status)
	}

	resp = doJSON(t, http.MethodPut, "/api/admin/order/"+created.Order.ID+"/status",
		map[string]string{"status": "paid"}, adminAPIKey)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("backward advance: expected 422, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Admin listing includes it with an aggregate total.
	resp = doGet(t, "/api/admin/orders", adminAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin list: expected 200, got %d", resp.StatusCode)
	}
	all := decodeJSON[orderListEnvelope](t, resp)
	resp.Body.Close()
	if len(all.Orders) == 0 || all.TotalPrice == "" {
		t.Error("admin listing empty or missing aggregate total")
	}

	// Delete, then gone.
	resp = doJSON(t, http.MethodDelete, "/api/admin/order/"+created.Order.ID, nil, adminAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doGet(t, "/api/order/"+created.Order.ID, adminAPIKey)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
