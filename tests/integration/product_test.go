//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts_Paged(t *testing.T) {
	resp := doGet(t, "/api/products", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	list := decodeJSON[productListResponse](t, resp)
	if list.Count != seedCount {
		t.Errorf("count: got %d, want %d", list.Count, seedCount)
	}
	if len(list.Products) != list.PerPage {
		t.Errorf("page size: got %d products, want %d", len(list.Products), list.PerPage)
	}
}

func TestListProducts_KeywordFilter(t *testing.T) {
	resp := doGet(t, "/api/products?keyword=waffle", "")
	defer resp.Body.Close()

	list := decodeJSON[productListResponse](t, resp)
	if list.Count != 1 {
		t.Fatalf("count: got %d, want 1", list.Count)
	}
	if list.Products[0].ID != waffleID {
		t.Errorf("got product %s, want %s", list.Products[0].ID, waffleID)
	}
}

func TestListProducts_CategoryFilter(t *testing.T) {
	resp := doGet(t, "/api/products?category=Tiramisu", "")
	defer resp.Body.Close()

	list := decodeJSON[productListResponse](t, resp)
	if list.Count != 1 {
		t.Fatalf("count: got %d, want 1", list.Count)
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/product/"+waffleID, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	env := decodeJSON[productEnvelope](t, resp)
	if env.Product.Name != "Waffle with Berries" {
		t.Errorf("name: got %q", env.Product.Name)
	}
	if env.Product.Price != "6.50" {
		t.Errorf("price: got %s, want 6.50", env.Product.Price)
	}
	if len(env.Product.Images) == 0 {
		t.Error("images missing")
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/product/00000000-0000-0000-0000-000000000000", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != http.StatusNotFound {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}

func TestAdminProducts_RequiresAuth(t *testing.T) {
	resp := doGet(t, "/api/admin/products", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdminProducts_ListAll(t *testing.T) {
	resp := doGet(t, "/api/admin/products", adminAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

// TestAdminProductLifecycle mutates the catalog without images: the test
// environment has no object storage bucket, so image-carrying mutations are
// exercised separately via TestAdminCreateProduct_ImageWithoutBucket.
func TestAdminProductLifecycle(t *testing.T) {
	// Create.
	resp := doJSON(t, http.MethodPost, "/api/admin/product/new", map[string]any{
		"name":     "Integration Eclair",
		"price":    "3.75",
		"stock":    12,
		"category": "Eclair",
	}, adminAPIKey)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[productEnvelope](t, resp)
	resp.Body.Close()

	if created.Product.Price != "3.75" {
		t.Errorf("price: got %s, want 3.75", created.Product.Price)
	}

	// Update.
	resp = doJSON(t, http.MethodPut, "/api/admin/product/"+created.Product.ID, map[string]any{
		"name":     "Integration Eclair v2",
		"price":    "4.25",
		"stock":    10,
		"category": "Eclair",
	}, adminAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	updated := decodeJSON[productEnvelope](t, resp)
	resp.Body.Close()
	if updated.Product.Name != "Integration Eclair v2" {
		t.Errorf("name after update: got %q", updated.Product.Name)
	}

	// Delete, then gone.
	resp = doJSON(t, http.MethodDelete, "/api/admin/product/"+created.Product.ID, nil, adminAPIKey)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doGet(t, "/api/product/"+created.Product.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAdminCreateProduct_InvalidPrice(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/admin/product/new", map[string]any{
		"name":     "Freebie",
		"price":    "0",
		"stock":    1,
		"category": "Test",
	}, adminAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

// Image uploads hit the asset store; with no bucket configured the API must
// answer 502 rather than writing a record that points nowhere.
func TestAdminCreateProduct_ImageWithoutBucket(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/admin/product/new", map[string]any{
		"name":     "Pictured Pastry",
		"price":    "2.00",
		"stock":    1,
		"category": "Test",
		"images":   "aGVsbG8=",
	}, adminAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
}
