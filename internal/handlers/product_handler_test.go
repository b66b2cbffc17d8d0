package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/models"
)

func TestListProducts(t *testing.T) {
	s := newShop(t)

	for _, path := range []string{"/api/products", "/api/products/allproducts"} {
		w := s.do(http.MethodGet, path, nil, "")
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, w.Code)
		}

		var products []models.Product
		decode(t, w, &products)
		if len(products) != 2 {
			t.Errorf("%s: expected 2 products, got %d", path, len(products))
		}
	}
}

func TestGetProduct(t *testing.T) {
	s := newShop(t)

	tests := []struct {
		name           string
		productID      string
		expectedStatus int
		expectedError  string
	}{
		{"existing product", speakerID, http.StatusOK, ""},
		{"unknown product", uuid.NewString(), http.StatusNotFound, "Product not found"},
		{"non-uuid id", "abc", http.StatusBadRequest, "Invalid ID supplied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodGet, "/api/products/"+tt.productID, nil, "")

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedError != "" {
				if got := errorMessage(t, w); got != tt.expectedError {
					t.Errorf("expected error %q, got %q", tt.expectedError, got)
				}
				return
			}

			var product models.Product
			decode(t, w, &product)
			if product.Name != "Speaker" || product.Price != 55 || product.CountInStock != 5 {
				t.Errorf("unexpected product: %+v", product)
			}
		})
	}
}

func TestProductAdmin(t *testing.T) {
	s := newShop(t)
	shopper, _ := s.signUp("shopper@example.com", false)
	admin, _ := s.signUp("admin@example.com", true)

	input := models.ProductInput{Name: "Turntable", Brand: "Spin", Price: 249.5, CountInStock: 3}

	if w := s.do(http.MethodPost, "/api/products", input, shopper); w.Code != http.StatusForbidden {
		t.Errorf("shopper create: expected 403, got %d", w.Code)
	}

	w := s.do(http.MethodPost, "/api/products", input, admin)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create: expected 201, got %d", w.Code)
	}
	var created models.Product
	decode(t, w, &created)

	input.Price = -1
	if w := s.do(http.MethodPut, "/api/products/"+created.ID, input, admin); w.Code != http.StatusBadRequest {
		t.Errorf("negative price: expected 400, got %d", w.Code)
	}

	input.Price = 199
	w = s.do(http.MethodPut, "/api/products/"+created.ID, input, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", w.Code)
	}
	var updated models.Product
	decode(t, w, &updated)
	if updated.Price != 199 {
		t.Errorf("expected price 199, got %v", updated.Price)
	}

	if w := s.do(http.MethodDelete, "/api/products/"+created.ID, nil, admin); w.Code != http.StatusOK {
		t.Errorf("delete: expected 200, got %d", w.Code)
	}
	if w := s.do(http.MethodGet, "/api/products/"+created.ID, nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("after delete: expected 404, got %d", w.Code)
	}
}
