package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storefront/backend/internal/auth"
	"github.com/storefront/backend/internal/models"
	"github.com/storefront/backend/internal/repository"
	"github.com/storefront/backend/internal/service"
	"github.com/storefront/backend/pkg/logger"
)

type testServer struct {
	t      *testing.T
	store  *repository.MemoryStore
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := repository.NewMemoryStore()
	log := logger.NewWithWriter(io.Discard, "error")
	tokens := auth.NewTokenManager("handler-test-secret", time.Hour)
	users := service.NewUserService(store.Users(), tokens, auth.NewMemoryRevoker(), 1000, log)

	routes := &Routes{
		Health:     NewHealthHandler(store, "test", log),
		Orders:     NewOrderHandler(service.NewOrderService(store.Products(), store.Orders(), store.Users(), nil, log), log),
		Products:   NewProductHandler(service.NewProductService(store.Products()), log),
		Users:      NewUserHandler(users, time.Hour, false, log),
		Categories: NewCategoryHandler(service.NewCategoryService(store.Categories()), log),
		Auth:       users,
	}

	r := chi.NewRouter()
	routes.Mount(r)

	return &testServer{t: t, store: store, router: r}
}

// do sends a request with an optional JSON body and bearer token.
func (s *testServer) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			if err != nil {
				s.t.Fatalf("failed to encode body: %v", err)
			}
			raw = string(b)
		}
		reader = bytes.NewBufferString(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signUp registers an account and returns its token. Admin accounts are
// promoted directly in the store.
func (s *testServer) signUp(email string, admin bool) (string, *models.AuthResponse) {
	s.t.Helper()

	w := s.do(http.MethodPost, "/api/users", models.RegisterRequest{
		Username: "user", Email: email, Password: "password1",
	}, "")
	if w.Code != http.StatusCreated {
		s.t.Fatalf("register %s: status %d, body %s", email, w.Code, w.Body.String())
	}

	var resp models.AuthResponse
	decode(s.t, w, &resp)

	if admin {
		ctx := context.Background()
		u, err := s.store.Users().GetByID(ctx, resp.ID)
		if err != nil {
			s.t.Fatalf("load user: %v", err)
		}
		u.IsAdmin = true
		if err := s.store.Users().Update(ctx, u); err != nil {
			s.t.Fatalf("promote user: %v", err)
		}
	}
	return resp.Token, &resp
}

func (s *testServer) addProduct(p models.Product) {
	s.t.Helper()
	if err := s.store.Products().Create(context.Background(), &p); err != nil {
		s.t.Fatalf("seed product: %v", err)
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v (body %q)", err, w.Body.String())
	}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decode(t, w, &body)
	return body["error"]
}
