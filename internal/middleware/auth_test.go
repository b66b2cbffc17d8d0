package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/storefront/backend/internal/apperr"
	"github.com/storefront/backend/internal/models"
)

type stubAuthenticator map[string]*models.User

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "broken" {
		return nil, apperr.Persistence(context.DeadlineExceeded, "failed to check token")
	}
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, apperr.Unauthorized("Not authorized, token failed")
}

func TestAuthenticate(t *testing.T) {
	users := stubAuthenticator{
		"shopper-token": {ID: "u1"},
		"admin-token":   {ID: "u2", IsAdmin: true},
	}

	// Create a test handler that echoes the caller
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			t.Fatal("user missing from context")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(user.ID))
	})

	authHandler := Authenticate(users)(testHandler)

	tests := []struct {
		name           string
		header         string
		cookie         string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "bearer token",
			header:         "Bearer shopper-token",
			expectedStatus: http.StatusOK,
			expectedBody:   "u1",
		},
		{
			name:           "cookie token",
			cookie:         "admin-token",
			expectedStatus: http.StatusOK,
			expectedBody:   "u2",
		},
		{
			name:           "header wins over cookie",
			header:         "Bearer shopper-token",
			cookie:         "admin-token",
			expectedStatus: http.StatusOK,
			expectedBody:   "u1",
		},
		{
			name:           "no token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "non-bearer scheme",
			header:         "Basic c2hvcHBlcg==",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unknown token",
			header:         "Bearer forged",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "revocation store down",
			header:         "Bearer broken",
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/orders/mine", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}

			w := httptest.NewRecorder()
			authHandler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			if tt.expectedBody != "" && w.Body.String() != tt.expectedBody {
				t.Errorf("body = %s, want %s", w.Body.String(), tt.expectedBody)
			}
		})
	}
}

func TestAuthorizeAdmin(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := AuthorizeAdmin(testHandler)

	tests := []struct {
		name           string
		user           *models.User
		expectedStatus int
	}{
		{"admin", &models.User{ID: "a", IsAdmin: true}, http.StatusNoContent},
		{"shopper", &models.User{ID: "s"}, http.StatusForbidden},
		{"anonymous", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tt.user != nil {
				req = req.WithContext(WithUser(req.Context(), tt.user))
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}
