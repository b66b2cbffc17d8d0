package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/middleware"
	"github.com/storefront/backend/internal/models"
)

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	return nil
}

func TestUserHandler_RegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/users", models.RegisterRequest{
		Username: "ada", Email: "ada@example.com", Password: "analytical",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status %d (%s)", w.Code, w.Body.String())
	}
	cookie := sessionCookie(w)
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("register did not set an HttpOnly session cookie: %+v", cookie)
	}
	if strings.Contains(w.Body.String(), "analytical") || strings.Contains(w.Body.String(), "password") {
		t.Errorf("response leaks the password: %s", w.Body.String())
	}

	w = s.do(http.MethodPost, "/api/users", models.RegisterRequest{
		Username: "ada2", Email: "ADA@example.com", Password: "x",
	}, "")
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register: status %d, want 409", w.Code)
	}

	w = s.do(http.MethodPost, "/api/users/auth", models.LoginRequest{Email: "ada@example.com", Password: "wrong"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login: status %d, want 401", w.Code)
	}

	w = s.do(http.MethodPost, "/api/users/auth", models.LoginRequest{Email: "ada@example.com", Password: "analytical"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d", w.Code)
	}
	var session models.AuthResponse
	decode(t, w, &session)
	if session.Token == "" || session.Username != "ada" {
		t.Errorf("unexpected login response: %+v", session)
	}
}

func TestUserHandler_CookieSessionAndLogout(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signUp("grace@example.com", false)

	profile := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	profile.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, profile)
	if w.Code != http.StatusOK {
		t.Fatalf("profile via cookie: status %d", w.Code)
	}

	w = s.do(http.MethodPost, "/api/users/logout", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: status %d", w.Code)
	}
	if c := sessionCookie(w); c == nil || c.MaxAge >= 0 {
		t.Errorf("logout did not clear the cookie: %+v", c)
	}

	if w := s.do(http.MethodGet, "/api/users/profile", nil, token); w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token: status %d, want 401", w.Code)
	}
}

func TestUserHandler_Profile(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.signUp("linus@example.com", false)

	w := s.do(http.MethodPut, "/api/users/profile", models.ProfileUpdate{Username: "torvalds"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update profile: status %d", w.Code)
	}

	var user models.User
	decode(t, s.do(http.MethodGet, "/api/users/profile", nil, token), &user)
	if user.Username != "torvalds" || user.Email != "linus@example.com" {
		t.Errorf("unexpected profile: %+v", user)
	}
}

func TestUserHandler_AdminRoutes(t *testing.T) {
	s := newTestServer(t)
	shopper, shopperAcct := s.signUp("shopper@example.com", false)
	admin, adminAcct := s.signUp("admin@example.com", true)

	tests := []struct {
		name           string
		method         string
		path           string
		body           any
		token          string
		expectedStatus int
	}{
		{"shopper cannot read users", http.MethodGet, "/api/users/" + adminAcct.ID, nil, shopper, http.StatusForbidden},
		{"anonymous cannot read users", http.MethodGet, "/api/users/" + adminAcct.ID, nil, "", http.StatusUnauthorized},
		{"admin reads user", http.MethodGet, "/api/users/" + shopperAcct.ID, nil, admin, http.StatusOK},
		{"invalid id", http.MethodGet, "/api/users/42", nil, admin, http.StatusBadRequest},
		{"unknown user", http.MethodGet, "/api/users/" + uuid.NewString(), nil, admin, http.StatusNotFound},
		{"admin renames user", http.MethodPut, "/api/users/" + shopperAcct.ID, models.UserUpdate{Username: "renamed"}, admin, http.StatusOK},
		{"admin cannot be deleted", http.MethodDelete, "/api/users/" + adminAcct.ID, nil, admin, http.StatusBadRequest},
		{"admin deletes shopper", http.MethodDelete, "/api/users/" + shopperAcct.ID, nil, admin, http.StatusOK},
		{"deleted user is gone", http.MethodGet, "/api/users/" + shopperAcct.ID, nil, admin, http.StatusNotFound},
	}

	// cases run in order against one server
	for _, tt := range tests {
		w := s.do(tt.method, tt.path, tt.body, tt.token)
		if w.Code != tt.expectedStatus {
			t.Errorf("%s: status = %d, want %d (%s)", tt.name, w.Code, tt.expectedStatus, w.Body.String())
		}
	}
}
