package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/storefront/backend/internal/middleware"
	"github.com/storefront/backend/internal/models"
	"github.com/storefront/backend/internal/service"
)

// UserHandler handles accounts and sessions.
type UserHandler struct {
	service      *service.UserService
	cookieTTL    time.Duration
	cookieSecure bool
	logger       *slog.Logger
}

// NewUserHandler creates a user handler. Session cookies live for cookieTTL.
func NewUserHandler(service *service.UserService, cookieTTL time.Duration, cookieSecure bool, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service:      service,
		cookieTTL:    cookieTTL,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// Register handles POST /api/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	h.setSessionCookie(w, resp.Token)
	WriteJSON(w, http.StatusCreated, resp, h.logger)
}

// Login handles POST /api/users/auth
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	h.setSessionCookie(w, resp.Token)
	WriteJSON(w, http.StatusOK, resp, h.logger)
}

// Logout handles POST /api/users/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), middleware.TokenFromRequest(r)); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"}, h.logger)
}

// GetProfile handles GET /api/users/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.UserFromContext(r.Context())
	WriteJSON(w, http.StatusOK, caller, h.logger)
}

// UpdateProfile handles PUT /api/users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.UserFromContext(r.Context())

	var upd models.ProfileUpdate
	if !decodeJSON(w, r, &upd, h.logger) {
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), caller.ID, upd)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, user, h.logger)
}

// GetUser handles GET /api/users/{id} (admin)
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, user, h.logger)
}

// UpdateUser handles PUT /api/users/{id} (admin)
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var upd models.UserUpdate
	if !decodeJSON(w, r, &upd, h.logger) {
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, upd)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, user, h.logger)
}

// DeleteUser handles DELETE /api/users/{id} (admin)
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "User removed"}, h.logger)
}

func (h *UserHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
