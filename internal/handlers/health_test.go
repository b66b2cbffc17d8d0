package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/storefront/backend/pkg/logger"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		ping           error
		expectedStatus int
		expectedState  string
	}{
		{"database up", nil, http.StatusOK, "healthy"},
		{"database down", errors.New("no reachable servers"), http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(pingFunc(func(context.Context) error { return tt.ping }), "1.2.3", logger.NewWithWriter(io.Discard, "error"))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}

			var resp HealthResponse
			decode(t, w, &resp)
			if resp.Status != tt.expectedState || resp.Version != "1.2.3" {
				t.Errorf("unexpected response: %+v", resp)
			}
		})
	}
}
