package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindInvalidRequest, http.StatusBadRequest},
		{KindProductNotFound, http.StatusBadRequest},
		{KindInsufficientStock, http.StatusConflict},
		{KindNotFound, http.StatusNotFound},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindConflict, http.StatusConflict},
		{KindPersistence, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Status())
		})
	}
}

func TestError_ClientMessage(t *testing.T) {
	stockErr := InsufficientStock("Keyboard", 2)
	assert.Equal(t, "Insufficient stock for Keyboard. Available: 2", stockErr.ClientMessage())

	persistErr := Persistence(errors.New("connection reset"), "failed to save order")
	assert.Equal(t, "Internal server error", persistErr.ClientMessage())
	assert.Contains(t, persistErr.Error(), "connection reset")
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("placing order: %w", ProductNotFound("p-1"))

	assert.Equal(t, KindProductNotFound, KindOf(err))
	assert.True(t, Is(err, KindProductNotFound))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}
