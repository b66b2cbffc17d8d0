package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/apperr"
	"github.com/storefront/backend/internal/models"
	"github.com/storefront/backend/internal/repository"
)

func TestProductService_CRUD(t *testing.T) {
	svc := NewProductService(repository.NewMemoryStore().Products())
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, models.ProductInput{
		Name: "  Headphones ", Brand: "Acme", Price: 89.99, CountInStock: 4,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Headphones", created.Name)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	updated, err := svc.UpdateProduct(ctx, created.ID, models.ProductInput{Name: "Headphones Pro", Price: 129, CountInStock: 2})
	require.NoError(t, err)
	assert.Equal(t, "Headphones Pro", updated.Name)
	assert.Equal(t, 2, updated.CountInStock)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	all, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.DeleteProduct(ctx, created.ID))
	_, err = svc.GetProduct(ctx, created.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.DeleteProduct(ctx, created.ID)))
}

func TestProductService_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   models.ProductInput
	}{
		{"blank name", models.ProductInput{Name: "   ", Price: 1}},
		{"negative price", models.ProductInput{Name: "Mug", Price: -1}},
		{"negative stock", models.ProductInput{Name: "Mug", Price: 1, CountInStock: -3}},
	}

	svc := NewProductService(repository.NewMemoryStore().Products())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tt.in)
			assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
		})
	}

	_, err := svc.UpdateProduct(context.Background(), "missing", models.ProductInput{Name: "Mug"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
