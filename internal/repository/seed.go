package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/models"
)

// DefaultCatalog returns a small demo catalog.
func DefaultCatalog() []models.Product {
	items := []struct {
		name     string
		brand    string
		price    float64
		category string
		stock    int
	}{
		{"Wireless Mouse", "Logi", 24.99, "Accessories", 40},
		{"Mechanical Keyboard", "Keychron", 89.00, "Accessories", 15},
		{"27in Monitor", "Dell", 279.99, "Displays", 8},
		{"USB-C Hub", "Anker", 39.95, "Accessories", 25},
		{"Noise Cancelling Headphones", "Sony", 349.00, "Audio", 5},
		{"Portable Speaker", "JBL", 59.90, "Audio", 12},
	}

	now := time.Now().UTC()
	products := make([]models.Product, 0, len(items))
	for _, it := range items {
		products = append(products, models.Product{
			ID:           uuid.New().String(),
			Name:         it.name,
			Brand:        it.brand,
			Price:        it.price,
			Category:     it.category,
			CountInStock: it.stock,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return products
}

// SeedProducts inserts products when the catalog is empty. It reports how many
// were inserted.
func SeedProducts(ctx context.Context, repo ProductRepository, products []models.Product) (int, error) {
	existing, err := repo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			return i, fmt.Errorf("failed to seed product %s: %w", products[i].Name, err)
		}
	}
	return len(products), nil
}
