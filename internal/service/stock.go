package service

import (
	"context"

	"github.com/storefront/backend/internal/apperr"
	"github.com/storefront/backend/internal/models"
)

// validateStock loads the referenced products in one batch and checks each
// item against them. The returned items carry the product's own name, image
// and price.
func (s *OrderService) validateStock(ctx context.Context, items []models.OrderItemRequest) ([]models.OrderItem, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Product)
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to load products")
	}

	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	enriched := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.Product]
		if !ok {
			return nil, apperr.ProductNotFound(item.Product)
		}
		if product.CountInStock < item.Qty {
			return nil, apperr.InsufficientStock(product.Name, product.CountInStock)
		}

		enriched = append(enriched, models.OrderItem{
			Product: product.ID,
			Name:    product.Name,
			Image:   product.Image,
			Price:   product.Price,
			Qty:     item.Qty,
		})
	}

	return enriched, nil
}
