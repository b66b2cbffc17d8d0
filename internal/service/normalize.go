package service

import (
	"strings"

	"github.com/storefront/backend/internal/apperr"
	"github.com/storefront/backend/internal/models"
)

// MaxItemQuantity bounds the quantity of one product in an order, after
// duplicate lines are merged.
const MaxItemQuantity = 10000

// NormalizeItems merges line items that reference the same product, summing
// their quantities. The first occurrence of a product supplies the other
// fields and fixes its position in the result.
func NormalizeItems(items []models.OrderItemRequest) ([]models.OrderItemRequest, error) {
	if len(items) == 0 {
		return nil, apperr.InvalidRequest("No order items provided.")
	}

	index := make(map[string]int, len(items))
	normalized := make([]models.OrderItemRequest, 0, len(items))

	for _, item := range items {
		item.Product = strings.TrimSpace(item.Product)
		if item.Product == "" {
			return nil, apperr.InvalidRequest("Order item is missing a product")
		}
		if item.Qty <= 0 {
			return nil, apperr.InvalidRequest("Quantity must be positive for product %s", item.Product)
		}
		if item.Qty > MaxItemQuantity {
			return nil, apperr.InvalidRequest("Quantity for product %s exceeds %d", item.Product, MaxItemQuantity)
		}

		if i, seen := index[item.Product]; seen {
			// both operands are at most MaxItemQuantity, so the sum cannot wrap
			if normalized[i].Qty+item.Qty > MaxItemQuantity {
				return nil, apperr.InvalidRequest("Quantity for product %s exceeds %d", item.Product, MaxItemQuantity)
			}
			normalized[i].Qty += item.Qty
			continue
		}
		index[item.Product] = len(normalized)
		normalized = append(normalized, item)
	}

	return normalized, nil
}
