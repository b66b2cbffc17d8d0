package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/storefront/backend/internal/apperr"
	"github.com/storefront/backend/internal/models"
	"github.com/storefront/backend/internal/repository"
)

// ProductService handles business logic for products
type ProductService struct {
	repo repository.ProductRepository
	now  func() time.Time
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// ListProducts returns all available products
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to list products")
	}
	return products, nil
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, productLookupError(err)
	}
	return product, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	now := s.now()
	product := &models.Product{ID: generateID(), CreatedAt: now}
	applyProductInput(product, in, now)

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, apperr.Persistence(err, "failed to create product")
	}
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, productLookupError(err)
	}
	applyProductInput(product, in, s.now())

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, productLookupError(err)
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return productLookupError(err)
	}
	return nil
}

func validateProduct(in models.ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperr.InvalidRequest("Name is required")
	case in.Price < 0:
		return apperr.InvalidRequest("Price must not be negative")
	case in.CountInStock < 0:
		return apperr.InvalidRequest("Count in stock must not be negative")
	}
	return nil
}

func applyProductInput(p *models.Product, in models.ProductInput, now time.Time) {
	p.Name = strings.TrimSpace(in.Name)
	p.Image = in.Image
	p.Brand = in.Brand
	p.Category = in.Category
	p.Description = in.Description
	p.Price = in.Price
	p.CountInStock = in.CountInStock
	p.UpdatedAt = now
}

func productLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Product not found")
	}
	return apperr.Persistence(err, "failed to load product")
}
