package service

import (
	"context"
	"errors"
	"strings"

	"github.com/storefront/backend/internal/apperr"
	"github.com/storefront/backend/internal/models"
	"github.com/storefront/backend/internal/repository"
)

const maxCategoryName = 32

type CategoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	name, err := categoryName(in)
	if err != nil {
		return nil, err
	}

	category := &models.Category{ID: generateID(), Name: name}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, categoryWriteError(err)
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (*models.Category, error) {
	name, err := categoryName(in)
	if err != nil {
		return nil, err
	}

	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, categoryWriteError(err)
	}
	category.Name = name

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, categoryWriteError(err)
	}
	return category, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, categoryWriteError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, categoryWriteError(err)
	}
	return category, nil
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to list categories")
	}
	return categories, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, categoryWriteError(err)
	}
	return category, nil
}

func categoryName(in models.CategoryInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", apperr.InvalidRequest("Name is required")
	}
	if len(name) > maxCategoryName {
		return "", apperr.InvalidRequest("Name must be at most %d characters", maxCategoryName)
	}
	return name, nil
}

func categoryWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("Category not found")
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict("Category already exists")
	default:
		return apperr.Persistence(err, "failed to save category")
	}
}
