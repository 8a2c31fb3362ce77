package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"virtualvault/internal/cache"
	"virtualvault/internal/models"
	"virtualvault/internal/repositories"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// CategoryService handles business logic related to categories.
type CategoryService struct {
	repo     repositories.CategoryRepository
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *CategoryService {
	return &CategoryService{repo: repo, cache: c, cacheTTL: cacheTTL, logger: logger}
}

// Create adds a category named name.
func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("Name is required")
	}
	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return nil, ErrCategoryExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}

	category := &models.Category{Name: name, Slug: slug.Make(name)}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	cache.Invalidate(ctx, s.cache, s.logger, cache.KeyCategories)
	return category, nil
}

// Update renames a category and regenerates its slug.
func (s *CategoryService) Update(ctx context.Context, id, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("Name is required")
	}
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	category.Slug = slug.Make(name)
	if err := s.repo.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, ErrCategoryExists
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	cache.Invalidate(ctx, s.cache, s.logger, cache.KeyCategories)
	return category, nil
}

// Get loads a category by id.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load category %s: %w", id, err)
	}
	return category, nil
}

// List returns every category, served from the cache when possible.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return cache.Fetch(ctx, s.cache, s.logger, cache.KeyCategories, s.cacheTTL, func(ctx context.Context) ([]models.Category, error) {
		categories, err := s.repo.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list categories: %w", err)
		}
		if categories == nil {
			categories = []models.Category{}
		}
		return categories, nil
	})
}

// BySlug returns the category with the slug, or nil when there is none.
func (s *CategoryService) BySlug(ctx context.Context, categorySlug string) (*models.Category, error) {
	category, err := s.repo.GetBySlug(ctx, categorySlug)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load category %s: %w", categorySlug, err)
	}
	return category, nil
}

// Delete removes a category. Its products are left untouched.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	cache.Invalidate(ctx, s.cache, s.logger, cache.KeyCategories)
	return nil
}
