package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"virtualvault/internal/cache"
	"virtualvault/internal/models"
	"virtualvault/internal/repositories"
	"virtualvault/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisCache(t *testing.T) cache.Cache {
	t.Helper()
	server := miniredis.RunT(t)
	c, err := cache.NewRedis(context.Background(), "redis://"+server.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("missing name", func(t *testing.T) {
		service := services.NewCategoryService(new(MockCategoryRepository), cache.Nop{}, time.Minute, zap.NewNop())
		_, err := service.Create(ctx, "   ")
		var verr *services.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Name is required", verr.Message)
	})

	t.Run("existing name", func(t *testing.T) {
		mockRepo := new(MockCategoryRepository)
		service := services.NewCategoryService(mockRepo, cache.Nop{}, time.Minute, zap.NewNop())
		mockRepo.On("GetByName", ctx, "Books").Return(&models.Category{ID: "c1"}, nil).Once()

		_, err := service.Create(ctx, "Books")
		assert.ErrorIs(t, err, services.ErrCategoryExists)
	})

	t.Run("slug generated", func(t *testing.T) {
		mockRepo := new(MockCategoryRepository)
		service := services.NewCategoryService(mockRepo, cache.Nop{}, time.Minute, zap.NewNop())
		mockRepo.On("GetByName", ctx, "Home & Garden").Return(nil, repositories.ErrNotFound).Once()
		mockRepo.On("Create", ctx, mock.MatchedBy(func(c *models.Category) bool {
			return c.Slug == "home-and-garden"
		})).Return(nil).Once()

		category, err := service.Create(ctx, " Home & Garden ")
		require.NoError(t, err)
		assert.Equal(t, "Home & Garden", category.Name)
		mockRepo.AssertExpectations(t)
	})
}

func TestCategoryService_Update(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCategoryRepository)
	service := services.NewCategoryService(mockRepo, cache.Nop{}, time.Minute, zap.NewNop())

	mockRepo.On("GetByID", ctx, "missing").Return(nil, repositories.ErrNotFound).Once()
	_, err := service.Update(ctx, "missing", "Books")
	assert.ErrorIs(t, err, services.ErrCategoryNotFound)

	stored := &models.Category{ID: "c1", Name: "Books", Slug: "books"}
	mockRepo.On("GetByID", ctx, "c1").Return(stored, nil).Once()
	mockRepo.On("Update", ctx, stored).Return(repositories.ErrDuplicate).Once()
	_, err = service.Update(ctx, "c1", "Games")
	assert.ErrorIs(t, err, services.ErrCategoryExists)

	stored = &models.Category{ID: "c1", Name: "Books", Slug: "books"}
	mockRepo.On("GetByID", ctx, "c1").Return(stored, nil).Once()
	mockRepo.On("Update", ctx, stored).Return(nil).Once()
	updated, err := service.Update(ctx, "c1", "Old Books")
	require.NoError(t, err)
	assert.Equal(t, "old-books", updated.Slug)
	mockRepo.AssertExpectations(t)
}

func TestCategoryService_ListIsCached(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCategoryRepository)
	service := services.NewCategoryService(mockRepo, newRedisCache(t), time.Minute, zap.NewNop())

	categories := []models.Category{{ID: "c1", Name: "Books", Slug: "books"}}
	mockRepo.On("GetAll", ctx).Return(categories, nil).Once()

	for i := 0; i < 3; i++ {
		got, err := service.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, categories, got)
	}

	// Writes invalidate the cached list.
	mockRepo.On("Delete", ctx, "c1").Return(nil).Once()
	require.NoError(t, service.Delete(ctx, "c1"))
	mockRepo.On("GetAll", ctx).Return([]models.Category{}, nil).Once()
	got, err := service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	mockRepo.AssertExpectations(t)
}

func TestCategoryService_BySlugAndDelete(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockCategoryRepository)
	service := services.NewCategoryService(mockRepo, cache.Nop{}, time.Minute, zap.NewNop())

	mockRepo.On("GetBySlug", ctx, "nope").Return(nil, repositories.ErrNotFound).Once()
	category, err := service.BySlug(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, category)

	mockRepo.On("GetBySlug", ctx, "broken").Return(nil, errors.New("db down")).Once()
	_, err = service.BySlug(ctx, "broken")
	assert.Error(t, err)

	mockRepo.On("Delete", ctx, "missing").Return(repositories.ErrNotFound).Once()
	assert.ErrorIs(t, service.Delete(ctx, "missing"), services.ErrCategoryNotFound)
	mockRepo.AssertExpectations(t)
}
