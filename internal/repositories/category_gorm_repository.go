package repositories

import (
	"context"

	"virtualvault/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return gormError(err, "failed to create category")
	}
	return nil
}

func (r *GORMCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", category.ID).
		Updates(map[string]any{"name": category.Name, "slug": category.Slug})
	if res.Error != nil {
		return gormError(res.Error, "failed to update category %s", category.ID)
	}
	if res.RowsAffected == 0 {
		return gormError(gorm.ErrRecordNotFound, "category with ID %s not found for update", category.ID)
	}
	return nil
}

func (r *GORMCategoryRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if res.Error != nil {
		return gormError(res.Error, "failed to delete category %s", id)
	}
	if res.RowsAffected == 0 {
		return gormError(gorm.ErrRecordNotFound, "category with ID %s not found for deletion", id)
	}
	return nil
}

func (r *GORMCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GORMCategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *GORMCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *GORMCategoryRepository) first(ctx context.Context, cond string, value string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, cond, value).Error; err != nil {
		return nil, gormError(err, "category where %s %q", cond, value)
	}
	return &category, nil
}

func (r *GORMCategoryRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Category, error) {
	var categories []models.Category
	if len(ids) == 0 {
		return categories, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, gormError(err, "failed to get categories by IDs")
	}
	return categories, nil
}

func (r *GORMCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, gormError(err, "failed to get all categories")
	}
	return categories, nil
}
