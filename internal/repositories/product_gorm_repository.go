package repositories

import (
	"context"

	"virtualvault/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

// withoutPhoto starts a query that skips the photo bytes.
func (r *GORMProductRepository) withoutPhoto(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Omit("photo_data")
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return gormError(err, "failed to create product")
	}
	return nil
}

// Update updates an existing product in the database, zero values included.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID).
		Select("*").Omit("id", "created_at").Updates(product)
	if res.Error != nil {
		return gormError(res.Error, "failed to update product %s", product.ID)
	}
	if res.RowsAffected == 0 {
		return gormError(gorm.ErrRecordNotFound, "product with ID %s not found for update", product.ID)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return gormError(res.Error, "failed to delete product %s", id)
	}
	if res.RowsAffected == 0 {
		return gormError(gorm.ErrRecordNotFound, "product with ID %s not found for deletion", id)
	}
	return nil
}

// GetByID retrieves a single product, photo included.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, gormError(err, "product with ID %s", id)
	}
	return &product, nil
}

func (r *GORMProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.withoutPhoto(ctx).First(&product, "slug = ?", slug).Error; err != nil {
		return nil, gormError(err, "product with slug %s", slug)
	}
	return &product, nil
}

func (r *GORMProductRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.withoutPhoto(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, gormError(err, "failed to get products by IDs")
	}
	return products, nil
}

// Find retrieves the products matching query, newest first.
func (r *GORMProductRepository) Find(ctx context.Context, query ProductQuery) ([]models.Product, error) {
	tx := r.withoutPhoto(ctx)
	if len(query.CategoryIDs) > 0 {
		tx = tx.Where("category_id IN ?", query.CategoryIDs)
	}
	if query.MinPrice != nil {
		tx = tx.Where("price >= ?", *query.MinPrice)
	}
	if query.MaxPrice != nil {
		tx = tx.Where("price <= ?", *query.MaxPrice)
	}
	if query.Keyword != "" {
		pattern := containsPattern(query.Keyword)
		tx = tx.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if query.ExcludeID != "" {
		tx = tx.Where("id <> ?", query.ExcludeID)
	}
	if query.Offset > 0 {
		tx = tx.Offset(query.Offset)
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}

	var products []models.Product
	if err := tx.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, gormError(err, "failed to find products")
	}
	return products, nil
}

func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, gormError(err, "failed to count products")
	}
	return total, nil
}
