package repositories

import (
	"context"

	"virtualvault/internal/models"
)

// ProductQuery narrows a product listing. Zero values mean "no constraint".
type ProductQuery struct {
	CategoryIDs []string
	MinPrice    *float64
	MaxPrice    *float64
	// Keyword is matched case-insensitively and literally against the
	// name and the description.
	Keyword   string
	ExcludeID string
	Limit     int
	Offset    int
}

// ProductRepository defines the interface for product data access.
//
// Listings never load photo bytes; only GetByID does.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	// Find returns matching products, newest first.
	Find(ctx context.Context, query ProductQuery) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
}
