package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"virtualvault/internal/cache"
	"virtualvault/internal/models"
	"virtualvault/internal/repositories"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// Listing sizes.
const (
	HomeListingSize = 12
	PageSize        = 6
	RelatedLimit    = 3
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, categories repositories.CategoryRepository, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		cache:      c,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// ProductInput is a create or update request as submitted by the admin form.
// Numeric fields arrive as strings and are parsed after the presence checks.
type ProductInput struct {
	Name        string
	Description string
	Price       string
	Category    string
	Quantity    string
	Shipping    string
	// Photo is nil when no file was uploaded.
	Photo *models.Photo
}

type parsedProduct struct {
	price    float64
	quantity int
	shipping bool
}

func (in ProductInput) validate() (*parsedProduct, error) {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return nil, invalid("Name is Required")
	case strings.TrimSpace(in.Description) == "":
		return nil, invalid("Description is Required")
	case strings.TrimSpace(in.Price) == "":
		return nil, invalid("Price is Required")
	case strings.TrimSpace(in.Category) == "":
		return nil, invalid("Category is Required")
	case strings.TrimSpace(in.Quantity) == "":
		return nil, invalid("Quantity is Required")
	case in.Photo != nil && len(in.Photo.Data) > models.MaxPhotoSize:
		return nil, invalid(PhotoTooLarge)
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(in.Price), 64)
	if err != nil || price < 0 {
		return nil, invalid("Price must be a non-negative number")
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(in.Quantity))
	if err != nil || quantity < 0 {
		return nil, invalid("Quantity must be a non-negative whole number")
	}
	return &parsedProduct{price: price, quantity: quantity, shipping: parseShipping(in.Shipping)}, nil
}

func parseShipping(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func (s *ProductService) requireCategory(ctx context.Context, id string) error {
	_, err := s.categories.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return invalid("Category not found")
	}
	if err != nil {
		return fmt.Errorf("failed to load category %s: %w", id, err)
	}
	return nil
}

// Create validates in and stores a new product.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	parsed, err := in.validate()
	if err != nil {
		return nil, err
	}
	categoryID := strings.TrimSpace(in.Category)
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Slug:        slug.Make(in.Name),
		Description: in.Description,
		Price:       parsed.price,
		CategoryID:  categoryID,
		Quantity:    parsed.quantity,
		Shipping:    parsed.shipping,
	}
	if in.Photo != nil {
		product.Photo = *in.Photo
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	cache.Invalidate(ctx, s.cache, s.logger, cache.KeyProductCount)
	return product, nil
}

// Update replaces the fields of a product. The stored photo is kept unless
// a new one is uploaded.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	parsed, err := in.validate()
	if err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", id, err)
	}
	categoryID := strings.TrimSpace(in.Category)
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(in.Name)
	product.Slug = slug.Make(in.Name)
	product.Description = in.Description
	product.Price = parsed.price
	product.CategoryID = categoryID
	product.Quantity = parsed.quantity
	product.Shipping = parsed.shipping
	if in.Photo != nil {
		product.Photo = *in.Photo
	}
	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// Home returns the newest products with their categories.
func (s *ProductService) Home(ctx context.Context) ([]models.Product, error) {
	return s.find(ctx, repositories.ProductQuery{Limit: HomeListingSize}, true)
}

// BySlug returns one product with its category, without the photo.
func (s *ProductService) BySlug(ctx context.Context, productSlug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(ctx, productSlug)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", productSlug, err)
	}
	products := []models.Product{*product}
	if err := s.populate(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// Photo returns the stored image of a product.
func (s *ProductService) Photo(ctx context.Context, id string) (*models.Photo, error) {
	product, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", id, err)
	}
	if product.Photo.IsEmpty() {
		return nil, ErrPhotoNotFound
	}
	return &product.Photo, nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	cache.Invalidate(ctx, s.cache, s.logger, cache.KeyProductCount)
	return nil
}

// Filter returns products in any of categoryIDs (all when empty) whose price
// lies within priceRange, when it holds a [min, max] pair.
func (s *ProductService) Filter(ctx context.Context, categoryIDs []string, priceRange []float64) ([]models.Product, error) {
	query := repositories.ProductQuery{CategoryIDs: categoryIDs}
	if len(priceRange) == 2 {
		query.MinPrice = &priceRange[0]
		query.MaxPrice = &priceRange[1]
	}
	return s.find(ctx, query, false)
}

// Count returns the number of products, served from the cache when possible.
func (s *ProductService) Count(ctx context.Context) (int64, error) {
	return cache.Fetch(ctx, s.cache, s.logger, cache.KeyProductCount, s.cacheTTL, func(ctx context.Context) (int64, error) {
		total, err := s.repo.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count products: %w", err)
		}
		return total, nil
	})
}

// Page returns one page of products, newest first. Pages start at 1.
func (s *ProductService) Page(ctx context.Context, page int) ([]models.Product, error) {
	if page < 1 {
		page = 1
	}
	return s.find(ctx, repositories.ProductQuery{Limit: PageSize, Offset: (page - 1) * PageSize}, false)
}

// Search matches keyword literally against product names and descriptions.
func (s *ProductService) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	return s.find(ctx, repositories.ProductQuery{Keyword: keyword}, false)
}

// Related returns a few other products of the same category.
func (s *ProductService) Related(ctx context.Context, productID, categoryID string) ([]models.Product, error) {
	return s.find(ctx, repositories.ProductQuery{
		CategoryIDs: []string{categoryID},
		ExcludeID:   productID,
		Limit:       RelatedLimit,
	}, true)
}

// ByCategory returns a category and its products.
func (s *ProductService) ByCategory(ctx context.Context, categorySlug string) (*models.Category, []models.Product, error) {
	category, err := s.categories.GetBySlug(ctx, categorySlug)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load category %s: %w", categorySlug, err)
	}
	products, err := s.find(ctx, repositories.ProductQuery{CategoryIDs: []string{category.ID}}, true)
	if err != nil {
		return nil, nil, err
	}
	return category, products, nil
}

func (s *ProductService) find(ctx context.Context, query repositories.ProductQuery, populate bool) ([]models.Product, error) {
	products, err := s.repo.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	if populate {
		if err := s.populate(ctx, products); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// populate attaches the category of every product in place.
func (s *ProductService) populate(ctx context.Context, products []models.Product) error {
	ids := make([]string, 0, len(products))
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if p.CategoryID != "" && !seen[p.CategoryID] {
			seen[p.CategoryID] = true
			ids = append(ids, p.CategoryID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	categories, err := s.categories.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load product categories: %w", err)
	}
	byID := make(map[string]*models.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = &categories[i]
	}
	for i := range products {
		products[i].Category = byID[products[i].CategoryID]
	}
	return nil
}
