// Package seed loads a catalog fixture (categories, products and users) from
// YAML into the store through the services, so slugs, hashes and validation
// match what the API would produce.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"virtualvault/internal/models"
	"virtualvault/internal/repositories"
	"virtualvault/internal/services"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Fixture is the content of a seed file.
type Fixture struct {
	Categories []Category `yaml:"categories"`
	Products   []Product  `yaml:"products"`
	Users      []User     `yaml:"users"`
}

// Category is a seeded category.
type Category struct {
	Name string `yaml:"name"`
}

// Product is a seeded product. Category is the category name; Photo is a
// file path relative to the fixture.
type Product struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
	Category    string  `yaml:"category"`
	Quantity    int     `yaml:"quantity"`
	Shipping    bool    `yaml:"shipping"`
	Photo       string  `yaml:"photo,omitempty"`
}

// User is a seeded account. Address may be a string or a mapping.
type User struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Phone    string `yaml:"phone"`
	Address  any    `yaml:"address"`
	Answer   string `yaml:"answer"`
	Admin    bool   `yaml:"admin"`
}

// Parse decodes a fixture, rejecting unknown keys.
func Parse(data []byte) (*Fixture, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	return &f, nil
}

// LoadFile reads and parses a fixture from disk.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Result counts what a seeding run created and skipped.
type Result struct {
	Categories int
	Products   int
	Users      int
	Skipped    int
}

// Seeder applies fixtures. Records that already exist are skipped, so a
// fixture can be applied repeatedly.
type Seeder struct {
	auth       *services.AuthService
	categories *services.CategoryService
	products   *services.ProductService
	store      *repositories.Store
	logger     *zap.Logger
}

// NewSeeder creates a Seeder writing to store.
func NewSeeder(store *repositories.Store, auth *services.AuthService, categories *services.CategoryService, products *services.ProductService, logger *zap.Logger) *Seeder {
	return &Seeder{auth: auth, categories: categories, products: products, store: store, logger: logger}
}

// Apply seeds f. baseDir resolves relative photo paths.
func (s *Seeder) Apply(ctx context.Context, f *Fixture, baseDir string) (Result, error) {
	var res Result

	for _, c := range f.Categories {
		_, err := s.categories.Create(ctx, c.Name)
		switch {
		case errors.Is(err, services.ErrCategoryExists):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("category %q: %w", c.Name, err)
		default:
			res.Categories++
		}
	}

	categoryIDs := make(map[string]string)
	for _, p := range f.Products {
		id, ok := categoryIDs[p.Category]
		if !ok {
			category, err := s.store.Categories.GetByName(ctx, p.Category)
			if err != nil {
				return res, fmt.Errorf("product %q: category %q: %w", p.Name, p.Category, err)
			}
			id = category.ID
			categoryIDs[p.Category] = id
		}

		created, err := s.seedProduct(ctx, p, id, baseDir)
		if err != nil {
			return res, fmt.Errorf("product %q: %w", p.Name, err)
		}
		if created {
			res.Products++
		} else {
			res.Skipped++
		}
	}

	for _, u := range f.Users {
		created, err := s.seedUser(ctx, u)
		if err != nil {
			return res, fmt.Errorf("user %q: %w", u.Email, err)
		}
		if created {
			res.Users++
		} else {
			res.Skipped++
		}
	}

	s.logger.Info("seed applied",
		zap.Int("categories", res.Categories),
		zap.Int("products", res.Products),
		zap.Int("users", res.Users),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

func (s *Seeder) seedProduct(ctx context.Context, p Product, categoryID, baseDir string) (bool, error) {
	if _, err := s.products.BySlug(ctx, slug.Make(p.Name)); err == nil {
		return false, nil
	} else if !errors.Is(err, services.ErrProductNotFound) {
		return false, err
	}

	in := services.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		Category:    categoryID,
		Quantity:    strconv.Itoa(p.Quantity),
		Shipping:    strconv.FormatBool(p.Shipping),
	}
	if p.Photo != "" {
		photo, err := readPhoto(filepath.Join(baseDir, p.Photo))
		if err != nil {
			return false, err
		}
		in.Photo = photo
	}

	if _, err := s.products.Create(ctx, in); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Seeder) seedUser(ctx context.Context, u User) (bool, error) {
	address, err := models.NewAddress(u.Address)
	if err != nil {
		return false, err
	}
	in := services.RegisterInput{
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
		Phone:    u.Phone,
		Address:  address,
		Answer:   u.Answer,
	}
	if u.Admin {
		in.Role = models.RoleAdmin
	}
	_, err = s.auth.Register(ctx, in)
	if errors.Is(err, services.ErrEmailTaken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func readPhoto(path string) (*models.Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &models.Photo{Data: data, ContentType: contentType}, nil
}
