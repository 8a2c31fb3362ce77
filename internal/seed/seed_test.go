package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"virtualvault/internal/cache"
	"virtualvault/internal/models"
	"virtualvault/internal/repositories"
	"virtualvault/internal/seed"
	"virtualvault/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const fixture = `
categories:
  - name: Electronics
  - name: Book
products:
  - name: Laptop
    description: A powerful laptop
    price: 1499.99
    category: Electronics
    quantity: 30
    shipping: true
    photo: laptop.png
  - name: Textbook
    description: A comprehensive textbook
    price: 79.99
    category: Book
    quantity: 50
users:
  - name: Admin
    email: admin@example.com
    password: admin123
    phone: "555-0100"
    address: 1 Admin Way
    answer: admin
    admin: true
  - name: Ada
    email: ada@example.com
    password: secret123
    phone: "555-0101"
    address:
      street: 2 Main St
      city: London
    answer: blue
`

func newSeeder(t *testing.T) (*seed.Seeder, *repositories.Store) {
	t.Helper()
	db, err := repositories.OpenGORM("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", zap.NewNop())
	require.NoError(t, err)
	store := repositories.NewGORMStore(db)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	logger := zap.NewNop()
	auth := services.NewAuthService(store.Users, services.AuthConfig{JWTSecret: "secret", BcryptCost: bcrypt.MinCost}, logger)
	categories := services.NewCategoryService(store.Categories, cache.Nop{}, time.Minute, logger)
	products := services.NewProductService(store.Products, store.Categories, cache.Nop{}, time.Minute, logger)
	return seed.NewSeeder(store, auth, categories, products, logger), store
}

func TestParse(t *testing.T) {
	f, err := seed.Parse([]byte(fixture))
	require.NoError(t, err)
	assert.Len(t, f.Categories, 2)
	require.Len(t, f.Products, 2)
	assert.Equal(t, 1499.99, f.Products[0].Price)
	assert.True(t, f.Users[0].Admin)
	assert.Equal(t, map[string]any{"street": "2 Main St", "city": "London"}, f.Users[1].Address)

	_, err = seed.Parse([]byte("categories:\n  - title: Nope\n"))
	assert.Error(t, err)
}

func TestSeeder_Apply(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "laptop.png"), []byte("\x89PNG\r\n\x1a\nfake"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.yaml"), []byte(fixture), 0o600))

	f, err := seed.LoadFile(filepath.Join(dir, "catalog.yaml"))
	require.NoError(t, err)

	seeder, store := newSeeder(t)
	res, err := seeder.Apply(ctx, f, dir)
	require.NoError(t, err)
	assert.Equal(t, seed.Result{Categories: 2, Products: 2, Users: 2}, res)

	laptop, err := store.Products.GetBySlug(ctx, "laptop")
	require.NoError(t, err)
	full, err := store.Products.GetByID(ctx, laptop.ID)
	require.NoError(t, err)
	assert.Equal(t, "image/png", full.Photo.ContentType)
	assert.True(t, full.Shipping)

	admin, err := store.Users.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.JSONEq(t, `"1 Admin Way"`, string(admin.Address))

	t.Run("reapply skips existing records", func(t *testing.T) {
		res, err := seeder.Apply(ctx, f, dir)
		require.NoError(t, err)
		assert.Equal(t, seed.Result{Skipped: 6}, res)
	})
}

func TestSeeder_UnknownCategory(t *testing.T) {
	seeder, _ := newSeeder(t)
	_, err := seeder.Apply(context.Background(), &seed.Fixture{
		Products: []seed.Product{{Name: "Orphan", Description: "x", Price: 1, Category: "Missing", Quantity: 1}},
	}, "")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
