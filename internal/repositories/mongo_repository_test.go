package repositories_test

import (
	"context"
	"testing"
	"time"

	"virtualvault/internal/models"
	"virtualvault/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// sentFilter returns the filter of the last command sent to the mock server.
func sentFilter(mt *mtest.T) bson.Raw {
	started := mt.GetStartedEvent()
	require.NotNil(mt, started)
	return started.Command.Lookup("filter").Document()
}

func TestMongoUserRepository(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		repo := repositories.NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &models.User{Name: "Ada", Email: "ada@example.com", Password: "hash", Address: models.Address(`"Kent Ridge"`)}
		require.NoError(mt, repo.Create(ctx, user))
		_, err := primitive.ObjectIDFromHex(user.ID)
		assert.NoError(mt, err)
		assert.False(mt, user.CreatedAt.IsZero())
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := repositories.NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		err := repo.Create(ctx, &models.User{Name: "Ada", Email: "ada@example.com"})
		assert.ErrorIs(mt, err, repositories.ErrDuplicate)
	})

	mt.Run("get by email decodes address", func(mt *mtest.T) {
		repo := repositories.NewMongoUserRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "Ada"},
			{Key: "email", Value: "ada@example.com"},
			{Key: "address", Value: bson.D{{Key: "city", Value: "Singapore"}}},
			{Key: "role", Value: 1},
		}))

		user, err := repo.GetByEmail(ctx, "ada@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), user.ID)
		assert.JSONEq(mt, `{"city":"Singapore"}`, string(user.Address))
		assert.True(mt, user.IsAdmin())
		assert.Equal(mt, "ada@example.com", sentFilter(mt).Lookup("email").StringValue())
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := repositories.NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		_, err := repo.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(mt, err, repositories.ErrNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := repositories.NewMongoUserRepository(mt.DB)
		_, err := repo.GetByID(ctx, "not-an-object-id")
		assert.ErrorIs(mt, err, repositories.ErrNotFound)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("update without match", func(mt *mtest.T) {
		repo := repositories.NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.Update(ctx, &models.User{ID: primitive.NewObjectID().Hex(), Name: "Ada"})
		assert.ErrorIs(mt, err, repositories.ErrNotFound)
	})
}

func TestMongoCategoryRepository(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("get all", func(mt *mtest.T) {
		repo := repositories.NewMongoCategoryRepository(mt.DB)
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.categories", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: first}, {Key: "name", Value: "Apparel"}, {Key: "slug", Value: "apparel"}},
			bson.D{{Key: "_id", Value: second}, {Key: "name", Value: "Books"}, {Key: "slug", Value: "books"}},
		))

		categories, err := repo.GetAll(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, []models.Category{
			{ID: first.Hex(), Name: "Apparel", Slug: "apparel"},
			{ID: second.Hex(), Name: "Books", Slug: "books"},
		}, categories)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := repositories.NewMongoCategoryRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.Delete(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, repositories.ErrNotFound)
	})

	mt.Run("get by ids skips malformed ids", func(mt *mtest.T) {
		repo := repositories.NewMongoCategoryRepository(mt.DB)
		categories, err := repo.GetByIDs(ctx, []string{"bad", ""})
		require.NoError(mt, err)
		assert.Empty(mt, categories)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestMongoProductRepository(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("find builds filter", func(mt *mtest.T) {
		repo := repositories.NewMongoProductRepository(mt.DB)
		category := primitive.NewObjectID()
		product := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.products", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: product},
			{Key: "name", Value: "Go Book"},
			{Key: "slug", Value: "go-book"},
			{Key: "price", Value: 30.0},
			{Key: "category", Value: category},
			{Key: "createdAt", Value: time.Now()},
		}))

		lo := 10.0
		products, err := repo.Find(ctx, repositories.ProductQuery{
			CategoryIDs: []string{category.Hex()},
			MinPrice:    &lo,
			Keyword:     "c++",
			Limit:       6,
			Offset:      6,
		})
		require.NoError(mt, err)
		require.Len(mt, products, 1)
		assert.Equal(mt, category.Hex(), products[0].CategoryID)
		assert.Equal(mt, 30.0, products[0].Price)

		command := mt.GetStartedEvent().Command
		filter := command.Lookup("filter").Document()
		assert.Equal(mt, 10.0, filter.Lookup("price", "$gte").Double())
		pattern, options := filter.Lookup("$or").Array().Index(0).Value().Document().Lookup("name").Regex()
		assert.Equal(mt, `c\+\+`, pattern)
		assert.Equal(mt, "i", options)
		assert.EqualValues(mt, 6, command.Lookup("skip").AsInt64())
		assert.EqualValues(mt, 6, command.Lookup("limit").AsInt64())
		assert.EqualValues(mt, 0, command.Lookup("projection", "photo.data").AsInt64())
	})

	mt.Run("get by id loads photo", func(mt *mtest.T) {
		repo := repositories.NewMongoProductRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.products", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "category", Value: primitive.NewObjectID()},
			{Key: "photo", Value: bson.D{
				{Key: "data", Value: primitive.Binary{Data: []byte("png")}},
				{Key: "contentType", Value: "image/png"},
			}},
		}))

		product, err := repo.GetByID(ctx, oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, []byte("png"), product.Photo.Data)
		assert.Equal(mt, "image/png", product.Photo.ContentType)
	})

	mt.Run("create rejects unknown category id", func(mt *mtest.T) {
		repo := repositories.NewMongoProductRepository(mt.DB)
		err := repo.Create(ctx, &models.Product{Name: "x", CategoryID: "nope"})
		assert.ErrorIs(mt, err, repositories.ErrNotFound)
	})

	mt.Run("count", func(mt *mtest.T) {
		repo := repositories.NewMongoProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.products", mtest.FirstBatch, bson.D{{Key: "n", Value: 3}}))

		total, err := repo.Count(ctx)
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, total)
	})
}

func TestMongoOrderRepository(t *testing.T) {
	mt := newMockMongo(t)
	ctx := context.Background()

	mt.Run("create defaults status", func(mt *mtest.T) {
		repo := repositories.NewMongoOrderRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		order := &models.Order{
			ProductIDs: []string{primitive.NewObjectID().Hex()},
			BuyerID:    primitive.NewObjectID().Hex(),
			Payment:    models.Payment{TransactionID: "tx1", Success: true},
		}
		require.NoError(mt, repo.Create(ctx, order))
		assert.Equal(mt, models.StatusNotProcess, order.Status)
		assert.NotEmpty(mt, order.ID)
	})

	mt.Run("update status returns new document", func(mt *mtest.T) {
		repo := repositories.NewMongoOrderRepository(mt.DB)
		oid, buyer, product := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: oid},
			{Key: "products", Value: bson.A{product, product}},
			{Key: "payment", Value: bson.D{{Key: "transactionId", Value: "tx1"}, {Key: "success", Value: true}}},
			{Key: "buyer", Value: buyer},
			{Key: "status", Value: "Shipped"},
		}}))

		order, err := repo.UpdateStatus(ctx, oid.Hex(), models.StatusShipped)
		require.NoError(mt, err)
		assert.Equal(mt, models.StatusShipped, order.Status)
		assert.Equal(mt, []string{product.Hex(), product.Hex()}, order.ProductIDs)
		assert.Equal(mt, buyer.Hex(), order.BuyerID)
		assert.Equal(mt, "tx1", order.Payment.TransactionID)
	})

	mt.Run("orders of unknown buyer", func(mt *mtest.T) {
		repo := repositories.NewMongoOrderRepository(mt.DB)
		orders, err := repo.GetByBuyer(ctx, "not-an-id")
		require.NoError(mt, err)
		assert.Empty(mt, orders)
	})
}
