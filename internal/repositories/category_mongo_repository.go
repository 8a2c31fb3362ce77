package repositories

import (
	"context"

	"virtualvault/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type categoryDocument struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"name"`
	Slug string             `bson:"slug"`
}

func (d categoryDocument) model() models.Category {
	return models.Category{ID: d.ID.Hex(), Name: d.Name, Slug: d.Slug}
}

// MongoCategoryRepository is a MongoDB implementation of CategoryRepository.
type MongoCategoryRepository struct {
	collection *mongo.Collection
}

// NewMongoCategoryRepository creates a new instance of MongoCategoryRepository.
func NewMongoCategoryRepository(db *mongo.Database) *MongoCategoryRepository {
	return &MongoCategoryRepository{collection: db.Collection(categoriesCollection)}
}

func (r *MongoCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	oid := primitive.NewObjectID()
	doc := categoryDocument{ID: oid, Name: category.Name, Slug: category.Slug}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return mongoError(err, "failed to insert category")
	}
	category.ID = oid.Hex()
	return nil
}

func (r *MongoCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	oid, err := objectID(category.ID)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"name": category.Name, "slug": category.Slug}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return mongoError(err, "failed to update category %s", category.ID)
	}
	if result.MatchedCount == 0 {
		return mongoError(mongo.ErrNoDocuments, "category with ID %s not found for update", category.ID)
	}
	return nil
}

func (r *MongoCategoryRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mongoError(err, "failed to delete category %s", id)
	}
	if result.DeletedCount == 0 {
		return mongoError(mongo.ErrNoDocuments, "category with ID %s not found for deletion", id)
	}
	return nil
}

func (r *MongoCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, "category with ID %s", id)
}

func (r *MongoCategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.findOne(ctx, bson.M{"slug": slug}, "category with slug %s", slug)
}

func (r *MongoCategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return r.findOne(ctx, bson.M{"name": name}, "category with name %s", name)
}

func (r *MongoCategoryRepository) findOne(ctx context.Context, filter bson.M, format, arg string) (*models.Category, error) {
	var doc categoryDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mongoError(err, format, arg)
	}
	category := doc.model()
	return &category, nil
}

func (r *MongoCategoryRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Category, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []models.Category{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *MongoCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoCategoryRepository) find(ctx context.Context, filter bson.M) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, mongoError(err, "failed to find categories")
	}
	docs, err := decodeAll[categoryDocument](ctx, cursor)
	if err != nil {
		return nil, mongoError(err, "failed to decode categories")
	}
	categories := make([]models.Category, len(docs))
	for i, doc := range docs {
		categories[i] = doc.model()
	}
	return categories, nil
}
