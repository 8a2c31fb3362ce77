package repositories

import (
	"context"
	"regexp"
	"time"

	"virtualvault/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type photoDocument struct {
	Data        []byte `bson:"data,omitempty"`
	ContentType string `bson:"contentType,omitempty"`
}

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Category    primitive.ObjectID `bson:"category"`
	Quantity    int                `bson:"quantity"`
	Photo       *photoDocument     `bson:"photo,omitempty"`
	Shipping    bool               `bson:"shipping"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func newProductDocument(p *models.Product, oid primitive.ObjectID) (*productDocument, error) {
	categoryID, err := objectID(p.CategoryID)
	if err != nil {
		return nil, err
	}
	doc := &productDocument{
		ID:          oid,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Category:    categoryID,
		Quantity:    p.Quantity,
		Shipping:    p.Shipping,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if !p.Photo.IsEmpty() {
		doc.Photo = &photoDocument{Data: p.Photo.Data, ContentType: p.Photo.ContentType}
	}
	return doc, nil
}

func (d *productDocument) model() models.Product {
	p := models.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		Price:       d.Price,
		CategoryID:  d.Category.Hex(),
		Quantity:    d.Quantity,
		Shipping:    d.Shipping,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.Photo != nil {
		p.Photo = models.Photo{Data: d.Photo.Data, ContentType: d.Photo.ContentType}
	}
	return p
}

// photoProjection is the projection used by every listing.
var photoProjection = bson.M{"photo.data": 0}

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection(productsCollection)}
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	now := time.Now()
	product.CreatedAt, product.UpdatedAt = now, now

	oid := primitive.NewObjectID()
	doc, err := newProductDocument(product, oid)
	if err != nil {
		return err
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return mongoError(err, "failed to insert product")
	}
	product.ID = oid.Hex()
	return nil
}

func (r *MongoProductRepository) Update(ctx context.Context, product *models.Product) error {
	oid, err := objectID(product.ID)
	if err != nil {
		return err
	}
	product.UpdatedAt = time.Now()
	doc, err := newProductDocument(product, oid)
	if err != nil {
		return err
	}
	set := bson.M{
		"name":        doc.Name,
		"slug":        doc.Slug,
		"description": doc.Description,
		"price":       doc.Price,
		"category":    doc.Category,
		"quantity":    doc.Quantity,
		"shipping":    doc.Shipping,
		"updatedAt":   doc.UpdatedAt,
	}
	if doc.Photo != nil {
		set["photo"] = doc.Photo
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return mongoError(err, "failed to update product %s", product.ID)
	}
	if result.MatchedCount == 0 {
		return mongoError(mongo.ErrNoDocuments, "product with ID %s not found for update", product.ID)
	}
	return nil
}

func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mongoError(err, "failed to delete product %s", id)
	}
	if result.DeletedCount == 0 {
		return mongoError(mongo.ErrNoDocuments, "product with ID %s not found for deletion", id)
	}
	return nil
}

func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc productDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoError(err, "product with ID %s", id)
	}
	product := doc.model()
	return &product, nil
}

func (r *MongoProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var doc productDocument
	opts := options.FindOne().SetProjection(photoProjection)
	if err := r.collection.FindOne(ctx, bson.M{"slug": slug}, opts).Decode(&doc); err != nil {
		return nil, mongoError(err, "product with slug %s", slug)
	}
	product := doc.model()
	return &product, nil
}

func (r *MongoProductRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []models.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find().SetProjection(photoProjection))
}

// Find retrieves the products matching query, newest first.
func (r *MongoProductRepository) Find(ctx context.Context, query ProductQuery) ([]models.Product, error) {
	filter := bson.M{}
	if len(query.CategoryIDs) > 0 {
		filter["category"] = bson.M{"$in": objectIDs(query.CategoryIDs)}
	}
	price := bson.M{}
	if query.MinPrice != nil {
		price["$gte"] = *query.MinPrice
	}
	if query.MaxPrice != nil {
		price["$lte"] = *query.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	if query.Keyword != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query.Keyword), Options: "i"}
		filter["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"description": pattern}}
	}
	if query.ExcludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(query.ExcludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}

	opts := options.Find().
		SetProjection(photoProjection).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if query.Offset > 0 {
		opts.SetSkip(int64(query.Offset))
	}
	if query.Limit > 0 {
		opts.SetLimit(int64(query.Limit))
	}
	return r.find(ctx, filter, opts)
}

func (r *MongoProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, mongoError(err, "failed to find products")
	}
	docs, err := decodeAll[productDocument](ctx, cursor)
	if err != nil {
		return nil, mongoError(err, "failed to decode products")
	}
	products := make([]models.Product, len(docs))
	for i := range docs {
		products[i] = docs[i].model()
	}
	return products, nil
}

func (r *MongoProductRepository) Count(ctx context.Context) (int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, mongoError(err, "failed to count products")
	}
	return total, nil
}
