package repositories

import (
	"context"
	"time"

	"virtualvault/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Phone     string             `bson:"phone"`
	Address   bson.RawValue      `bson:"address,omitempty"` // string or sub-document
	Answer    string             `bson:"answer"`
	Role      int                `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func newUserDocument(user *models.User, oid primitive.ObjectID) (*userDocument, error) {
	address, err := addressToBSON(user.Address)
	if err != nil {
		return nil, err
	}
	return &userDocument{
		ID:        oid,
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.Password,
		Phone:     user.Phone,
		Address:   address,
		Answer:    user.Answer,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}, nil
}

func (d *userDocument) model() (*models.User, error) {
	address, err := addressFromBSON(d.Address)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Password:  d.Password,
		Phone:     d.Phone,
		Address:   address,
		Answer:    d.Answer,
		Role:      d.Role,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

// MongoUserRepository is a MongoDB implementation of UserRepository.
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection(usersCollection)}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	oid := primitive.NewObjectID()
	doc, err := newUserDocument(user, oid)
	if err != nil {
		return err
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return mongoError(err, "failed to insert user")
	}
	user.ID = oid.Hex()
	return nil
}

func (r *MongoUserRepository) Update(ctx context.Context, user *models.User) error {
	oid, err := objectID(user.ID)
	if err != nil {
		return err
	}
	address, err := addressToBSON(user.Address)
	if err != nil {
		return err
	}
	user.UpdatedAt = time.Now()
	set := bson.M{
		"name":      user.Name,
		"email":     user.Email,
		"password":  user.Password,
		"phone":     user.Phone,
		"answer":    user.Answer,
		"role":      user.Role,
		"updatedAt": user.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if address.IsZero() {
		update["$unset"] = bson.M{"address": ""}
	} else {
		set["address"] = address
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return mongoError(err, "failed to update user %s", user.ID)
	}
	if result.MatchedCount == 0 {
		return mongoError(mongo.ErrNoDocuments, "user with ID %s not found for update", user.ID)
	}
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, "user with ID %s", id)
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "user with email %s", email)
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M, format string, arg string) (*models.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mongoError(err, format, arg)
	}
	return doc.model()
}

func (r *MongoUserRepository) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, nil)
}

func (r *MongoUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *MongoUserRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, mongoError(err, "failed to find users")
	}
	docs, err := decodeAll[userDocument](ctx, cursor)
	if err != nil {
		return nil, mongoError(err, "failed to decode users")
	}
	users := make([]models.User, 0, len(docs))
	for i := range docs {
		user, err := docs[i].model()
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}
