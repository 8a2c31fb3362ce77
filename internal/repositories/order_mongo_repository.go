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

type paymentDocument struct {
	TransactionID string `bson:"transactionId"`
	Status        string `bson:"status"`
	Amount        string `bson:"amount"`
	Success       bool   `bson:"success"`
}

type orderDocument struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Products  []primitive.ObjectID `bson:"products"`
	Payment   paymentDocument      `bson:"payment"`
	Buyer     primitive.ObjectID   `bson:"buyer"`
	Status    string               `bson:"status"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

func (d *orderDocument) model() models.Order {
	return models.Order{
		ID:         d.ID.Hex(),
		ProductIDs: hexIDs(d.Products),
		Payment: models.Payment{
			TransactionID: d.Payment.TransactionID,
			Status:        d.Payment.Status,
			Amount:        d.Payment.Amount,
			Success:       d.Payment.Success,
		},
		BuyerID:   d.Buyer.Hex(),
		Status:    models.OrderStatus(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

// MongoOrderRepository is a MongoDB implementation of OrderRepository.
type MongoOrderRepository struct {
	collection *mongo.Collection
}

// NewMongoOrderRepository creates a new instance of MongoOrderRepository.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{collection: db.Collection(ordersCollection)}
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	buyer, err := objectID(order.BuyerID)
	if err != nil {
		return err
	}
	if order.Status == "" {
		order.Status = models.StatusNotProcess
	}
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now

	oid := primitive.NewObjectID()
	doc := orderDocument{
		ID:       oid,
		Products: objectIDs(order.ProductIDs),
		Payment: paymentDocument{
			TransactionID: order.Payment.TransactionID,
			Status:        order.Payment.Status,
			Amount:        order.Payment.Amount,
			Success:       order.Payment.Success,
		},
		Buyer:     buyer,
		Status:    string(order.Status),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return mongoError(err, "failed to insert order")
	}
	order.ID = oid.Hex()
	return nil
}

func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc orderDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoError(err, "order with ID %s", id)
	}
	order := doc.model()
	return &order, nil
}

func (r *MongoOrderRepository) GetByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	buyer, err := objectID(buyerID)
	if err != nil {
		return []models.Order{}, nil
	}
	return r.find(ctx, bson.M{"buyer": buyer})
}

func (r *MongoOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, mongoError(err, "failed to find orders")
	}
	docs, err := decodeAll[orderDocument](ctx, cursor)
	if err != nil {
		return nil, mongoError(err, "failed to decode orders")
	}
	orders := make([]models.Order, len(docs))
	for i := range docs {
		orders[i] = docs[i].model()
	}
	return orders, nil
}

func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{"status": string(status), "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc orderDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, mongoError(err, "failed to update status of order %s", id)
	}
	order := doc.model()
	return &order, nil
}
