package addressbook

import (
	"context"
	"fmt"
	"time"

	"github.com/Quocthai23/lumiere-storefront/internal/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type addressDoc struct {
	ID         string    `bson:"_id"`
	CustomerID string    `bson:"customer_id"`
	FullName   string    `bson:"full_name"`
	Phone      string    `bson:"phone"`
	Street     string    `bson:"street"`
	City       string    `bson:"city"`
	IsDefault  bool      `bson:"is_default"`
	CreatedAt  time.Time `bson:"created_at"`
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection("addresses"),
	}
}

func (m *mongoRepository) List(ctx context.Context, customerID string) ([]domain.ShippingAddress, error) {
	filter := bson.M{"customer_id": customerID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer cursor.Close(ctx)

	var addresses []domain.ShippingAddress
	for cursor.Next(ctx) {
		var doc addressDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode address: %w", err)
		}
		addresses = append(addresses, domain.ShippingAddress{
			ID:        doc.ID,
			FullName:  doc.FullName,
			Phone:     doc.Phone,
			Street:    doc.Street,
			City:      doc.City,
			IsDefault: doc.IsDefault,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return addresses, nil
}

func (m *mongoRepository) Create(ctx context.Context, customerID string, address domain.ShippingAddress) (*domain.ShippingAddress, error) {
	doc := addressDoc{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		FullName:   address.FullName,
		Phone:      address.Phone,
		Street:     address.Street,
		City:       address.City,
		IsDefault:  address.IsDefault,
		CreatedAt:  time.Now(),
	}

	// At most one default address per customer.
	if doc.IsDefault {
		filter := bson.M{"customer_id": customerID, "is_default": true}
		update := bson.M{"$set": bson.M{"is_default": false}}
		if _, err := m.collection.UpdateMany(ctx, filter, update); err != nil {
			return nil, fmt.Errorf("failed to unset previous default: %w", err)
		}
	}

	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	created := address
	created.ID = doc.ID
	return &created, nil
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "customer_id", Value: 1}},
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
