package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/Quocthai23/lumiere-storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repository exposes the slice of the customer profile checkout needs:
// identity plus the loyalty point balance.
type Repository interface {
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
}

var ErrCustomerNotFound = errors.New("customer not found")

type customerDoc struct {
	ID            string `bson:"_id"`
	FullName      string `bson:"full_name"`
	LoyaltyPoints int64  `bson:"loyalty_points"`
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection("customers"),
	}
}

func (m *mongoRepository) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	var doc customerDoc

	filter := bson.M{"_id": customerID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return &domain.Customer{
		ID:            doc.ID,
		FullName:      doc.FullName,
		LoyaltyPoints: doc.LoyaltyPoints,
	}, nil
}
