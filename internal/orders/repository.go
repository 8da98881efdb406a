package orders

import (
	"context"
	"errors"
	"time"

	"github.com/Quocthai23/lumiere-storefront/internal/domain"
	"github.com/google/uuid"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// Order is the persisted record created from an OrderDraft.
type Order struct {
	ID                uuid.UUID
	CustomerID        *string
	Status            domain.OrderStatus
	PaymentStatus     domain.PaymentStatus
	FulfillmentStatus domain.FulfillmentStatus
	PaymentMethod     domain.PaymentMethod
	Total             int64
	PointsRedeemed    int64
	ShippingSummary   string
	Lines             []domain.OrderLine
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OutboxEvent is an order event pending publication to the message broker.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
}

// Repository is the order submission collaborator plus the outbox feed the
// publisher drains.
type Repository interface {
	Create(ctx context.Context, draft *domain.OrderDraft) (*domain.OrderReference, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrdersByCustomerID(ctx context.Context, customerID string) ([]*Order, error)
	GetUnpublishedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventPublished(ctx context.Context, id int64) error
	RunMigrations(cred *Credentials) error
	Close() error
}

var ErrOrderNotFound = errors.New("order not found")
