package checkout

import (
	"context"

	"github.com/Quocthai23/lumiere-storefront/internal/domain"
)

// The orchestrator defines the collaborator contracts it consumes; the
// mongo and postgres implementations live in their own packages.

type AddressBook interface {
	List(ctx context.Context, customerID string) ([]domain.ShippingAddress, error)
}

type CustomerProfile interface {
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
}

type OrderSubmitter interface {
	Create(ctx context.Context, draft *domain.OrderDraft) (*domain.OrderReference, error)
}
