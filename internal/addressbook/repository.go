package addressbook

import (
	"context"
	"errors"

	"github.com/Quocthai23/lumiere-storefront/internal/domain"
)

// Repository is the address book contract. Checkout only reads candidate
// addresses; Create exists for the account surface that saves a manually
// entered address.
type Repository interface {
	List(ctx context.Context, customerID string) ([]domain.ShippingAddress, error)
	Create(ctx context.Context, customerID string, address domain.ShippingAddress) (*domain.ShippingAddress, error)
}

var ErrAddressNotFound = errors.New("address not found")
