package voucher

import (
	"context"
	"errors"
	"strings"

	"github.com/Quocthai23/lumiere-storefront/internal/domain"
)

// Resolver validates a voucher code. The cart only depends on this
// interface, so the static table can be swapped for a remote validation
// service without touching any cart operation.
type Resolver interface {
	Resolve(ctx context.Context, code string) (*domain.AppliedVoucher, error)
}

var ErrUnknownCode = errors.New("unknown voucher code")

// StaticResolver matches codes against a fixed table, case-insensitively.
type StaticResolver struct {
	percentages map[string]int64
}

// NewStaticResolver copies the given code -> percentage table. Keys are
// canonicalized to upper case.
func NewStaticResolver(percentages map[string]int64) *StaticResolver {
	table := make(map[string]int64, len(percentages))
	for code, pct := range percentages {
		table[strings.ToUpper(code)] = pct
	}
	return &StaticResolver{percentages: table}
}

// DefaultResolver holds the storefront's one live campaign code.
func DefaultResolver() *StaticResolver {
	return NewStaticResolver(map[string]int64{
		"LUMIERE10": 10,
	})
}

func (s *StaticResolver) Resolve(_ context.Context, code string) (*domain.AppliedVoucher, error) {
	canonical := strings.ToUpper(strings.TrimSpace(code))
	pct, ok := s.percentages[canonical]
	if !ok {
		return nil, ErrUnknownCode
	}
	return &domain.AppliedVoucher{Code: canonical, DiscountPercentage: pct}, nil
}
