package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Quocthai23/lumiere-storefront/internal/domain"
	"github.com/Quocthai23/lumiere-storefront/internal/kv"
	"github.com/Quocthai23/lumiere-storefront/internal/voucher"
)

var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// VoucherResult is the outcome of applying a code. Both outcomes are data,
// not errors: an invalid code is a normal answer the UI renders.
type VoucherResult struct {
	Applied bool                   `json:"applied"`
	Message string                 `json:"message"`
	Voucher *domain.AppliedVoucher `json:"voucher,omitempty"`
}

// Store is the single source of truth for one session's cart. Line items
// are persisted to the durable store on every mutation; the applied voucher
// is session-scoped and deliberately not persisted, so stale discount codes
// never survive a reload.
type Store struct {
	mu        sync.Mutex
	sessionID string
	store     kv.Store
	vouchers  voucher.Resolver
	items     []domain.CartLineItem
	applied   *domain.AppliedVoucher
}

func NewStore(sessionID string, store kv.Store, vouchers voucher.Resolver) *Store {
	return &Store{
		sessionID: sessionID,
		store:     store,
		vouchers:  vouchers,
	}
}

func snapshotKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// load restores the persisted line items. Absent or malformed snapshots
// yield an empty cart, never an error.
func (s *Store) load(ctx context.Context) {
	data, err := s.store.Get(ctx, snapshotKey(s.sessionID))
	if errors.Is(err, kv.ErrNotFound) {
		return
	}
	if err != nil {
		log.Printf("cart snapshot read error for session %s: %v", s.sessionID, err)
		return
	}

	var items []domain.CartLineItem
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("cart snapshot for session %s is malformed, starting empty: %v", s.sessionID, err)
		return
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// persist writes the current line items. Write failures are logged and the
// in-memory mutation stands; the next mutation rewrites the full snapshot.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.items)
	if err != nil {
		log.Printf("marshal cart snapshot failed for session %s: %v", s.sessionID, err)
		return
	}
	if err := s.store.Set(ctx, snapshotKey(s.sessionID), data); err != nil {
		log.Printf("cart snapshot write error for session %s: %v", s.sessionID, err)
	}
}

// AddItem appends a line item, or increments the quantity when the variant
// is already in the cart. Stock limits are the inventory system's concern,
// not enforced here.
func (s *Store) AddItem(ctx context.Context, product domain.Product, variant domain.ProductVariant, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	found := false
	for i := range s.items {
		if s.items[i].Variant.ID == variant.ID {
			s.items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, domain.CartLineItem{
			Product:  product,
			Variant:  variant,
			Quantity: quantity,
		})
	}
	s.mu.Unlock()

	s.persist(ctx)
	return nil
}

// RemoveItem deletes the line item for the variant. Removing an absent
// variant is a no-op.
func (s *Store) RemoveItem(ctx context.Context, variantID string) {
	s.mu.Lock()
	for i, item := range s.items {
		if item.Variant.ID == variantID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.persist(ctx)
}

// SetQuantity overwrites the quantity for the variant. A quantity of zero
// or below removes the line item; an absent variant is a no-op.
func (s *Store) SetQuantity(ctx context.Context, variantID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, variantID)
		return
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].Variant.ID == variantID {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.mu.Unlock()

	s.persist(ctx)
}

// Clear empties the cart and drops the applied voucher. Called after a
// successful order submission.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.applied = nil
	s.mu.Unlock()

	s.persist(ctx)
}

// ApplyVoucher matches the code against the resolver. A match replaces the
// active voucher; a miss clears it. Resolver transport errors are logged
// and reported to the customer as a plain rejection.
func (s *Store) ApplyVoucher(ctx context.Context, code string) VoucherResult {
	v, err := s.vouchers.Resolve(ctx, code)
	if err != nil {
		if !errors.Is(err, voucher.ErrUnknownCode) {
			log.Printf("voucher resolve error for code %q: %v", code, err)
		}

		s.mu.Lock()
		s.applied = nil
		s.mu.Unlock()

		return VoucherResult{
			Applied: false,
			Message: "Voucher code is invalid or has expired.",
		}
	}

	s.mu.Lock()
	s.applied = v
	s.mu.Unlock()

	return VoucherResult{
		Applied: true,
		Message: fmt.Sprintf("Voucher %s applied: %d%% off.", v.Code, v.DiscountPercentage),
		Voucher: v,
	}
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.CartLineItem, len(s.items))
	copy(items, s.items)
	return items
}

func (s *Store) Voucher() *domain.AppliedVoucher {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applied == nil {
		return nil
	}
	v := *s.applied
	return &v
}

// Count is the sum of line-item quantities, recomputed on every access.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotalLocked()
}

func (s *Store) subtotalLocked() int64 {
	var subtotal int64
	for _, item := range s.items {
		subtotal += item.LineTotal()
	}
	return subtotal
}

// VoucherDiscount is the percentage discount against the subtotal, zero
// when no voucher is applied.
func (s *Store) VoucherDiscount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voucherDiscountLocked()
}

func (s *Store) voucherDiscountLocked() int64 {
	if s.applied == nil {
		return 0
	}
	return s.subtotalLocked() * s.applied.DiscountPercentage / 100
}

// Total is subtotal minus voucher discount, floored at zero.
func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := s.subtotalLocked() - s.voucherDiscountLocked()
	if total < 0 {
		total = 0
	}
	return total
}
