package cart

import (
	"context"
	"sync"

	"github.com/Quocthai23/lumiere-storefront/internal/kv"
	"github.com/Quocthai23/lumiere-storefront/internal/voucher"
	"golang.org/x/sync/singleflight"
)

// Manager owns the per-session cart stores: one store per session id,
// created on first use and dropped on logout. There is no ambient global
// cart; every consumer goes through a Manager handle.
type Manager struct {
	store    kv.Store
	vouchers voucher.Resolver

	mu       sync.Mutex
	sessions map[string]*Store
	sfg      singleflight.Group // Collapses concurrent loads of the same session
}

func NewManager(store kv.Store, vouchers voucher.Resolver) *Manager {
	return &Manager{
		store:    store,
		vouchers: vouchers,
		sessions: make(map[string]*Store),
	}
}

// Session returns the cart store for the session, restoring its persisted
// snapshot on first access. Concurrent first accesses for the same session
// share one load.
func (m *Manager) Session(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	if s, ok := m.sessions[sessionID]; ok {
		m.mu.Unlock()
		return s
	}
	m.mu.Unlock()

	v, _, _ := m.sfg.Do(sessionID, func() (interface{}, error) {
		s := NewStore(sessionID, m.store, m.vouchers)
		s.load(ctx)

		m.mu.Lock()
		// Another goroutine may have won between the check and the load.
		if existing, ok := m.sessions[sessionID]; ok {
			m.mu.Unlock()
			return existing, nil
		}
		m.sessions[sessionID] = s
		m.mu.Unlock()
		return s, nil
	})

	return v.(*Store)
}

// End tears the session's in-memory store down (logout). The persisted
// snapshot is kept, so the cart is restored on the next login.
func (m *Manager) End(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
}
