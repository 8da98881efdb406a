package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/Quocthai23/lumiere-storefront/internal/domain"
	"github.com/Quocthai23/lumiere-storefront/internal/kv"
	"github.com/google/uuid"
)

// MockAddressBook implements AddressBook for testing
type MockAddressBook struct {
	Addresses []domain.ShippingAddress
	Err       error
	Calls     int
}

func (m *MockAddressBook) List(_ context.Context, _ string) ([]domain.ShippingAddress, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Addresses, nil
}

// MockCustomerProfile implements CustomerProfile for testing
type MockCustomerProfile struct {
	Customer *domain.Customer
	Err      error
}

func (m *MockCustomerProfile) Get(_ context.Context, customerID string) (*domain.Customer, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Customer != nil {
		return m.Customer, nil
	}
	return &domain.Customer{ID: customerID}, nil
}

// MockOrderSubmitter implements OrderSubmitter for testing. Block can be
// used to hold a submission in flight; Drafts captures every payload.
type MockOrderSubmitter struct {
	mu     sync.Mutex
	Drafts []*domain.OrderDraft
	Err    error
	Block  chan struct{}
}

func (m *MockOrderSubmitter) Create(_ context.Context, draft *domain.OrderDraft) (*domain.OrderReference, error) {
	m.mu.Lock()
	m.Drafts = append(m.Drafts, draft)
	block := m.Block
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &domain.OrderReference{OrderID: uuid.New(), CreatedAt: time.Now()}, nil
}

func (m *MockOrderSubmitter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Drafts)
}

func (m *MockOrderSubmitter) LastDraft() *domain.OrderDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Drafts) == 0 {
		return nil
	}
	return m.Drafts[len(m.Drafts)-1]
}

// memoryKV is a plain in-memory kv.Store for wiring real cart stores.
type memoryKV struct {
	m    sync.Mutex
	data map[string][]byte
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string][]byte)}
}

func (f *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	f.m.Lock()
	defer f.m.Unlock()
	data, ok := f.data[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return data, nil
}

func (f *memoryKV) Set(_ context.Context, key string, value []byte) error {
	f.m.Lock()
	defer f.m.Unlock()
	f.data[key] = value
	return nil
}

func (f *memoryKV) Delete(_ context.Context, key string) error {
	f.m.Lock()
	defer f.m.Unlock()
	delete(f.data, key)
	return nil
}
