package addressbook

import (
	"context"
	"testing"

	"github.com/Quocthai23/lumiere-storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestDB(t *testing.T) (Repository, func()) {
	ctx := context.Background()

	// Start MongoDB container
	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	// Get connection string
	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	// Connect to MongoDB
	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	// Create repository
	repo := NewMongoRepository(db)

	// Create indexes
	mongoRepo := repo.(*mongoRepository)
	err = mongoRepo.CreateIndexes(ctx)
	require.NoError(t, err)

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func TestList_EmptyForUnknownCustomer(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	addresses, err := repo.List(ctx, "nonexistent")

	require.NoError(t, err)
	assert.Empty(t, addresses)
}

func TestCreateAndList(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customerID := "cust-1"

	created, err := repo.Create(ctx, customerID, domain.ShippingAddress{
		FullName:  "Tran Thi Mai",
		Phone:     "0901234567",
		Street:    "12 Nguyen Hue",
		City:      "Ho Chi Minh City",
		IsDefault: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	addresses, err := repo.List(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, created.ID, addresses[0].ID)
	assert.Equal(t, "Tran Thi Mai", addresses[0].FullName)
	assert.True(t, addresses[0].IsDefault)
}

func TestCreate_NewDefaultUnsetsPrevious(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customerID := "cust-1"

	first, err := repo.Create(ctx, customerID, domain.ShippingAddress{
		FullName:  "Tran Thi Mai",
		Phone:     "0901234567",
		Street:    "12 Nguyen Hue",
		City:      "Ho Chi Minh City",
		IsDefault: true,
	})
	require.NoError(t, err)

	second, err := repo.Create(ctx, customerID, domain.ShippingAddress{
		FullName:  "Tran Thi Mai",
		Phone:     "0901234567",
		Street:    "45 Le Loi",
		City:      "Da Nang",
		IsDefault: true,
	})
	require.NoError(t, err)

	addresses, err := repo.List(ctx, customerID)
	require.NoError(t, err)
	require.Len(t, addresses, 2)

	defaults := make(map[string]bool)
	for _, addr := range addresses {
		defaults[addr.ID] = addr.IsDefault
	}
	assert.False(t, defaults[first.ID])
	assert.True(t, defaults[second.ID])
}

func TestList_ScopedToCustomer(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	_, err := repo.Create(ctx, "cust-1", domain.ShippingAddress{
		FullName: "Tran Thi Mai",
		Phone:    "0901234567",
		Street:   "12 Nguyen Hue",
		City:     "Ho Chi Minh City",
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, "cust-2", domain.ShippingAddress{
		FullName: "Nguyen Van An",
		Phone:    "0912345678",
		Street:   "45 Le Loi",
		City:     "Da Nang",
	})
	require.NoError(t, err)

	addresses, err := repo.List(ctx, "cust-1")
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, "Tran Thi Mai", addresses[0].FullName)
}
