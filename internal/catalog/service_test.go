package catalog

import (
	"context"
	"testing"
	"time"

	"triptrek/pkg/cache"
	"triptrek/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) GetPackageByID(ctx context.Context, id uuid.UUID) (*Package, error) {
	args := m.Called(ctx, id)
	pkg, _ := args.Get(0).(*Package)
	return pkg, args.Error(1)
}

func (m *mockRepository) UpsertDestination(ctx context.Context, d *Destination) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockRepository) UpsertPackage(ctx context.Context, p *Package) error {
	return m.Called(ctx, p).Error(0)
}

func samplePackage() *Package {
	return &Package{
		ID:             uuid.New(),
		DestinationID:  uuid.New(),
		Title:          "Goa Beach Escape",
		Slug:           "goa-beach-escape",
		Price:          decimal.RequireFromString("1000.00"),
		DurationDays:   4,
		TotalSlots:     20,
		AvailableSlots: 20,
		StartDate:      time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC),
	}
}

func newCache(t *testing.T) cache.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewService(client, logger.Discard())
}

func TestGetPackageWithoutCache(t *testing.T) {
	repo := new(mockRepository)
	pkg := samplePackage()
	repo.On("GetPackageByID", mock.Anything, pkg.ID).Return(pkg, nil).Twice()

	svc := NewService(repo, nil, logger.Discard())

	for i := 0; i < 2; i++ {
		got, err := svc.GetPackage(context.Background(), pkg.ID)
		require.NoError(t, err)
		assert.Equal(t, pkg.Title, got.Title)
	}
	repo.AssertExpectations(t)
}

func TestGetPackageIsCachedUntilInvalidated(t *testing.T) {
	repo := new(mockRepository)
	pkg := samplePackage()
	repo.On("GetPackageByID", mock.Anything, pkg.ID).Return(pkg, nil).Twice()

	svc := NewService(repo, newCache(t), logger.Discard())
	ctx := context.Background()

	first, err := svc.GetPackage(ctx, pkg.ID)
	require.NoError(t, err)
	second, err := svc.GetPackage(ctx, pkg.ID)
	require.NoError(t, err)

	assert.True(t, first.Price.Equal(second.Price))
	repo.AssertNumberOfCalls(t, "GetPackageByID", 1)

	svc.InvalidatePackage(ctx, pkg.ID)
	_, err = svc.GetPackage(ctx, pkg.ID)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "GetPackageByID", 2)
}

func TestGetPackageNotFound(t *testing.T) {
	repo := new(mockRepository)
	id := uuid.New()
	repo.On("GetPackageByID", mock.Anything, id).Return(nil, ErrPackageNotFound)

	svc := NewService(repo, newCache(t), logger.Discard())

	_, err := svc.GetPackage(context.Background(), id)
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestHasSlots(t *testing.T) {
	pkg := samplePackage()
	pkg.AvailableSlots = 2

	assert.True(t, pkg.HasSlots(2))
	assert.False(t, pkg.HasSlots(3))
	assert.False(t, pkg.HasSlots(0))
}
