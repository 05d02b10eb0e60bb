package analytics

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/greengrocer-ims/internal/application/seed"
	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/documents"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/memstore"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/redisstore"
	"github.com/jhoicas/greengrocer-ims/pkg/logger"
)

func newDashboard(t *testing.T) (*DashboardUseCase, *memstore.Store, *redisstore.Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := memstore.New()
	cache := redisstore.NewCache(client, 0)
	uc := NewDashboardUseCase(
		documents.NewRepositories(store),
		cache,
		seed.NewSeeder(documents.NewUnitOfWork(store), logger.Nop()),
		logger.Nop(),
	)
	return uc, store, cache
}

func TestGetSummary_PrimeraCargaSiembraYCalcula(t *testing.T) {
	uc, _, _ := newDashboard(t)
	ctx := context.Background()

	sum, err := uc.GetSummary(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, sum.Seeded)
	assert.Equal(t, "2,825", sum.TotalStockDisplay)
	assert.Equal(t, "2825", sum.TotalStock.String())
	assert.Equal(t, 0, sum.LowStock, "ningún producto sembrado está bajo 10")
	assert.Equal(t, 0, sum.OutOfStock)
	assert.Equal(t, 1, sum.PendingReceipts)
	assert.Equal(t, 1, sum.PendingDeliveries)
	assert.Equal(t, 1, sum.OpenTransfers)
	assert.Len(t, sum.RecentActivity, 3)
	assert.Equal(t, "Transfer", sum.RecentActivity[0].Type, "el traslado es el más reciente")

	again, err := uc.GetSummary(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, again.Seeded)
}

func TestGetSummary_CacheHastaLaSiguienteEscritura(t *testing.T) {
	uc, store, cache := newDashboard(t)
	ctx := context.Background()
	_, err := uc.GetSummary(ctx, "u1")
	require.NoError(t, err)

	products, err := documents.NewProductRepository(store).List(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, docstore.Products, products[0].ID))

	cached, err := uc.GetSummary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "2825", cached.TotalStock.String(), "sin Bump se sirve la caché")

	require.NoError(t, cache.Bump(ctx))
	fresh, err := uc.GetSummary(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, fresh.TotalStock.Equal(cached.TotalStock))
}

func TestFormatQuantity(t *testing.T) {
	uc, _, _ := newDashboard(t)
	cases := map[string]string{"1500": "1,500", "12.5": "12.5", "0": "0", "1234567.891": "1,234,567.89"}
	for in, want := range cases {
		assert.Equal(t, want, uc.formatQuantity(decimal.RequireFromString(in)), in)
	}
}
