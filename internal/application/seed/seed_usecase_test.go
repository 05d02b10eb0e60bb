package seed

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/documents"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/memstore"
	"github.com/jhoicas/greengrocer-ims/pkg/logger"
)

func TestSeedIfEmpty_SiembraUnaSolaVez(t *testing.T) {
	store := memstore.New()
	repos := documents.NewRepositories(store)
	s := NewSeeder(documents.NewUnitOfWork(store), logger.Nop())
	ctx := context.Background()

	seeded, err := s.SeedIfEmpty(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, seeded)

	again, err := s.SeedIfEmpty(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, again, "con productos existentes no hace nada")

	prods, err := repos.Products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, prods, 7)
	whs, err := repos.Warehouses.List(ctx)
	require.NoError(t, err)
	assert.Len(t, whs, 3)
	cats, err := repos.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 5)

	var mainID string
	for _, w := range whs {
		if w.Name == "Main Warehouse" {
			mainID = w.ID
		}
	}
	require.NotEmpty(t, mainID)
	for _, p := range prods {
		assert.True(t, p.Stock.Equal(p.StockIn(mainID)), "todo el stock inicial está en Main Warehouse: %s", p.Name)
		assert.NotEmpty(t, p.CategoryID)
	}

	receipts, err := repos.Receipts.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, entity.StatusWaiting, receipts[0].Status)
	deliveries, err := repos.Deliveries.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, entity.StatusPacking, deliveries[0].Status)
	transfers, err := repos.Transfers.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, entity.StatusDraft, transfers[0].Status)
}

func TestSeedIfEmpty_SinUsuarioSoloMaestros(t *testing.T) {
	store := memstore.New()
	repos := documents.NewRepositories(store)
	s := NewSeeder(documents.NewUnitOfWork(store), logger.Nop())

	seeded, err := s.SeedIfEmpty(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, seeded)
	suppliers, err := repos.Suppliers.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, suppliers, 3)
}

// keyedRunner registra la clave con la que se pide la transacción.
type keyedRunner struct {
	*documents.UnitOfWork
	mu   sync.Mutex
	keys []string
}

func (r *keyedRunner) RunExclusive(ctx context.Context, key string, fn func(ctx context.Context, repos repository.Repositories) error) error {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
	return r.UnitOfWork.RunExclusive(ctx, key, fn)
}

func TestSeedIfEmpty_ConcurrenteSiembraUnaVez(t *testing.T) {
	store := memstore.New()
	runner := &keyedRunner{UnitOfWork: documents.NewUnitOfWork(store)}
	s := NewSeeder(runner, logger.Nop())
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]bool, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seeded, err := s.SeedIfEmpty(ctx, "u1")
			assert.NoError(t, err)
			results[i] = seeded
		}(i)
	}
	wg.Wait()

	count := 0
	for _, ok := range results {
		if ok {
			count++
		}
	}
	assert.Equal(t, 1, count, "solo una llamada siembra")
	prods, err := documents.NewProductRepository(store).List(ctx)
	require.NoError(t, err)
	assert.Len(t, prods, 7)
	assert.Equal(t, []string{lockKey, lockKey, lockKey, lockKey}, runner.keys)
}
