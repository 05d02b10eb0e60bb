package inventory

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
	"github.com/jhoicas/greengrocer-ims/internal/domain/inventory"
	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
)

// Snapshot lectura completa de maestros y documentos de un usuario, base del
// historial, del tablero y de las sugerencias de reorden.
type Snapshot struct {
	Products []*entity.Product
	Streams  inventory.Streams
	Lookups  inventory.Lookups
}

// History historial unificado del snapshot, más reciente primero.
func (s *Snapshot) History() []inventory.Movement {
	return inventory.BuildHistory(s.Streams, s.Lookups)
}

// LoadSnapshot lee en paralelo las ocho colecciones. Cualquier error cancela el resto.
func LoadSnapshot(ctx context.Context, repos repository.Repositories, uid string) (*Snapshot, error) {
	var (
		snap       Snapshot
		warehouses []*entity.Warehouse
		suppliers  []*entity.Supplier
		customers  []*entity.Customer
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Products, err = repos.Products.List(ctx)
		return wrap("productos", err)
	})
	g.Go(func() (err error) {
		warehouses, err = repos.Warehouses.List(ctx)
		return wrap("bodegas", err)
	})
	g.Go(func() (err error) {
		suppliers, err = repos.Suppliers.List(ctx)
		return wrap("proveedores", err)
	})
	g.Go(func() (err error) {
		customers, err = repos.Customers.List(ctx)
		return wrap("clientes", err)
	})
	g.Go(func() (err error) {
		snap.Streams.Receipts, err = repos.Receipts.List(ctx, uid)
		return wrap("recepciones", err)
	})
	g.Go(func() (err error) {
		snap.Streams.Deliveries, err = repos.Deliveries.List(ctx, uid)
		return wrap("entregas", err)
	})
	g.Go(func() (err error) {
		snap.Streams.Transfers, err = repos.Transfers.List(ctx, uid)
		return wrap("traslados", err)
	})
	g.Go(func() (err error) {
		snap.Streams.Adjustments, err = repos.Adjustments.List(ctx, uid)
		return wrap("ajustes", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap.Lookups = inventory.NewLookups(snap.Products, warehouses, suppliers, customers)
	return &snap, nil
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("cargar %s: %w", what, err)
}
