package documents

import (
	"context"

	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
)

// NewRepositories construye todos los repositorios sobre rw (store o tx).
func NewRepositories(rw docstore.ReadWriter) repository.Repositories {
	return repository.Repositories{
		Products:    NewProductRepository(rw),
		Warehouses:  NewWarehouseRepository(rw),
		Suppliers:   NewSupplierRepository(rw),
		Customers:   NewCustomerRepository(rw),
		Categories:  NewCategoryRepository(rw),
		Receipts:    NewReceiptRepository(rw),
		Deliveries:  NewDeliveryOrderRepository(rw),
		Transfers:   NewTransferRepository(rw),
		Adjustments: NewAdjustmentRepository(rw),
	}
}

// TxStore almacén capaz de abrir transacciones.
type TxStore interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx docstore.ReadWriter) error) error
}

// UnitOfWork implementa repository.UnitOfWork sobre RunInTx del almacén.
type UnitOfWork struct {
	store TxStore
}

var _ repository.UnitOfWork = (*UnitOfWork)(nil)

// NewUnitOfWork construye la unidad de trabajo.
func NewUnitOfWork(store TxStore) *UnitOfWork {
	return &UnitOfWork{store: store}
}

// Run abre una transacción y entrega a fn los repositorios atados a ella.
func (u *UnitOfWork) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return u.store.RunInTx(ctx, func(ctx context.Context, tx docstore.ReadWriter) error {
		return fn(ctx, NewRepositories(tx))
	})
}

// RunExclusive como Run, pero antes toma el lock key dentro de la transacción: dos
// llamadas con la misma clave nunca se solapan, tampoco entre instancias.
func (u *UnitOfWork) RunExclusive(ctx context.Context, key string, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return u.store.RunInTx(ctx, func(ctx context.Context, tx docstore.ReadWriter) error {
		if err := docstore.Lock(ctx, tx, key); err != nil {
			return err
		}
		return fn(ctx, NewRepositories(tx))
	})
}
