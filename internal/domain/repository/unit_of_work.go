package repository

import "context"

// Repositories conjunto de repositorios atados a un mismo almacén o transacción.
type Repositories struct {
	Products    ProductRepository
	Warehouses  WarehouseRepository
	Suppliers   SupplierRepository
	Customers   CustomerRepository
	Categories  CategoryRepository
	Receipts    ReceiptRepository
	Deliveries  DeliveryOrderRepository
	Transfers   TransferRepository
	Adjustments AdjustmentRepository
}

// UnitOfWork ejecuta fn dentro de una transacción. Si fn devuelve error no se
// aplica ninguna escritura.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
