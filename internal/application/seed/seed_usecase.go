// Package seed carga el catálogo de ejemplo cuando el almacén está vacío.
package seed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
	"github.com/jhoicas/greengrocer-ims/pkg/logger"
)

// lockKey serializa los seeds concurrentes (varias instancias, varios usuarios).
const lockKey = "seed:catalog"

// TxRunner ejecuta fn en una transacción del almacén tomando antes el lock key.
type TxRunner interface {
	RunExclusive(ctx context.Context, key string, fn func(ctx context.Context, repos repository.Repositories) error) error
}

// Seeder siembra datos de ejemplo en un solo lote.
type Seeder struct {
	txRunner TxRunner
	log      *logger.Logger
	now      func() time.Time
}

// NewSeeder construye el seeder.
func NewSeeder(txRunner TxRunner, log *logger.Logger) *Seeder {
	return &Seeder{txRunner: txRunner, log: log, now: time.Now}
}

// SeedIfEmpty no hace nada si ya existe algún producto. Si no, escribe maestros y
// documentos de ejemplo para uid en una sola transacción. Devuelve true si sembró.
func (s *Seeder) SeedIfEmpty(ctx context.Context, uid string) (bool, error) {
	seeded := false
	err := s.txRunner.RunExclusive(ctx, lockKey, func(ctx context.Context, repos repository.Repositories) error {
		exists, err := repos.Products.Any(ctx)
		if err != nil || exists {
			return err
		}
		if err := s.write(ctx, repos, uid); err != nil {
			return err
		}
		seeded = true
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("uid", uid).Msg("seed fallido")
		return false, err
	}
	if seeded {
		s.log.Info().Str("uid", uid).Int("products", len(products)).Msg("datos de ejemplo sembrados")
	}
	return seeded, nil
}

func (s *Seeder) write(ctx context.Context, repos repository.Repositories, uid string) error {
	now := s.now()

	categoryIDs := make(map[string]string, len(categories))
	for _, c := range categories {
		cat := &entity.Category{Name: c.Name, Description: c.Description, CreatedAt: now, UpdatedAt: now}
		if err := repos.Categories.Create(ctx, cat); err != nil {
			return err
		}
		categoryIDs[c.Name] = cat.ID
	}

	warehouseIDs := make(map[string]string, len(warehouses))
	for _, w := range warehouses {
		wh := &entity.Warehouse{Name: w.Name, Location: w.Location, Capacity: w.Capacity, CreatedAt: now, UpdatedAt: now}
		if err := repos.Warehouses.Create(ctx, wh); err != nil {
			return err
		}
		warehouseIDs[w.Name] = wh.ID
	}
	mainID := warehouseIDs[mainWarehouse]

	productIDs := make(map[string]string, len(products))
	for _, p := range products {
		prod := &entity.Product{
			Name:           p.Name,
			SKU:            p.SKU,
			CategoryID:     categoryIDs[p.Category],
			UnitOfMeasure:  p.UnitOfMeasure,
			WarehouseStock: map[string]decimal.Decimal{mainID: decimal.NewFromInt(p.Stock)},
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repos.Products.Create(ctx, prod); err != nil {
			return err
		}
		productIDs[p.SKU] = prod.ID
	}

	supplierIDs := make([]string, 0, len(suppliers))
	for _, sp := range suppliers {
		sup := &entity.Supplier{Name: sp.Name, ContactEmail: sp.Email, CreatedAt: now, UpdatedAt: now}
		if err := repos.Suppliers.Create(ctx, sup); err != nil {
			return err
		}
		supplierIDs = append(supplierIDs, sup.ID)
	}

	customerIDs := make([]string, 0, len(customers))
	for _, c := range customers {
		cus := &entity.Customer{Name: c.Name, ShippingAddress: c.Address, ContactEmail: c.Email, CreatedAt: now, UpdatedAt: now}
		if err := repos.Customers.Create(ctx, cus); err != nil {
			return err
		}
		customerIDs = append(customerIDs, cus.ID)
	}

	if uid == "" {
		return nil
	}
	return writeSamples(ctx, repos, uid, now, mainID, warehouseIDs["Cold Storage Unit"], productIDs, supplierIDs[0], customerIDs[0])
}

// writeSamples una recepción en Waiting, una entrega en Packing y un traslado en Draft.
func writeSamples(ctx context.Context, repos repository.Repositories, uid string, now time.Time, mainID, coldID string, productIDs map[string]string, supplierID, customerID string) error {
	receipt := &entity.Receipt{
		SupplierID:  supplierID,
		ReceiptDate: now.Add(-48 * time.Hour),
		Status:      entity.StatusWaiting,
		Lines:       []entity.StockLine{{ProductID: productIDs["FR-BAN-001"], WarehouseID: mainID, Quantity: decimal.NewFromInt(200)}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repos.Receipts.Create(ctx, uid, receipt); err != nil {
		return err
	}
	delivery := &entity.DeliveryOrder{
		CustomerID:   customerID,
		DeliveryDate: now.Add(-24 * time.Hour),
		Status:       entity.StatusPacking,
		Lines:        []entity.StockLine{{ProductID: productIDs["DR-MLK-001"], WarehouseID: mainID, Quantity: decimal.NewFromInt(24)}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repos.Deliveries.Create(ctx, uid, delivery); err != nil {
		return err
	}
	transfer := &entity.InternalTransfer{
		FromWarehouseID: mainID,
		ToWarehouseID:   coldID,
		ProductID:       productIDs["DR-CHS-001"],
		Quantity:        decimal.NewFromInt(10),
		TransferDate:    now,
		Status:          entity.StatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return repos.Transfers.Create(ctx, uid, transfer)
}
