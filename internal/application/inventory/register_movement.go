package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/greengrocer-ims/internal/domain"
	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
)

// registerMovement suma delta (negativo para salidas) al stock del producto en la
// bodega. Debe llamarse dentro de una transacción: lee, valida y reescribe el producto.
func registerMovement(ctx context.Context, products repository.ProductRepository, productID, warehouseID string, delta decimal.Decimal, now time.Time) error {
	product, err := products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	if !product.AddStock(warehouseID, delta) {
		return fmt.Errorf("%s en bodega %s: disponible %s, requerido %s: %w",
			product.Name, warehouseID, product.StockIn(warehouseID), delta.Neg(), domain.ErrInsufficientStock)
	}
	product.UpdatedAt = now
	return products.Update(ctx, product)
}

// registerLines aplica las líneas de un documento con el signo indicado (+1 entrada, -1 salida).
func registerLines(ctx context.Context, products repository.ProductRepository, lines []entity.StockLine, sign int64, now time.Time) error {
	factor := decimal.NewFromInt(sign)
	for _, l := range lines {
		if err := registerMovement(ctx, products, l.ProductID, l.WarehouseID, l.Quantity.Mul(factor), now); err != nil {
			return err
		}
	}
	return nil
}

// checkLines valida que cada línea tenga cantidad positiva y referencie producto y bodega existentes.
func checkLines(ctx context.Context, repos repository.Repositories, lines []entity.StockLine) error {
	for i, l := range lines {
		if !l.Quantity.IsPositive() {
			return fmt.Errorf("línea %d: la cantidad debe ser mayor a cero: %w", i+1, domain.ErrInvalidInput)
		}
		if err := checkProductAndWarehouse(ctx, repos, l.ProductID, l.WarehouseID); err != nil {
			return fmt.Errorf("línea %d: %w", i+1, err)
		}
	}
	return nil
}

func checkProductAndWarehouse(ctx context.Context, repos repository.Repositories, productID string, warehouseIDs ...string) error {
	p, err := repos.Products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("producto %s no existe: %w", productID, domain.ErrInvalidInput)
	}
	for _, wid := range warehouseIDs {
		w, err := repos.Warehouses.GetByID(ctx, wid)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("bodega %s no existe: %w", wid, domain.ErrInvalidInput)
		}
	}
	return nil
}
