package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo con su stock por bodega.
// WarehouseStock es la única fuente de verdad; Stock siempre es su suma (ver Recompute).
type Product struct {
	ID             string                     `json:"id,omitempty"`
	Name           string                     `json:"name"`
	SKU            string                     `json:"sku"`
	CategoryID     string                     `json:"categoryId"`
	UnitOfMeasure  string                     `json:"unitOfMeasure"`
	Stock          decimal.Decimal            `json:"stock"`
	ReorderLevel   *decimal.Decimal           `json:"reorderLevel,omitempty"`
	WarehouseStock map[string]decimal.Decimal `json:"warehouseStock"`
	CreatedAt      time.Time                  `json:"createdAt"`
	UpdatedAt      time.Time                  `json:"updatedAt"`
}

func (p *Product) SetID(id string) { p.ID = id }

// EffectiveReorderLevel devuelve el nivel de reorden o el valor por defecto (10).
func (p *Product) EffectiveReorderLevel() decimal.Decimal {
	if p.ReorderLevel == nil {
		return DefaultReorderLevel
	}
	return *p.ReorderLevel
}

// Recompute recalcula Stock como la suma de WarehouseStock.
func (p *Product) Recompute() {
	total := decimal.Zero
	for _, q := range p.WarehouseStock {
		total = total.Add(q)
	}
	p.Stock = total
}

// StockIn devuelve el stock del producto en una bodega (cero si no tiene).
func (p *Product) StockIn(warehouseID string) decimal.Decimal {
	if p.WarehouseStock == nil {
		return decimal.Zero
	}
	return p.WarehouseStock[warehouseID]
}

// AddStock suma (o resta, si qty es negativa) stock en una bodega.
// Devuelve false, sin modificar nada, si el resultado sería negativo.
func (p *Product) AddStock(warehouseID string, qty decimal.Decimal) bool {
	next := p.StockIn(warehouseID).Add(qty)
	if next.IsNegative() {
		return false
	}
	p.SetStock(warehouseID, next)
	return true
}

// SetStock fija el stock de una bodega y recalcula el total.
func (p *Product) SetStock(warehouseID string, qty decimal.Decimal) {
	if p.WarehouseStock == nil {
		p.WarehouseStock = make(map[string]decimal.Decimal)
	}
	p.WarehouseStock[warehouseID] = qty
	p.Recompute()
}
