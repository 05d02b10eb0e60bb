// Package inventory contiene las proyecciones puras del inventario: niveles de
// stock, sugerencias de reorden e historial de movimientos. No hace I/O.
package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
)

// Level clasificación del stock de un producto.
type Level string

const (
	LevelOutOfStock Level = "out_of_stock"
	LevelLow        Level = "low_stock"
	LevelInStock    Level = "in_stock"
)

// ParseLevel acepta los alias cortos usados en la API (out, low, in).
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "out", string(LevelOutOfStock):
		return LevelOutOfStock, true
	case "low", string(LevelLow):
		return LevelLow, true
	case "in", string(LevelInStock):
		return LevelInStock, true
	}
	return "", false
}

// Classify: stock <= 0 agotado; 0 < stock <= nivel de reorden bajo; resto en stock.
func Classify(p *entity.Product) Level {
	switch {
	case !p.Stock.IsPositive():
		return LevelOutOfStock
	case p.Stock.LessThanOrEqual(p.EffectiveReorderLevel()):
		return LevelLow
	default:
		return LevelInStock
	}
}

// TotalStock suma el stock agregado de todos los productos.
func TotalStock(products []*entity.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Stock)
	}
	return total
}

// LevelCounts cuenta productos por nivel.
type LevelCounts struct {
	OutOfStock int
	Low        int
	InStock    int
}

// CountLevels clasifica todos los productos.
func CountLevels(products []*entity.Product) LevelCounts {
	var c LevelCounts
	for _, p := range products {
		switch Classify(p) {
		case LevelOutOfStock:
			c.OutOfStock++
		case LevelLow:
			c.Low++
		default:
			c.InStock++
		}
	}
	return c
}

// FilterByLevel devuelve los productos del nivel indicado, conservando el orden.
func FilterByLevel(products []*entity.Product, level Level) []*entity.Product {
	out := make([]*entity.Product, 0, len(products))
	for _, p := range products {
		if Classify(p) == level {
			out = append(out, p)
		}
	}
	return out
}
