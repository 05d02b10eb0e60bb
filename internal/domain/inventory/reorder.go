package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
)

// outOfStockUrgency pesa un producto agotado por encima de cualquier déficit normal.
var outOfStockUrgency = decimal.NewFromInt(1000)

var two = decimal.NewFromInt(2)

// ReorderQuantity cantidad sugerida: max(2*nivel - stock, nivel).
func ReorderQuantity(stock, reorderLevel decimal.Decimal) decimal.Decimal {
	return decimal.Max(reorderLevel.Mul(two).Sub(stock), reorderLevel)
}

// Urgency 1000 si está agotado; si no, nivel - stock.
func Urgency(stock, reorderLevel decimal.Decimal) decimal.Decimal {
	if !stock.IsPositive() {
		return outOfStockUrgency
	}
	return reorderLevel.Sub(stock)
}

// ReorderSuggestion producto que necesita reabastecerse.
type ReorderSuggestion struct {
	Product      *entity.Product
	Level        Level
	ReorderLevel decimal.Decimal
	SuggestedQty decimal.Decimal
	Urgency      decimal.Decimal
	Priority     int // 1 = más urgente
}

// ReorderSuggestions filtra los productos con stock <= nivel de reorden y los
// ordena por urgencia descendente (desempate por nombre).
func ReorderSuggestions(products []*entity.Product) []ReorderSuggestion {
	out := make([]ReorderSuggestion, 0)
	for _, p := range products {
		rl := p.EffectiveReorderLevel()
		if p.Stock.GreaterThan(rl) {
			continue
		}
		out = append(out, ReorderSuggestion{
			Product:      p,
			Level:        Classify(p),
			ReorderLevel: rl,
			SuggestedQty: ReorderQuantity(p.Stock, rl),
			Urgency:      Urgency(p.Stock, rl),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Urgency.Cmp(out[j].Urgency); c != 0 {
			return c > 0
		}
		return out[i].Product.Name < out[j].Product.Name
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out
}
