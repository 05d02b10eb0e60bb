package inventory

import (
	"context"

	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
	"github.com/jhoicas/greengrocer-ims/internal/domain/inventory"
	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reorden: productos con stock en o bajo su
// nivel de reorden, con la cantidad sugerida y un ranking de prioridad.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo}
}

// GenerateReplenishmentList devuelve las sugerencias ordenadas por urgencia:
// primero los agotados, luego el mayor déficit frente al nivel de reorden.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReorderSuggestionDTO, error) {
	products, err := uc.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	suggestions := inventory.ReorderSuggestions(products)
	out := make([]dto.ReorderSuggestionDTO, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, dto.ReorderSuggestionDTO{
			ProductID:     s.Product.ID,
			SKU:           s.Product.SKU,
			ProductName:   s.Product.Name,
			UnitOfMeasure: s.Product.UnitOfMeasure,
			CurrentStock:  s.Product.Stock,
			ReorderLevel:  s.ReorderLevel,
			SuggestedQty:  s.SuggestedQty,
			Level:         string(s.Level),
			Priority:      s.Priority,
		})
	}
	return out, nil
}
