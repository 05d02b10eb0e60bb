package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
	"github.com/jhoicas/greengrocer-ims/internal/domain"
	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
	"github.com/jhoicas/greengrocer-ims/internal/domain/inventory"
	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock se maneja vía movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto. El SKU es único en el catálogo.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	existing, err := uc.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if in.ReorderLevel != nil && in.ReorderLevel.IsNegative() {
		return nil, fmt.Errorf("reorderLevel negativo: %w", domain.ErrInvalidInput)
	}
	stock := make(map[string]decimal.Decimal, len(in.WarehouseStock))
	for wid, qty := range in.WarehouseStock {
		if wid == "" || qty.IsNegative() {
			return nil, fmt.Errorf("warehouseStock inválido: %w", domain.ErrInvalidInput)
		}
		stock[wid] = qty
	}
	now := time.Now()
	product := &entity.Product{
		Name:           strings.TrimSpace(in.Name),
		SKU:            sku,
		CategoryID:     in.CategoryID,
		UnitOfMeasure:  in.UnitOfMeasure,
		ReorderLevel:   in.ReorderLevel,
		WarehouseStock: stock,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza los datos maestros de un producto. No modifica el stock: la
// escritura es un merge de los campos maestros, así que un movimiento validado en
// paralelo no se pierde y un producto borrado no reaparece.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if sku != product.SKU {
			other, err := uc.repo.GetBySKU(ctx, sku)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != product.ID {
				return nil, domain.ErrDuplicate
			}
		}
		product.SKU = sku
	}
	if in.CategoryID != nil {
		product.CategoryID = *in.CategoryID
	}
	if in.UnitOfMeasure != nil {
		product.UnitOfMeasure = *in.UnitOfMeasure
	}
	if in.ReorderLevel != nil {
		if in.ReorderLevel.IsNegative() {
			return nil, fmt.Errorf("reorderLevel negativo: %w", domain.ErrInvalidInput)
		}
		product.ReorderLevel = in.ReorderLevel
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.UpdateDetails(ctx, product); err != nil {
		return nil, err
	}
	current, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(current), nil
}

// List lista los productos ordenados por nombre. level ("out", "low", "in" o vacío)
// restringe el resultado a un nivel de stock.
func (uc *ProductUseCase) List(ctx context.Context, level string) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if level != "" {
		lv, ok := inventory.ParseLevel(level)
		if !ok {
			return nil, fmt.Errorf("level %q: %w", level, domain.ErrInvalidInput)
		}
		list = inventory.FilterByLevel(list, lv)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items, nil
}

// Delete elimina un producto. Los documentos que lo referencian quedan intactos.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	stock := p.WarehouseStock
	if stock == nil {
		stock = map[string]decimal.Decimal{}
	}
	return &dto.ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		SKU:            p.SKU,
		CategoryID:     p.CategoryID,
		UnitOfMeasure:  p.UnitOfMeasure,
		Stock:          p.Stock,
		ReorderLevel:   p.EffectiveReorderLevel(),
		Level:          string(inventory.Classify(p)),
		WarehouseStock: stock,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
