package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. WarehouseStock es el stock
// inicial por bodega; después solo cambia vía recepciones, entregas, traslados y ajustes.
type CreateProductRequest struct {
	Name           string                     `json:"name" validate:"required,min=1,max=200"`
	SKU            string                     `json:"sku" validate:"required,min=1,max=100"`
	CategoryID     string                     `json:"categoryId"`
	UnitOfMeasure  string                     `json:"unitOfMeasure" validate:"required,max=50"`
	ReorderLevel   *decimal.Decimal           `json:"reorderLevel"`
	WarehouseStock map[string]decimal.Decimal `json:"warehouseStock"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock).
type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	SKU           *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	CategoryID    *string          `json:"categoryId"`
	UnitOfMeasure *string          `json:"unitOfMeasure" validate:"omitempty,min=1,max=50"`
	ReorderLevel  *decimal.Decimal `json:"reorderLevel"`
}

// ProductResponse salida de un producto con su nivel de stock calculado.
type ProductResponse struct {
	ID             string                     `json:"id"`
	Name           string                     `json:"name"`
	SKU            string                     `json:"sku"`
	CategoryID     string                     `json:"categoryId"`
	UnitOfMeasure  string                     `json:"unitOfMeasure"`
	Stock          decimal.Decimal            `json:"stock"`
	ReorderLevel   decimal.Decimal            `json:"reorderLevel"`
	Level          string                     `json:"level"`
	WarehouseStock map[string]decimal.Decimal `json:"warehouseStock"`
	CreatedAt      time.Time                  `json:"createdAt"`
	UpdatedAt      time.Time                  `json:"updatedAt"`
}
