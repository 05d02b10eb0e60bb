package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLineDTO línea de producto en una recepción o entrega.
type StockLineDTO struct {
	ProductID   string          `json:"productId" validate:"required"`
	WarehouseID string          `json:"warehouseId" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// CreateReceiptRequest body para POST /api/receipts. Sin fecha se usa la actual.
type CreateReceiptRequest struct {
	SupplierID  string         `json:"supplierId" validate:"required"`
	ReceiptDate *time.Time     `json:"receiptDate"`
	Lines       []StockLineDTO `json:"lines" validate:"dive"`
	Notes       string         `json:"notes" validate:"max=1000"`
}

// ReceiptResponse salida de una recepción con las acciones disponibles.
type ReceiptResponse struct {
	ID          string         `json:"id"`
	Reference   string         `json:"reference"`
	SupplierID  string         `json:"supplierId"`
	ReceiptDate time.Time      `json:"receiptDate"`
	Status      string         `json:"status"`
	Lines       []StockLineDTO `json:"lines"`
	Notes       string         `json:"notes"`
	Actions     []string       `json:"actions"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// CreateDeliveryRequest body para POST /api/deliveries.
type CreateDeliveryRequest struct {
	CustomerID   string         `json:"customerId" validate:"required"`
	DeliveryDate *time.Time     `json:"deliveryDate"`
	Lines        []StockLineDTO `json:"lines" validate:"dive"`
	Notes        string         `json:"notes" validate:"max=1000"`
}

// DeliveryResponse salida de una orden de entrega.
type DeliveryResponse struct {
	ID           string         `json:"id"`
	Reference    string         `json:"reference"`
	CustomerID   string         `json:"customerId"`
	DeliveryDate time.Time      `json:"deliveryDate"`
	Status       string         `json:"status"`
	Lines        []StockLineDTO `json:"lines"`
	Notes        string         `json:"notes"`
	Actions      []string       `json:"actions"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	FromWarehouseID string          `json:"fromWarehouseId" validate:"required"`
	ToWarehouseID   string          `json:"toWarehouseId" validate:"required"`
	ProductID       string          `json:"productId" validate:"required"`
	Quantity        decimal.Decimal `json:"quantity"`
	TransferDate    *time.Time      `json:"transferDate"`
}

// TransferResponse salida de un traslado interno.
type TransferResponse struct {
	ID              string          `json:"id"`
	Reference       string          `json:"reference"`
	FromWarehouseID string          `json:"fromWarehouseId"`
	ToWarehouseID   string          `json:"toWarehouseId"`
	ProductID       string          `json:"productId"`
	Quantity        decimal.Decimal `json:"quantity"`
	TransferDate    time.Time       `json:"transferDate"`
	Status          string          `json:"status"`
	Actions         []string        `json:"actions"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// CreateAdjustmentRequest body para POST /api/adjustments.
type CreateAdjustmentRequest struct {
	WarehouseID     string          `json:"warehouseId" validate:"required"`
	ProductID       string          `json:"productId" validate:"required"`
	CountedQuantity decimal.Decimal `json:"countedQuantity"`
	Reason          string          `json:"reason" validate:"max=500"`
	AdjustmentDate  *time.Time      `json:"adjustmentDate"`
}

// AdjustmentResponse salida de un ajuste de stock.
type AdjustmentResponse struct {
	ID               string          `json:"id"`
	Reference        string          `json:"reference"`
	WarehouseID      string          `json:"warehouseId"`
	ProductID        string          `json:"productId"`
	CountedQuantity  decimal.Decimal `json:"countedQuantity"`
	PreviousQuantity decimal.Decimal `json:"previousQuantity"`
	Difference       decimal.Decimal `json:"difference"`
	Reason           string          `json:"reason"`
	AdjustmentDate   time.Time       `json:"adjustmentDate"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// ReorderSuggestionDTO producto bajo su nivel de reorden con la cantidad sugerida.
type ReorderSuggestionDTO struct {
	ProductID     string          `json:"productId"`
	SKU           string          `json:"sku"`
	ProductName   string          `json:"productName"`
	UnitOfMeasure string          `json:"unitOfMeasure"`
	CurrentStock  decimal.Decimal `json:"currentStock"`
	ReorderLevel  decimal.Decimal `json:"reorderLevel"`
	SuggestedQty  decimal.Decimal `json:"suggestedQty"` // max(2*nivel - stock, nivel)
	Level         string          `json:"level"`
	Priority      int             `json:"priority"` // 1 = más urgente
}

// HistoryQuery filtros de GET /api/history.
type HistoryQuery struct {
	Search string `query:"search" validate:"max=200"`
	Type   string `query:"type" validate:"omitempty,oneof=all Receipt Delivery Transfer Adjustment"`
	Status string `query:"status" validate:"omitempty,oneof=all Draft Waiting Ready Packing Done Canceled"`
}

// MovementDTO fila del historial de movimientos.
type MovementDTO struct {
	ID            string           `json:"id"`
	Reference     string           `json:"reference"`
	Type          string           `json:"type"`
	Date          time.Time        `json:"date"`
	Product       string           `json:"product,omitempty"`
	Warehouse     string           `json:"warehouse,omitempty"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty"`
	RelatedEntity string           `json:"relatedEntity,omitempty"`
	Status        string           `json:"status"`
}
