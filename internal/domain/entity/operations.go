package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrSameWarehouse se devuelve cuando un traslado tiene la misma bodega de origen y destino.
var ErrSameWarehouse = errors.New("la bodega de origen y destino deben ser diferentes")

// StockLine línea opcional de una recepción o entrega.
type StockLine struct {
	ProductID   string          `json:"productId"`
	WarehouseID string          `json:"warehouseId"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// Receipt documento de entrada de mercancía desde un proveedor.
type Receipt struct {
	ID          string      `json:"id,omitempty"`
	SupplierID  string      `json:"supplierId"`
	ReceiptDate time.Time   `json:"receiptDate"`
	Status      Status      `json:"status"`
	Lines       []StockLine `json:"lines,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (r *Receipt) SetID(id string) { r.ID = id }

// DeliveryOrder documento de salida de mercancía hacia un cliente.
type DeliveryOrder struct {
	ID           string      `json:"id,omitempty"`
	CustomerID   string      `json:"customerId"`
	DeliveryDate time.Time   `json:"deliveryDate"`
	Status       Status      `json:"status"`
	Lines        []StockLine `json:"lines,omitempty"`
	Notes        string      `json:"notes,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

func (d *DeliveryOrder) SetID(id string) { d.ID = id }

// InternalTransfer movimiento de un producto entre dos bodegas.
type InternalTransfer struct {
	ID              string          `json:"id,omitempty"`
	FromWarehouseID string          `json:"fromWarehouseId"`
	ToWarehouseID   string          `json:"toWarehouseId"`
	ProductID       string          `json:"productId"`
	Quantity        decimal.Decimal `json:"quantity"`
	TransferDate    time.Time       `json:"transferDate"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (t *InternalTransfer) SetID(id string) { t.ID = id }

// Check valida el traslado antes de cualquier escritura.
func (t *InternalTransfer) Check() error {
	if t.FromWarehouseID == t.ToWarehouseID {
		return ErrSameWarehouse
	}
	if !t.Quantity.IsPositive() {
		return errors.New("la cantidad debe ser mayor a cero")
	}
	return nil
}

// StockAdjustment corrección de stock tras un conteo físico. Siempre es final.
type StockAdjustment struct {
	ID               string          `json:"id,omitempty"`
	WarehouseID      string          `json:"warehouseId"`
	ProductID        string          `json:"productId"`
	CountedQuantity  decimal.Decimal `json:"countedQuantity"`
	PreviousQuantity decimal.Decimal `json:"previousQuantity"`
	Difference       decimal.Decimal `json:"difference"`
	Reason           string          `json:"reason,omitempty"`
	AdjustmentDate   time.Time       `json:"adjustmentDate"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func (a *StockAdjustment) SetID(id string) { a.ID = id }
