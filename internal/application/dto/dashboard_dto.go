package dto

import "github.com/shopspring/decimal"

// DashboardDTO respuesta de GET /api/dashboard.
// Los campos *Display llevan el mismo valor formateado para mostrar (separador de miles).
type DashboardDTO struct {
	TotalStock        decimal.Decimal `json:"totalStock"`
	TotalStockDisplay string          `json:"totalStockDisplay"`
	LowStock          int             `json:"lowStock"`
	OutOfStock        int             `json:"outOfStock"`
	PendingReceipts   int             `json:"pendingReceipts"`   // Waiting | Ready
	PendingDeliveries int             `json:"pendingDeliveries"` // Waiting | Packing | Ready
	OpenTransfers     int             `json:"openTransfers"`     // no terminales
	RecentActivity    []MovementDTO   `json:"recentActivity"`
	Seeded            bool            `json:"seeded"` // true si esta carga sembró datos de ejemplo
}
