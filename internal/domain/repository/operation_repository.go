package repository

import (
	"context"

	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
)

// Los documentos transaccionales viven bajo users/{uid}/...; todos los métodos reciben el uid.

// ReceiptRepository puerto de persistencia de recepciones.
type ReceiptRepository interface {
	Create(ctx context.Context, uid string, r *entity.Receipt) error
	GetByID(ctx context.Context, uid, id string) (*entity.Receipt, error)
	List(ctx context.Context, uid string) ([]*entity.Receipt, error)
	Update(ctx context.Context, uid string, r *entity.Receipt) error
}

// DeliveryOrderRepository puerto de persistencia de órdenes de entrega.
type DeliveryOrderRepository interface {
	Create(ctx context.Context, uid string, d *entity.DeliveryOrder) error
	GetByID(ctx context.Context, uid, id string) (*entity.DeliveryOrder, error)
	List(ctx context.Context, uid string) ([]*entity.DeliveryOrder, error)
	Update(ctx context.Context, uid string, d *entity.DeliveryOrder) error
}

// TransferRepository puerto de persistencia de traslados internos.
type TransferRepository interface {
	Create(ctx context.Context, uid string, t *entity.InternalTransfer) error
	GetByID(ctx context.Context, uid, id string) (*entity.InternalTransfer, error)
	List(ctx context.Context, uid string) ([]*entity.InternalTransfer, error)
	Update(ctx context.Context, uid string, t *entity.InternalTransfer) error
}

// AdjustmentRepository puerto de persistencia de ajustes de stock (solo alta y lectura).
type AdjustmentRepository interface {
	Create(ctx context.Context, uid string, a *entity.StockAdjustment) error
	List(ctx context.Context, uid string) ([]*entity.StockAdjustment, error)
}
