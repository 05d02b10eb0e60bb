package documents

import (
	"context"

	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
)

var (
	_ repository.ReceiptRepository       = (*ReceiptRepo)(nil)
	_ repository.DeliveryOrderRepository = (*DeliveryOrderRepo)(nil)
	_ repository.TransferRepository      = (*TransferRepo)(nil)
	_ repository.AdjustmentRepository    = (*AdjustmentRepo)(nil)
)

// ReceiptsQuery consulta las recepciones de un usuario, más recientes primero.
func ReceiptsQuery(uid string) *docstore.Query {
	return docstore.Collection(docstore.UserCollection(uid, docstore.Receipts)).OrderBy("receiptDate", true)
}

// DeliveriesQuery consulta las entregas de un usuario, más recientes primero.
func DeliveriesQuery(uid string) *docstore.Query {
	return docstore.Collection(docstore.UserCollection(uid, docstore.DeliveryOrders)).OrderBy("deliveryDate", true)
}

// TransfersQuery consulta los traslados de un usuario, más recientes primero.
func TransfersQuery(uid string) *docstore.Query {
	return docstore.Collection(docstore.UserCollection(uid, docstore.InternalTransfers)).OrderBy("transferDate", true)
}

// AdjustmentsQuery consulta los ajustes de un usuario, más recientes primero.
func AdjustmentsQuery(uid string) *docstore.Query {
	return docstore.Collection(docstore.UserCollection(uid, docstore.StockAdjustments)).OrderBy("adjustmentDate", true)
}

// ── Recepciones ─────────────────────────────────────────────────────────────

type ReceiptRepo struct{ rw docstore.ReadWriter }

func NewReceiptRepository(rw docstore.ReadWriter) *ReceiptRepo { return &ReceiptRepo{rw: rw} }

func (r *ReceiptRepo) col(uid string) collection[entity.Receipt, *entity.Receipt] {
	return newCollection[entity.Receipt](r.rw, docstore.UserCollection(uid, docstore.Receipts))
}

func (r *ReceiptRepo) Create(ctx context.Context, uid string, e *entity.Receipt) error {
	return r.col(uid).create(ctx, e)
}

func (r *ReceiptRepo) GetByID(ctx context.Context, uid, id string) (*entity.Receipt, error) {
	return r.col(uid).get(ctx, id)
}

func (r *ReceiptRepo) List(ctx context.Context, uid string) ([]*entity.Receipt, error) {
	return r.col(uid).list(ctx, ReceiptsQuery(uid))
}

func (r *ReceiptRepo) Update(ctx context.Context, uid string, e *entity.Receipt) error {
	return r.col(uid).set(ctx, e.ID, e)
}

// ── Entregas ────────────────────────────────────────────────────────────────

type DeliveryOrderRepo struct{ rw docstore.ReadWriter }

func NewDeliveryOrderRepository(rw docstore.ReadWriter) *DeliveryOrderRepo {
	return &DeliveryOrderRepo{rw: rw}
}

func (r *DeliveryOrderRepo) col(uid string) collection[entity.DeliveryOrder, *entity.DeliveryOrder] {
	return newCollection[entity.DeliveryOrder](r.rw, docstore.UserCollection(uid, docstore.DeliveryOrders))
}

func (r *DeliveryOrderRepo) Create(ctx context.Context, uid string, e *entity.DeliveryOrder) error {
	return r.col(uid).create(ctx, e)
}

func (r *DeliveryOrderRepo) GetByID(ctx context.Context, uid, id string) (*entity.DeliveryOrder, error) {
	return r.col(uid).get(ctx, id)
}

func (r *DeliveryOrderRepo) List(ctx context.Context, uid string) ([]*entity.DeliveryOrder, error) {
	return r.col(uid).list(ctx, DeliveriesQuery(uid))
}

func (r *DeliveryOrderRepo) Update(ctx context.Context, uid string, e *entity.DeliveryOrder) error {
	return r.col(uid).set(ctx, e.ID, e)
}

// ── Traslados ───────────────────────────────────────────────────────────────

type TransferRepo struct{ rw docstore.ReadWriter }

func NewTransferRepository(rw docstore.ReadWriter) *TransferRepo { return &TransferRepo{rw: rw} }

func (r *TransferRepo) col(uid string) collection[entity.InternalTransfer, *entity.InternalTransfer] {
	return newCollection[entity.InternalTransfer](r.rw, docstore.UserCollection(uid, docstore.InternalTransfers))
}

func (r *TransferRepo) Create(ctx context.Context, uid string, e *entity.InternalTransfer) error {
	return r.col(uid).create(ctx, e)
}

func (r *TransferRepo) GetByID(ctx context.Context, uid, id string) (*entity.InternalTransfer, error) {
	return r.col(uid).get(ctx, id)
}

func (r *TransferRepo) List(ctx context.Context, uid string) ([]*entity.InternalTransfer, error) {
	return r.col(uid).list(ctx, TransfersQuery(uid))
}

func (r *TransferRepo) Update(ctx context.Context, uid string, e *entity.InternalTransfer) error {
	return r.col(uid).set(ctx, e.ID, e)
}

// ── Ajustes ─────────────────────────────────────────────────────────────────

type AdjustmentRepo struct{ rw docstore.ReadWriter }

func NewAdjustmentRepository(rw docstore.ReadWriter) *AdjustmentRepo { return &AdjustmentRepo{rw: rw} }

func (r *AdjustmentRepo) col(uid string) collection[entity.StockAdjustment, *entity.StockAdjustment] {
	return newCollection[entity.StockAdjustment](r.rw, docstore.UserCollection(uid, docstore.StockAdjustments))
}

func (r *AdjustmentRepo) Create(ctx context.Context, uid string, e *entity.StockAdjustment) error {
	return r.col(uid).create(ctx, e)
}

func (r *AdjustmentRepo) List(ctx context.Context, uid string) ([]*entity.StockAdjustment, error) {
	return r.col(uid).list(ctx, AdjustmentsQuery(uid))
}
