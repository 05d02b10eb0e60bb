package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
	"github.com/jhoicas/greengrocer-ims/internal/domain"
	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
	"github.com/jhoicas/greengrocer-ims/internal/domain/inventory"
	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
)

// OperationsUseCase recepciones, entregas, traslados y ajustes de un usuario.
// Los cambios de estado que mueven stock (validate, ajustes) corren en una sola
// transacción: si falta stock no se escribe nada y el documento conserva su estado.
type OperationsUseCase struct {
	txRunner TxRunner
	repos    repository.Repositories
	now      func() time.Time
}

// NewOperationsUseCase construye el caso de uso. repos se usa para lecturas fuera de tx.
func NewOperationsUseCase(txRunner TxRunner, repos repository.Repositories) *OperationsUseCase {
	return &OperationsUseCase{txRunner: txRunner, repos: repos, now: time.Now}
}

func parseAction(action string) (entity.Action, error) {
	a, ok := entity.ParseAction(action)
	if !ok {
		return "", fmt.Errorf("acción %q: %w", action, domain.ErrInvalidInput)
	}
	return a, nil
}

func dateOr(t *time.Time, now time.Time) time.Time {
	if t == nil || t.IsZero() {
		return now
	}
	return *t
}

func toLines(in []dto.StockLineDTO) []entity.StockLine {
	out := make([]entity.StockLine, 0, len(in))
	for _, l := range in {
		out = append(out, entity.StockLine{ProductID: l.ProductID, WarehouseID: l.WarehouseID, Quantity: l.Quantity})
	}
	return out
}

func fromLines(in []entity.StockLine) []dto.StockLineDTO {
	out := make([]dto.StockLineDTO, 0, len(in))
	for _, l := range in {
		out = append(out, dto.StockLineDTO{ProductID: l.ProductID, WarehouseID: l.WarehouseID, Quantity: l.Quantity})
	}
	return out
}

func actionNames(actions []entity.Action) []string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, string(a))
	}
	return out
}

// ── Recepciones ─────────────────────────────────────────────────────────────

// CreateReceipt crea una recepción en Draft.
func (uc *OperationsUseCase) CreateReceipt(ctx context.Context, uid string, in dto.CreateReceiptRequest) (*dto.ReceiptResponse, error) {
	supplier, err := uc.repos.Suppliers.GetByID(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("proveedor %s no existe: %w", in.SupplierID, domain.ErrInvalidInput)
	}
	lines := toLines(in.Lines)
	if err := checkLines(ctx, uc.repos, lines); err != nil {
		return nil, err
	}
	now := uc.now()
	r := &entity.Receipt{
		SupplierID:  in.SupplierID,
		ReceiptDate: dateOr(in.ReceiptDate, now),
		Status:      entity.StatusDraft,
		Lines:       lines,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repos.Receipts.Create(ctx, uid, r); err != nil {
		return nil, err
	}
	return toReceiptResponse(r), nil
}

// GetReceipt obtiene una recepción del usuario.
func (uc *OperationsUseCase) GetReceipt(ctx context.Context, uid, id string) (*dto.ReceiptResponse, error) {
	r, err := uc.repos.Receipts.GetByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return toReceiptResponse(r), nil
}

// ListReceipts lista las recepciones del usuario, más recientes primero.
func (uc *OperationsUseCase) ListReceipts(ctx context.Context, uid string) ([]dto.ReceiptResponse, error) {
	list, err := uc.repos.Receipts.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReceiptResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toReceiptResponse(r))
	}
	return items, nil
}

// ReceiptAction aplica una acción del flujo. Al validar suma las líneas al stock.
func (uc *OperationsUseCase) ReceiptAction(ctx context.Context, uid, id, action string) (*dto.ReceiptResponse, error) {
	a, err := parseAction(action)
	if err != nil {
		return nil, err
	}
	var out *entity.Receipt
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		r, err := repos.Receipts.GetByID(ctx, uid, id)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		next, err := entity.ReceiptWorkflow.Apply(r.Status, a)
		if err != nil {
			return err
		}
		now := uc.now()
		if next == entity.StatusDone {
			if err := registerLines(ctx, repos.Products, r.Lines, 1, now); err != nil {
				return err
			}
		}
		r.Status = next
		r.UpdatedAt = now
		out = r
		return repos.Receipts.Update(ctx, uid, r)
	})
	if err != nil {
		return nil, err
	}
	return toReceiptResponse(out), nil
}

func toReceiptResponse(r *entity.Receipt) *dto.ReceiptResponse {
	return &dto.ReceiptResponse{
		ID:          r.ID,
		Reference:   inventory.Reference(inventory.MovementReceipt, r.ID),
		SupplierID:  r.SupplierID,
		ReceiptDate: r.ReceiptDate,
		Status:      string(r.Status),
		Lines:       fromLines(r.Lines),
		Notes:       r.Notes,
		Actions:     actionNames(entity.ReceiptWorkflow.Actions(r.Status)),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ── Entregas ────────────────────────────────────────────────────────────────

// CreateDelivery crea una orden de entrega en Draft.
func (uc *OperationsUseCase) CreateDelivery(ctx context.Context, uid string, in dto.CreateDeliveryRequest) (*dto.DeliveryResponse, error) {
	customer, err := uc.repos.Customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("cliente %s no existe: %w", in.CustomerID, domain.ErrInvalidInput)
	}
	lines := toLines(in.Lines)
	if err := checkLines(ctx, uc.repos, lines); err != nil {
		return nil, err
	}
	now := uc.now()
	d := &entity.DeliveryOrder{
		CustomerID:   in.CustomerID,
		DeliveryDate: dateOr(in.DeliveryDate, now),
		Status:       entity.StatusDraft,
		Lines:        lines,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repos.Deliveries.Create(ctx, uid, d); err != nil {
		return nil, err
	}
	return toDeliveryResponse(d), nil
}

// GetDelivery obtiene una orden de entrega del usuario.
func (uc *OperationsUseCase) GetDelivery(ctx context.Context, uid, id string) (*dto.DeliveryResponse, error) {
	d, err := uc.repos.Deliveries.GetByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	return toDeliveryResponse(d), nil
}

// ListDeliveries lista las entregas del usuario, más recientes primero.
func (uc *OperationsUseCase) ListDeliveries(ctx context.Context, uid string) ([]dto.DeliveryResponse, error) {
	list, err := uc.repos.Deliveries.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DeliveryResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *toDeliveryResponse(d))
	}
	return items, nil
}

// DeliveryAction aplica una acción del flujo. Al validar descuenta las líneas del
// stock y falla con ErrInsufficientStock si alguna bodega no alcanza.
func (uc *OperationsUseCase) DeliveryAction(ctx context.Context, uid, id, action string) (*dto.DeliveryResponse, error) {
	a, err := parseAction(action)
	if err != nil {
		return nil, err
	}
	var out *entity.DeliveryOrder
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		d, err := repos.Deliveries.GetByID(ctx, uid, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		next, err := entity.DeliveryWorkflow.Apply(d.Status, a)
		if err != nil {
			return err
		}
		now := uc.now()
		if next == entity.StatusDone {
			if err := registerLines(ctx, repos.Products, d.Lines, -1, now); err != nil {
				return err
			}
		}
		d.Status = next
		d.UpdatedAt = now
		out = d
		return repos.Deliveries.Update(ctx, uid, d)
	})
	if err != nil {
		return nil, err
	}
	return toDeliveryResponse(out), nil
}

func toDeliveryResponse(d *entity.DeliveryOrder) *dto.DeliveryResponse {
	return &dto.DeliveryResponse{
		ID:           d.ID,
		Reference:    inventory.Reference(inventory.MovementDelivery, d.ID),
		CustomerID:   d.CustomerID,
		DeliveryDate: d.DeliveryDate,
		Status:       string(d.Status),
		Lines:        fromLines(d.Lines),
		Notes:        d.Notes,
		Actions:      actionNames(entity.DeliveryWorkflow.Actions(d.Status)),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
