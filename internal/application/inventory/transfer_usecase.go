package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
	"github.com/jhoicas/greengrocer-ims/internal/domain"
	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
	"github.com/jhoicas/greengrocer-ims/internal/domain/inventory"
	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
)

// ── Traslados ───────────────────────────────────────────────────────────────

// CreateTransfer crea un traslado en Draft. Origen y destino iguales se rechazan
// con entity.ErrSameWarehouse antes de cualquier escritura.
func (uc *OperationsUseCase) CreateTransfer(ctx context.Context, uid string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	now := uc.now()
	t := &entity.InternalTransfer{
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		ProductID:       in.ProductID,
		Quantity:        in.Quantity,
		TransferDate:    dateOr(in.TransferDate, now),
		Status:          entity.StatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := t.Check(); err != nil {
		if errors.Is(err, entity.ErrSameWarehouse) {
			return nil, err
		}
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	if err := checkProductAndWarehouse(ctx, uc.repos, t.ProductID, t.FromWarehouseID, t.ToWarehouseID); err != nil {
		return nil, err
	}
	if err := uc.repos.Transfers.Create(ctx, uid, t); err != nil {
		return nil, err
	}
	return toTransferResponse(t), nil
}

// GetTransfer obtiene un traslado del usuario.
func (uc *OperationsUseCase) GetTransfer(ctx context.Context, uid, id string) (*dto.TransferResponse, error) {
	t, err := uc.repos.Transfers.GetByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return toTransferResponse(t), nil
}

// ListTransfers lista los traslados del usuario, más recientes primero.
func (uc *OperationsUseCase) ListTransfers(ctx context.Context, uid string) ([]dto.TransferResponse, error) {
	list, err := uc.repos.Transfers.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTransferResponse(t))
	}
	return items, nil
}

// TransferAction aplica una acción del flujo. Al validar mueve la cantidad del
// origen al destino en la misma transacción.
func (uc *OperationsUseCase) TransferAction(ctx context.Context, uid, id, action string) (*dto.TransferResponse, error) {
	a, err := parseAction(action)
	if err != nil {
		return nil, err
	}
	var out *entity.InternalTransfer
	err = uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		t, err := repos.Transfers.GetByID(ctx, uid, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		next, err := entity.TransferWorkflow.Apply(t.Status, a)
		if err != nil {
			return err
		}
		now := uc.now()
		if next == entity.StatusDone {
			if err := t.Check(); err != nil {
				return err
			}
			if err := registerMovement(ctx, repos.Products, t.ProductID, t.FromWarehouseID, t.Quantity.Neg(), now); err != nil {
				return err
			}
			if err := registerMovement(ctx, repos.Products, t.ProductID, t.ToWarehouseID, t.Quantity, now); err != nil {
				return err
			}
		}
		t.Status = next
		t.UpdatedAt = now
		out = t
		return repos.Transfers.Update(ctx, uid, t)
	})
	if err != nil {
		return nil, err
	}
	return toTransferResponse(out), nil
}

func toTransferResponse(t *entity.InternalTransfer) *dto.TransferResponse {
	return &dto.TransferResponse{
		ID:              t.ID,
		Reference:       inventory.Reference(inventory.MovementTransfer, t.ID),
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		ProductID:       t.ProductID,
		Quantity:        t.Quantity,
		TransferDate:    t.TransferDate,
		Status:          string(t.Status),
		Actions:         actionNames(entity.TransferWorkflow.Actions(t.Status)),
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// ── Ajustes ─────────────────────────────────────────────────────────────────

// CreateAdjustment fija el stock contado del producto en la bodega y registra el
// ajuste con la cantidad anterior y la diferencia, todo en una transacción.
func (uc *OperationsUseCase) CreateAdjustment(ctx context.Context, uid string, in dto.CreateAdjustmentRequest) (*dto.AdjustmentResponse, error) {
	if in.CountedQuantity.IsNegative() {
		return nil, fmt.Errorf("countedQuantity negativa: %w", domain.ErrInvalidInput)
	}
	if err := checkProductAndWarehouse(ctx, uc.repos, in.ProductID, in.WarehouseID); err != nil {
		return nil, err
	}
	var out *entity.StockAdjustment
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		product, err := repos.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("producto %s: %w", in.ProductID, domain.ErrNotFound)
		}
		now := uc.now()
		previous := product.StockIn(in.WarehouseID)
		product.SetStock(in.WarehouseID, in.CountedQuantity)
		product.UpdatedAt = now
		if err := repos.Products.Update(ctx, product); err != nil {
			return err
		}
		adj := &entity.StockAdjustment{
			WarehouseID:      in.WarehouseID,
			ProductID:        in.ProductID,
			CountedQuantity:  in.CountedQuantity,
			PreviousQuantity: previous,
			Difference:       in.CountedQuantity.Sub(previous),
			Reason:           in.Reason,
			AdjustmentDate:   dateOr(in.AdjustmentDate, now),
			CreatedAt:        now,
		}
		if err := repos.Adjustments.Create(ctx, uid, adj); err != nil {
			return err
		}
		out = adj
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toAdjustmentResponse(out), nil
}

// ListAdjustments lista los ajustes del usuario, más recientes primero.
func (uc *OperationsUseCase) ListAdjustments(ctx context.Context, uid string) ([]dto.AdjustmentResponse, error) {
	list, err := uc.repos.Adjustments.List(ctx, uid)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AdjustmentResponse, 0, len(list))
	for _, a := range list {
		items = append(items, *toAdjustmentResponse(a))
	}
	return items, nil
}

func toAdjustmentResponse(a *entity.StockAdjustment) *dto.AdjustmentResponse {
	return &dto.AdjustmentResponse{
		ID:               a.ID,
		Reference:        inventory.Reference(inventory.MovementAdjustment, a.ID),
		WarehouseID:      a.WarehouseID,
		ProductID:        a.ProductID,
		CountedQuantity:  a.CountedQuantity,
		PreviousQuantity: a.PreviousQuantity,
		Difference:       a.Difference,
		Reason:           a.Reason,
		AdjustmentDate:   a.AdjustmentDate,
		CreatedAt:        a.CreatedAt,
	}
}
