package inventory

import (
	"context"

	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
	"github.com/jhoicas/greengrocer-ims/internal/domain/inventory"
	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
)

// HistoryUseCase historial unificado de movimientos con búsqueda y filtros.
type HistoryUseCase struct {
	repos repository.Repositories
}

// NewHistoryUseCase construye el caso de uso.
func NewHistoryUseCase(repos repository.Repositories) *HistoryUseCase {
	return &HistoryUseCase{repos: repos}
}

// List devuelve los movimientos del usuario que cumplen el filtro, más recientes primero.
func (uc *HistoryUseCase) List(ctx context.Context, uid string, q dto.HistoryQuery) ([]inventory.Movement, error) {
	snap, err := LoadSnapshot(ctx, uc.repos, uid)
	if err != nil {
		return nil, err
	}
	return inventory.FilterHistory(snap.History(), inventory.HistoryFilter{
		Search: q.Search,
		Type:   q.Type,
		Status: q.Status,
	}), nil
}

// ToMovementDTOs adapta movimientos a la salida HTTP.
func ToMovementDTOs(movements []inventory.Movement) []dto.MovementDTO {
	out := make([]dto.MovementDTO, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.MovementDTO{
			ID:            m.ID,
			Reference:     m.Reference,
			Type:          string(m.Type),
			Date:          m.Date,
			Product:       m.Product,
			Warehouse:     m.Warehouse,
			Quantity:      m.Quantity,
			RelatedEntity: m.RelatedEntity,
			Status:        string(m.Status),
		})
	}
	return out
}
