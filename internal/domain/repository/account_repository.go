package repository

import (
	"context"

	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
)

// AccountRepository puerto de persistencia de cuentas de acceso.
// Create devuelve domain.ErrDuplicate si el email ya existe.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	Update(ctx context.Context, a *entity.Account) error
}
