package inventory

import (
	"context"

	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción del almacén, pasando repositorios atados a esa tx.
// Garantiza que el cambio de estado y el movimiento de stock se apliquen juntos o no se apliquen.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error
}
