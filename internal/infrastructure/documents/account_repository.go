package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

// AccountRepo cuentas en la colección "accounts". El email se guarda en minúsculas;
// la unicidad la garantiza el driver (índice único en postgres, WithUnique en memoria).
type AccountRepo struct {
	c collection[entity.Account, *entity.Account]
}

func NewAccountRepository(rw docstore.ReadWriter) *AccountRepo {
	return &AccountRepo{c: newCollection[entity.Account](rw, docstore.Accounts)}
}

func (r *AccountRepo) Create(ctx context.Context, a *entity.Account) error {
	a.Email = normalizeEmail(a.Email)
	return r.c.create(ctx, a)
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.c.get(ctx, id)
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	q := docstore.Collection(docstore.Accounts).Where("email", docstore.OpEqual, normalizeEmail(email)).Limit(1)
	list, err := r.c.list(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (r *AccountRepo) Update(ctx context.Context, a *entity.Account) error {
	a.Email = normalizeEmail(a.Email)
	return r.c.patch(ctx, a.ID, a, "email", "displayName", "passwordHash", "updatedAt")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
