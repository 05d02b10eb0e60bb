package docstore

import (
	"context"
	"fmt"

	"github.com/jhoicas/greengrocer-ims/internal/domain"
)

// ScopedStore restringe un Store a un usuario: las rutas users/{otro}/... y la
// colección de cuentas devuelven domain.ErrPermissionDenied.
type ScopedStore struct {
	inner Store
	uid   string
}

var _ Store = (*ScopedStore)(nil)

// ForUser envuelve store con las reglas de acceso del usuario uid.
func ForUser(store Store, uid string) *ScopedStore {
	return &ScopedStore{inner: store, uid: uid}
}

func (s *ScopedStore) check(path string) error {
	p := Clean(path)
	if p == Accounts {
		return fmt.Errorf("%s: %w", p, domain.ErrPermissionDenied)
	}
	if owner, ok := OwnerOf(p); ok && owner != s.uid {
		return fmt.Errorf("%s: %w", p, domain.ErrPermissionDenied)
	}
	return nil
}

func (s *ScopedStore) Get(ctx context.Context, path, id string) (*Document, error) {
	if err := s.check(path); err != nil {
		return nil, err
	}
	return s.inner.Get(ctx, path, id)
}

func (s *ScopedStore) Query(ctx context.Context, q *Query) ([]Document, error) {
	if err := s.check(q.Path); err != nil {
		return nil, err
	}
	return s.inner.Query(ctx, q)
}

func (s *ScopedStore) Add(ctx context.Context, path string, data any) (string, error) {
	if err := s.check(path); err != nil {
		return "", err
	}
	return s.inner.Add(ctx, path, data)
}

func (s *ScopedStore) Set(ctx context.Context, path, id string, data any) error {
	if err := s.check(path); err != nil {
		return err
	}
	return s.inner.Set(ctx, path, id, data)
}

func (s *ScopedStore) Update(ctx context.Context, path, id string, patch map[string]any) error {
	if err := s.check(path); err != nil {
		return err
	}
	return s.inner.Update(ctx, path, id, patch)
}

func (s *ScopedStore) Delete(ctx context.Context, path, id string) error {
	if err := s.check(path); err != nil {
		return err
	}
	return s.inner.Delete(ctx, path, id)
}

func (s *ScopedStore) Watch(ctx context.Context, q *Query) (<-chan Snapshot, error) {
	if err := s.check(q.Path); err != nil {
		return nil, err
	}
	return s.inner.Watch(ctx, q)
}

func (s *ScopedStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx ReadWriter) error) error {
	return s.inner.RunInTx(ctx, func(ctx context.Context, tx ReadWriter) error {
		return fn(ctx, &scopedTx{inner: tx, check: s.check})
	})
}

type scopedTx struct {
	inner ReadWriter
	check func(string) error
}

func (t *scopedTx) Get(ctx context.Context, path, id string) (*Document, error) {
	if err := t.check(path); err != nil {
		return nil, err
	}
	return t.inner.Get(ctx, path, id)
}

func (t *scopedTx) Query(ctx context.Context, q *Query) ([]Document, error) {
	if err := t.check(q.Path); err != nil {
		return nil, err
	}
	return t.inner.Query(ctx, q)
}

func (t *scopedTx) Add(ctx context.Context, path string, data any) (string, error) {
	if err := t.check(path); err != nil {
		return "", err
	}
	return t.inner.Add(ctx, path, data)
}

func (t *scopedTx) Set(ctx context.Context, path, id string, data any) error {
	if err := t.check(path); err != nil {
		return err
	}
	return t.inner.Set(ctx, path, id, data)
}

func (t *scopedTx) Update(ctx context.Context, path, id string, patch map[string]any) error {
	if err := t.check(path); err != nil {
		return err
	}
	return t.inner.Update(ctx, path, id, patch)
}

func (t *scopedTx) Delete(ctx context.Context, path, id string) error {
	if err := t.check(path); err != nil {
		return err
	}
	return t.inner.Delete(ctx, path, id)
}

func (t *scopedTx) Lock(ctx context.Context, key string) error {
	return Lock(ctx, t.inner, key)
}
