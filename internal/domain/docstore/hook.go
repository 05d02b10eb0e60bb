package docstore

import (
	"context"
	"sync"
)

// CommitHook recibe las colecciones modificadas después de cada escritura confirmada.
type CommitHook func(ctx context.Context, paths []string)

// HookedStore invoca un CommitHook tras cada escritura exitosa (fuera o dentro de RunInTx).
type HookedStore struct {
	Store
	hook CommitHook
}

// WithCommitHook envuelve store.
func WithCommitHook(store Store, hook CommitHook) *HookedStore {
	return &HookedStore{Store: store, hook: hook}
}

func (s *HookedStore) fire(ctx context.Context, paths ...string) {
	if s.hook != nil && len(paths) > 0 {
		s.hook(ctx, paths)
	}
}

func (s *HookedStore) Add(ctx context.Context, path string, data any) (string, error) {
	id, err := s.Store.Add(ctx, path, data)
	if err == nil {
		s.fire(ctx, Clean(path))
	}
	return id, err
}

func (s *HookedStore) Set(ctx context.Context, path, id string, data any) error {
	err := s.Store.Set(ctx, path, id, data)
	if err == nil {
		s.fire(ctx, Clean(path))
	}
	return err
}

func (s *HookedStore) Update(ctx context.Context, path, id string, patch map[string]any) error {
	err := s.Store.Update(ctx, path, id, patch)
	if err == nil {
		s.fire(ctx, Clean(path))
	}
	return err
}

func (s *HookedStore) Delete(ctx context.Context, path, id string) error {
	err := s.Store.Delete(ctx, path, id)
	if err == nil {
		s.fire(ctx, Clean(path))
	}
	return err
}

func (s *HookedStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx ReadWriter) error) error {
	rec := &recordingTx{touched: map[string]struct{}{}}
	err := s.Store.RunInTx(ctx, func(ctx context.Context, tx ReadWriter) error {
		rec.ReadWriter = tx
		return fn(ctx, rec)
	})
	if err != nil {
		return err
	}
	s.fire(ctx, rec.paths()...)
	return nil
}

type recordingTx struct {
	ReadWriter
	mu      sync.Mutex
	touched map[string]struct{}
}

func (t *recordingTx) Lock(ctx context.Context, key string) error {
	return Lock(ctx, t.ReadWriter, key)
}

func (t *recordingTx) mark(path string) {
	t.mu.Lock()
	t.touched[Clean(path)] = struct{}{}
	t.mu.Unlock()
}

func (t *recordingTx) paths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.touched))
	for p := range t.touched {
		out = append(out, p)
	}
	return out
}

func (t *recordingTx) Add(ctx context.Context, path string, data any) (string, error) {
	id, err := t.ReadWriter.Add(ctx, path, data)
	if err == nil {
		t.mark(path)
	}
	return id, err
}

func (t *recordingTx) Set(ctx context.Context, path, id string, data any) error {
	err := t.ReadWriter.Set(ctx, path, id, data)
	if err == nil {
		t.mark(path)
	}
	return err
}

func (t *recordingTx) Update(ctx context.Context, path, id string, patch map[string]any) error {
	err := t.ReadWriter.Update(ctx, path, id, patch)
	if err == nil {
		t.mark(path)
	}
	return err
}

func (t *recordingTx) Delete(ctx context.Context, path, id string) error {
	err := t.ReadWriter.Delete(ctx, path, id)
	if err == nil {
		t.mark(path)
	}
	return err
}
