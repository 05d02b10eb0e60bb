// Package memstore implementa docstore.Store en memoria: transacciones
// serializables por copia del estado y watchers que se disparan al confirmar.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/greengrocer-ims/internal/domain"
	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
)

var _ docstore.Store = (*Store)(nil)

type record struct {
	data      json.RawMessage
	createdAt time.Time
	updatedAt time.Time
}

// state ruta de colección -> id -> documento. Los record son inmutables, así que
// clonar el estado solo copia los mapas.
type state map[string]map[string]record

func (st state) clone() state {
	out := make(state, len(st))
	for path, docs := range st {
		cp := make(map[string]record, len(docs))
		for id, r := range docs {
			cp[id] = r
		}
		out[path] = cp
	}
	return out
}

// Option configura el Store.
type Option func(*Store)

// WithUnique declara un campo único dentro de una colección (equivale a un índice único).
func WithUnique(path, field string) Option {
	return func(s *Store) {
		s.unique[docstore.Clean(path)] = append(s.unique[docstore.Clean(path)], field)
	}
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store almacén de documentos en memoria, seguro para uso concurrente.
type Store struct {
	mu       sync.RWMutex
	docs     state
	watchers map[string]map[*docstore.Trigger]struct{}
	unique   map[string][]string
	now      func() time.Time
}

// New crea un Store vacío.
func New(opts ...Option) *Store {
	s := &Store{
		docs:     state{},
		watchers: map[string]map[*docstore.Trigger]struct{}{},
		unique:   map[string][]string{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) view(st state) *txView {
	return &txView{st: st, store: s, touched: map[string]struct{}{}}
}

// ── Lecturas ────────────────────────────────────────────────────────────────

func (s *Store) Get(ctx context.Context, path, id string) (*docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view(s.docs).Get(ctx, path, id)
}

func (s *Store) Query(ctx context.Context, q *docstore.Query) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view(s.docs).Query(ctx, q)
}

// ── Escrituras ──────────────────────────────────────────────────────────────

func (s *Store) write(fn func(v *txView) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view(s.docs)
	if err := fn(v); err != nil {
		return err
	}
	s.notify(v.touched)
	return nil
}

func (s *Store) Add(ctx context.Context, path string, data any) (string, error) {
	var id string
	err := s.write(func(v *txView) error {
		var err error
		id, err = v.Add(ctx, path, data)
		return err
	})
	return id, err
}

func (s *Store) Set(ctx context.Context, path, id string, data any) error {
	return s.write(func(v *txView) error { return v.Set(ctx, path, id, data) })
}

func (s *Store) Update(ctx context.Context, path, id string, patch map[string]any) error {
	return s.write(func(v *txView) error { return v.Update(ctx, path, id, patch) })
}

func (s *Store) Delete(ctx context.Context, path, id string) error {
	return s.write(func(v *txView) error { return v.Delete(ctx, path, id) })
}

// RunInTx ejecuta fn sobre una copia del estado; solo se publica si fn no falla.
// Mantiene el lock de escritura durante fn, así que las transacciones son serializables.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx docstore.ReadWriter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := s.docs.clone()
	v := s.view(staged)
	if err := fn(ctx, v); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.docs = staged
	s.notify(v.touched)
	return nil
}

// ── Watch ───────────────────────────────────────────────────────────────────

func (s *Store) Watch(ctx context.Context, q *docstore.Query) (<-chan docstore.Snapshot, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	path := docstore.Clean(q.Path)
	trig := docstore.NewTrigger()

	s.mu.Lock()
	if s.watchers[path] == nil {
		s.watchers[path] = map[*docstore.Trigger]struct{}{}
	}
	s.watchers[path][trig] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers[path], trig)
		if len(s.watchers[path]) == 0 {
			delete(s.watchers, path)
		}
		s.mu.Unlock()
	}()

	return docstore.Stream(ctx, trig, func(ctx context.Context) ([]docstore.Document, error) {
		return s.Query(ctx, q)
	}), nil
}

// Watchers devuelve cuántos watchers activos tiene una colección.
func (s *Store) Watchers(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.watchers[docstore.Clean(path)])
}

// notify se llama con el lock de escritura tomado.
func (s *Store) notify(touched map[string]struct{}) {
	for path := range touched {
		for trig := range s.watchers[path] {
			trig.Fire()
		}
	}
}

// ── Vista transaccional ─────────────────────────────────────────────────────

// txView opera sobre un estado concreto (el vivo o una copia de transacción).
// El caller es responsable del locking.
type txView struct {
	st      state
	store   *Store
	touched map[string]struct{}
}

func (v *txView) Get(_ context.Context, path, id string) (*docstore.Document, error) {
	r, ok := v.st[docstore.Clean(path)][id]
	if !ok {
		return nil, nil
	}
	return &docstore.Document{ID: id, Data: r.data, CreatedAt: r.createdAt, UpdatedAt: r.updatedAt}, nil
}

func (v *txView) Query(_ context.Context, q *docstore.Query) ([]docstore.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	docs := v.st[docstore.Clean(q.Path)]
	rows := make([]row, 0, len(docs))
	for id, r := range docs {
		fields, err := decodeFields(r.data)
		if err != nil {
			return nil, fmt.Errorf("query %s/%s: %w", q.Path, id, err)
		}
		ok, err := matches(fields, q.Filters)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, row{id: id, rec: r, fields: fields})
		}
	}
	sortRows(rows, q.Orders)
	if q.Max > 0 && len(rows) > q.Max {
		rows = rows[:q.Max]
	}
	out := make([]docstore.Document, 0, len(rows))
	for _, r := range rows {
		out = append(out, docstore.Document{ID: r.id, Data: r.rec.data, CreatedAt: r.rec.createdAt, UpdatedAt: r.rec.updatedAt})
	}
	return out, nil
}

func (v *txView) put(path, id string, raw json.RawMessage, createdAt time.Time) error {
	if err := v.checkUnique(path, id, raw); err != nil {
		return err
	}
	if v.st[path] == nil {
		v.st[path] = map[string]record{}
	}
	v.st[path][id] = record{data: raw, createdAt: createdAt, updatedAt: v.store.now()}
	v.touched[path] = struct{}{}
	return nil
}

func (v *txView) checkUnique(path, id string, raw json.RawMessage) error {
	fieldsList := v.store.unique[path]
	if len(fieldsList) == 0 {
		return nil
	}
	mine, err := decodeFields(raw)
	if err != nil {
		return err
	}
	for otherID, r := range v.st[path] {
		if otherID == id {
			continue
		}
		theirs, err := decodeFields(r.data)
		if err != nil {
			return err
		}
		for _, f := range fieldsList {
			a, okA := lookup(mine, f)
			b, okB := lookup(theirs, f)
			if okA && okB && equalValues(a, b) {
				return fmt.Errorf("%s.%s: %w", path, f, domain.ErrDuplicate)
			}
		}
	}
	return nil
}

func (v *txView) Add(_ context.Context, path string, data any) (string, error) {
	if err := docstore.ValidateCollectionPath(path); err != nil {
		return "", err
	}
	raw, err := docstore.Encode(data)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := v.put(docstore.Clean(path), id, raw, v.store.now()); err != nil {
		return "", err
	}
	return id, nil
}

func (v *txView) Set(_ context.Context, path, id string, data any) error {
	if err := docstore.ValidateCollectionPath(path); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("set %s: id vacío: %w", path, domain.ErrInvalidInput)
	}
	raw, err := docstore.Encode(data)
	if err != nil {
		return err
	}
	p := docstore.Clean(path)
	created := v.store.now()
	if prev, ok := v.st[p][id]; ok {
		created = prev.createdAt
	}
	return v.put(p, id, raw, created)
}

func (v *txView) Update(_ context.Context, path, id string, patch map[string]any) error {
	p := docstore.Clean(path)
	prev, ok := v.st[p][id]
	if !ok {
		return fmt.Errorf("update %s/%s: %w", p, id, domain.ErrNotFound)
	}
	raw, err := docstore.MergePatch(prev.data, patch)
	if err != nil {
		return err
	}
	return v.put(p, id, raw, prev.createdAt)
}

func (v *txView) Delete(_ context.Context, path, id string) error {
	p := docstore.Clean(path)
	if _, ok := v.st[p][id]; !ok {
		return nil
	}
	delete(v.st[p], id)
	v.touched[p] = struct{}{}
	return nil
}

// ── Orden ───────────────────────────────────────────────────────────────────

type row struct {
	id     string
	rec    record
	fields map[string]any
}

// sortRows ordena por los criterios dados; los campos ausentes van al final
// y el id desempata.
func sortRows(rows []row, orders []docstore.Order) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range orders {
			a, okA := lookup(rows[i].fields, o.Field)
			b, okB := lookup(rows[j].fields, o.Field)
			switch {
			case !okA && !okB:
				continue
			case !okA:
				return false
			case !okB:
				return true
			}
			c := compareValues(a, b)
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return rows[i].id < rows[j].id
	})
}
