package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/greengrocer-ims/internal/domain"
	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
)

var _ docstore.Store = (*DocumentStore)(nil)

// DocumentStore implementación de docstore.Store sobre la tabla documents (JSONB).
// Los cambios se observan con LISTEN/NOTIFY a través de un ChangeFeed compartido.
type DocumentStore struct {
	documentRW
	tx   *TxRunner
	feed *ChangeFeed
}

// NewDocumentStore construye el store. feed puede ser nil si no se usará Watch.
func NewDocumentStore(pool *pgxpool.Pool, feed *ChangeFeed) *DocumentStore {
	return &DocumentStore{
		documentRW: documentRW{q: pool},
		tx:         NewTxRunner(pool),
		feed:       feed,
	}
}

// RunInTx ejecuta fn en una transacción; los Get dentro de ella bloquean la fila (FOR UPDATE).
func (s *DocumentStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx docstore.ReadWriter) error) error {
	return s.tx.Run(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &documentRW{q: tx, lock: true})
	})
}

// Watch observa una consulta: snapshot inicial y uno nuevo por cada NOTIFY de la colección.
func (s *DocumentStore) Watch(ctx context.Context, q *docstore.Query) (<-chan docstore.Snapshot, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if s.feed == nil {
		return nil, errors.New("watch: change feed no configurado")
	}
	trig, err := s.feed.Subscribe(docstore.Clean(q.Path))
	if err != nil {
		return nil, err
	}
	go func() {
		<-ctx.Done()
		s.feed.Unsubscribe(docstore.Clean(q.Path), trig)
	}()
	return docstore.Stream(ctx, trig, func(ctx context.Context) ([]docstore.Document, error) {
		return s.Query(ctx, q)
	}), nil
}

// documentRW operaciones CRUD sobre un Querier (pool o tx).
type documentRW struct {
	q    Querier
	lock bool
}

const advisoryLockSQL = `SELECT pg_advisory_xact_lock(hashtext($1))`

// Lock toma un advisory lock de transacción: se libera solo con commit o rollback.
func (r *documentRW) Lock(ctx context.Context, key string) error {
	if !r.lock {
		return fmt.Errorf("lock %s: fuera de una transacción: %w", key, domain.ErrInvalidInput)
	}
	if _, err := r.q.Exec(ctx, advisoryLockSQL, key); err != nil {
		return fmt.Errorf("advisory lock %s: %w", key, err)
	}
	return nil
}

func (r *documentRW) Get(ctx context.Context, path, id string) (*docstore.Document, error) {
	query := `SELECT data, created_at, updated_at FROM documents WHERE collection_path = $1 AND id = $2`
	if r.lock {
		query += ` FOR UPDATE`
	}
	d := docstore.Document{ID: id}
	var data []byte
	err := r.q.QueryRow(ctx, query, docstore.Clean(path), id).Scan(&data, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document %s/%s: %w", path, id, err)
	}
	d.Data = json.RawMessage(data)
	return &d, nil
}

func (r *documentRW) Query(ctx context.Context, q *docstore.Query) ([]docstore.Document, error) {
	sql, args, err := buildSelect(q, false)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Path, err)
	}
	defer rows.Close()

	var out []docstore.Document
	for rows.Next() {
		var d docstore.Document
		var data []byte
		if err := rows.Scan(&d.ID, &data, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.Data = json.RawMessage(data)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Path, err)
	}
	return out, nil
}

func (r *documentRW) Add(ctx context.Context, path string, data any) (string, error) {
	if err := docstore.ValidateCollectionPath(path); err != nil {
		return "", err
	}
	raw, err := docstore.Encode(data)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	query := `INSERT INTO documents (collection_path, id, data) VALUES ($1, $2, $3::text::jsonb)`
	if _, err := r.q.Exec(ctx, query, docstore.Clean(path), id, string(raw)); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("add %s: %w", path, domain.ErrDuplicate)
		}
		return "", fmt.Errorf("insert document %s: %w", path, err)
	}
	return id, nil
}

func (r *documentRW) Set(ctx context.Context, path, id string, data any) error {
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
	query := `
		INSERT INTO documents (collection_path, id, data) VALUES ($1, $2, $3::text::jsonb)
		ON CONFLICT (collection_path, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, docstore.Clean(path), id, string(raw)); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("set %s/%s: %w", path, id, domain.ErrDuplicate)
		}
		return fmt.Errorf("upsert document %s/%s: %w", path, id, err)
	}
	return nil
}

func (r *documentRW) Update(ctx context.Context, path, id string, patch map[string]any) error {
	raw, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	query := `UPDATE documents SET data = data || $3::text::jsonb, updated_at = now() WHERE collection_path = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, docstore.Clean(path), id, string(raw))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update %s/%s: %w", path, id, domain.ErrDuplicate)
		}
		return fmt.Errorf("update document %s/%s: %w", path, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update %s/%s: %w", path, id, domain.ErrNotFound)
	}
	return nil
}

func (r *documentRW) Delete(ctx context.Context, path, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM documents WHERE collection_path = $1 AND id = $2`, docstore.Clean(path), id)
	if err != nil {
		return fmt.Errorf("delete document %s/%s: %w", path, id, err)
	}
	return nil
}
