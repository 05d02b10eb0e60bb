// Package docstore define el puerto del almacén de documentos: colecciones de
// documentos JSON identificados por id, consultas con filtros y orden, transacciones
// y suscripciones a cambios. Los drivers viven en infrastructure (postgres, memstore).
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Document documento almacenado. Data es siempre un objeto JSON.
type Document struct {
	ID        string
	Data      json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DataTo decodifica Data en v.
func (d Document) DataTo(v any) error {
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", d.ID, err)
	}
	return nil
}

// Snapshot resultado completo de una consulta observada. Si Err no es nil,
// el stream termina después de entregarlo.
type Snapshot struct {
	Docs []Document
	Err  error
}

// Reader lecturas. Get devuelve (nil, nil) si el documento no existe.
type Reader interface {
	Get(ctx context.Context, path, id string) (*Document, error)
	Query(ctx context.Context, q *Query) ([]Document, error)
}

// Writer escrituras. Update aplica un merge superficial de patch y devuelve
// domain.ErrNotFound si el documento no existe; Delete es idempotente.
type Writer interface {
	Add(ctx context.Context, path string, data any) (string, error)
	Set(ctx context.Context, path, id string, data any) error
	Update(ctx context.Context, path, id string, patch map[string]any) error
	Delete(ctx context.Context, path, id string) error
}

// ReadWriter operaciones disponibles dentro y fuera de una transacción.
type ReadWriter interface {
	Reader
	Writer
}

// Watcher observa una consulta. El canal entrega un snapshot inicial y uno nuevo
// por cada cambio en la colección; se cierra cuando ctx se cancela o tras un error.
type Watcher interface {
	Watch(ctx context.Context, q *Query) (<-chan Snapshot, error)
}

// Store almacén completo.
type Store interface {
	ReadWriter
	Watcher
	// RunInTx ejecuta fn de forma atómica; si fn devuelve error no se persiste nada.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx ReadWriter) error) error
}

// Locker capacidad opcional de una transacción: lock exclusivo por clave que se
// libera con el commit o el rollback.
type Locker interface {
	Lock(ctx context.Context, key string) error
}

// Lock toma el lock key si tx lo soporta. Un driver sin Locker ya serializa sus
// transacciones (memstore).
func Lock(ctx context.Context, tx ReadWriter, key string) error {
	if l, ok := tx.(Locker); ok {
		return l.Lock(ctx, key)
	}
	return nil
}

// Encode serializa data a un objeto JSON.
func Encode(data any) (json.RawMessage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("encode document: se esperaba un objeto JSON")
	}
	return raw, nil
}

// MergePatch aplica un merge superficial de patch sobre base.
func MergePatch(base json.RawMessage, patch map[string]any) (json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &fields); err != nil {
			return nil, fmt.Errorf("merge patch: %w", err)
		}
	}
	for k, v := range patch {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("merge patch %s: %w", k, err)
		}
		fields[k] = raw
	}
	return json.Marshal(fields)
}
