// Package documents implementa los repositorios del dominio sobre docstore,
// válidos para cualquier driver (postgres o memoria) y para transacciones.
package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
)

// collection operaciones tipadas sobre una ruta de colección.
type collection[T any, P docstore.Identifiable[T]] struct {
	rw   docstore.ReadWriter
	path string
}

func newCollection[T any, P docstore.Identifiable[T]](rw docstore.ReadWriter, path string) collection[T, P] {
	return collection[T, P]{rw: rw, path: path}
}

// withoutID copia la entidad sin id: el id es la clave del documento, no un campo.
func withoutID[T any, P docstore.Identifiable[T]](e P) P {
	cp := *e
	P(&cp).SetID("")
	return &cp
}

func (c collection[T, P]) create(ctx context.Context, e P) error {
	id, err := c.rw.Add(ctx, c.path, withoutID[T, P](e))
	if err != nil {
		return fmt.Errorf("insert %s: %w", c.path, err)
	}
	e.SetID(id)
	return nil
}

func (c collection[T, P]) set(ctx context.Context, id string, e P) error {
	if err := c.rw.Set(ctx, c.path, id, withoutID[T, P](e)); err != nil {
		return fmt.Errorf("update %s/%s: %w", c.path, id, err)
	}
	return nil
}

// patch escribe solo fields sobre un documento existente (merge atómico del driver).
// Un campo ausente en la codificación (omitempty) se guarda como null. No crea el
// documento: si ya no existe devuelve un error que envuelve domain.ErrNotFound.
func (c collection[T, P]) patch(ctx context.Context, id string, e P, fields ...string) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", c.path, id, err)
	}
	var all map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&all); err != nil {
		return fmt.Errorf("encode %s/%s: %w", c.path, id, err)
	}
	changes := make(map[string]any, len(fields))
	for _, f := range fields {
		changes[f] = all[f]
	}
	if err := c.rw.Update(ctx, c.path, id, changes); err != nil {
		return fmt.Errorf("update %s/%s: %w", c.path, id, err)
	}
	return nil
}

func (c collection[T, P]) get(ctx context.Context, id string) (P, error) {
	doc, err := c.rw.Get(ctx, c.path, id)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", c.path, id, err)
	}
	if doc == nil {
		return nil, nil
	}
	return docstore.Decode[T, P](*doc)
}

func (c collection[T, P]) list(ctx context.Context, q *docstore.Query) ([]P, error) {
	if q == nil {
		q = docstore.Collection(c.path)
	}
	docs, err := c.rw.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.path, err)
	}
	return docstore.DecodeAll[T, P](docs)
}

func (c collection[T, P]) delete(ctx context.Context, id string) error {
	if err := c.rw.Delete(ctx, c.path, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.path, id, err)
	}
	return nil
}
