package memstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
)

// decodeFields decodifica un documento conservando los números como json.Number.
func decodeFields(raw json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// normalize convierte un valor Go al mismo modelo que decodeFields.
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// lookup resuelve rutas con punto dentro de objetos anidados.
func lookup(fields map[string]any, path string) (any, bool) {
	var cur any = fields
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// rank orden entre tipos distintos: null < bool < número < string < resto.
func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case json.Number:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case json.Number:
		dx, errX := decimal.NewFromString(x.String())
		dy, errY := decimal.NewFromString(b.(json.Number).String())
		if errX != nil || errY != nil {
			return strings.Compare(x.String(), b.(json.Number).String())
		}
		return dx.Cmp(dy)
	case string:
		return strings.Compare(x, b.(string))
	case nil:
		return 0
	}
	if reflect.DeepEqual(a, b) {
		return 0
	}
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	return bytes.Compare(ja, jb)
}

func equalValues(a, b any) bool {
	return rank(a) == rank(b) && compareValues(a, b) == 0
}

// matches evalúa los filtros (AND). Un campo ausente no cumple ningún filtro
// y los tipos distintos solo pueden ser "!=".
func matches(fields map[string]any, filters []docstore.Filter) (bool, error) {
	for _, f := range filters {
		got, ok := lookup(fields, f.Field)
		if !ok {
			return false, nil
		}
		want, err := normalize(f.Value)
		if err != nil {
			return false, fmt.Errorf("filtro %s: %w", f.Field, err)
		}
		if !evaluate(got, f.Op, want) {
			return false, nil
		}
	}
	return true, nil
}

func evaluate(got any, op docstore.Op, want any) bool {
	switch op {
	case docstore.OpIn:
		list, ok := want.([]any)
		if !ok {
			return false
		}
		for _, candidate := range list {
			if equalValues(got, candidate) {
				return true
			}
		}
		return false
	case docstore.OpEqual:
		return equalValues(got, want)
	case docstore.OpNotEqual:
		return !equalValues(got, want)
	}
	if rank(got) != rank(want) {
		return false
	}
	c := compareValues(got, want)
	switch op {
	case docstore.OpLess:
		return c < 0
	case docstore.OpLessEq:
		return c <= 0
	case docstore.OpGreater:
		return c > 0
	case docstore.OpGreaterEq:
		return c >= 0
	}
	return false
}
