package postgres

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
)

var sqlOps = map[docstore.Op]string{
	docstore.OpLess:      "<",
	docstore.OpLessEq:    "<=",
	docstore.OpGreater:   ">",
	docstore.OpGreaterEq: ">=",
}

// selectBuilder arma el SELECT de una consulta. Los nombres de campo y los valores
// viajan siempre como parámetros ($n::text[] y $n::text::jsonb), nunca interpolados.
type selectBuilder struct {
	sb   strings.Builder
	args []any
}

func (b *selectBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *selectBuilder) field(name string) string {
	return "(data #> " + b.arg(strings.Split(name, ".")) + "::text[])"
}

func (b *selectBuilder) jsonValue(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("filtro: %w", err)
	}
	return "(" + b.arg(string(raw)) + "::text)::jsonb", nil
}

// buildSelect devuelve el SQL y los argumentos para q. Con lock agrega FOR UPDATE.
func buildSelect(q *docstore.Query, lock bool) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	b := &selectBuilder{}
	b.sb.WriteString("SELECT id, data, created_at, updated_at FROM documents WHERE collection_path = ")
	b.sb.WriteString(b.arg(docstore.Clean(q.Path)))

	for _, f := range q.Filters {
		field := b.field(f.Field)
		val, err := b.jsonValue(f.Value)
		if err != nil {
			return "", nil, err
		}
		b.sb.WriteString(" AND ")
		switch f.Op {
		case docstore.OpEqual:
			fmt.Fprintf(&b.sb, "%s = %s", field, val)
		case docstore.OpNotEqual:
			fmt.Fprintf(&b.sb, "%s IS NOT NULL AND %s <> %s", field, field, val)
		case docstore.OpIn:
			fmt.Fprintf(&b.sb, "%s IN (SELECT jsonb_array_elements(%s))", field, val)
		default:
			// jsonb ordena tipos distintos entre sí; exigir el mismo tipo evita que "5" > 3.
			fmt.Fprintf(&b.sb, "jsonb_typeof(%s) = jsonb_typeof(%s) AND %s %s %s", field, val, field, sqlOps[f.Op], val)
		}
	}

	b.sb.WriteString(" ORDER BY ")
	for _, o := range q.Orders {
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&b.sb, "%s %s NULLS LAST, ", b.field(o.Field), dir)
	}
	b.sb.WriteString("id")

	if q.Max > 0 {
		b.sb.WriteString(" LIMIT " + strconv.Itoa(q.Max))
	}
	if lock {
		b.sb.WriteString(" FOR UPDATE")
	}
	return b.sb.String(), b.args, nil
}
