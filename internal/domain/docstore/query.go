package docstore

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Op operador de comparación de un filtro.
type Op string

const (
	OpEqual     Op = "=="
	OpNotEqual  Op = "!="
	OpLess      Op = "<"
	OpLessEq    Op = "<="
	OpGreater   Op = ">"
	OpGreaterEq Op = ">="
	OpIn        Op = "in"
)

// ParseOp acepta tanto el símbolo como el alias textual (eq, lte, in...).
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(s) {
	case "==", "eq":
		return OpEqual, nil
	case "!=", "ne":
		return OpNotEqual, nil
	case "<", "lt":
		return OpLess, nil
	case "<=", "lte":
		return OpLessEq, nil
	case ">", "gt":
		return OpGreater, nil
	case ">=", "gte":
		return OpGreaterEq, nil
	case "in":
		return OpIn, nil
	}
	return "", fmt.Errorf("operador desconocido %q", s)
}

// Filter condición sobre un campo del documento. Field admite rutas con punto (warehouseStock.w1).
type Filter struct {
	Field string `json:"field"`
	Op    Op     `json:"op"`
	Value any    `json:"value"`
}

// Order criterio de orden.
type Order struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// Query consulta sobre una colección. Los métodos Where/OrderBy/Limit devuelven copias,
// por lo que una Query puede compartirse entre goroutines.
type Query struct {
	Path    string
	Filters []Filter
	Orders  []Order
	Max     int
}

// Collection crea una consulta sin filtros sobre la colección path.
func Collection(path string) *Query {
	return &Query{Path: path}
}

func (q *Query) clone() *Query {
	c := &Query{Path: q.Path, Max: q.Max}
	c.Filters = append([]Filter(nil), q.Filters...)
	c.Orders = append([]Order(nil), q.Orders...)
	return c
}

// Where agrega un filtro.
func (q *Query) Where(field string, op Op, value any) *Query {
	c := q.clone()
	c.Filters = append(c.Filters, Filter{Field: field, Op: op, Value: value})
	return c
}

// OrderBy agrega un criterio de orden.
func (q *Query) OrderBy(field string, desc bool) *Query {
	c := q.clone()
	c.Orders = append(c.Orders, Order{Field: field, Desc: desc})
	return c
}

// Limit limita la cantidad de documentos (0 = sin límite).
func (q *Query) Limit(n int) *Query {
	c := q.clone()
	c.Max = n
	return c
}

// Validate comprueba que la consulta sea ejecutable.
func (q *Query) Validate() error {
	if err := ValidateCollectionPath(q.Path); err != nil {
		return err
	}
	for _, f := range q.Filters {
		if f.Field == "" {
			return fmt.Errorf("filtro sin campo en %s", q.Path)
		}
		if _, err := ParseOp(string(f.Op)); err != nil {
			return err
		}
		if f.Op == OpIn {
			v := reflect.ValueOf(f.Value)
			if f.Value == nil || (v.Kind() != reflect.Slice && v.Kind() != reflect.Array) {
				return fmt.Errorf("el operador in requiere una lista en %s", f.Field)
			}
		}
	}
	for _, o := range q.Orders {
		if o.Field == "" {
			return fmt.Errorf("orden sin campo en %s", q.Path)
		}
	}
	if q.Max < 0 {
		return fmt.Errorf("límite negativo")
	}
	return nil
}

// Key devuelve la identidad estructural de la consulta: ruta | filtros | orden | límite.
// Dos consultas equivalentes construidas por separado producen la misma clave.
// Los filtros se combinan con AND, así que se ordenan para que su orden de declaración no cuente.
func (q *Query) Key() string {
	if q == nil {
		return ""
	}
	filters := make([]string, 0, len(q.Filters))
	for _, f := range q.Filters {
		raw, err := json.Marshal(f.Value)
		if err != nil {
			raw = []byte(fmt.Sprintf("%v", f.Value))
		}
		filters = append(filters, f.Field+" "+string(f.Op)+" "+string(raw))
	}
	sort.Strings(filters)
	orders := make([]string, 0, len(q.Orders))
	for _, o := range q.Orders {
		dir := "asc"
		if o.Desc {
			dir = "desc"
		}
		orders = append(orders, o.Field+" "+dir)
	}
	return strings.Join([]string{
		strings.Trim(q.Path, "/"),
		strings.Join(filters, ","),
		strings.Join(orders, ","),
		strconv.Itoa(q.Max),
	}, "|")
}

// String implementa fmt.Stringer.
func (q *Query) String() string { return q.Key() }
