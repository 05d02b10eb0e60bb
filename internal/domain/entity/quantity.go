package entity

import "github.com/shopspring/decimal"

// Las cantidades se serializan como números JSON (no strings) para que el
// almacén de documentos pueda compararlas y ordenarlas numéricamente.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultReorderLevel se usa cuando un producto no define nivel de reorden.
var DefaultReorderLevel = decimal.NewFromInt(10)
