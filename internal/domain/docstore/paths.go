package docstore

import (
	"fmt"
	"strings"
)

// Colecciones raíz.
const (
	Products   = "products"
	Warehouses = "warehouses"
	Suppliers  = "suppliers"
	Customers  = "customers"
	Categories = "categories"
	Accounts   = "accounts"
)

// Subcolecciones por usuario (users/{uid}/...).
const (
	Receipts          = "receipts"
	DeliveryOrders    = "deliveryOrders"
	InternalTransfers = "internalTransfers"
	StockAdjustments  = "stockAdjustments"
)

// UserCollection construye la ruta users/{uid}/{name}.
func UserCollection(uid, name string) string {
	return "users/" + uid + "/" + name
}

// OwnerOf devuelve el uid dueño de una ruta users/{uid}/..., si aplica.
func OwnerOf(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "users" {
		return parts[1], true
	}
	return "", false
}

// ValidateCollectionPath exige una ruta de colección: número impar de segmentos no vacíos.
func ValidateCollectionPath(path string) error {
	p := strings.Trim(path, "/")
	if p == "" {
		return fmt.Errorf("ruta de colección vacía")
	}
	parts := strings.Split(p, "/")
	if len(parts)%2 == 0 {
		return fmt.Errorf("%q no es una ruta de colección", path)
	}
	for _, s := range parts {
		if s == "" {
			return fmt.Errorf("%q contiene segmentos vacíos", path)
		}
	}
	return nil
}

// Clean normaliza una ruta quitando barras de los extremos.
func Clean(path string) string {
	return strings.Trim(path, "/")
}
