package inventory

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
)

// MovementType tipo de documento de origen de un movimiento.
type MovementType string

const (
	MovementReceipt    MovementType = "Receipt"
	MovementDelivery   MovementType = "Delivery"
	MovementTransfer   MovementType = "Transfer"
	MovementAdjustment MovementType = "Adjustment"
)

var referencePrefix = map[MovementType]string{
	MovementReceipt:    "RCP-",
	MovementDelivery:   "DEL-",
	MovementTransfer:   "TRF-",
	MovementAdjustment: "ADJ-",
}

// Reference referencia legible: prefijo del tipo + primeros 8 caracteres del id en mayúsculas.
func Reference(t MovementType, id string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return referencePrefix[t] + strings.ToUpper(short)
}

// Movement proyección normalizada de cualquiera de los cuatro documentos.
type Movement struct {
	ID            string
	Reference     string
	Type          MovementType
	Date          time.Time
	Product       string
	Warehouse     string
	Quantity      *decimal.Decimal
	RelatedEntity string
	Status        entity.Status
}

// Lookups nombres por id para resolver referencias; los faltantes se muestran como "Unknown ...".
type Lookups struct {
	Products   map[string]string
	Warehouses map[string]string
	Suppliers  map[string]string
	Customers  map[string]string
}

func name(m map[string]string, id, fallback string) string {
	if n, ok := m[id]; ok && n != "" {
		return n
	}
	return fallback
}

func (l Lookups) product(id string) string   { return name(l.Products, id, "Unknown Product") }
func (l Lookups) warehouse(id string) string { return name(l.Warehouses, id, "Unknown") }
func (l Lookups) supplier(id string) string  { return name(l.Suppliers, id, "Unknown Supplier") }
func (l Lookups) customer(id string) string  { return name(l.Customers, id, "Unknown Customer") }

// NewLookups construye los mapas desde las entidades maestras.
func NewLookups(products []*entity.Product, warehouses []*entity.Warehouse, suppliers []*entity.Supplier, customers []*entity.Customer) Lookups {
	l := Lookups{
		Products:   make(map[string]string, len(products)),
		Warehouses: make(map[string]string, len(warehouses)),
		Suppliers:  make(map[string]string, len(suppliers)),
		Customers:  make(map[string]string, len(customers)),
	}
	for _, p := range products {
		l.Products[p.ID] = p.Name
	}
	for _, w := range warehouses {
		l.Warehouses[w.ID] = w.Name
	}
	for _, s := range suppliers {
		l.Suppliers[s.ID] = s.Name
	}
	for _, c := range customers {
		l.Customers[c.ID] = c.Name
	}
	return l
}

// Streams los cuatro flujos de documentos de un usuario.
type Streams struct {
	Receipts    []*entity.Receipt
	Deliveries  []*entity.DeliveryOrder
	Transfers   []*entity.InternalTransfer
	Adjustments []*entity.StockAdjustment
}

// BuildHistory une los cuatro flujos y los ordena por fecha descendente.
// El orden es estable y la referencia desempata, así que el resultado no depende
// del orden de las entradas.
func BuildHistory(s Streams, l Lookups) []Movement {
	out := make([]Movement, 0, len(s.Receipts)+len(s.Deliveries)+len(s.Transfers)+len(s.Adjustments))
	for _, r := range s.Receipts {
		out = append(out, Movement{
			ID:            r.ID,
			Reference:     Reference(MovementReceipt, r.ID),
			Type:          MovementReceipt,
			Date:          r.ReceiptDate,
			RelatedEntity: l.supplier(r.SupplierID),
			Status:        r.Status,
		})
	}
	for _, d := range s.Deliveries {
		out = append(out, Movement{
			ID:            d.ID,
			Reference:     Reference(MovementDelivery, d.ID),
			Type:          MovementDelivery,
			Date:          d.DeliveryDate,
			RelatedEntity: l.customer(d.CustomerID),
			Status:        d.Status,
		})
	}
	for _, t := range s.Transfers {
		qty := t.Quantity
		out = append(out, Movement{
			ID:        t.ID,
			Reference: Reference(MovementTransfer, t.ID),
			Type:      MovementTransfer,
			Date:      t.TransferDate,
			Product:   l.product(t.ProductID),
			Warehouse: l.warehouse(t.FromWarehouseID) + " → " + l.warehouse(t.ToWarehouseID),
			Quantity:  &qty,
			Status:    t.Status,
		})
	}
	for _, a := range s.Adjustments {
		qty := a.CountedQuantity
		out = append(out, Movement{
			ID:        a.ID,
			Reference: Reference(MovementAdjustment, a.ID),
			Type:      MovementAdjustment,
			Date:      a.AdjustmentDate,
			Product:   l.product(a.ProductID),
			Warehouse: l.warehouse(a.WarehouseID),
			Quantity:  &qty,
			Status:    entity.StatusDone,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Reference < out[j].Reference
	})
	return out
}

// HistoryFilter filtro del historial. Type y Status vacíos o "all" no filtran.
type HistoryFilter struct {
	Search string
	Type   string
	Status string
}

// FilterHistory aplica búsqueda (referencia, entidad relacionada o producto, sin
// distinguir mayúsculas) y los filtros de tipo y estado.
func FilterHistory(movements []Movement, f HistoryFilter) []Movement {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(f.Search))
	out := make([]Movement, 0, len(movements))
	for _, m := range movements {
		if !isAll(f.Type) && !strings.EqualFold(string(m.Type), f.Type) {
			continue
		}
		if !isAll(f.Status) && !strings.EqualFold(string(m.Status), f.Status) {
			continue
		}
		if needle != "" &&
			!strings.Contains(fold.String(m.Reference), needle) &&
			!strings.Contains(fold.String(m.RelatedEntity), needle) &&
			!strings.Contains(fold.String(m.Product), needle) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func isAll(s string) bool {
	return s == "" || strings.EqualFold(s, "all")
}

// RecentActivity los n movimientos más recientes (la entrada ya viene ordenada).
func RecentActivity(movements []Movement, n int) []Movement {
	if n < 0 || len(movements) <= n {
		return movements
	}
	return movements[:n]
}
