// Package pdf genera el reporte PDF del historial de movimientos.
//
// Layout de la página A4 (horizontal):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + usuario     │  fecha de generación         │
//	│  FILTROS: búsqueda / tipo / estado / total de filas          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ref | Tipo | Fecha | Producto | Almacén | Cant | ... │
//	│  ─────────────────────────────────────────────────────────  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/greengrocer-ims/internal/domain/inventory"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 34, Green: 120, Blue: 60}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorStripe  = &props.Color{Red: 240, Green: 246, Blue: 241}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// HistoryReport datos de entrada del reporte.
type HistoryReport struct {
	Owner       string // nombre visible o email del usuario
	GeneratedAt time.Time
	Filter      inventory.HistoryFilter
	Movements   []inventory.Movement
}

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator genera reportes con Maroto v2.
type MarotoPDFGenerator struct {
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator {
	return &MarotoPDFGenerator{printer: message.NewPrinter(language.English)}
}

// GenerateHistoryPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateHistoryPDF(ctx context.Context, r HistoryReport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Movement History", true).
		WithAuthor(r.Owner, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(r))
	m.AddRows(filterRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(r.Movements) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("No movements match the current filters.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	}
	m.AddRows(g.tableRows(r.Movements)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(r HistoryReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("Movement History", props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(r.Owner, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generated", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 9, Align: align.Right, Top: 7,
			}),
		),
	)
}

func filterRow(r HistoryReport) core.Row {
	f := r.Filter
	return row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Search: %s   |   Type: %s   |   Status: %s   |   Rows: %d",
			nonEmpty(f.Search, "-"),
			nonEmpty(f.Type, "all"),
			nonEmpty(f.Status, "all"),
			len(r.Movements),
		), props.Text{Size: 8, Top: 2, Color: colorGray}),
	))
}

var columns = []struct {
	label string
	size  int
	align align.Type
}{
	{"Reference", 2, align.Left},
	{"Type", 1, align.Left},
	{"Date", 1, align.Left},
	{"Product", 2, align.Left},
	{"Warehouse", 2, align.Left},
	{"Qty", 1, align.Right},
	{"Related", 2, align.Left},
	{"Status", 1, align.Center},
}

func tableHeaderRow() core.Row {
	cols := make([]core.Col, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableRows una fila por movimiento, con filas alternas sombreadas.
func (g *MarotoPDFGenerator) tableRows(movements []inventory.Movement) []core.Row {
	result := make([]core.Row, 0, len(movements))
	for i, mv := range movements {
		qty := ""
		if mv.Quantity != nil {
			qty = g.printer.Sprint(number.Decimal(mv.Quantity.InexactFloat64(), number.MaxFractionDigits(2)))
		}
		values := []string{
			mv.Reference,
			string(mv.Type),
			mv.Date.Format("02/01/2006"),
			nonEmpty(mv.Product, "-"),
			nonEmpty(mv.Warehouse, "-"),
			nonEmpty(qty, "-"),
			nonEmpty(mv.RelatedEntity, "-"),
			string(mv.Status),
		}
		cols := make([]core.Col, 0, len(columns))
		for j, c := range columns {
			cols = append(cols, col.New(c.size).Add(text.New(values[j], props.Text{
				Size: 8, Align: c.align, Top: 1, Left: 1, Right: 1,
			})))
		}
		r := row.New(7).Add(cols...)
		if i%2 == 1 {
			r = r.WithStyle(&props.Cell{BackgroundColor: colorStripe})
		}
		result = append(result, r)
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
