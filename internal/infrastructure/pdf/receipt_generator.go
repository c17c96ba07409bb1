// Package pdf genera el comprobante de venta (no fiscal) en PDF con Maroto v2.
//
// Layout de la página A5:
//
//	┌───────────────────────────────────────────┐
//	│  HEADER: Tienda          │  N° + Fecha      │
//	│  Operador / Forma de pago                   │
//	│  ─────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Subtotal │
//	│  ─────────────────────────────────────────  │
//	│  TOTAL                                      │
//	│  QR con el id de la venta                   │
//	└───────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appsales "github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	rules "github.com/jhoicas/Ventas-api/internal/domain/sales"
	"github.com/jhoicas/Ventas-api/pkg/money"
)

var _ appsales.ReceiptGenerator = (*MarotoReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoReceiptGenerator implementa sales.ReceiptGenerator usando Maroto v2.
type MarotoReceiptGenerator struct {
	storeName string
}

// NewMarotoReceiptGenerator construye el generador con el nombre de la tienda del encabezado.
func NewMarotoReceiptGenerator(storeName string) *MarotoReceiptGenerator {
	return &MarotoReceiptGenerator{storeName: storeName}
}

// GenerateReceipt genera el PDF del comprobante y devuelve sus bytes.
func (g *MarotoReceiptGenerator) GenerateReceipt(_ context.Context, sale *entity.SaleView) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de venta", true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(sale))
	m.AddRows(infoRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(sale.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(sale))
	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(30).Add(
		col.New(4).Add(code.NewQr(sale.ID, props.Rect{Percent: 95, Center: true})),
		col.New(8).Add(text.New("Documento no fiscal. Conserve este comprobante.", props.Text{
			Size: 7, Top: 10, Left: 3, Color: colorGray,
		})),
	))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoReceiptGenerator) headerRow(sale *entity.SaleView) core.Row {
	return row.New(14).Add(
		col.New(7).Add(
			text.New(g.storeName, props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("VENTA "+shortID(sale.ID), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New(sale.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 7, Color: colorGray,
			}),
		),
	)
}

func infoRow(sale *entity.SaleView) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Operador: %s   |   Forma de pago: %s",
			nonEmpty(sale.OperatorUsername, "-"), sale.PaymentMethod.Label(),
		), props.Text{Size: 8, Top: 1, Color: colorGray}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(
		h("Cant.", 2, align.Center),
		h("Producto", 5, align.Left),
		h("P. Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

func tableDetailRows(lines []entity.LineItemView) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(fmt.Sprintf("%d", l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(l.ProductName, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(money.FormatBRL(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(money.FormatBRL(l.Subtotal()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalRow(sale *entity.SaleView) core.Row {
	lines := appsales.LinesOf(sale)
	return row.New(10).Add(
		col.New(6).Add(text.New(fmt.Sprintf("%d ítems", rules.TotalQuantity(lines)), props.Text{
			Size: 8, Top: 2, Color: colorGray,
		})),
		col.New(6).Add(text.New("TOTAL: "+money.FormatBRL(rules.Total(lines)), props.Text{
			Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Top: 1, Right: 1,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
