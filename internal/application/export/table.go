// Package export arma las tablas exportables de ventas, ítems, stock y productos (deshidratación de cada
// registro a su representación exportada) y las codifica en CSV, JSON o XML.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	rules "github.com/jhoicas/Ventas-api/internal/domain/sales"
	"github.com/jhoicas/Ventas-api/pkg/money"
)

// Formatos de fecha de la exportación.
const (
	SaleDateLayout     = "2006-01-02 15:04:05"
	LineItemDateLayout = "2006-01-02 15:04"
)

// Columnas de cada recurso, en orden de exportación.
var (
	SaleColumns     = []string{"id", "date", "operator", "payment_method", "total_items", "items", "total"}
	LineItemColumns = []string{"sale_id", "sale_date", "operator", "product", "quantity", "unit_price", "subtotal", "payment_method"}
	StockColumns    = []string{"product", "barcode", "quantity"}
	ProductColumns  = []string{"barcode", "name", "description", "price"}
)

// Table filas ya deshidratadas. Cada celda es string, int o decimal.Decimal.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// SaleRow deshidrata una venta: total con coma decimal ("30,00") y resumen de ítems.
func SaleRow(v *entity.SaleView) []any {
	lines := make([]*entity.LineItem, 0, len(v.Lines))
	parts := make([]string, 0, len(v.Lines))
	for i := range v.Lines {
		l := &v.Lines[i]
		lines = append(lines, &l.LineItem)
		parts = append(parts, fmt.Sprintf("%s (Qty: %d, Unit price: %s)", l.ProductName, l.Quantity, l.UnitPrice.StringFixed(2)))
	}
	return []any{
		v.ID,
		v.CreatedAt.Format(SaleDateLayout),
		v.OperatorUsername,
		string(v.PaymentMethod),
		rules.TotalQuantity(lines),
		strings.Join(parts, " - "),
		money.FormatComma(rules.Total(lines)),
	}
}

// LineItemRow deshidrata un ítem con los datos de su venta. Precio y subtotal quedan como decimales.
func LineItemRow(r *entity.LineItemRow) []any {
	return []any{
		r.SaleID,
		r.SaleDate.Format(LineItemDateLayout),
		r.OperatorUsername,
		r.ProductName,
		r.Quantity,
		r.UnitPrice,
		r.Subtotal(),
		r.PaymentMethod.Label(),
	}
}

// StockRow deshidrata un registro de stock.
func StockRow(v *entity.StockEntryView) []any {
	return []any{v.ProductName, v.Barcode, v.Quantity}
}

// ProductRow deshidrata un producto. El precio queda decimal ("4.50"), sin formato de moneda.
func ProductRow(p *entity.Product) []any {
	return []any{p.Barcode, p.Name, p.Description, p.Price}
}

// cellText representación textual de una celda (CSV y XML).
func cellText(c any) string {
	switch v := c.(type) {
	case string:
		return v
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case decimal.Decimal:
		return v.StringFixed(2)
	case time.Time:
		return v.Format(SaleDateLayout)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
