package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Límites de longitud del catálogo.
const (
	BarcodeMaxLen     = 20
	ProductNameMaxLen = 100
)

// Product representa un producto del catálogo. El código de barras es su identidad de negocio
// (único) y no cambia después de creado.
type Product struct {
	ID          string
	Barcode     string
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta actual (2 decimales)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
