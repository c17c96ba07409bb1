package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod forma de pago de una venta.
type PaymentMethod string

// Formas de pago aceptadas.
const (
	PaymentPIX     PaymentMethod = "PIX"
	PaymentDebit   PaymentMethod = "DEBITO"
	PaymentCash    PaymentMethod = "DINHEIRO"
	PaymentCredit  PaymentMethod = "CREDITO"
	DefaultPayment               = PaymentCash
)

// PaymentMethods en el orden en que se muestran al operador.
var PaymentMethods = []PaymentMethod{PaymentPIX, PaymentDebit, PaymentCash, PaymentCredit}

var paymentLabels = map[PaymentMethod]string{
	PaymentPIX:    "PIX",
	PaymentDebit:  "Débito",
	PaymentCash:   "Dinheiro",
	PaymentCredit: "Crédito",
}

// Valid indica si la forma de pago es una de las aceptadas.
func (m PaymentMethod) Valid() bool {
	_, ok := paymentLabels[m]
	return ok
}

// Label etiqueta legible ("Débito"); para valores desconocidos devuelve el código.
func (m PaymentMethod) Label() string {
	if l, ok := paymentLabels[m]; ok {
		return l
	}
	return string(m)
}

// Sale cabecera de una venta. Se crea una sola vez y no se modifica después.
// El total no se persiste: se calcula desde sus ítems.
type Sale struct {
	ID             string
	OperatorID     string
	CreatedAt      time.Time
	PaymentMethod  PaymentMethod
	ConfirmationID string // marca de confirmación que originó la venta (única)
	Items          []*LineItem
}

// LineItem una línea de la venta: producto, cantidad y precio unitario congelado al guardar.
type LineItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal cantidad × precio unitario.
func (li *LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// SaleView venta con datos de operador y nombres de producto para listados y exportación.
type SaleView struct {
	Sale
	OperatorUsername string
	Lines            []LineItemView
}

// LineItemView ítem con el nombre del producto.
type LineItemView struct {
	LineItem
	ProductName string
	Barcode     string
}

// LineItemRow ítem desnormalizado con la cabecera de su venta (listado de ítems y exportación).
type LineItemRow struct {
	LineItemView
	SaleDate         time.Time
	PaymentMethod    PaymentMethod
	OperatorUsername string
}
