package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleFormRequest formulario de creación de venta (cabecera + ítems).
type SaleFormRequest struct {
	PaymentMethod string            `json:"payment_method"`
	Items         []LineItemRequest `json:"items"`
}

// LineItemRequest línea del formulario.
type LineItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// SubmitSaleResponse respuesta al envío del formulario: la venta queda pendiente de confirmación.
type SubmitSaleResponse struct {
	PendingID  string    `json:"pending_id"`
	ExpiresAt  time.Time `json:"expires_at"`
	ConfirmURL string    `json:"confirm_url"`
}

// ConfirmSaleRequest acción explícita sobre la venta pendiente. Solo "confirm" registra la venta.
type ConfirmSaleRequest struct {
	Action string `json:"action"`
}

// ReviewLineDTO línea de la pantalla de confirmación.
type ReviewLineDTO struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleReviewResponse pantalla de confirmación: total y forma de pago, sin nada persistido.
// Errors trae los errores que la confirmación encontraría con el stock actual.
type SaleReviewResponse struct {
	PendingID          string              `json:"pending_id"`
	PaymentMethod      string              `json:"payment_method"`
	PaymentMethodLabel string              `json:"payment_method_label"`
	Lines              []ReviewLineDTO     `json:"lines"`
	TotalQuantity      int                 `json:"total_quantity"`
	Total              decimal.Decimal     `json:"total"`
	Errors             map[string][]string `json:"errors,omitempty"`
	ExpiresAt          time.Time           `json:"expires_at"`
}

// LineItemResponse ítem de una venta registrada.
type LineItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Barcode     string          `json:"barcode"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta registrada con su total calculado.
type SaleResponse struct {
	ID                 string             `json:"id"`
	OperatorID         string             `json:"operator_id"`
	OperatorUsername   string             `json:"operator_username"`
	CreatedAt          time.Time          `json:"created_at"`
	PaymentMethod      string             `json:"payment_method"`
	PaymentMethodLabel string             `json:"payment_method_label"`
	Items              []LineItemResponse `json:"items"`
	TotalQuantity      int                `json:"total_quantity"`
	Total              decimal.Decimal    `json:"total"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LineItemRowResponse ítem con los datos de su venta (listado de ítems).
type LineItemRowResponse struct {
	ID                 string          `json:"id"`
	SaleID             string          `json:"sale_id"`
	SaleDate           time.Time       `json:"sale_date"`
	OperatorUsername   string          `json:"operator_username"`
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	PaymentMethodLabel string          `json:"payment_method_label"`
}

// LineItemListResponse lista paginada de ítems.
type LineItemListResponse struct {
	Items []LineItemRowResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// PaymentMethodOption forma de pago con su etiqueta.
type PaymentMethodOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// SellableProductDTO producto que se puede agregar a una venta (stock > 0).
type SellableProductDTO struct {
	ID      string          `json:"id"`
	Barcode string          `json:"barcode"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
}

// SaleFormOptionsResponse formulario vacío de creación de venta.
type SaleFormOptionsResponse struct {
	PaymentMethods       []PaymentMethodOption `json:"payment_methods"`
	DefaultPaymentMethod string                `json:"default_payment_method"`
	Products             []SellableProductDTO  `json:"products"`
}
