package entity

import "time"

// PendingSale formulario de venta enviado y aún no confirmado. Vive en el almacén de
// pendientes con vencimiento y se consume una sola vez al confirmar.
type PendingSale struct {
	ID         string    `json:"id"`
	OperatorID string    `json:"operator_id"`
	SessionID  string    `json:"session_id"`
	Form       SaleForm  `json:"form"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired indica si la venta pendiente ya venció en el instante now.
func (p *PendingSale) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}

// SaleForm datos crudos del formulario de creación de venta (cabecera + ítems).
// ConfirmationID es la marca de confirmación: vacía en el primer envío, presente solo
// cuando la venta se reinyecta desde una confirmación explícita.
type SaleForm struct {
	PaymentMethod  PaymentMethod  `json:"payment_method"`
	Items          []LineItemForm `json:"items"`
	ConfirmationID string         `json:"confirmation_id,omitempty"`
}

// LineItemForm línea del formulario. El precio no viaja en el formulario: se toma del producto.
type LineItemForm struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
