package sales

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Ventas-api/internal/domain"
)

// Mensajes de validación de campo.
const (
	MsgQuantityMin      = "la cantidad no puede estar vacía ni ser menor que 1"
	MsgProductNotFound  = "el producto no existe"
	MsgProductRequired  = "el producto es obligatorio"
	MsgPaymentInvalid   = "forma de pago inválida"
	MsgItemsRequired    = "la venta debe tener al menos un ítem"
	MsgUntrackedProduct = "el producto no tiene registro de stock"
)

// ValidationError errores de validación por campo. Aborta el guardado sin efectos secundarios.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError crea un error con un único campo.
func NewValidationError(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// Add agrega un mensaje al campo.
func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], msg)
}

// Merge incorpora los campos de otro error de validación.
func (v *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for f, msgs := range other.Fields {
		for _, m := range msgs {
			v.Add(f, m)
		}
	}
}

// Empty indica que no hay errores acumulados.
func (v *ValidationError) Empty() bool {
	return v == nil || len(v.Fields) == 0
}

// OrNil devuelve nil si no hay errores, para retornar directamente como error.
func (v *ValidationError) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v.Fields[k], "; "))
	}
	return "validación: " + strings.Join(parts, ", ")
}

// Is permite errors.Is(err, domain.ErrInvalidInput).
func (v *ValidationError) Is(target error) bool {
	return target == domain.ErrInvalidInput
}

// StockError la cantidad solicitada excede el stock disponible del producto.
type StockError struct {
	Field     string
	ProductID string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("cantidad solicitada (%d) excede el stock disponible (%d)", e.Requested, e.Available)
}

// Is permite errors.Is(err, domain.ErrInsufficientStock).
func (e *StockError) Is(target error) bool {
	return target == domain.ErrInsufficientStock
}

// FieldErrors extrae los errores de campo de err (validación o stock); nil si err no es de campo.
func FieldErrors(err error) map[string][]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	var se *StockError
	if errors.As(err, &se) {
		field := se.Field
		if field == "" {
			field = "quantity"
		}
		return map[string][]string{field: {se.Error()}}
	}
	return nil
}
