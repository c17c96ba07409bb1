package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrUserNotFound         = errors.New("usuario no encontrado")
	ErrUsernameTaken        = errors.New("el nombre de usuario ya está registrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrProductInUse         = errors.New("el producto está referenciado por ítems de venta")
	ErrSaleImmutable        = errors.New("una venta registrada no se puede modificar ni eliminar")
	ErrLineItemReadOnly     = errors.New("los ítems de venta solo se crean junto con su venta y no se modifican")
	ErrNoPendingSale        = errors.New("no hay venta pendiente de confirmación")
	ErrConfirmationRequired = errors.New("la venta requiere confirmación explícita")
)
