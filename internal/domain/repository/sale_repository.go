package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// SaleFilter filtros del listado de ventas.
type SaleFilter struct {
	From          *time.Time
	To            *time.Time
	OperatorID    string
	PaymentMethod entity.PaymentMethod
	Limit         int
	Offset        int
}

// LineItemFilter búsqueda de ítems por nombre de producto, id de venta o usuario del operador.
type LineItemFilter struct {
	Search string
	Limit  int
	Offset int
}

// SaleRepository define el puerto de persistencia de ventas e ítems.
// No expone Update ni Delete: una venta registrada es inmutable.
type SaleRepository interface {
	// Create guarda la cabecera. ErrDuplicate si ya existe una venta con la misma marca de confirmación.
	Create(ctx context.Context, sale *entity.Sale) error
	CreateLineItem(ctx context.Context, item *entity.LineItem) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.SaleView, error)
	GetByConfirmationID(ctx context.Context, confirmationID string) (*entity.SaleView, error)
	List(ctx context.Context, filter SaleFilter) ([]*entity.SaleView, error)
	ListLineItems(ctx context.Context, filter LineItemFilter) ([]*entity.LineItemRow, error)
	CountLineItemsByProduct(ctx context.Context, productID string) (int, error)
}
