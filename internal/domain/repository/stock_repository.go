package repository

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// StockFilter búsqueda por nombre o código de barras del producto.
type StockFilter struct {
	Search string
	Limit  int
	Offset int
}

// StockRepository define el puerto para consultar/actualizar el stock por producto.
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve (nil, nil) si el producto no tiene registro de stock.
	Get(ctx context.Context, productID string) (*entity.StockEntry, error)
	// GetForUpdate igual que Get pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, productID string) (*entity.StockEntry, error)
	Create(ctx context.Context, entry *entity.StockEntry) error
	SetQuantity(ctx context.Context, productID string, quantity int) error
	// Decrement resta n solo si quantity >= n (actualización condicional atómica) y devuelve
	// la cantidad restante. ErrInsufficientStock si no alcanza, ErrNotFound si no hay registro.
	Decrement(ctx context.Context, productID string, n int) (int, error)
	List(ctx context.Context, filter StockFilter) ([]*entity.StockEntryView, error)
}
