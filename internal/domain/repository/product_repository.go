package repository

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// ProductFilter búsqueda por nombre o código de barras con paginación.
type ProductFilter struct {
	Search string
	Limit  int
	Offset int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los Get devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	// ListSellable productos con stock mayor que cero (opciones del formulario de venta).
	ListSellable(ctx context.Context) ([]*entity.Product, error)
	// Delete elimina el producto y su registro de stock. ErrProductInUse si hay ítems que lo referencian.
	Delete(ctx context.Context, id string) error
}
