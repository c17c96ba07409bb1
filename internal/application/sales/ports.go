package sales

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback: ni venta, ni ítems, ni descuento de stock.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// ReceiptGenerator genera el comprobante de una venta registrada.
type ReceiptGenerator interface {
	GenerateReceipt(ctx context.Context, sale *entity.SaleView) ([]byte, error)
}
