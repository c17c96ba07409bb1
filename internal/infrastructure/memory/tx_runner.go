package memory

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ sales.TxRunner = (*TxRunner)(nil)

// TxRunner transacción en memoria: toma el mutex del Store, ejecuta fn con repositorios atados
// a la tx y, si fn falla, restaura la copia tomada al inicio.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn de forma aislada (serializada con el resto de las escrituras).
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	before := r.s.snapshot()
	g := guard{s: r.s, inTx: true}
	if err := fn(&StockRepo{g: g}, &ProductRepo{g: g}, &SaleRepo{g: g}); err != nil {
		r.s.restore(before)
		return err
	}
	return nil
}
