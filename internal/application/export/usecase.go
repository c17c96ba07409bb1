package export

import (
	"context"

	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// Nombres de los recursos exportables.
const (
	ResourceSales     = "sales"
	ResourceLineItems = "line-items"
	ResourceStock     = "stock"
	ResourceProducts  = "products"
)

// ExportUseCase lee los registros y los deshidrata en tablas.
type ExportUseCase struct {
	saleRepo    repository.SaleRepository
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(saleRepo repository.SaleRepository, stockRepo repository.StockRepository, productRepo repository.ProductRepository) *ExportUseCase {
	return &ExportUseCase{saleRepo: saleRepo, stockRepo: stockRepo, productRepo: productRepo}
}

// Sales tabla de ventas con los filtros del listado (sin paginación si Limit es 0).
func (uc *ExportUseCase) Sales(ctx context.Context, filter repository.SaleFilter) (*Table, error) {
	list, err := uc.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	t := &Table{Name: ResourceSales, Columns: SaleColumns, Rows: make([][]any, 0, len(list))}
	for _, v := range list {
		t.Rows = append(t.Rows, SaleRow(v))
	}
	return t, nil
}

// LineItems tabla de ítems con búsqueda opcional.
func (uc *ExportUseCase) LineItems(ctx context.Context, search string) (*Table, error) {
	rows, err := uc.saleRepo.ListLineItems(ctx, repository.LineItemFilter{Search: search})
	if err != nil {
		return nil, err
	}
	t := &Table{Name: ResourceLineItems, Columns: LineItemColumns, Rows: make([][]any, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, LineItemRow(r))
	}
	return t, nil
}

// Stock tabla de stock con búsqueda opcional.
func (uc *ExportUseCase) Stock(ctx context.Context, search string) (*Table, error) {
	list, err := uc.stockRepo.List(ctx, repository.StockFilter{Search: search})
	if err != nil {
		return nil, err
	}
	t := &Table{Name: ResourceStock, Columns: StockColumns, Rows: make([][]any, 0, len(list))}
	for _, v := range list {
		t.Rows = append(t.Rows, StockRow(v))
	}
	return t, nil
}

// Products catálogo completo con búsqueda opcional por nombre o código de barras.
func (uc *ExportUseCase) Products(ctx context.Context, search string) (*Table, error) {
	list, err := uc.productRepo.List(ctx, repository.ProductFilter{Search: search})
	if err != nil {
		return nil, err
	}
	t := &Table{Name: ResourceProducts, Columns: ProductColumns, Rows: make([][]any, 0, len(list))}
	for _, p := range list {
		t.Rows = append(t.Rows, ProductRow(p))
	}
	return t, nil
}
