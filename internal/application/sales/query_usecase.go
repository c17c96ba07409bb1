package sales

import (
	"context"
	"strings"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	rules "github.com/jhoicas/Ventas-api/internal/domain/sales"
)

// QueryUseCase listados y detalle de ventas e ítems (solo lectura).
type QueryUseCase struct {
	saleRepo repository.SaleRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(saleRepo repository.SaleRepository) *QueryUseCase {
	return &QueryUseCase{saleRepo: saleRepo}
}

// List lista ventas con su total calculado.
func (uc *QueryUseCase) List(ctx context.Context, filter repository.SaleFilter) (*dto.SaleListResponse, error) {
	list, err := uc.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *ToSaleResponse(s))
	}
	return &dto.SaleListResponse{Items: items, Page: dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset}}, nil
}

// Get detalle de una venta; (nil, nil) si no existe.
func (uc *QueryUseCase) Get(ctx context.Context, id string) (*entity.SaleView, error) {
	return uc.saleRepo.GetByID(ctx, id)
}

// ListLineItems ítems con búsqueda por producto, id de venta o usuario del operador.
func (uc *QueryUseCase) ListLineItems(ctx context.Context, search string, limit, offset int) (*dto.LineItemListResponse, error) {
	rows, err := uc.saleRepo.ListLineItems(ctx, repository.LineItemFilter{Search: strings.TrimSpace(search), Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.LineItemRowResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.LineItemRowResponse{
			ID:                 r.ID,
			SaleID:             r.SaleID,
			SaleDate:           r.SaleDate,
			OperatorUsername:   r.OperatorUsername,
			ProductID:          r.ProductID,
			ProductName:        r.ProductName,
			Quantity:           r.Quantity,
			UnitPrice:          r.UnitPrice,
			Subtotal:           r.Subtotal(),
			PaymentMethodLabel: r.PaymentMethod.Label(),
		})
	}
	return &dto.LineItemListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// LinesOf ítems de la vista como []*LineItem (para totales).
func LinesOf(v *entity.SaleView) []*entity.LineItem {
	out := make([]*entity.LineItem, 0, len(v.Lines))
	for i := range v.Lines {
		out = append(out, &v.Lines[i].LineItem)
	}
	return out
}

// ToSaleResponse convierte la vista a DTO con total y cantidad derivados de los ítems.
func ToSaleResponse(v *entity.SaleView) *dto.SaleResponse {
	if v == nil {
		return nil
	}
	lines := LinesOf(v)
	out := &dto.SaleResponse{
		ID:                 v.ID,
		OperatorID:         v.OperatorID,
		OperatorUsername:   v.OperatorUsername,
		CreatedAt:          v.CreatedAt,
		PaymentMethod:      string(v.PaymentMethod),
		PaymentMethodLabel: v.PaymentMethod.Label(),
		Items:              make([]dto.LineItemResponse, 0, len(v.Lines)),
		TotalQuantity:      rules.TotalQuantity(lines),
		Total:              rules.Total(lines),
	}
	for _, l := range v.Lines {
		out.Items = append(out.Items, dto.LineItemResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Barcode:     l.Barcode,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal(),
		})
	}
	return out
}

// ReceiptUseCase comprobante PDF de una venta.
type ReceiptUseCase struct {
	saleRepo  repository.SaleRepository
	generator ReceiptGenerator
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(saleRepo repository.SaleRepository, generator ReceiptGenerator) *ReceiptUseCase {
	return &ReceiptUseCase{saleRepo: saleRepo, generator: generator}
}

// Receipt genera el PDF; ErrNotFound si la venta no existe.
func (uc *ReceiptUseCase) Receipt(ctx context.Context, saleID string) ([]byte, error) {
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return uc.generator.GenerateReceipt(ctx, sale)
}
