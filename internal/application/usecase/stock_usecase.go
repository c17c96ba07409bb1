package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// StockUseCase administración del registro de stock (uno por producto).
// Las ventas descuentan stock por su propio pipeline, no por aquí.
type StockUseCase struct {
	stockRepo   repository.StockRepository
	productRepo repository.ProductRepository
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(stockRepo repository.StockRepository, productRepo repository.ProductRepository) *StockUseCase {
	return &StockUseCase{stockRepo: stockRepo, productRepo: productRepo}
}

// Create abre el registro de stock de un producto. ErrDuplicate si ya tiene uno.
func (uc *StockUseCase) Create(ctx context.Context, in dto.CreateStockEntryRequest) (*dto.StockEntryResponse, error) {
	if in.Quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	existing, err := uc.stockRepo.Get(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	entry := &entity.StockEntry{ProductID: in.ProductID, Quantity: in.Quantity, UpdatedAt: time.Now()}
	if err := uc.stockRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return toStockResponse(entry, product), nil
}

// Get devuelve el stock de un producto; (nil, nil) si no tiene registro.
func (uc *StockUseCase) Get(ctx context.Context, productID string) (*dto.StockEntryResponse, error) {
	entry, err := uc.stockRepo.Get(ctx, productID)
	if err != nil || entry == nil {
		return nil, err
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toStockResponse(entry, product), nil
}

// SetQuantity fija la cantidad disponible (ajuste de inventario). Nunca negativa.
func (uc *StockUseCase) SetQuantity(ctx context.Context, productID string, quantity int) (*dto.StockEntryResponse, error) {
	if quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.stockRepo.SetQuantity(ctx, productID, quantity); err != nil {
		return nil, err
	}
	return uc.Get(ctx, productID)
}

// List lista el stock con búsqueda por nombre o código de barras del producto.
func (uc *StockUseCase) List(ctx context.Context, search string, limit, offset int) (*dto.StockListResponse, error) {
	list, err := uc.stockRepo.List(ctx, repository.StockFilter{Search: strings.TrimSpace(search), Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockEntryResponse, 0, len(list))
	for _, v := range list {
		items = append(items, dto.StockEntryResponse{
			ProductID:   v.ProductID,
			ProductName: v.ProductName,
			Barcode:     v.Barcode,
			Quantity:    v.Quantity,
			UpdatedAt:   v.UpdatedAt,
		})
	}
	return &dto.StockListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

func toStockResponse(e *entity.StockEntry, p *entity.Product) *dto.StockEntryResponse {
	out := &dto.StockEntryResponse{ProductID: e.ProductID, Quantity: e.Quantity, UpdatedAt: e.UpdatedAt}
	if p != nil {
		out.ProductName = p.Name
		out.Barcode = p.Barcode
	}
	return out
}
