package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD del catálogo. El stock se maneja en StockUseCase.
type ProductUseCase struct {
	repo     repository.ProductRepository
	saleRepo repository.SaleRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, saleRepo repository.SaleRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, saleRepo: saleRepo}
}

// Create crea un nuevo producto. ErrDuplicate si el código de barras ya existe.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.Barcode = strings.TrimSpace(in.Barcode)
	in.Name = strings.TrimSpace(in.Name)
	if in.Barcode == "" || utf8.RuneCountInString(in.Barcode) > entity.BarcodeMaxLen {
		return nil, domain.ErrInvalidInput
	}
	if err := validateProductFields(in.Name, in.Price.IsNegative()); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByBarcode(ctx, in.Barcode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Barcode:     in.Barcode,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price.Round(2),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update actualiza nombre, descripción o precio. El código de barras no cambia.
// Un cambio de precio no altera el precio unitario de los ítems ya vendidos.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = in.Price.Round(2)
	}
	if err := validateProductFields(product.Name, product.Price.IsNegative()); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con búsqueda por nombre o código de barras.
func (uc *ProductUseCase) List(ctx context.Context, search string, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, repository.ProductFilter{Search: strings.TrimSpace(search), Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un producto y su registro de stock.
// ErrProductInUse mientras algún ítem de venta lo referencie.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	n, err := uc.saleRepo.CountLineItemsByProduct(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrProductInUse
	}
	return uc.repo.Delete(ctx, id)
}

func validateProductFields(name string, negativePrice bool) error {
	if name == "" || utf8.RuneCountInString(name) > entity.ProductNameMaxLen {
		return domain.ErrInvalidInput
	}
	if negativePrice {
		return domain.ErrInvalidInput
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		Barcode:     p.Barcode,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
