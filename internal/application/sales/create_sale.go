package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	rules "github.com/jhoicas/Ventas-api/internal/domain/sales"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

// Committed resultado de registrar una venta. Replayed indica que la marca de confirmación
// ya había generado una venta y se devuelve esa en lugar de crear otra.
type Committed struct {
	Sale     *entity.SaleView
	Replayed bool
}

// CreateSaleUseCase pipeline de registro de una venta confirmada: cabecera, ítems y descuento de
// stock en una sola transacción, con bloqueo de fila (SELECT FOR UPDATE) por producto.
type CreateSaleUseCase struct {
	txRunner TxRunner
	saleRepo repository.SaleRepository
	opts     rules.Options
	log      *logger.Logger
	now      func() time.Time
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(txRunner TxRunner, saleRepo repository.SaleRepository, opts rules.Options, log *logger.Logger) *CreateSaleUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CreateSaleUseCase{txRunner: txRunner, saleRepo: saleRepo, opts: opts, log: log, now: time.Now}
}

// Create registra la venta del formulario. Sin marca de confirmación no persiste nada
// (ErrConfirmationRequired). Cualquier error de un ítem revierte la venta completa.
func (uc *CreateSaleUseCase) Create(ctx context.Context, operatorID string, form entity.SaleForm) (*Committed, error) {
	if form.ConfirmationID == "" {
		return nil, domain.ErrConfirmationRequired
	}
	if operatorID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := rules.ValidateFormShape(form); err != nil {
		return nil, err
	}

	sale := &entity.Sale{
		ID:             uuid.New().String(),
		OperatorID:     operatorID,
		CreatedAt:      uc.now(),
		PaymentMethod:  form.PaymentMethod,
		ConfirmationID: form.ConfirmationID,
	}

	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		if err := lockStock(ctx, stockRepo, form.Items); err != nil {
			return err
		}
		for i, in := range form.Items {
			item, err := uc.addLineItem(ctx, stockRepo, productRepo, saleRepo, sale.ID, i, in)
			if err != nil {
				return err
			}
			sale.Items = append(sale.Items, item)
		}
		return nil
	})
	if errors.Is(err, domain.ErrDuplicate) {
		existing, gerr := uc.saleRepo.GetByConfirmationID(ctx, form.ConfirmationID)
		if gerr != nil {
			return nil, gerr
		}
		if existing == nil {
			return nil, err
		}
		uc.log.Warn().
			Str("confirmation_id", form.ConfirmationID).
			Str("sale_id", existing.ID).
			Msg("confirmación repetida: se devuelve la venta ya registrada")
		return &Committed{Sale: existing, Replayed: true}, nil
	}
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("operator_id", operatorID).
		Str("payment_method", string(sale.PaymentMethod)).
		Int("items", len(sale.Items)).
		Str("total", rules.Total(sale.Items).StringFixed(2)).
		Msg("venta registrada")

	view, err := uc.saleRepo.GetByID(ctx, sale.ID)
	if err != nil {
		return nil, fmt.Errorf("venta %s registrada pero no se pudo leer: %w", sale.ID, err)
	}
	if view == nil {
		view = &entity.SaleView{Sale: *sale}
	}
	return &Committed{Sale: view}, nil
}

// lockStock bloquea las filas de stock de todos los productos del formulario, una vez cada
// una y en orden de product_id, antes de procesar el primer ítem.
func lockStock(ctx context.Context, stockRepo repository.StockRepository, items []entity.LineItemForm) error {
	seen := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	for _, in := range items {
		if in.ProductID == "" || seen[in.ProductID] {
			continue
		}
		seen[in.ProductID] = true
		ids = append(ids, in.ProductID)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := stockRepo.GetForUpdate(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// addLineItem pipeline de un ítem dentro de la transacción: producto, bloqueo de stock,
// reglas, inserción y descuento condicional.
func (uc *CreateSaleUseCase) addLineItem(
	ctx context.Context,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	saleID string,
	i int,
	in entity.LineItemForm,
) (*entity.LineItem, error) {
	prefix := rules.ItemPrefix(i)
	product, err := productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	var entry *entity.StockEntry
	if product != nil {
		// Bloquea la fila de stock hasta el fin de la transacción
		entry, err = stockRepo.GetForUpdate(ctx, product.ID)
		if err != nil {
			return nil, err
		}
	}
	item := &entity.LineItem{
		ID:        uuid.New().String(),
		SaleID:    saleID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
	}
	if err := rules.ValidateLineItem(prefix, item, product, entry, uc.opts); err != nil {
		return nil, err
	}
	if err := saleRepo.CreateLineItem(ctx, item); err != nil {
		return nil, err
	}
	if entry == nil {
		return item, nil
	}
	if _, err := stockRepo.Decrement(ctx, product.ID, item.Quantity); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil, &rules.StockError{Field: prefix + ".quantity", ProductID: product.ID, Requested: item.Quantity, Available: entry.Quantity}
		}
		return nil, err
	}
	return item, nil
}
