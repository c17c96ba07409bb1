package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	rules "github.com/jhoicas/Ventas-api/internal/domain/sales"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

// ActionConfirm única acción que registra la venta pendiente.
const ActionConfirm = "confirm"

// Actor operador autenticado y su sesión.
type Actor struct {
	OperatorID string
	SessionID  string
	Role       string
}

// PendingKey clave de la venta pendiente: una por operador y sesión.
func PendingKey(operatorID, sessionID string) string {
	return operatorID + ":" + sessionID
}

// SaleGuard confirmación previa al registro de una venta.
//
// El formulario enviado se guarda como venta pendiente (con vencimiento) sin persistir nada;
// la revisión muestra total y forma de pago; solo una confirmación explícita consume la
// pendiente, una única vez, y ejecuta el pipeline de registro.
type SaleGuard struct {
	pending     repository.PendingSaleRepository
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	creator     *CreateSaleUseCase
	ttl         time.Duration
	opts        rules.Options
	log         *logger.Logger
	now         func() time.Time
}

// NewSaleGuard construye el guard.
func NewSaleGuard(
	pending repository.PendingSaleRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	creator *CreateSaleUseCase,
	ttl time.Duration,
	opts rules.Options,
	log *logger.Logger,
) *SaleGuard {
	if log == nil {
		log = logger.Nop()
	}
	return &SaleGuard{
		pending:     pending,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		creator:     creator,
		ttl:         ttl,
		opts:        opts,
		log:         log,
		now:         time.Now,
	}
}

// FormOptions formulario vacío: formas de pago y productos con stock disponible.
func (g *SaleGuard) FormOptions(ctx context.Context) (*dto.SaleFormOptionsResponse, error) {
	products, err := g.productRepo.ListSellable(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.SaleFormOptionsResponse{
		PaymentMethods:       make([]dto.PaymentMethodOption, 0, len(entity.PaymentMethods)),
		DefaultPaymentMethod: string(entity.DefaultPayment),
		Products:             make([]dto.SellableProductDTO, 0, len(products)),
	}
	for _, m := range entity.PaymentMethods {
		out.PaymentMethods = append(out.PaymentMethods, dto.PaymentMethodOption{Code: string(m), Label: m.Label()})
	}
	for _, p := range products {
		out.Products = append(out.Products, dto.SellableProductDTO{ID: p.ID, Barcode: p.Barcode, Name: p.Name, Price: p.Price})
	}
	return out, nil
}

// Submit valida el formulario y lo guarda como venta pendiente. Un envío nuevo reemplaza al
// anterior de la misma sesión. Con errores de campo no se guarda nada.
func (g *SaleGuard) Submit(ctx context.Context, actor Actor, form entity.SaleForm) (*entity.PendingSale, error) {
	if !CanCreateSale(actor.Role) {
		return nil, domain.ErrForbidden
	}
	if form.PaymentMethod == "" {
		form.PaymentMethod = entity.DefaultPayment
	}
	// la marca de confirmación nunca viene del cliente
	form.ConfirmationID = ""

	verr := &rules.ValidationError{}
	if err := rules.ValidateFormShape(form); err != nil {
		var ve *rules.ValidationError
		if !errors.As(err, &ve) {
			return nil, err
		}
		verr.Merge(ve)
	}
	for i, it := range form.Items {
		if it.ProductID == "" {
			continue
		}
		p, err := g.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			verr.Add(rules.ItemField(i, "product_id"), rules.MsgProductNotFound)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := g.now()
	pending := &entity.PendingSale{
		ID:         uuid.New().String(),
		OperatorID: actor.OperatorID,
		SessionID:  actor.SessionID,
		Form:       form,
		CreatedAt:  now,
		ExpiresAt:  now.Add(g.ttl),
	}
	if err := g.pending.Save(ctx, PendingKey(actor.OperatorID, actor.SessionID), pending, g.ttl); err != nil {
		return nil, err
	}
	g.log.Debug().Str("pending_id", pending.ID).Str("operator_id", actor.OperatorID).Msg("venta pendiente de confirmación")
	return pending, nil
}

// Review repite la validación sin persistir, con precios y stock actuales.
// ErrNoPendingSale si no hay pendiente o ya venció.
func (g *SaleGuard) Review(ctx context.Context, actor Actor) (*dto.SaleReviewResponse, error) {
	pending, err := g.pending.Get(ctx, PendingKey(actor.OperatorID, actor.SessionID))
	if err != nil {
		return nil, err
	}
	if pending == nil || pending.Expired(g.now()) {
		return nil, domain.ErrNoPendingSale
	}

	out := &dto.SaleReviewResponse{
		PendingID:          pending.ID,
		PaymentMethod:      string(pending.Form.PaymentMethod),
		PaymentMethodLabel: pending.Form.PaymentMethod.Label(),
		Lines:              make([]dto.ReviewLineDTO, 0, len(pending.Form.Items)),
		Total:              decimal.Zero,
		ExpiresAt:          pending.ExpiresAt,
	}
	verr := &rules.ValidationError{}
	// stock ya comprometido por líneas anteriores del mismo producto
	used := make(map[string]int)
	items := make([]*entity.LineItem, 0, len(pending.Form.Items))
	for i, in := range pending.Form.Items {
		prefix := rules.ItemPrefix(i)
		product, err := g.productRepo.GetByID(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		var entry *entity.StockEntry
		if product != nil {
			entry, err = g.stockRepo.Get(ctx, product.ID)
			if err != nil {
				return nil, err
			}
			if entry != nil {
				remaining := *entry
				remaining.Quantity -= used[product.ID]
				entry = &remaining
			}
		}
		item := &entity.LineItem{ProductID: in.ProductID, Quantity: in.Quantity}
		if err := rules.ValidateLineItem(prefix, item, product, entry, g.opts); err != nil {
			fields := rules.FieldErrors(err)
			if fields == nil {
				return nil, err
			}
			for f, msgs := range fields {
				for _, m := range msgs {
					verr.Add(f, m)
				}
			}
		}
		if product == nil {
			continue
		}
		used[product.ID] += in.Quantity
		items = append(items, item)
		out.Lines = append(out.Lines, dto.ReviewLineDTO{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
		})
	}
	out.Total = rules.Total(items)
	out.TotalQuantity = rules.TotalQuantity(items)
	if !verr.Empty() {
		out.Errors = verr.Fields
	}
	return out, nil
}

// Confirm consume la venta pendiente (obtener y borrar de forma atómica) y ejecuta el registro
// una sola vez. Una segunda confirmación, otra pestaña o un reenvío no encuentran nada:
// ErrNoPendingSale. Si el registro falla por errores de campo la pendiente se restaura para
// que el operador la corrija, salvo que mientras tanto la sesión haya enviado otro formulario.
func (g *SaleGuard) Confirm(ctx context.Context, actor Actor, action string) (*Committed, error) {
	if action != ActionConfirm {
		return nil, domain.ErrInvalidInput
	}
	key := PendingKey(actor.OperatorID, actor.SessionID)
	pending, err := g.pending.Take(ctx, key)
	if err != nil {
		return nil, err
	}
	now := g.now()
	if pending == nil || pending.Expired(now) {
		return nil, domain.ErrNoPendingSale
	}

	form := pending.Form
	form.ConfirmationID = pending.ID
	committed, err := g.creator.Create(ctx, pending.OperatorID, form)
	if err != nil {
		if rules.FieldErrors(err) != nil {
			if ttl := pending.ExpiresAt.Sub(now); ttl > 0 {
				restored, rerr := g.pending.SaveIfAbsent(ctx, key, pending, ttl)
				switch {
				case rerr != nil:
					g.log.Error().Err(rerr).Str("pending_id", pending.ID).Msg("no se pudo restaurar la venta pendiente")
				case !restored:
					g.log.Debug().Str("pending_id", pending.ID).Msg("hay un envío más reciente: la pendiente fallida se descarta")
				}
			}
		}
		return nil, err
	}
	return committed, nil
}

// Discard descarta la venta pendiente de la sesión (sin error si no existe).
func (g *SaleGuard) Discard(ctx context.Context, actor Actor) error {
	return g.pending.Delete(ctx, PendingKey(actor.OperatorID, actor.SessionID))
}
