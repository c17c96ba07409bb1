package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	appsales "github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// Rutas del flujo de confirmación.
const (
	PathSaleForm    = "/api/sales/new"
	PathSaleConfirm = "/api/sales/confirm"
)

// SaleHandler creación de ventas con confirmación previa, listados y comprobante.
type SaleHandler struct {
	guard   *appsales.SaleGuard
	query   *appsales.QueryUseCase
	receipt *appsales.ReceiptUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(guard *appsales.SaleGuard, query *appsales.QueryUseCase, receipt *appsales.ReceiptUseCase) *SaleHandler {
	return &SaleHandler{guard: guard, query: query, receipt: receipt}
}

// FormOptions godoc
// @Summary      Formulario vacío de venta
// @Description  Formas de pago y productos con stock disponible.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SaleFormOptionsResponse
// @Router       /api/sales/new [get]
func (h *SaleHandler) FormOptions(c *fiber.Ctx) error {
	out, err := h.guard.FormOptions(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Submit godoc
// @Summary      Enviar venta
// @Description  Valida y guarda la venta como pendiente de confirmación. No registra nada.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaleFormRequest  true  "Forma de pago e ítems"
// @Success      303   {object}  dto.SubmitSaleResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Submit(c *fiber.Ctx) error {
	var in dto.SaleFormRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	form := entity.SaleForm{
		PaymentMethod: entity.PaymentMethod(in.PaymentMethod),
		Items:         make([]entity.LineItemForm, 0, len(in.Items)),
	}
	for _, it := range in.Items {
		form.Items = append(form.Items, entity.LineItemForm{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	pending, err := h.guard.Submit(c.UserContext(), GetActor(c), form)
	if err != nil {
		return respondError(c, err)
	}
	c.Location(PathSaleConfirm)
	return c.Status(fiber.StatusSeeOther).JSON(dto.SubmitSaleResponse{
		PendingID:  pending.ID,
		ExpiresAt:  pending.ExpiresAt,
		ConfirmURL: PathSaleConfirm,
	})
}

// Review godoc
// @Summary      Revisar venta pendiente
// @Description  Total y forma de pago de la venta pendiente. Sin pendiente redirige al formulario vacío.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SaleReviewResponse
// @Success      303
// @Router       /api/sales/confirm [get]
func (h *SaleHandler) Review(c *fiber.Ctx) error {
	out, err := h.guard.Review(c.UserContext(), GetActor(c))
	if errors.Is(err, domain.ErrNoPendingSale) {
		return c.Redirect(PathSaleForm, fiber.StatusSeeOther)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Confirm godoc
// @Summary      Confirmar venta pendiente
// @Description  Solo {"action":"confirm"} registra la venta, una única vez. Sin pendiente redirige al formulario vacío.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConfirmSaleRequest  true  "action"
// @Success      201   {object}  dto.SaleResponse
// @Success      303
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/confirm [post]
func (h *SaleHandler) Confirm(c *fiber.Ctx) error {
	var in dto.ConfirmSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Action != appsales.ActionConfirm {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "INVALID_ACTION", Message: fmt.Sprintf("acción no válida: se espera %q", appsales.ActionConfirm),
		})
	}
	committed, err := h.guard.Confirm(c.UserContext(), GetActor(c), in.Action)
	if errors.Is(err, domain.ErrNoPendingSale) {
		return c.Redirect(PathSaleForm, fiber.StatusSeeOther)
	}
	if err != nil {
		return respondError(c, err)
	}
	out := appsales.ToSaleResponse(committed.Sale)
	if committed.Replayed {
		c.Set("X-Sale-Replayed", "true")
		return c.JSON(out)
	}
	c.Location("/api/sales/" + out.ID)
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Discard godoc
// @Summary      Descartar venta pendiente
// @Tags         sales
// @Security     Bearer
// @Success      204
// @Router       /api/sales/confirm [delete]
func (h *SaleHandler) Discard(c *fiber.Ctx) error {
	if err := h.guard.Discard(c.UserContext(), GetActor(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        from            query  string  false  "Desde (2006-01-02 o RFC3339)"
// @Param        to              query  string  false  "Hasta (inclusive si es solo fecha)"
// @Param        operator_id     query  string  false  "Operador"
// @Param        payment_method  query  string  false  "PIX | DEBITO | DINHEIRO | CREDITO"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	f, err := saleFilter(c)
	if err != nil {
		return respondError(c, err)
	}
	p := pageParams(c)
	f.Limit, f.Offset = p.Limit, p.Offset
	out, err := h.query.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	sale, err := h.query.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if sale == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta no encontrada"})
	}
	return c.JSON(appsales.ToSaleResponse(sale))
}

// Receipt godoc
// @Summary      Comprobante PDF de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.receipt.Receipt(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="venta-%s.pdf"`, id))
	return c.Send(pdf)
}

// Immutable responde a PUT/PATCH/DELETE sobre una venta registrada.
func (h *SaleHandler) Immutable(c *fiber.Ctx) error {
	sale, err := h.query.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if sale == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "venta no encontrada"})
	}
	allowed := appsales.CanChangeSale(&sale.Sale)
	if c.Method() == fiber.MethodDelete {
		allowed = appsales.CanDeleteSale(&sale.Sale)
	}
	if !allowed {
		return respondError(c, domain.ErrSaleImmutable)
	}
	return c.SendStatus(fiber.StatusMethodNotAllowed)
}
