package http

import (
	"github.com/gofiber/fiber/v2"

	appsales "github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// LineItemHandler listado de ítems. Los ítems solo nacen junto con su venta.
type LineItemHandler struct {
	query *appsales.QueryUseCase
}

// NewLineItemHandler construye el handler.
func NewLineItemHandler(query *appsales.QueryUseCase) *LineItemHandler {
	return &LineItemHandler{query: query}
}

// List godoc
// @Summary      Listar ítems de venta
// @Tags         line-items
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Producto, id de venta o usuario del operador"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.LineItemListResponse
// @Router       /api/line-items [get]
func (h *LineItemHandler) List(c *fiber.Ctx) error {
	p := pageParams(c)
	out, err := h.query.ListLineItems(c.UserContext(), c.Query("search"), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create rechaza el alta directa de ítems.
func (h *LineItemHandler) Create(c *fiber.Ctx) error {
	if !appsales.CanAddLineItemDirectly() {
		return respondError(c, domain.ErrLineItemReadOnly)
	}
	return c.SendStatus(fiber.StatusMethodNotAllowed)
}

// Change rechaza la edición de ítems.
func (h *LineItemHandler) Change(c *fiber.Ctx) error {
	if !appsales.CanChangeLineItem(&entity.LineItem{ID: c.Params("id")}) {
		return respondError(c, domain.ErrLineItemReadOnly)
	}
	return c.SendStatus(fiber.StatusMethodNotAllowed)
}
