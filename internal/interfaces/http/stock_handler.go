package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/usecase"
)

// StockHandler registro de stock por producto (escrituras solo admin).
type StockHandler struct {
	uc *usecase.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *usecase.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Create godoc
// @Summary      Abrir registro de stock de un producto
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockEntryRequest  true  "product_id, quantity"
// @Success      201   {object}  dto.StockEntryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockEntryRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Stock de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("product_id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "el producto no tiene registro de stock"})
	}
	return c.JSON(out)
}

// SetQuantity godoc
// @Summary      Fijar cantidad disponible
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product_id  path  string  true  "ID del producto"
// @Param        body        body  dto.SetStockRequest  true  "quantity >= 0"
// @Success      200  {object}  dto.StockEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id} [put]
func (h *StockHandler) SetQuantity(c *fiber.Ctx) error {
	var in dto.SetStockRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.SetQuantity(c.UserContext(), c.Params("product_id"), *in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Nombre o código de barras del producto"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.StockListResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	p := pageParams(c)
	out, err := h.uc.List(c.UserContext(), c.Query("search"), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
