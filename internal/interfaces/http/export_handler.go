package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/export"
	"github.com/jhoicas/Ventas-api/internal/domain"
)

// HeaderContentDigest SHA-256 de la forma canónica del XML exportado.
const HeaderContentDigest = "X-Content-Digest"

// ExportHandler descarga de ventas, ítems, stock y productos en CSV, JSON o XML.
type ExportHandler struct {
	uc      *export.ExportUseCase
	encoder export.Encoder
}

// NewExportHandler construye el handler.
func NewExportHandler(uc *export.ExportUseCase, encoder export.Encoder) *ExportHandler {
	return &ExportHandler{uc: uc, encoder: encoder}
}

// Export godoc
// @Summary      Exportar registros
// @Description  sales acepta los mismos filtros que el listado; line-items, stock y products aceptan search.
// @Tags         export
// @Security     Bearer
// @Produce      text/csv,application/json,application/xml
// @Param        resource  path   string  true   "sales | line-items | stock | products"
// @Param        format    query  string  false  "csv | json | xml"  default(csv)
// @Param        search    query  string  false  "Búsqueda (line-items, stock, products)"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/export/{resource} [get]
func (h *ExportHandler) Export(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var (
		table *export.Table
		err   error
	)
	switch c.Params("resource") {
	case export.ResourceSales:
		f, ferr := saleFilter(c)
		if ferr != nil {
			return respondError(c, ferr)
		}
		table, err = h.uc.Sales(ctx, f)
	case export.ResourceLineItems:
		table, err = h.uc.LineItems(ctx, c.Query("search"))
	case export.ResourceStock:
		table, err = h.uc.Stock(ctx, c.Query("search"))
	case export.ResourceProducts:
		table, err = h.uc.Products(ctx, c.Query("search"))
	default:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no exportable"})
	}
	if err != nil {
		return respondError(c, err)
	}

	file, err := h.encoder.Encode(table, c.Query("format", export.FormatCSV))
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FORMAT", Message: "formato no soportado: csv, json o xml"})
	}
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	if file.Digest != "" {
		c.Set(HeaderContentDigest, "sha-256="+file.Digest)
	}
	return c.Send(file.Body)
}
