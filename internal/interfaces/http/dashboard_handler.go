package http

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/Ventas-api/internal/application/analytics"
	"github.com/jhoicas/Ventas-api/pkg/money"
)

var dashboardPage = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"brl": money.FormatBRL,
}).Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>Dashboard de ventas</title>
</head>
<body>
<h1>Dashboard de ventas</h1>
<p>{{.DateLabel}}</p>
<table>
<tr><th></th><th>Total</th><th>Mes</th></tr>
<tr><td>Facturación</td><td>{{brl .TotalRevenue}}</td><td>{{brl .MonthRevenue}}</td></tr>
<tr><td>Ítems vendidos</td><td>{{.TotalItems}}</td><td>{{.MonthItems}}</td></tr>
<tr><td>Ventas</td><td>{{.TotalSales}}</td><td>{{.MonthSales}}</td></tr>
</table>
<h2>Formas de pago</h2>
<table>
<tr><th></th><th>Total</th><th>Mes</th></tr>
{{range .PaymentMethods}}<tr><td>{{.Label}}</td><td>{{.Total}}</td><td>{{.MonthTotal}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// DashboardHandler maneja los endpoints del dashboard de ventas.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary godoc
// @Summary      Resumen de ventas
// @Description  Facturación, ítems y ventas (histórico y mes en curso) y ventas por forma de pago.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Router       /api/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// Page el mismo resumen como página HTML de solo lectura.
func (h *DashboardHandler) Page(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	var buf bytes.Buffer
	if err := dashboardPage.Execute(&buf, summary); err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
