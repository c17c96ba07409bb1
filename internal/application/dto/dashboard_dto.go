package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// Totales históricos y del mes en curso.
type DashboardSummaryDTO struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	MonthRevenue decimal.Decimal `json:"month_revenue"`

	TotalItems int64 `json:"total_items"`
	MonthItems int64 `json:"month_items"`

	TotalSales int64 `json:"total_sales"`
	MonthSales int64 `json:"month_sales"`

	// Una entrada por forma de pago, en el orden del formulario (con ceros).
	PaymentMethods []PaymentMethodCountDTO `json:"payment_methods"`

	DateLabel string `json:"date_label"` // ej: "Octubre 2026"
}

// PaymentMethodCountDTO cantidad de ventas por forma de pago.
type PaymentMethodCountDTO struct {
	Method     string `json:"method"`
	Label      string `json:"label"`
	Total      int64  `json:"total"`
	MonthTotal int64  `json:"month_total"`
}
