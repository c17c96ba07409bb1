package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// SalesMetrics agregados de un período.
type SalesMetrics struct {
	Revenue   decimal.Decimal // Σ cantidad × precio unitario
	ItemCount int64           // Σ cantidad
	SaleCount int64
}

// ReportRepository consultas de solo lectura para el dashboard.
// Los períodos son [start, end) sobre la fecha de creación de la venta; un extremo cero no limita.
type ReportRepository interface {
	GetSalesMetrics(ctx context.Context, start, end time.Time) (SalesMetrics, error)
	// CountByPaymentMethod cantidad de ventas por forma de pago (solo las formas con ventas).
	CountByPaymentMethod(ctx context.Context, start, end time.Time) (map[entity.PaymentMethod]int64, error)
}
