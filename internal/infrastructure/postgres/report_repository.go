package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para el dashboard.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// GetSalesMetrics ingresos, unidades y cantidad de ventas del período [start, end).
// Usa COALESCE para devolver cero si no hay filas (período sin ventas).
func (r *ReportRepo) GetSalesMetrics(ctx context.Context, start, end time.Time) (repository.SalesMetrics, error) {
	const query = `
	WITH period AS (
	    SELECT id FROM sales
	    WHERE ($1::timestamptz IS NULL OR created_at >= $1)
	      AND ($2::timestamptz IS NULL OR created_at <  $2)
	)
	SELECT
	    COALESCE(SUM(li.quantity * li.unit_price), 0) AS revenue,
	    COALESCE(SUM(li.quantity), 0)                 AS items,
	    (SELECT COUNT(*) FROM period)                 AS sales
	FROM line_items li
	JOIN period p ON p.id = li.sale_id`

	var m repository.SalesMetrics
	err := r.q.QueryRow(ctx, query, bound(start), bound(end)).Scan(&m.Revenue, &m.ItemCount, &m.SaleCount)
	if err != nil {
		return repository.SalesMetrics{}, fmt.Errorf("report.GetSalesMetrics: %w", err)
	}
	return m, nil
}

// CountByPaymentMethod cantidad de ventas por forma de pago en [start, end).
func (r *ReportRepo) CountByPaymentMethod(ctx context.Context, start, end time.Time) (map[entity.PaymentMethod]int64, error) {
	const query = `
	SELECT payment_method, COUNT(*)
	FROM sales
	WHERE ($1::timestamptz IS NULL OR created_at >= $1)
	  AND ($2::timestamptz IS NULL OR created_at <  $2)
	GROUP BY payment_method`

	rows, err := r.q.Query(ctx, query, bound(start), bound(end))
	if err != nil {
		return nil, fmt.Errorf("report.CountByPaymentMethod: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.PaymentMethod]int64)
	for rows.Next() {
		var (
			method string
			n      int64
		)
		if err := rows.Scan(&method, &n); err != nil {
			return nil, fmt.Errorf("report.CountByPaymentMethod scan: %w", err)
		}
		counts[entity.PaymentMethod(method)] = n
	}
	return counts, rows.Err()
}

// bound un extremo cero del período se envía como NULL (sin límite).
func bound(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
