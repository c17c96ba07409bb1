package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo agregados del dashboard calculados sobre el Store.
type ReportRepo struct {
	g guard
}

// NewReportRepository construye el repositorio sobre el Store.
func NewReportRepository(s *Store) *ReportRepo {
	return &ReportRepo{g: guard{s: s}}
}

func (r *ReportRepo) GetSalesMetrics(_ context.Context, start, end time.Time) (repository.SalesMetrics, error) {
	defer r.g.lock()()
	m := repository.SalesMetrics{Revenue: decimal.Zero}
	in := make(map[string]bool)
	for id, sale := range r.g.s.sales {
		if inPeriod(sale.CreatedAt, start, end) {
			in[id] = true
			m.SaleCount++
		}
	}
	for _, it := range r.g.s.items {
		if !in[it.SaleID] {
			continue
		}
		m.Revenue = m.Revenue.Add(it.Subtotal())
		m.ItemCount += int64(it.Quantity)
	}
	return m, nil
}

func (r *ReportRepo) CountByPaymentMethod(_ context.Context, start, end time.Time) (map[entity.PaymentMethod]int64, error) {
	defer r.g.lock()()
	out := make(map[entity.PaymentMethod]int64)
	for _, sale := range r.g.s.sales {
		if inPeriod(sale.CreatedAt, start, end) {
			out[sale.PaymentMethod]++
		}
	}
	return out, nil
}

// inPeriod [start, end); un extremo cero no limita.
func inPeriod(t, start, end time.Time) bool {
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && !t.Before(end) {
		return false
	}
	return true
}
