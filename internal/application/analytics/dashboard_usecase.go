// Package analytics contiene los casos de uso de reportes de ventas (dashboard de gestión).
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

// DashboardUseCase genera el resumen de ventas histórico y del mes en curso.
//
// Fuente de datos: ReportRepository (consultas read-only).
type DashboardUseCase struct {
	reportRepo repository.ReportRepository
	now        func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(reportRepo repository.ReportRepository) *DashboardUseCase {
	return &DashboardUseCase{reportRepo: reportRepo, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cuatro llamadas en paralelo:
//  1. GetSalesMetrics(todo)        → ingresos, ítems y ventas históricos
//  2. GetSalesMetrics(mes)         → ingresos, ítems y ventas del mes
//  3. CountByPaymentMethod(todo)
//  4. CountByPaymentMethod(mes)
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	// Mes en curso: día 1 a las 00:00 hasta el día 1 del mes siguiente (exclusivo)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	type metricsResult struct {
		m   repository.SalesMetrics
		err error
	}
	type methodsResult struct {
		counts map[entity.PaymentMethod]int64
		err    error
	}

	totalCh := make(chan metricsResult, 1)
	monthCh := make(chan metricsResult, 1)
	totalMethodsCh := make(chan methodsResult, 1)
	monthMethodsCh := make(chan methodsResult, 1)

	go func() {
		m, err := uc.reportRepo.GetSalesMetrics(ctx, time.Time{}, time.Time{})
		totalCh <- metricsResult{m, err}
	}()
	go func() {
		m, err := uc.reportRepo.GetSalesMetrics(ctx, monthStart, monthEnd)
		monthCh <- metricsResult{m, err}
	}()
	go func() {
		c, err := uc.reportRepo.CountByPaymentMethod(ctx, time.Time{}, time.Time{})
		totalMethodsCh <- methodsResult{c, err}
	}()
	go func() {
		c, err := uc.reportRepo.CountByPaymentMethod(ctx, monthStart, monthEnd)
		monthMethodsCh <- methodsResult{c, err}
	}()

	total := <-totalCh
	month := <-monthCh
	totalMethods := <-totalMethodsCh
	monthMethods := <-monthMethodsCh

	if total.err != nil {
		return nil, fmt.Errorf("dashboard: métricas históricas: %w", total.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: métricas del mes: %w", month.err)
	}
	if totalMethods.err != nil {
		return nil, fmt.Errorf("dashboard: formas de pago: %w", totalMethods.err)
	}
	if monthMethods.err != nil {
		return nil, fmt.Errorf("dashboard: formas de pago del mes: %w", monthMethods.err)
	}

	// Todas las formas de pago, aunque no tengan ventas
	methods := make([]dto.PaymentMethodCountDTO, 0, len(entity.PaymentMethods))
	for _, pm := range entity.PaymentMethods {
		methods = append(methods, dto.PaymentMethodCountDTO{
			Method:     string(pm),
			Label:      pm.Label(),
			Total:      totalMethods.counts[pm],
			MonthTotal: monthMethods.counts[pm],
		})
	}

	return &dto.DashboardSummaryDTO{
		TotalRevenue:   total.m.Revenue.Round(2),
		MonthRevenue:   month.m.Revenue.Round(2),
		TotalItems:     total.m.ItemCount,
		MonthItems:     month.m.ItemCount,
		TotalSales:     total.m.SaleCount,
		MonthSales:     month.m.SaleCount,
		PaymentMethods: methods,
		DateLabel:      monthLabel(now),
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
