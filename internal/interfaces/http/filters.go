package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// saleFilter filtros del listado y la exportación de ventas.
// from/to aceptan "2006-01-02" o RFC3339; un "to" con solo fecha incluye ese día completo.
func saleFilter(c *fiber.Ctx) (repository.SaleFilter, error) {
	f := repository.SaleFilter{
		OperatorID:    c.Query("operator_id"),
		PaymentMethod: entity.PaymentMethod(c.Query("payment_method")),
	}
	if f.PaymentMethod != "" && !f.PaymentMethod.Valid() {
		return f, domain.ErrInvalidInput
	}
	if v := c.Query("from"); v != "" {
		t, _, err := parseDate(v)
		if err != nil {
			return f, domain.ErrInvalidInput
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, dateOnly, err := parseDate(v)
		if err != nil {
			return f, domain.ErrInvalidInput
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1)
		}
		f.To = &t
	}
	return f, nil
}

func parseDate(v string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, v, time.Local); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	return t, false, err
}
