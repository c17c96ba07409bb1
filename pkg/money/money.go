// Package money formatea montos para exportaciones y vistas.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatComma devuelve el monto con dos decimales y coma como separador decimal ("1234,50").
func FormatComma(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// FormatBRL devuelve el monto con prefijo de moneda y separador de miles ("R$ 1.234,50").
func FormatBRL(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "R$ " + b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}
