package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Ventas-api/pkg/money"
)

func TestFormatComma(t *testing.T) {
	assert.Equal(t, "30,00", money.FormatComma(decimal.NewFromInt(30)))
	assert.Equal(t, "10,50", money.FormatComma(decimal.RequireFromString("10.5")))
	assert.Equal(t, "0,00", money.FormatComma(decimal.Zero))
	assert.Equal(t, "1234,57", money.FormatComma(decimal.RequireFromString("1234.567")))
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 1.234,50", money.FormatBRL(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "R$ 999,99", money.FormatBRL(decimal.RequireFromString("999.99")))
	assert.Equal(t, "R$ 1.000.000,00", money.FormatBRL(decimal.NewFromInt(1000000)))
	assert.Equal(t, "-R$ 12,00", money.FormatBRL(decimal.NewFromInt(-12)))
}
