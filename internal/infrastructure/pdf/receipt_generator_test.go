package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/pdf"
)

func TestGenerateReceipt_DevuelvePDF(t *testing.T) {
	sale := &entity.SaleView{
		Sale: entity.Sale{
			ID:            "0f8fad5b-d9cb-469f-a165-70867728950e",
			CreatedAt:     time.Date(2026, 10, 3, 14, 5, 0, 0, time.UTC),
			PaymentMethod: entity.PaymentPIX,
		},
		OperatorUsername: "caixa1",
		Lines: []entity.LineItemView{{
			LineItem:    entity.LineItem{ID: "li-1", Quantity: 3, UnitPrice: decimal.RequireFromString("10.00")},
			ProductName: "Café 500g",
		}},
	}
	out, err := pdf.NewMarotoReceiptGenerator("Mercadinho").GenerateReceipt(context.Background(), sale)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
