package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/postgres"
)

// Sin Querier: cualquier consulta enviada a la base provocaría un panic.

func TestRepos_IDNoUUIDEsNoEncontradoSinConsultar(t *testing.T) {
	ctx := context.Background()
	const bad = "abc"

	product, err := postgres.NewProductRepository(nil).GetByID(ctx, bad)
	require.NoError(t, err)
	assert.Nil(t, product)

	err = postgres.NewProductRepository(nil).Update(ctx, &entity.Product{ID: bad, Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = postgres.NewProductRepository(nil).Delete(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stock := postgres.NewStockRepository(nil)
	entry, err := stock.Get(ctx, bad)
	require.NoError(t, err)
	assert.Nil(t, entry)

	entry, err = stock.GetForUpdate(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, entry)

	assert.ErrorIs(t, stock.SetQuantity(ctx, bad, 3), domain.ErrNotFound)
	assert.ErrorIs(t, stock.Create(ctx, &entity.StockEntry{ProductID: bad}), domain.ErrNotFound)

	_, err = stock.Decrement(ctx, bad, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sale, err := postgres.NewSaleRepository(nil).GetByID(ctx, "venta-1")
	require.NoError(t, err)
	assert.Nil(t, sale)

	n, err := postgres.NewSaleRepository(nil).CountLineItemsByProduct(ctx, bad)
	require.NoError(t, err)
	assert.Zero(t, n)

	user, err := postgres.NewUserRepository(nil).GetByID(ctx, "1; DROP TABLE users")
	require.NoError(t, err)
	assert.Nil(t, user)
}
