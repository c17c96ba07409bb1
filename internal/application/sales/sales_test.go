package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsales "github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	rules "github.com/jhoicas/Ventas-api/internal/domain/sales"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/memory"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/stash"
)

type fixture struct {
	products *memory.ProductRepo
	stock    *memory.StockRepo
	sales    *memory.SaleRepo
	pending  *stash.MemoryStore
	creator  *appsales.CreateSaleUseCase
	guard    *appsales.SaleGuard
	actor    appsales.Actor
}

func newFixture(t *testing.T, opts rules.Options) *fixture {
	t.Helper()
	return newFixtureWithRunner(t, opts, nil)
}

// newFixtureWithRunner permite envolver el TxRunner en memoria (wrap nil lo deja tal cual).
func newFixtureWithRunner(t *testing.T, opts rules.Options, wrap func(appsales.TxRunner) appsales.TxRunner) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		products: memory.NewProductRepository(store),
		stock:    memory.NewStockRepository(store),
		sales:    memory.NewSaleRepository(store),
		pending:  stash.NewMemoryStore(),
		actor:    appsales.Actor{OperatorID: "op-1", SessionID: "sess-1", Role: entity.RoleOperator},
	}
	users := memory.NewUserRepository(store)
	require.NoError(t, users.Create(context.Background(), &entity.User{ID: "op-1", Username: "caixa1", Role: entity.RoleOperator, Status: entity.UserStatusActive}))
	var runner appsales.TxRunner = memory.NewTxRunner(store)
	if wrap != nil {
		runner = wrap(runner)
	}
	f.creator = appsales.NewCreateSaleUseCase(runner, f.sales, opts, nil)
	f.guard = appsales.NewSaleGuard(f.pending, f.products, f.stock, f.creator, 15*time.Minute, opts, nil)
	return f
}

// addProduct crea un producto con precio y, si qty >= 0, su registro de stock.
func (f *fixture) addProduct(t *testing.T, id, price string, qty int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.products.Create(ctx, &entity.Product{
		ID: id, Barcode: "789" + id, Name: "Produto " + id, Price: decimal.RequireFromString(price),
	}))
	if qty >= 0 {
		require.NoError(t, f.stock.Create(ctx, &entity.StockEntry{ProductID: id, Quantity: qty}))
	}
}

func (f *fixture) stockOf(t *testing.T, id string) int {
	t.Helper()
	e, err := f.stock.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, e)
	return e.Quantity
}

func (f *fixture) saleCount(t *testing.T) int {
	t.Helper()
	list, err := f.sales.List(context.Background(), repository.SaleFilter{})
	require.NoError(t, err)
	return len(list)
}

func (f *fixture) submitAndConfirm(t *testing.T, items ...entity.LineItemForm) (*appsales.Committed, error) {
	t.Helper()
	ctx := context.Background()
	_, err := f.guard.Submit(ctx, f.actor, entity.SaleForm{PaymentMethod: entity.PaymentPIX, Items: items})
	require.NoError(t, err)
	return f.guard.Confirm(ctx, f.actor, appsales.ActionConfirm)
}

func TestConfirm_CongelaPrecioYDescuentaStock(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 5)

	c, err := f.submitAndConfirm(t, entity.LineItemForm{ProductID: "P", Quantity: 3})
	require.NoError(t, err)
	require.NotNil(t, c.Sale)
	assert.False(t, c.Replayed)
	require.Len(t, c.Sale.Lines, 1)
	assert.True(t, c.Sale.Lines[0].UnitPrice.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "caixa1", c.Sale.OperatorUsername)
	assert.Equal(t, "30.00", appsales.ToSaleResponse(c.Sale).Total.StringFixed(2))
	assert.Equal(t, 2, f.stockOf(t, "P"))

	// Segunda venta de 5 con stock 2: error de stock, nada cambia
	_, err = f.submitAndConfirm(t, entity.LineItemForm{ProductID: "P", Quantity: 5})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var se *rules.StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 2, se.Available)
	assert.Equal(t, 2, f.stockOf(t, "P"))
	assert.Equal(t, 1, f.saleCount(t))
}

func TestSubmit_CantidadCeroNoGuardaNada(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 5)
	ctx := context.Background()

	_, err := f.guard.Submit(ctx, f.actor, entity.SaleForm{
		PaymentMethod: entity.PaymentCash,
		Items:         []entity.LineItemForm{{ProductID: "P", Quantity: 0}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, []string{rules.MsgQuantityMin}, rules.FieldErrors(err)["items[0].quantity"])

	_, err = f.guard.Review(ctx, f.actor)
	assert.ErrorIs(t, err, domain.ErrNoPendingSale)
	assert.Equal(t, 0, f.saleCount(t))
	assert.Equal(t, 5, f.stockOf(t, "P"))
}

func TestSubmit_ProductoInexistente(t *testing.T) {
	f := newFixture(t, rules.Options{})
	_, err := f.guard.Submit(context.Background(), f.actor, entity.SaleForm{
		Items: []entity.LineItemForm{{ProductID: "nope", Quantity: 1}},
	})
	assert.Equal(t, []string{rules.MsgProductNotFound}, rules.FieldErrors(err)["items[0].product_id"])
}

func TestSubmit_FormaDePagoPorDefecto(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 5)
	p, err := f.guard.Submit(context.Background(), f.actor, entity.SaleForm{
		Items: []entity.LineItemForm{{ProductID: "P", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCash, p.Form.PaymentMethod)
}

func TestReview_NoPersisteYMuestraTotal(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 5)
	f.addProduct(t, "Q", "4.25", 10)
	ctx := context.Background()

	_, err := f.guard.Submit(ctx, f.actor, entity.SaleForm{
		PaymentMethod: entity.PaymentDebit,
		Items: []entity.LineItemForm{
			{ProductID: "P", Quantity: 3},
			{ProductID: "Q", Quantity: 2},
		},
	})
	require.NoError(t, err)

	review, err := f.guard.Review(ctx, f.actor)
	require.NoError(t, err)
	assert.Equal(t, "38.50", review.Total.StringFixed(2))
	assert.Equal(t, 5, review.TotalQuantity)
	assert.Equal(t, "Débito", review.PaymentMethodLabel)
	assert.Empty(t, review.Errors)
	assert.Len(t, review.Lines, 2)

	assert.Equal(t, 0, f.saleCount(t))
	assert.Equal(t, 5, f.stockOf(t, "P"))

	// revisar dos veces no consume la pendiente
	_, err = f.guard.Review(ctx, f.actor)
	require.NoError(t, err)
}

func TestReview_AcumulaStockDeLineasDelMismoProducto(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 5)
	ctx := context.Background()
	_, err := f.guard.Submit(ctx, f.actor, entity.SaleForm{
		PaymentMethod: entity.PaymentPIX,
		Items: []entity.LineItemForm{
			{ProductID: "P", Quantity: 3},
			{ProductID: "P", Quantity: 3},
		},
	})
	require.NoError(t, err)

	review, err := f.guard.Review(ctx, f.actor)
	require.NoError(t, err)
	assert.NotContains(t, review.Errors, "items[0].quantity")
	assert.Contains(t, review.Errors, "items[1].quantity")
}

func TestConfirm_AccionDistintaNoRegistra(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 5)
	ctx := context.Background()
	_, err := f.guard.Submit(ctx, f.actor, entity.SaleForm{
		PaymentMethod: entity.PaymentPIX,
		Items:         []entity.LineItemForm{{ProductID: "P", Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.guard.Confirm(ctx, f.actor, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, f.saleCount(t))

	// la pendiente sigue disponible
	_, err = f.guard.Review(ctx, f.actor)
	assert.NoError(t, err)
}

func TestConfirm_SegundaConfirmacionNoDuplica(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 5)

	_, err := f.submitAndConfirm(t, entity.LineItemForm{ProductID: "P", Quantity: 1})
	require.NoError(t, err)

	_, err = f.guard.Confirm(context.Background(), f.actor, appsales.ActionConfirm)
	assert.ErrorIs(t, err, domain.ErrNoPendingSale)
	assert.Equal(t, 1, f.saleCount(t))
	assert.Equal(t, 4, f.stockOf(t, "P"))
}

func TestConfirm_ConcurrentesRegistranUnaSolaVenta(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 50)
	ctx := context.Background()
	_, err := f.guard.Submit(ctx, f.actor, entity.SaleForm{
		PaymentMethod: entity.PaymentCredit,
		Items:         []entity.LineItemForm{{ProductID: "P", Quantity: 2}},
	})
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		missing int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.guard.Confirm(ctx, f.actor, appsales.ActionConfirm)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrNoPendingSale):
				missing++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 9, missing)
	assert.Equal(t, 1, f.saleCount(t))
	assert.Equal(t, 48, f.stockOf(t, "P"))
}

func TestConfirm_OtraSesionNoVeLaPendiente(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 5)
	ctx := context.Background()
	_, err := f.guard.Submit(ctx, f.actor, entity.SaleForm{
		PaymentMethod: entity.PaymentPIX,
		Items:         []entity.LineItemForm{{ProductID: "P", Quantity: 1}},
	})
	require.NoError(t, err)

	other := f.actor
	other.SessionID = "sess-2"
	_, err = f.guard.Confirm(ctx, other, appsales.ActionConfirm)
	assert.ErrorIs(t, err, domain.ErrNoPendingSale)
	assert.Equal(t, 0, f.saleCount(t))
}

func TestConfirm_ErrorDeStockRestauraLaPendiente(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 5)
	ctx := context.Background()
	_, err := f.guard.Submit(ctx, f.actor, entity.SaleForm{
		PaymentMethod: entity.PaymentPIX,
		Items:         []entity.LineItemForm{{ProductID: "P", Quantity: 4}},
	})
	require.NoError(t, err)

	// el stock baja entre la revisión y la confirmación
	require.NoError(t, f.stock.SetQuantity(ctx, "P", 1))
	_, err = f.guard.Confirm(ctx, f.actor, appsales.ActionConfirm)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	review, err := f.guard.Review(ctx, f.actor)
	require.NoError(t, err)
	assert.Contains(t, review.Errors, "items[0].quantity")
	assert.Equal(t, 0, f.saleCount(t))
}

// runnerFunc adapta una función a appsales.TxRunner.
type runnerFunc func(ctx context.Context, fn func(repository.StockRepository, repository.ProductRepository, repository.SaleRepository) error) error

func (r runnerFunc) Run(ctx context.Context, fn func(repository.StockRepository, repository.ProductRepository, repository.SaleRepository) error) error {
	return r(ctx, fn)
}

func TestConfirm_ErrorNoPisaUnEnvioMasReciente(t *testing.T) {
	var f *fixture
	resubmit := true
	f = newFixtureWithRunner(t, rules.Options{}, func(inner appsales.TxRunner) appsales.TxRunner {
		return runnerFunc(func(ctx context.Context, fn func(repository.StockRepository, repository.ProductRepository, repository.SaleRepository) error) error {
			if resubmit {
				resubmit = false
				// otra pestaña de la misma sesión envía un formulario nuevo durante el registro
				_, err := f.guard.Submit(ctx, f.actor, entity.SaleForm{
					PaymentMethod: entity.PaymentCash,
					Items:         []entity.LineItemForm{{ProductID: "P", Quantity: 1}},
				})
				require.NoError(t, err)
			}
			return inner.Run(ctx, fn)
		})
	})
	f.addProduct(t, "P", "10.00", 5)
	ctx := context.Background()
	_, err := f.guard.Submit(ctx, f.actor, entity.SaleForm{
		PaymentMethod: entity.PaymentPIX,
		Items:         []entity.LineItemForm{{ProductID: "P", Quantity: 4}},
	})
	require.NoError(t, err)
	require.NoError(t, f.stock.SetQuantity(ctx, "P", 1))

	_, err = f.guard.Confirm(ctx, f.actor, appsales.ActionConfirm)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	review, err := f.guard.Review(ctx, f.actor)
	require.NoError(t, err)
	require.Len(t, review.Lines, 1)
	assert.Equal(t, 1, review.Lines[0].Quantity, "queda el envío más reciente")
	assert.Equal(t, string(entity.PaymentCash), review.PaymentMethod)

	c, err := f.guard.Confirm(ctx, f.actor, appsales.ActionConfirm)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentCash, c.Sale.PaymentMethod)
	assert.Equal(t, 0, f.stockOf(t, "P"))
}

// lockRecorder registra el orden de los bloqueos de stock.
type lockRecorder struct {
	repository.StockRepository
	mu    sync.Mutex
	order []string
}

func (r *lockRecorder) GetForUpdate(ctx context.Context, productID string) (*entity.StockEntry, error) {
	r.mu.Lock()
	r.order = append(r.order, productID)
	r.mu.Unlock()
	return r.StockRepository.GetForUpdate(ctx, productID)
}

func TestCreate_BloqueaElStockEnOrdenDeProducto(t *testing.T) {
	rec := &lockRecorder{}
	f := newFixtureWithRunner(t, rules.Options{}, func(inner appsales.TxRunner) appsales.TxRunner {
		return runnerFunc(func(ctx context.Context, fn func(repository.StockRepository, repository.ProductRepository, repository.SaleRepository) error) error {
			return inner.Run(ctx, func(stock repository.StockRepository, products repository.ProductRepository, sales repository.SaleRepository) error {
				rec.StockRepository = stock
				return fn(rec, products, sales)
			})
		})
	})
	f.addProduct(t, "P2", "1.00", 5)
	f.addProduct(t, "P1", "1.00", 5)
	f.addProduct(t, "P3", "1.00", 5)

	_, err := f.submitAndConfirm(t,
		entity.LineItemForm{ProductID: "P3", Quantity: 1},
		entity.LineItemForm{ProductID: "P1", Quantity: 1},
		entity.LineItemForm{ProductID: "P3", Quantity: 1},
		entity.LineItemForm{ProductID: "P2", Quantity: 1},
	)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rec.order), 3)
	assert.Equal(t, []string{"P1", "P2", "P3"}, rec.order[:3], "todas las filas se bloquean antes del primer ítem y ordenadas")
	assert.Equal(t, 3, f.stockOf(t, "P3"))
}

func TestDiscard(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 5)
	ctx := context.Background()
	_, err := f.guard.Submit(ctx, f.actor, entity.SaleForm{
		PaymentMethod: entity.PaymentPIX,
		Items:         []entity.LineItemForm{{ProductID: "P", Quantity: 1}},
	})
	require.NoError(t, err)
	require.NoError(t, f.guard.Discard(ctx, f.actor))

	_, err = f.guard.Confirm(ctx, f.actor, appsales.ActionConfirm)
	assert.ErrorIs(t, err, domain.ErrNoPendingSale)
}

func TestCreate_SinMarcaDeConfirmacion(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 5)
	_, err := f.creator.Create(context.Background(), "op-1", entity.SaleForm{
		PaymentMethod: entity.PaymentPIX,
		Items:         []entity.LineItemForm{{ProductID: "P", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrConfirmationRequired)
	assert.Equal(t, 0, f.saleCount(t))
	assert.Equal(t, 5, f.stockOf(t, "P"))
}

func TestCreate_MarcaRepetidaDevuelveLaVentaExistente(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 5)
	ctx := context.Background()
	form := entity.SaleForm{
		PaymentMethod:  entity.PaymentPIX,
		Items:          []entity.LineItemForm{{ProductID: "P", Quantity: 1}},
		ConfirmationID: "conf-1",
	}
	first, err := f.creator.Create(ctx, "op-1", form)
	require.NoError(t, err)

	second, err := f.creator.Create(ctx, "op-1", form)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Sale.ID, second.Sale.ID)
	assert.Equal(t, 1, f.saleCount(t))
	assert.Equal(t, 4, f.stockOf(t, "P"))
}

func TestCreate_FalloEnUnItemRevierteTodo(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 5)
	f.addProduct(t, "Q", "2.00", 1)

	_, err := f.submitAndConfirm(t,
		entity.LineItemForm{ProductID: "P", Quantity: 3},
		entity.LineItemForm{ProductID: "Q", Quantity: 2},
	)
	require.Error(t, err)
	assert.Contains(t, rules.FieldErrors(err), "items[1].quantity")
	assert.Equal(t, 5, f.stockOf(t, "P"))
	assert.Equal(t, 1, f.stockOf(t, "Q"))
	assert.Equal(t, 0, f.saleCount(t))

	n, err := f.sales.CountLineItemsByProduct(context.Background(), "P")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreate_LineasDelMismoProductoVenElStockReducido(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 5)

	_, err := f.submitAndConfirm(t,
		entity.LineItemForm{ProductID: "P", Quantity: 3},
		entity.LineItemForm{ProductID: "P", Quantity: 3},
	)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, f.stockOf(t, "P"))

	c, err := f.submitAndConfirm(t,
		entity.LineItemForm{ProductID: "P", Quantity: 3},
		entity.LineItemForm{ProductID: "P", Quantity: 2},
	)
	require.NoError(t, err)
	assert.Len(t, c.Sale.Lines, 2)
	assert.Equal(t, 0, f.stockOf(t, "P"))
}

func TestCreate_CambioDePrecioNoAfectaVentasRegistradas(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "P", "10.00", 5)
	ctx := context.Background()

	c, err := f.submitAndConfirm(t, entity.LineItemForm{ProductID: "P", Quantity: 2})
	require.NoError(t, err)

	p, err := f.products.GetByID(ctx, "P")
	require.NoError(t, err)
	p.Price = decimal.RequireFromString("15.00")
	require.NoError(t, f.products.Update(ctx, p))

	view, err := f.sales.GetByID(ctx, c.Sale.ID)
	require.NoError(t, err)
	assert.True(t, view.Lines[0].UnitPrice.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "20.00", appsales.ToSaleResponse(view).Total.StringFixed(2))
}

func TestCreate_ProductoSinRegistroDeStock(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "U", "1.00", -1)

	c, err := f.submitAndConfirm(t, entity.LineItemForm{ProductID: "U", Quantity: 1000})
	require.NoError(t, err, "sin registro de stock la venta no se controla")
	assert.Equal(t, 1000, c.Sale.Lines[0].Quantity)

	strict := newFixture(t, rules.Options{RequireStockEntry: true})
	strict.addProduct(t, "U", "1.00", -1)
	_, err = strict.submitAndConfirm(t, entity.LineItemForm{ProductID: "U", Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, []string{rules.MsgUntrackedProduct}, rules.FieldErrors(err)["items[0].quantity"])
	assert.Equal(t, 0, strict.saleCount(t))
}

func TestFormOptions_SoloProductosConStock(t *testing.T) {
	f := newFixture(t, rules.Options{})
	f.addProduct(t, "A", "1.00", 3)
	f.addProduct(t, "B", "1.00", 0)
	f.addProduct(t, "C", "1.00", -1)

	opts, err := f.guard.FormOptions(context.Background())
	require.NoError(t, err)
	require.Len(t, opts.Products, 1)
	assert.Equal(t, "A", opts.Products[0].ID)
	assert.Equal(t, string(entity.PaymentCash), opts.DefaultPaymentMethod)
	assert.Len(t, opts.PaymentMethods, 4)
}

func TestSubmit_RolSinPermiso(t *testing.T) {
	f := newFixture(t, rules.Options{})
	actor := f.actor
	actor.Role = "invitado"
	_, err := f.guard.Submit(context.Background(), actor, entity.SaleForm{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
