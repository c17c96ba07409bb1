package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/Ventas-api/internal/application/analytics"
	"github.com/jhoicas/Ventas-api/internal/application/auth"
	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/export"
	appsales "github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/application/usecase"
	rules "github.com/jhoicas/Ventas-api/internal/domain/sales"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/memory"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/stash"
	apphttp "github.com/jhoicas/Ventas-api/internal/interfaces/http"
)

type testServer struct {
	app      *fiber.App
	admin    string
	operator string
}

// newTestServer arma la API completa sobre el driver en memoria, con un admin y un operador logueados.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	stockRepo := memory.NewStockRepository(store)
	saleRepo := memory.NewSaleRepository(store)
	userRepo := memory.NewUserRepository(store)

	opts := rules.Options{}
	creator := appsales.NewCreateSaleUseCase(memory.NewTxRunner(store), saleRepo, opts, nil)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:      authUC,
		UserUC:      usecase.NewUserUseCase(userRepo),
		ProductUC:   usecase.NewProductUseCase(productRepo, saleRepo),
		StockUC:     usecase.NewStockUseCase(stockRepo, productRepo),
		SaleGuard:   appsales.NewSaleGuard(stash.NewMemoryStore(), productRepo, stockRepo, creator, 15*time.Minute, opts, nil),
		SaleQuery:   appsales.NewQueryUseCase(saleRepo),
		Receipt:     appsales.NewReceiptUseCase(saleRepo, pdf.NewMarotoReceiptGenerator("Loja Teste")),
		ExportUC:    export.NewExportUseCase(saleRepo, stockRepo, productRepo),
		Encoder:     export.Encoder{CSVCharset: export.CharsetUTF8},
		DashboardUC: appanalytics.NewDashboardUseCase(memory.NewReportRepository(store)),
		JWTSecret:   testJWTSecret,
	})

	ctx := context.Background()
	_, err := authUC.RegisterUser(ctx, dto.CreateUserRequest{Username: "admin", Password: "admin-pass-123", Role: "admin"})
	require.NoError(t, err)
	_, err = authUC.RegisterUser(ctx, dto.CreateUserRequest{Username: "caixa1", Password: "caixa-pass-123"})
	require.NoError(t, err)

	s := &testServer{app: app}
	s.admin = s.login(t, "admin", "admin-pass-123")
	s.operator = s.login(t, "caixa1", "caixa-pass-123")
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(t, resp, &out)
	return "Bearer " + out.Token
}

// addProduct crea producto y stock como admin y devuelve su id.
func (s *testServer) addProduct(t *testing.T, barcode, name, price string, qty int) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/products", s.admin, dto.CreateProductRequest{
		Barcode: barcode, Name: name, Price: decimal.RequireFromString(price),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, resp, &p)

	resp = s.do(t, http.MethodPost, "/api/stock", s.admin, dto.CreateStockEntryRequest{ProductID: p.ID, Quantity: qty})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return p.ID
}

func (s *testServer) stockOf(t *testing.T, productID string) int {
	t.Helper()
	resp := s.do(t, http.MethodGet, "/api/stock/"+productID, s.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var e dto.StockEntryResponse
	decode(t, resp, &e)
	return e.Quantity
}

func (s *testServer) submit(t *testing.T, token string, items ...dto.LineItemRequest) *http.Response {
	t.Helper()
	return s.do(t, http.MethodPost, "/api/sales", token, dto.SaleFormRequest{PaymentMethod: "PIX", Items: items})
}

func (s *testServer) confirm(t *testing.T, token string) *http.Response {
	t.Helper()
	return s.do(t, http.MethodPost, "/api/sales/confirm", token, dto.ConfirmSaleRequest{Action: "confirm"})
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestVenta_FlujoEnviarRevisarConfirmar(t *testing.T) {
	s := newTestServer(t)
	pid := s.addProduct(t, "7890000000001", "Café 500g", "10.00", 5)

	resp := s.submit(t, s.operator, dto.LineItemRequest{ProductID: pid, Quantity: 3})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, apphttp.PathSaleConfirm, resp.Header.Get("Location"))
	assert.Equal(t, 5, s.stockOf(t, pid), "enviar no descuenta stock")

	resp = s.do(t, http.MethodGet, "/api/sales/confirm", s.operator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var review dto.SaleReviewResponse
	decode(t, resp, &review)
	assert.True(t, review.Total.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, "PIX", review.PaymentMethodLabel)

	resp = s.confirm(t, s.operator)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sale dto.SaleResponse
	decode(t, resp, &sale)
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, "caixa1", sale.OperatorUsername)
	require.Len(t, sale.Items, 1)
	assert.True(t, sale.Items[0].UnitPrice.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 2, s.stockOf(t, pid))

	// segunda confirmación: no hay pendiente, vuelve al formulario vacío
	resp = s.confirm(t, s.operator)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, apphttp.PathSaleForm, resp.Header.Get("Location"))

	resp = s.do(t, http.MethodGet, "/api/sales", s.operator, nil)
	var list dto.SaleListResponse
	decode(t, resp, &list)
	assert.Len(t, list.Items, 1)
}

func TestVenta_ConfirmacionesConcurrentesCreanUnaSola(t *testing.T) {
	s := newTestServer(t)
	pid := s.addProduct(t, "7890000000001", "Café 500g", "10.00", 50)
	require.Equal(t, http.StatusSeeOther, s.submit(t, s.operator, dto.LineItemRequest{ProductID: pid, Quantity: 1}).StatusCode)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/sales/confirm", strings.NewReader(`{"action":"confirm"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", s.operator)
			resp, err := s.app.Test(req, -1)
			if err != nil {
				return
			}
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusCreated {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 49, s.stockOf(t, pid))
}

func TestVenta_CantidadInvalidaDevuelve422SinPendiente(t *testing.T) {
	s := newTestServer(t)
	pid := s.addProduct(t, "7890000000001", "Café 500g", "10.00", 5)

	resp := s.submit(t, s.operator, dto.LineItemRequest{ProductID: pid, Quantity: 0})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Fields, "items[0].quantity")

	resp = s.do(t, http.MethodGet, "/api/sales/confirm", s.operator, nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "sin pendiente la revisión redirige al formulario")
	assert.Equal(t, apphttp.PathSaleForm, resp.Header.Get("Location"))
}

func TestVenta_AccionDistintaDeConfirmNoRegistra(t *testing.T) {
	s := newTestServer(t)
	pid := s.addProduct(t, "7890000000001", "Café 500g", "10.00", 5)
	require.Equal(t, http.StatusSeeOther, s.submit(t, s.operator, dto.LineItemRequest{ProductID: pid, Quantity: 1}).StatusCode)

	resp := s.do(t, http.MethodPost, "/api/sales/confirm", s.operator, dto.ConfirmSaleRequest{Action: "cancel"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/sales/confirm", s.operator, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "la pendiente sigue disponible")
	assert.Equal(t, 5, s.stockOf(t, pid))
}

func TestVenta_StockInsuficienteAlConfirmar(t *testing.T) {
	s := newTestServer(t)
	pid := s.addProduct(t, "7890000000001", "Café 500g", "10.00", 5)
	require.Equal(t, http.StatusSeeOther, s.submit(t, s.operator, dto.LineItemRequest{ProductID: pid, Quantity: 4}).StatusCode)

	// el stock baja entre el envío y la confirmación
	resp := s.do(t, http.MethodPut, "/api/stock/"+pid, s.admin, map[string]int{"quantity": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.confirm(t, s.operator)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Contains(t, body.Fields, "items[0].quantity")
	assert.Equal(t, 2, s.stockOf(t, pid))
}

func TestVenta_DescartarPendiente(t *testing.T) {
	s := newTestServer(t)
	pid := s.addProduct(t, "7890000000001", "Café 500g", "10.00", 5)
	require.Equal(t, http.StatusSeeOther, s.submit(t, s.operator, dto.LineItemRequest{ProductID: pid, Quantity: 1}).StatusCode)

	resp := s.do(t, http.MethodDelete, "/api/sales/confirm", s.operator, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.confirm(t, s.operator)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestVenta_InmutableYItemsSoloLectura(t *testing.T) {
	s := newTestServer(t)
	pid := s.addProduct(t, "7890000000001", "Café 500g", "10.00", 5)
	s.submit(t, s.operator, dto.LineItemRequest{ProductID: pid, Quantity: 1})
	resp := s.confirm(t, s.operator)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sale dto.SaleResponse
	decode(t, resp, &sale)

	for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
		resp = s.do(t, method, "/api/sales/"+sale.ID, s.admin, map[string]string{"payment_method": "CREDITO"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, method)
		var body dto.ErrorResponse
		decode(t, resp, &body)
		assert.Equal(t, "SALE_IMMUTABLE", body.Code)
	}

	resp = s.do(t, http.MethodPost, "/api/line-items", s.admin, map[string]any{"sale_id": sale.ID, "product_id": pid, "quantity": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = s.do(t, http.MethodPut, "/api/line-items/"+sale.Items[0].ID, s.admin, map[string]any{"quantity": 9})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/products/"+pid, s.admin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "producto referenciado por ítems")

	resp = s.do(t, http.MethodGet, "/api/line-items?search=caixa1", s.operator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items dto.LineItemListResponse
	decode(t, resp, &items)
	require.Len(t, items.Items, 1)
	assert.Equal(t, sale.ID, items.Items[0].SaleID)
}

func TestCatalogo_OperadorNoAdministra(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/products", s.operator, dto.CreateProductRequest{
		Barcode: "1", Name: "Pão", Price: decimal.NewFromInt(1),
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/auth/users", s.operator, dto.CreateUserRequest{Username: "otro", Password: "12345678"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCatalogo_ValidacionYDuplicados(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodPost, "/api/products", s.admin, map[string]any{"barcode": "", "name": "Pão", "price": "1.00"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Contains(t, body.Fields, "barcode")

	s.addProduct(t, "7890000000001", "Café 500g", "10.00", 5)
	resp = s.do(t, http.MethodPost, "/api/products", s.admin, dto.CreateProductRequest{
		Barcode: "7890000000001", Name: "Otro", Price: decimal.NewFromInt(1),
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestFormulario_SoloProductosConStock(t *testing.T) {
	s := newTestServer(t)
	s.addProduct(t, "7890000000001", "Café 500g", "10.00", 5)
	s.addProduct(t, "7890000000002", "Açúcar 1kg", "4.50", 0)

	resp := s.do(t, http.MethodGet, "/api/sales/new", s.operator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.SaleFormOptionsResponse
	decode(t, resp, &out)
	require.Len(t, out.Products, 1)
	assert.Equal(t, "Café 500g", out.Products[0].Name)
	assert.Equal(t, "DINHEIRO", out.DefaultPaymentMethod)
	assert.Len(t, out.PaymentMethods, 4)
}

func TestExport_FormatosYCabeceras(t *testing.T) {
	s := newTestServer(t)
	pid := s.addProduct(t, "7890000000001", "Café 500g", "10.00", 5)
	s.submit(t, s.operator, dto.LineItemRequest{ProductID: pid, Quantity: 3})
	require.Equal(t, http.StatusCreated, s.confirm(t, s.operator).StatusCode)

	resp := s.do(t, http.MethodGet, "/api/export/sales?format=csv", s.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="sales.csv"`)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Café 500g (Qty: 3, Unit price: 10.00)")
	assert.Contains(t, string(body), `"30,00"`)

	resp = s.do(t, http.MethodGet, "/api/export/stock?format=xml", s.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get(apphttp.HeaderContentDigest), "sha-256="))

	resp = s.do(t, http.MethodGet, "/api/export/products?format=csv", s.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="products.csv"`)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "barcode,name,description,price")
	assert.Contains(t, string(body), "7890000000001,Café 500g,,10.00")

	resp = s.do(t, http.MethodGet, "/api/export/stock?format=pdf", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = s.do(t, http.MethodGet, "/api/export/users", s.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDashboard_ResumenYPagina(t *testing.T) {
	s := newTestServer(t)
	pid := s.addProduct(t, "7890000000001", "Café 500g", "10.00", 5)
	s.submit(t, s.operator, dto.LineItemRequest{ProductID: pid, Quantity: 2})
	require.Equal(t, http.StatusCreated, s.confirm(t, s.operator).StatusCode)

	resp := s.do(t, http.MethodGet, "/api/dashboard/summary", s.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sum dto.DashboardSummaryDTO
	decode(t, resp, &sum)
	assert.True(t, sum.TotalRevenue.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, int64(2), sum.MonthItems)
	assert.Equal(t, int64(1), sum.TotalSales)

	resp = s.do(t, http.MethodGet, "/dashboard", s.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	page, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(page), "R$ 20,00")
}

func TestRecibo_PDF(t *testing.T) {
	s := newTestServer(t)
	pid := s.addProduct(t, "7890000000001", "Café 500g", "10.00", 5)
	s.submit(t, s.operator, dto.LineItemRequest{ProductID: pid, Quantity: 1})
	resp := s.confirm(t, s.operator)
	var sale dto.SaleResponse
	decode(t, resp, &sale)

	resp = s.do(t, http.MethodGet, "/api/sales/"+sale.ID+"/receipt", s.operator, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp = s.do(t, http.MethodGet, "/api/sales/no-existe/receipt", s.operator, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
