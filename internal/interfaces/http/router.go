package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	appanalytics "github.com/jhoicas/Ventas-api/internal/application/analytics"
	"github.com/jhoicas/Ventas-api/internal/application/auth"
	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/export"
	appsales "github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/application/usecase"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	ProductUC   *usecase.ProductUseCase
	StockUC     *usecase.StockUseCase
	SaleGuard   *appsales.SaleGuard
	SaleQuery   *appsales.QueryUseCase
	Receipt     *appsales.ReceiptUseCase
	ExportUC    *export.ExportUseCase
	Encoder     export.Encoder
	DashboardUC *appanalytics.DashboardUseCase
	JWTSecret   string
	// Límites por minuto; 0 desactiva el limitador.
	LoginRatePerMin   int
	ConfirmRatePerMin int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.JWTSecret)
	adminOnly := RequireRole(entity.RoleAdmin)
	sellers := RequireRole(entity.RoleAdmin, entity.RoleOperator)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	api.Post("/auth/login", rateLimit(deps.LoginRatePerMin, func(c *fiber.Ctx) string { return c.IP() }), authHandler.Login)
	api.Post("/auth/users", requireAuth, adminOnly, authHandler.CreateUser)
	api.Get("/auth/users", requireAuth, adminOnly, authHandler.ListUsers)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", requireAuth)

	// Products (escritura solo admin)
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	// Stock (escritura solo admin)
	stockHandler := NewStockHandler(deps.StockUC)
	stock := protected.Group("/stock")
	stock.Get("/", stockHandler.List)
	stock.Post("/", adminOnly, stockHandler.Create)
	stock.Get("/:product_id", stockHandler.Get)
	stock.Put("/:product_id", adminOnly, stockHandler.SetQuantity)

	// Sales: /new y /confirm antes que /:id
	saleHandler := NewSaleHandler(deps.SaleGuard, deps.SaleQuery, deps.Receipt)
	sales := protected.Group("/sales")
	sales.Get("/new", sellers, saleHandler.FormOptions)
	sales.Post("/", sellers, saleHandler.Submit)
	sales.Get("/confirm", sellers, saleHandler.Review)
	sales.Post("/confirm", sellers, rateLimit(deps.ConfirmRatePerMin, GetUserID), saleHandler.Confirm)
	sales.Delete("/confirm", sellers, saleHandler.Discard)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.Get)
	sales.Get("/:id/receipt", saleHandler.Receipt)
	sales.Put("/:id", saleHandler.Immutable)
	sales.Patch("/:id", saleHandler.Immutable)
	sales.Delete("/:id", saleHandler.Immutable)

	// Line items (solo lectura)
	lineItemHandler := NewLineItemHandler(deps.SaleQuery)
	lineItems := protected.Group("/line-items")
	lineItems.Get("/", lineItemHandler.List)
	lineItems.Post("/", lineItemHandler.Create)
	lineItems.Put("/:id", lineItemHandler.Change)
	lineItems.Patch("/:id", lineItemHandler.Change)

	// Export
	exportHandler := NewExportHandler(deps.ExportUC, deps.Encoder)
	protected.Get("/export/:resource", exportHandler.Export)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", dashboardHandler.GetSummary)
	app.Get("/dashboard", requireAuth, dashboardHandler.Page)
}

// rateLimit limitador por minuto con la clave indicada (IP u operador).
func rateLimit(perMinute int, key func(*fiber.Ctx) string) fiber.Handler {
	if perMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:          perMinute,
		Expiration:   time.Minute,
		KeyGenerator: key,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code: "RATE_LIMITED", Message: "demasiadas solicitudes, intente en un minuto",
			})
		},
	})
}
