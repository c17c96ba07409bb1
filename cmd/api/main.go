package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/Ventas-api/docs"
	appanalytics "github.com/jhoicas/Ventas-api/internal/application/analytics"
	"github.com/jhoicas/Ventas-api/internal/application/auth"
	"github.com/jhoicas/Ventas-api/internal/application/export"
	appsales "github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/internal/application/usecase"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	rules "github.com/jhoicas/Ventas-api/internal/domain/sales"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Ventas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/stash"
	httpRouter "github.com/jhoicas/Ventas-api/internal/interfaces/http"
	"github.com/jhoicas/Ventas-api/pkg/config"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

// @title        Ventas API
// @version      1.0
// @description  Punto de venta: catálogo, stock, ventas con confirmación y exportaciones.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization

// repos agrupa los repositorios del driver elegido.
type repos struct {
	user    repository.UserRepository
	product repository.ProductRepository
	stock   repository.StockRepository
	sale    repository.SaleRepository
	report  repository.ReportRepository
	tx      appsales.TxRunner
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var r repos
	switch cfg.App.StorageDriver {
	case config.StorageDriverMemory:
		log.Warn().Msg("driver en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		r = repos{
			user:    memory.NewUserRepository(store),
			product: memory.NewProductRepository(store),
			stock:   memory.NewStockRepository(store),
			sale:    memory.NewSaleRepository(store),
			report:  memory.NewReportRepository(store),
			tx:      memory.NewTxRunner(store),
		}
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("aplicar esquema")
			}
			log.Info().Msg("esquema aplicado")
		}
		r = repos{
			user:    postgres.NewUserRepository(pool),
			product: postgres.NewProductRepository(pool),
			stock:   postgres.NewStockRepository(pool),
			sale:    postgres.NewSaleRepository(pool),
			report:  postgres.NewReportRepository(pool),
			tx:      postgres.NewTxRunner(pool),
		}
	}

	// Ventas pendientes: Redis si está configurado (varias réplicas), si no en memoria
	var pending repository.PendingSaleRepository
	if cfg.Redis.URL != "" {
		rdb, err := stash.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		pending = stash.NewRedisStore(rdb, cfg.Redis.KeyPrefix)
	} else {
		pending = stash.NewMemoryStore()
	}

	opts := rules.Options{RequireStockEntry: cfg.Sales.RequireStockEntry}
	createSaleUC := appsales.NewCreateSaleUseCase(r.tx, r.sale, opts, log)
	saleGuard := appsales.NewSaleGuard(pending, r.product, r.stock, createSaleUC, cfg.Sales.PendingTTL, opts, log)

	authUC := auth.NewAuthUseCase(r.user, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// En memoria no hay cmd/seed previo: el administrador se crea al arrancar
	if cfg.App.StorageDriver == config.StorageDriverMemory {
		if cfg.Seed.AdminPassword == "" {
			log.Fatal().Msg("SEED_ADMIN_PASSWORD es obligatorio con el driver en memoria")
		}
		if _, err := authUC.EnsureAdmin(ctx, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("crear administrador")
		}
		log.Info().Str("username", cfg.Seed.AdminUsername).Msg("administrador inicial creado")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ventas API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:            authUC,
		UserUC:            usecase.NewUserUseCase(r.user),
		ProductUC:         usecase.NewProductUseCase(r.product, r.sale),
		StockUC:           usecase.NewStockUseCase(r.stock, r.product),
		SaleGuard:         saleGuard,
		SaleQuery:         appsales.NewQueryUseCase(r.sale),
		Receipt:           appsales.NewReceiptUseCase(r.sale, infrapdf.NewMarotoReceiptGenerator(cfg.App.Name)),
		ExportUC:          export.NewExportUseCase(r.sale, r.stock, r.product),
		Encoder:           export.Encoder{CSVCharset: cfg.Export.CSVCharset},
		DashboardUC:       appanalytics.NewDashboardUseCase(r.report),
		JWTSecret:         cfg.JWT.Secret,
		LoginRatePerMin:   10,
		ConfirmRatePerMin: cfg.Sales.ConfirmRatePerMin,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
