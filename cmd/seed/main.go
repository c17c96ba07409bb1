// seed crea el usuario administrador inicial y, opcionalmente, carga un catálogo desde CSV.
//
// Uso: go run ./cmd/seed [ruta/catalogo.csv]
// Columnas del CSV: barcode,name,price,quantity (con cabecera). Acepta UTF-8 o Windows-1252
// (SEED_CSV_CHARSET). Credenciales del admin: SEED_ADMIN_USERNAME / SEED_ADMIN_PASSWORD.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Ventas-api/internal/application/auth"
	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/usecase"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Ventas-api/pkg/config"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer})

	username := cfg.Seed.AdminUsername
	if cfg.Seed.AdminPassword == "" {
		log.Fatal().Msg("SEED_ADMIN_PASSWORD es obligatorio")
	}
	adminCreated, err := authUC.EnsureAdmin(ctx, username, cfg.Seed.AdminPassword)
	switch {
	case err != nil:
		log.Fatal().Err(err).Msg("crear administrador")
	case adminCreated:
		log.Info().Str("username", username).Msg("administrador creado")
	default:
		log.Info().Str("username", username).Msg("el administrador ya existe")
	}

	if len(os.Args) < 2 {
		return
	}
	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("abrir catálogo")
	}
	defer f.Close()

	var in io.Reader = f
	if strings.EqualFold(os.Getenv("SEED_CSV_CHARSET"), "windows-1252") {
		in = transform.NewReader(f, charmap.Windows1252.NewDecoder())
	}
	productUC := usecase.NewProductUseCase(productRepo, postgres.NewSaleRepository(pool))
	stockUC := usecase.NewStockUseCase(postgres.NewStockRepository(pool), productRepo)
	created, skipped, err := loadCatalog(ctx, in, productUC, stockUC)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar catálogo")
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("catálogo cargado")
}

// loadCatalog crea producto y stock por fila; los códigos de barras existentes se omiten.
func loadCatalog(ctx context.Context, in io.Reader, productUC *usecase.ProductUseCase, stockUC *usecase.StockUseCase) (int, int, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = 4
	if _, err := r.Read(); err != nil {
		return 0, 0, fmt.Errorf("cabecera: %w", err)
	}
	created, skipped := 0, 0
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return created, skipped, fmt.Errorf("línea %d: %w", line, err)
		}
		price, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(rec[2]), ",", ".", 1))
		if err != nil {
			return created, skipped, fmt.Errorf("línea %d: precio %q: %w", line, rec[2], err)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil {
			return created, skipped, fmt.Errorf("línea %d: cantidad %q: %w", line, rec[3], err)
		}
		p, err := productUC.Create(ctx, dto.CreateProductRequest{
			Barcode: strings.TrimSpace(rec[0]),
			Name:    strings.TrimSpace(rec[1]),
			Price:   price,
		})
		if errors.Is(err, domain.ErrDuplicate) {
			skipped++
			continue
		}
		if err != nil {
			return created, skipped, fmt.Errorf("línea %d: %w", line, err)
		}
		if _, err := stockUC.Create(ctx, dto.CreateStockEntryRequest{ProductID: p.ID, Quantity: qty}); err != nil {
			return created, skipped, fmt.Errorf("línea %d: stock: %w", line, err)
		}
		created++
	}
	return created, skipped, nil
}
