package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/swaggo/swag"
	"golang.org/x/sync/errgroup"

	_ "github.com/jhoicas/pos-api/docs"

	"github.com/jhoicas/pos-api/internal/application/catalog"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/ports"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/infrastructure/cache"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/internal/infrastructure/observability"
	infrapdf "github.com/jhoicas/pos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/pos-api/internal/interfaces/http"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// @title                       POS API
// @version                     1.0
// @description                 API de caja (POS): catálogo, códigos de barras, inventario y cobro.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token JWT con claim role: admin | cashier>
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	txRunner, repos, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer closeStore()

	// Idempotencia de cobros: solo si hay Redis configurado
	var idempotency sales.IdempotencyStore
	if cfg.Redis.URL != "" {
		client, err := cache.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Warn().Err(err).Msg("cerrar Redis")
			}
		}()
		idempotency = cache.NewIdempotencyStore(client, cfg.Redis.IdempotencyTTL)
	} else {
		log.Warn().Msg("REDIS_URL vacío: checkout sin idempotencia")
	}

	metrics := observability.NewMetrics()

	catalogUC := catalog.NewUseCase(txRunner, repos.Products, repos.Barcodes, repos.Levels, log.Named("catalog"))
	ledgerUC := inventory.NewLedgerUseCase(txRunner, repos.Products, repos.Levels, repos.Movements, log.Named("inventory"))
	lowStockUC := inventory.NewLowStockUseCase(repos.Levels)
	checkoutUC := sales.NewCheckoutUseCase(txRunner, ledgerUC, repos.Orders, idempotency, metrics, log.Named("checkout"))
	ordersUC := sales.NewOrderQueryUseCase(repos.Orders)
	receiptUC := sales.NewReceiptUseCase(repos.Orders, infrapdf.NewMarotoReceiptGenerator(cfg.App.Name))

	app := httpRouter.NewApp(httpRouter.ServerConfig{
		AppName:        cfg.App.Name,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}, log.Named("http"), httpRouter.RouterDeps{
		CatalogUC:  catalogUC,
		LedgerUC:   ledgerUC,
		LowStockUC: lowStockUC,
		CheckoutUC: checkoutUC,
		OrdersUC:   ordersUC,
		ReceiptUC:  receiptUC,
		Metrics:    metrics,
		JWTSecret:  cfg.JWT.Secret,
	})

	// Documento Swagger registrado por el paquete docs (swag init)
	app.Get("/swagger/doc.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc()
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.SendString(doc)
	})

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "POS API",
		}))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("servidor HTTP escuchando")
		return app.Listen(cfg.HTTP.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("servidor HTTP finalizado con error")
	}

	log.Info().Msg("aplicación detenida")
}

// openStore abre PostgreSQL o el store en memoria según STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config) (ports.TxRunner, ports.TxRepos, func(), error) {
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		store := memory.NewStore()
		return store, store.Repos(), func() {}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		return nil, ports.TxRepos{}, nil, err
	}
	return postgres.NewTxRunner(pool), postgres.NewRepos(pool), pool.Close, nil
}
