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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/pos-checkout/internal/application/checkout"
	"github.com/jhoicas/pos-checkout/internal/domain/pricing"
	"github.com/jhoicas/pos-checkout/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-checkout/internal/infrastructure/sessionstore"
	httpRouter "github.com/jhoicas/pos-checkout/internal/interfaces/http"
	"github.com/jhoicas/pos-checkout/pkg/config"
	"github.com/jhoicas/pos-checkout/pkg/logger"
	"github.com/jhoicas/pos-checkout/pkg/metrics"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, postgres.DefaultPoolSettings())
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	checkoutMetrics := metrics.NewCheckoutMetrics(reg)

	// Sesiones de asignación: Redis si está configurado (varias instancias), si no en memoria.
	var (
		store     checkout.SessionStore
		storeName string
		storePing func(context.Context) error
	)
	if cfg.Redis.Enabled() {
		client := sessionstore.NewRedisClient(cfg.Redis)
		defer client.Close()
		redisStore := sessionstore.NewRedisStore(client, cfg.Allocation.SessionTTL)
		if err := redisStore.Ping(ctx); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		store, storeName, storePing = redisStore, "redis", redisStore.Ping
	} else {
		store, storeName = sessionstore.NewMemoryStore(cfg.Allocation.SessionTTL), "memory"
		log.Warn().Msg("REDIS_ADDR vacío: sesiones de asignación en memoria (una sola instancia)")
	}

	unitRepo := postgres.NewInventoryUnitRepository(pool)
	discountUC := checkout.NewDiscountUseCase(
		pricing.NewCalculator(cfg.Pricing.Scale),
		pricing.NewFormatter(cfg.Pricing.Locale, cfg.Pricing.Currency, cfg.Pricing.Scale),
		checkoutMetrics,
		log.Component("discount"),
	)
	allocationUC := checkout.NewAllocationUseCase(unitRepo, store, checkout.AllocationConfig{
		CandidateLimit: cfg.Allocation.CandidateLimit,
		FetchTimeout:   cfg.Allocation.FetchTimeout,
	}, checkoutMetrics, log.Component("allocation"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "POS Checkout API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger no disponible")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		DiscountUC:   discountUC,
		AllocationUC: allocationUC,
		JWTSecret:    cfg.JWT.Secret,
		JWTIssuer:    cfg.JWT.Issuer,
		Gatherer:     reg,
		StoreName:    storeName,
		StorePing:    storePing,
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
