package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger-api/internal/bootstrap"
	httpRouter "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/internal/jobs"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

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
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando API")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}

	ctx := context.Background()
	svc, err := bootstrap.Build(ctx, cfg, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar servicios")
	}
	defer svc.Close()

	checks := make(map[string]httpRouter.HealthCheck, len(svc.Checks))
	for name, check := range svc.Checks {
		checks[name] = check
	}

	deps := httpRouter.RouterDeps{
		LocationUC:     svc.Locations,
		MaterialUC:     svc.Materials,
		RecipeUC:       svc.Recipes,
		DistributionUC: svc.Distributions,
		StockUC:        svc.Stock,
		LowStock:       svc.LowStock,
		OrderDeduction: svc.OrderDeduction,
		Metrics:        svc.Metrics,
		HealthChecks:   checks,
		JWTSecret:      cfg.JWT.Secret,
		Logger:         log.Zerolog(),
	}

	// Descuento de pedidos en el worker: la API solo encola.
	if cfg.Inventory.OrderDeductionAsync {
		queue := jobs.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer queue.Close()
		deps.OrderQueue = queue
		log.Info().Msg("pedidos completados se procesan en el worker")
	}

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:         cfg.App.Name,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}, deps)

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

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
