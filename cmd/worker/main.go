package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger-api/internal/bootstrap"
	"github.com/jhoicas/stock-ledger-api/internal/jobs"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name + "-worker",
	})
	if !cfg.Redis.Enabled() {
		log.Fatal().Msg("el worker requiere REDIS_ADDR")
	}

	svc, err := bootstrap.Build(ctx, cfg, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar servicios")
	}
	defer svc.Close()

	cron, err := jobs.LowStockCron(cfg.Worker.LowStockCron, cfg.Worker.LowStockCompanies)
	if err != nil {
		log.Fatal().Err(err).Msg("programar evaluación de stock bajo")
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		Concurrency: cfg.Worker.Concurrency,
		Handlers:    jobs.NewHandlers(svc.LowStock, svc.OrderDeduction, svc.Metrics, log.Zerolog()),
		Cron:        cron,
		Logger:      log.Zerolog(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar worker")
	}

	log.Info().
		Int("concurrency", cfg.Worker.Concurrency).
		Int("cron_entries", len(cron)).
		Msg("worker iniciado")

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado con error")
		os.Exit(1)
	}
	log.Info().Msg("worker detenido")
}
