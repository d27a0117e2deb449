// Package bootstrap arma los casos de uso del libro de stock a partir de la configuración.
// Lo comparten el servidor HTTP y el worker.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	appinv "github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/stock-ledger-api/internal/infrastructure/redis"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

// Services casos de uso listos y los recursos que hay que cerrar al apagar.
type Services struct {
	Locations      *usecase.LocationUseCase
	Materials      *usecase.MaterialUseCase
	Recipes        *usecase.RecipeUseCase
	Distributions  *appinv.DistributionUseCase
	Stock          *appinv.StoreInventoryUseCase
	LowStock       *appinv.LowStockEvaluator
	OrderDeduction *appinv.OrderDeductionUseCase
	Metrics        *metrics.Metrics
	// Checks verificaciones de salud por dependencia (postgres, redis).
	Checks map[string]func(ctx context.Context) error

	closers []func()
}

// Close libera conexiones en orden inverso a su apertura.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

type repos struct {
	tx            appinv.TxRunner
	locations     repository.LocationRepository
	materials     repository.RawMaterialRepository
	recipes       repository.RecipeRepository
	inventories   repository.LocationInventoryRepository
	ledger        repository.StockTransactionRepository
	distributions repository.DistributionRepository
	suggestions   repository.PurchaseSuggestionRepository
}

// Build abre la persistencia elegida (postgres o memoria), Redis si está configurado,
// y construye los casos de uso.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Services, error) {
	s := &Services{
		Metrics: metrics.New(),
		Checks:  map[string]func(ctx context.Context) error{},
	}

	r, err := s.openStore(ctx, cfg, log)
	if err != nil {
		s.Close()
		return nil, err
	}

	var guard appinv.OrderGuard
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.Checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		guard = infraredis.NewOrderGuard(client, cfg.Inventory.OrderGuardTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis conectado: deduplicación de pedidos activa")
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: los pedidos repetidos no se deduplican")
	}

	mutator := appinv.NewMutator(r.tx, s.Metrics, log)
	s.Locations = usecase.NewLocationUseCase(r.locations)
	s.Materials = usecase.NewMaterialUseCase(r.materials)
	s.Recipes = usecase.NewRecipeUseCase(r.recipes, r.materials)
	s.Distributions = appinv.NewDistributionUseCase(
		r.tx, mutator, r.locations, r.materials, r.distributions, r.ledger,
		pdf.NewMarotoPDFGenerator(), s.Metrics, log,
	)
	s.Stock = appinv.NewStoreInventoryUseCase(mutator, r.locations, r.materials, r.inventories, r.ledger)
	s.LowStock = appinv.NewLowStockEvaluator(
		r.materials, r.inventories, r.suggestions,
		appinv.LowStockConfig{
			DefaultMinLevel: cfg.Inventory.DefaultMinLevel,
			Parallelism:     cfg.Inventory.LowStockParallelism,
		},
		s.Metrics, log,
	)
	s.OrderDeduction = appinv.NewOrderDeductionUseCase(mutator, r.recipes, r.locations, guard, s.Metrics, log)
	return s, nil
}

func (s *Services) openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repos, error) {
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.New()
		return &repos{
			tx:            store,
			locations:     store.Locations(),
			materials:     store.Materials(),
			recipes:       store.Recipes(),
			inventories:   store.Inventories(),
			ledger:        store.Ledger(),
			distributions: store.Distributions(),
			suggestions:   store.Suggestions(),
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	s.closers = append(s.closers, pool.Close)
	s.Checks["postgres"] = pool.Ping

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			return nil, fmt.Errorf("migraciones: %w", err)
		}
	}
	return &repos{
		tx:            postgres.NewTxRunner(pool),
		locations:     postgres.NewLocationRepository(pool),
		materials:     postgres.NewRawMaterialRepository(pool),
		recipes:       postgres.NewRecipeRepository(pool),
		inventories:   postgres.NewLocationInventoryRepository(pool),
		ledger:        postgres.NewStockTransactionRepository(pool),
		distributions: postgres.NewDistributionRepository(pool),
		suggestions:   postgres.NewPurchaseSuggestionRepository(pool),
	}, nil
}
