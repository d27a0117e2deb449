package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		DB: config.DBConfig{Driver: config.DriverMemory},
		Inventory: config.InventoryConfig{
			DefaultMinLevel:     decimal.NewFromInt(10),
			LowStockParallelism: 2,
			OrderGuardTTL:       time.Hour,
		},
	}
}

func TestBuild_Memoria(t *testing.T) {
	s, err := Build(context.Background(), memoryConfig(), zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	assert.NotNil(t, s.Distributions)
	assert.NotNil(t, s.OrderDeduction)
	assert.Empty(t, s.Checks)

	loc, err := s.Locations.Create(context.Background(), "c1", dto.CreateLocationRequest{Name: "Tienda", Type: entity.LocationTypeStore})
	require.NoError(t, err)
	list, err := s.Locations.List(context.Background(), "c1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, loc.ID, list.Items[0].ID)
}

func TestBuild_ConRedisDeduplicaPedidos(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.Redis = config.RedisConfig{Addr: mr.Addr()}

	s, err := Build(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	require.Contains(t, s.Checks, "redis")
	require.NoError(t, s.Checks["redis"](context.Background()))

	ctx := context.Background()
	_, err = s.Locations.Create(ctx, "c1", dto.CreateLocationRequest{Name: "Cocina", Type: entity.LocationTypeKitchen})
	require.NoError(t, err)

	order := entity.Order{
		ID:    "ord-1",
		Items: []entity.OrderItem{{MenuItemID: "sin-receta", Quantity: decimal.NewFromInt(1)}},
	}
	first, err := s.OrderDeduction.DeductStockForOrder(ctx, "c1", "u1", order)
	require.NoError(t, err)
	assert.False(t, first.AlreadyProcessed)

	second, err := s.OrderDeduction.DeductStockForOrder(ctx, "c1", "u1", order)
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)
}

func TestBuild_RedisInalcanzable(t *testing.T) {
	cfg := memoryConfig()
	cfg.Redis = config.RedisConfig{Addr: "127.0.0.1:1"}

	_, err := Build(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
