package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Defaults(t *testing.T) {
	cfg, err := build(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
	assert.Equal(t, "10", cfg.Inventory.DefaultMinLevel.String())
	assert.Equal(t, 4, cfg.Inventory.LowStockParallelism)
	assert.Equal(t, 72*time.Hour, cfg.Inventory.OrderGuardTTL)
	assert.False(t, cfg.Redis.Enabled())
	assert.Empty(t, cfg.Worker.LowStockCompanies)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestBuild_DesdeVariables(t *testing.T) {
	v := viper.New()
	v.Set("DB_DRIVER", "MEMORY")
	v.Set("HTTP_PORT", "9090")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("ORDER_DEDUCTION_ASYNC", "true")
	v.Set("LOWSTOCK_COMPANIES", " c1, ,c2 ")
	v.Set("INVENTORY_DEFAULT_MIN_LEVEL", "2.5")

	cfg, err := build(v)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.DB.Driver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Inventory.OrderDeductionAsync)
	assert.Equal(t, []string{"c1", "c2"}, cfg.Worker.LowStockCompanies)
	assert.Equal(t, "2.5", cfg.Inventory.DefaultMinLevel.String())
}

func TestBuild_Errores(t *testing.T) {
	cases := map[string]map[string]string{
		"driver desconocido": {"DB_DRIVER": "mysql"},
		"mínimo no numérico": {"INVENTORY_DEFAULT_MIN_LEVEL": "diez"},
		"mínimo negativo":    {"INVENTORY_DEFAULT_MIN_LEVEL": "-1"},
		"async sin redis":    {"ORDER_DEDUCTION_ASYNC": "true"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			for k, val := range env {
				v.Set(k, val)
			}
			_, err := build(v)
			assert.Error(t, err)
		})
	}
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/ledger?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
