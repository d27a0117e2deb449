package postgres

import (
	"testing"
	"time"

	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDBConfig() config.DBConfig {
	return config.DBConfig{
		Host:        "db.local",
		Port:        5433,
		User:        "ledger",
		Password:    "p@ss:word",
		DBName:      "stock_ledger",
		SSLMode:     "disable",
		MaxConns:    10,
		MinConns:    2,
		LockTimeout: 3 * time.Second,
	}
}

func TestPoolConfig_DesdeCampos(t *testing.T) {
	pc, err := poolConfig(testDBConfig())
	require.NoError(t, err)

	assert.Equal(t, "db.local", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "p@ss:word", pc.ConnConfig.Password)
	assert.Equal(t, "stock_ledger", pc.ConnConfig.Database)
	assert.Equal(t, int32(10), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, "stock-ledger", pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "3000", pc.ConnConfig.RuntimeParams["lock_timeout"])
	assert.NotNil(t, pc.AfterConnect)
	assert.NotNil(t, pc.ConnConfig.DialFunc)
}

func TestPoolConfig_DatabaseURLTienePrioridad(t *testing.T) {
	cfg := testDBConfig()
	cfg.DatabaseURL = "postgres://u:p@otro-host:5432/otra?sslmode=disable&application_name=reportes"
	cfg.LockTimeout = 0

	pc, err := poolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "otro-host", pc.ConnConfig.Host)
	assert.Equal(t, "otra", pc.ConnConfig.Database)
	assert.Equal(t, "reportes", pc.ConnConfig.RuntimeParams["application_name"])
	_, ok := pc.ConnConfig.RuntimeParams["lock_timeout"]
	assert.False(t, ok)
}

func TestPoolConfig_MinConnsNoSuperaMax(t *testing.T) {
	cfg := testDBConfig()
	cfg.MaxConns = 3
	cfg.MinConns = 8

	pc, err := poolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(3), pc.MaxConns)
	assert.LessOrEqual(t, pc.MinConns, pc.MaxConns)
}

func TestPoolConfig_DSNInvalido(t *testing.T) {
	cfg := testDBConfig()
	cfg.DatabaseURL = "postgres://u:p@host:notaport/db"

	_, err := poolConfig(cfg)
	assert.ErrorContains(t, err, "parse DSN")
}
