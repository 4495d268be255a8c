package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "ledger.db", cfg.Database.Path)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 3, cfg.Ledger.MaxRetries)
	assert.True(t, cfg.Reconciler.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://ledger@localhost/ledger")
	t.Setenv("DB_BUSY_TIMEOUT", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("LEDGER_MAX_RETRIES", "7")
	t.Setenv("RECONCILE_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://ledger@localhost/ledger", cfg.Database.Url)
	assert.Equal(t, 250*time.Millisecond, cfg.Database.BusyTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 7, cfg.Ledger.MaxRetries)
	assert.False(t, cfg.Reconciler.Enabled)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("duration", func(t *testing.T) {
		t.Setenv("JWT_TTL", "forever")
		_, err := Load()
		assert.ErrorContains(t, err, "JWT_TTL")
	})

	t.Run("driver", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "mysql")
		_, err := Load()
		assert.ErrorContains(t, err, "mysql")
	})
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "lots")
	assert.Equal(t, 25, getEnvInt("DB_MAX_OPEN_CONNS", 25))
}
