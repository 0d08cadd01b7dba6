package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("JWT_ACCESS_TTL", "")

	cfg := LoadConfig()

	require.Equal(t, "localhost", cfg.DBHost)
	require.Equal(t, "mysql", cfg.StoreDriver)
	require.False(t, cfg.CacheEnabled())
	require.Equal(t, 24*time.Hour, cfg.JWTAccessTTL)
	require.Equal(t, 5*time.Minute, cfg.ProductCacheTTL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_USER", "shop")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_NAME", "mk")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("JWT_ACCESS_TTL", "90m")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "no")

	cfg := LoadConfig()

	require.Equal(t, "shop:secret@tcp(db:3307)/mk?parseTime=true&charset=utf8mb4", cfg.GetDSN())
	require.True(t, cfg.CacheEnabled())
	require.Equal(t, 2, cfg.RedisDB)
	require.Equal(t, 90*time.Minute, cfg.JWTAccessTTL)
	require.False(t, cfg.OTELExporterOTLPInsecure)
}

func TestGetAppPortInt(t *testing.T) {
	cfg := &Config{AppPort: "9090"}
	require.Equal(t, 9090, cfg.GetAppPortInt())

	cfg.AppPort = "not-a-port"
	require.Equal(t, 8080, cfg.GetAppPortInt())
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_DUR", "forever")

	require.Equal(t, 7, getEnvInt("X_INT", 7))
	require.Equal(t, time.Second, getEnvDuration("X_DUR", time.Second))
}
