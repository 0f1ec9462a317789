package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "DATA_SOURCE", "STORE_BACKEND", "POSTGRES_PORT", "REQUEST_TIMEOUT", "KAFKA_BROKERS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "data/products.json", cfg.DataSource)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 5432, cfg.Store.PostgresPort)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")

	cfg := Load()

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 6543, cfg.Store.PostgresPort)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("POSTGRES_PORT", "not-a-port")
	t.Setenv("SHUTDOWN_TIMEOUT", "-5s")

	cfg := Load()

	assert.Equal(t, 5432, cfg.Store.PostgresPort)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}
