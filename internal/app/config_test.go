package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.True(t, cfg.PostgresAutoMigrate)
	assert.Equal(t, "storefront.order.events", cfg.KafkaTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, time.Second, cfg.OutboxPollInterval)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 3, cfg.OutboxMaxAttempts)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_HTTP_ADDR", ":9090")
	t.Setenv("STOREFRONT_STORAGE_DRIVER", "postgres")
	t.Setenv("STOREFRONT_POSTGRES_DSN", "postgres://test:test@db:5432/test")
	t.Setenv("STOREFRONT_POSTGRES_AUTO_MIGRATE", "false")
	t.Setenv("STOREFRONT_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("STOREFRONT_OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("STOREFRONT_OUTBOX_BATCH_SIZE", "25")

	cfg := LoadConfig()

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	assert.Equal(t, "postgres://test:test@db:5432/test", cfg.PostgresDSN)
	assert.False(t, cfg.PostgresAutoMigrate)
	assert.Equal(t, "kafka-1:9092,kafka-2:9092", cfg.KafkaBrokers)
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, 25, cfg.OutboxBatchSize)
}

func TestLoadConfigUnknownDriverFallsBackToMemory(t *testing.T) {
	t.Setenv("STOREFRONT_STORAGE_DRIVER", "cassandra")

	cfg := LoadConfig()

	require.Equal(t, StorageDriverMemory, cfg.StorageDriver)
}

func TestLoadConfigInvalidValuesKeepDefaults(t *testing.T) {
	t.Setenv("STOREFRONT_POSTGRES_AUTO_MIGRATE", "not-a-bool")
	t.Setenv("STOREFRONT_OUTBOX_BATCH_SIZE", "many")
	t.Setenv("STOREFRONT_OUTBOX_POLL_INTERVAL", "soon")

	cfg := LoadConfig()

	assert.True(t, cfg.PostgresAutoMigrate)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, time.Second, cfg.OutboxPollInterval)
}
