package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"HTTP_ADDR", "GRPC_ADDR", "METRICS_ADDR", "LOG_LEVEL",
	"STORE_DRIVER", "DATABASE_URL", "SQLITE_PATH",
	"ASAAS_BASE_URL", "ASAAS_API_KEY", "ASAAS_USER_AGENT",
	"ASAAS_WEBHOOK_ACCESS_TOKEN", "WEBHOOK_REQUIRE_TOKEN", "WEBHOOK_MONOTONIC_STATUS",
	"AUTH_BASE_URL", "AUTH_API_KEY", "KAFKA_BROKERS", "KAFKA_STATUS_TOPIC",
	"HTTP_CLIENT_TIMEOUT", "HTTP_READ_HEADER_TIMEOUT", "HTTP_READ_TIMEOUT",
	"WEBHOOK_RECONCILE_TIMEOUT", "SHUTDOWN_TIMEOUT",
}

// clearEnv blanks every key; getenv treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9091", cfg.GRPCAddr)
	assert.Equal(t, ":9101", cfg.MetricsAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "asaas.db", cfg.SQLitePath)
	assert.Equal(t, "https://api-sandbox.asaas.com/v3", cfg.AsaasBaseURL)
	assert.False(t, cfg.WebhookRequireToken)
	assert.False(t, cfg.WebhookMonotonic)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "payments.status", cfg.KafkaStatusTopic)
	assert.Equal(t, 10*time.Second, cfg.HTTPClientTimeout)
	assert.Equal(t, 5*time.Second, cfg.HTTPReadHeaderTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTPReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.ReconcileTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_ReadsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("WEBHOOK_REQUIRE_TOKEN", "true")
	t.Setenv("WEBHOOK_MONOTONIC_STATUS", "1")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")
	t.Setenv("HTTP_CLIENT_TIMEOUT", "nonsense")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("HTTP_READ_HEADER_TIMEOUT", "2s")
	t.Setenv("HTTP_READ_TIMEOUT", "-1s")

	cfg := Load()

	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.True(t, cfg.WebhookRequireToken)
	assert.True(t, cfg.WebhookMonotonic)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, 10*time.Second, cfg.HTTPClientTimeout)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 2*time.Second, cfg.HTTPReadHeaderTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTPReadTimeout)
}

func TestValidate(t *testing.T) {
	ok := &Config{StoreDriver: DriverSQLite, SQLitePath: "x.db"}
	require.NoError(t, ok.Validate())

	cases := map[string]*Config{
		"token required but empty": {StoreDriver: DriverSQLite, SQLitePath: "x.db", WebhookRequireToken: true},
		"postgres without url":     {StoreDriver: DriverPostgres},
		"unknown driver":           {StoreDriver: "mysql"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, cfg.Validate())
		})
	}

	withToken := &Config{StoreDriver: DriverPostgres, DatabaseURL: "postgres://x", WebhookRequireToken: true, WebhookToken: "s3cret"}
	assert.NoError(t, withToken.Validate())
}
