// Package config reads service settings from the environment, with an optional
// .env file for local runs.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string
	LogLevel    string

	StoreDriver string
	DatabaseURL string
	SQLitePath  string

	AsaasBaseURL   string
	AsaasAPIKey    string
	AsaasUserAgent string

	WebhookToken        string
	WebhookRequireToken bool
	WebhookMonotonic    bool

	AuthBaseURL string
	AuthAPIKey  string

	KafkaBrokers     []string
	KafkaStatusTopic string

	HTTPClientTimeout     time.Duration
	HTTPReadHeaderTimeout time.Duration
	HTTPReadTimeout       time.Duration
	ReconcileTimeout      time.Duration
	ShutdownTimeout       time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		GRPCAddr:    getenv("GRPC_ADDR", ":9091"),
		MetricsAddr: getenv("METRICS_ADDR", ":9101"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", DriverPostgres)),
		DatabaseURL: getenv("DATABASE_URL", ""),
		SQLitePath:  getenv("SQLITE_PATH", "asaas.db"),

		AsaasBaseURL:   getenv("ASAAS_BASE_URL", "https://api-sandbox.asaas.com/v3"),
		AsaasAPIKey:    getenv("ASAAS_API_KEY", ""),
		AsaasUserAgent: getenv("ASAAS_USER_AGENT", "asaas-gateway/1.0"),

		WebhookToken:        getenv("ASAAS_WEBHOOK_ACCESS_TOKEN", ""),
		WebhookRequireToken: parseBool(getenv("WEBHOOK_REQUIRE_TOKEN", "false")),
		WebhookMonotonic:    parseBool(getenv("WEBHOOK_MONOTONIC_STATUS", "false")),

		AuthBaseURL: getenv("AUTH_BASE_URL", ""),
		AuthAPIKey:  getenv("AUTH_API_KEY", ""),

		KafkaBrokers:     splitList(getenv("KAFKA_BROKERS", "")),
		KafkaStatusTopic: getenv("KAFKA_STATUS_TOPIC", "payments.status"),

		HTTPClientTimeout:     parseDuration(getenv("HTTP_CLIENT_TIMEOUT", "10s"), 10*time.Second),
		HTTPReadHeaderTimeout: parseDuration(getenv("HTTP_READ_HEADER_TIMEOUT", "5s"), 5*time.Second),
		HTTPReadTimeout:       parseDuration(getenv("HTTP_READ_TIMEOUT", "15s"), 15*time.Second),
		ReconcileTimeout:      parseDuration(getenv("WEBHOOK_RECONCILE_TIMEOUT", "30s"), 30*time.Second),
		ShutdownTimeout:       parseDuration(getenv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second),
	}
}

// Validate catches settings that would make the service unsafe or unable to start.
func (c *Config) Validate() error {
	var errs []error
	if c.WebhookRequireToken && c.WebhookToken == "" {
		errs = append(errs, errors.New("WEBHOOK_REQUIRE_TOKEN is set but ASAAS_WEBHOOK_ACCESS_TOKEN is empty"))
	}
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite store"))
		}
	default:
		errs = append(errs, errors.New("STORE_DRIVER must be postgres or sqlite, got "+strconv.Quote(c.StoreDriver)))
	}
	return errors.Join(errs...)
}

// KafkaEnabled is false when no brokers are configured; status notifications are then skipped.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func parseDuration(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
