package config

import (
	"os"
	"strconv"
	"time"

	"backstage/internal/database"
	"backstage/internal/messaging"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	Database database.Config
	NATS     messaging.Config
	Cache    CacheConfig
	Policy   PolicyConfig
	Worker   WorkerConfig
}

// CacheConfig configures the optional Valkey wallet-snapshot cache.
type CacheConfig struct {
	Enabled  bool
	Addr     string
	Password string
	TTL      time.Duration
}

// PolicyConfig holds the financial policy knobs. Fees and refunds are
// configuration inputs to the state machine, never hard-coded in it.
type PolicyConfig struct {
	// PlatformFeeBps is the marketplace fee in basis points, deducted from
	// the released amount when a booking completes.
	PlatformFeeBps int64
	// RefundBps is the share of the held amount, in basis points, returned
	// to the organizer when a paid booking is cancelled. The remainder is
	// released to the counterparty.
	RefundBps int64
	// PlatformUserID owns the wallet that collects platform fees.
	PlatformUserID int64
}

// WorkerConfig configures the booking completion worker.
type WorkerConfig struct {
	CompletionInterval time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "backstage"),
			Password:           getEnv("DB_PASSWORD", "backstage"),
			DBName:             getEnv("DB_NAME", "backstage"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "backstage"),
			ClientID:  getEnv("NATS_CLIENT_ID", "backstage-api"),
			Enabled:   getEnv("NATS_ENABLED", "false") == "true",
		},

		Cache: CacheConfig{
			Enabled:  getEnv("VALKEY_ENABLED", "false") == "true",
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			TTL:      time.Duration(getEnvInt("VALKEY_TTL_SEC", 30)) * time.Second,
		},

		Policy: PolicyConfig{
			PlatformFeeBps: int64(getEnvInt("PLATFORM_FEE_BPS", 1000)),
			RefundBps:      int64(getEnvInt("REFUND_BPS", 10000)),
			PlatformUserID: int64(getEnvInt("PLATFORM_USER_ID", 1)),
		},

		Worker: WorkerConfig{
			CompletionInterval: time.Duration(getEnvInt("COMPLETION_INTERVAL_SEC", 60)) * time.Second,
		},
	}
}

// getEnv returns an environment variable or the default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or the default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
