package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int
	// TrustedProxies are CIDRs, beyond loopback and private ranges, whose
	// X-Forwarded-For header is believed.
	TrustedProxies []string

	// Backend selection
	DataBackend  string
	SQLiteDBPath string
	PostgresDSN  string
	SeedFile     string

	// AMQP, optional: events are only published when AMQPURL is set
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Plan cache; Redis replaces the in-process LRU when RedisAddr is set
	RedisAddr     string
	PlanCacheSize int
	PlanCacheTTL  time.Duration

	// Planning
	PlanHorizon          int
	ProjectionHorizon    int
	ProjectionMinPeriods int

	// Google Sheets export
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Worker
	HistoryInterval time.Duration

	LogLevel string
}

var (
	validBackends  = []string{"memory", "sqlite", "postgres"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// maxHorizon is fifty years of monthly periods.
const maxHorizon = 600

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finanzas.db"),
		PostgresDSN:  getEnv("POSTGRES_DSN", ""),
		SeedFile:     getEnv("SEED_FILE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finanzas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		PlanCacheSize: getEnvInt("PLAN_CACHE_SIZE", 128),
		PlanCacheTTL:  getEnvDuration("PLAN_CACHE_TTL", 10*time.Minute),

		PlanHorizon:          getEnvInt("PLAN_HORIZON_MONTHS", 120),
		ProjectionHorizon:    getEnvInt("PROJECTION_HORIZON_MONTHS", 60),
		ProjectionMinPeriods: getEnvInt("PROJECTION_MIN_MONTHS", 12),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Plan"),

		HistoryInterval: getEnvDuration("HISTORY_INTERVAL", time.Hour),

		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	return cfg
}

// SheetsEnabled reports whether plan export to Google Sheets is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR", cidr))
		}
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.DataBackend == "postgres" && c.PostgresDSN == "" {
		errors = append(errors, "POSTGRES_DSN is required when using postgres backend")
	}

	if c.SeedFile != "" {
		if _, err := os.Stat(c.SeedFile); err != nil {
			errors = append(errors, fmt.Sprintf("seed file '%s' is not readable: %v", c.SeedFile, err))
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.PlanCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid plan cache size %d: must be at least 1", c.PlanCacheSize))
	}
	if c.PlanCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid plan cache TTL %v: must not be negative", c.PlanCacheTTL))
	}

	for _, h := range []struct {
		name  string
		value int
	}{
		{"plan horizon", c.PlanHorizon},
		{"projection horizon", c.ProjectionHorizon},
	} {
		if h.value < 1 || h.value > maxHorizon {
			errors = append(errors, fmt.Sprintf("invalid %s %d: must be between 1 and %d months", h.name, h.value, maxHorizon))
		}
	}
	if c.ProjectionMinPeriods < 0 || c.ProjectionMinPeriods > c.ProjectionHorizon {
		errors = append(errors, fmt.Sprintf("invalid projection minimum %d: must be between 0 and the projection horizon", c.ProjectionMinPeriods))
	}

	if c.HistoryInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid history interval %v: must be at least 1 minute", c.HistoryInterval))
	} else if c.HistoryInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid history interval %v: must be at most 24 hours", c.HistoryInterval))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
