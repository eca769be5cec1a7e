package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Credential backends
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendSheets = "sheets"
)

// devSessionKey is only accepted while SECURE_COOKIES is off.
const devSessionKey = "driverdash-dev-session-key-change-me"

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// Credential backend
	CredentialBackend string
	SeedDemoDrivers   bool

	// Database
	SQLiteDBPath string

	// AMQP (optional activity events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleDriversSheet       string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Sessions
	SessionKey    string
	SessionName   string
	SessionMaxAge time.Duration
	SecureCookies bool

	// Dashboard
	SeriesCacheSize     int
	SeriesCacheTTL      time.Duration
	LoginRateLimit      int
	ShowDemoCredentials bool
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CredentialBackend: getEnv("CREDENTIAL_BACKEND", BackendMemory),
		SeedDemoDrivers:   getEnvBool("SEED_DEMO_DRIVERS", true),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/driverdash.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "driverdash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "login_activity"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleDriversSheet:       getEnv("GOOGLE_DRIVERS_SHEET", "Drivers"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		SessionKey:    getEnv("SESSION_KEY", devSessionKey),
		SessionName:   getEnv("SESSION_NAME", "driverdash-session"),
		SessionMaxAge: getEnvDuration("SESSION_MAX_AGE", 12*time.Hour),
		SecureCookies: getEnvBool("SECURE_COOKIES", false),

		SeriesCacheSize:     getEnvInt("SERIES_CACHE_SIZE", 256),
		SeriesCacheTTL:      getEnvDuration("SERIES_CACHE_TTL", 10*time.Minute),
		LoginRateLimit:      getEnvInt("LOGIN_RATE_LIMIT", 10),
		ShowDemoCredentials: getEnvBool("SHOW_DEMO_CREDENTIALS", true),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}

	validBackends := []string{BackendMemory, BackendSQLite, BackendSheets}
	if !slices.Contains(validBackends, c.CredentialBackend) {
		errors = append(errors, fmt.Sprintf("invalid credential backend '%s': must be one of %v", c.CredentialBackend, validBackends))
	}

	if c.CredentialBackend == BackendSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	if c.CredentialBackend == BackendSheets {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

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

	if c.SessionKey == "" {
		errors = append(errors, "session key cannot be empty")
	} else if c.SecureCookies && (len(c.SessionKey) < 32 || c.SessionKey == devSessionKey) {
		errors = append(errors, "session key must be at least 32 random characters when secure cookies are enabled")
	}
	if c.SessionMaxAge < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session max age %v: must be at least 1 minute", c.SessionMaxAge))
	}

	if c.SeriesCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid series cache size %d: must not be negative", c.SeriesCacheSize))
	}
	if c.SeriesCacheSize > 0 && c.SeriesCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid series cache TTL %v: must be at least 1 second", c.SeriesCacheTTL))
	}
	if c.LoginRateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid login rate limit %d: must be at least 1", c.LoginRateLimit))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ParseLevel maps a LOG_LEVEL value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s': must be one of debug, info, warn, error", s)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
