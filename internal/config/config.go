// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. It is loaded once at startup
// and immutable afterwards.
type Config struct {
	LiveUpdatesAPIURL   string
	HomeDataAPIURL      string
	BearerToken         string
	LowBalanceThreshold float64 // 0 disables the low-balance alert
	DatabasePath        string
	FetchInterval       time.Duration
	MeterTimezone       string
	CurrencySymbol      string
	HTTPAddr            string

	// Notification channels; each is disabled when its settings are unset.
	TelegramBotToken string
	TelegramChatID   string
	MQTTBroker       string
	MQTTTopic        string
	DesktopNotify    bool

	// EnvFile is the .env file that was loaded, if any.
	EnvFile string
}

// Default values
const (
	defaultDatabasePath  = "power_usage_index.db"
	defaultFetchInterval = 30 * time.Second
	defaultMeterTimezone = "Asia/Kolkata"
	defaultCurrency      = "₹"
	defaultHTTPAddr      = ":8080"
	defaultMQTTTopic     = "elnet/events"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	var envFile string
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			envFile = path
			break
		}
	}

	cfg := &Config{
		LiveUpdatesAPIURL:   os.Getenv("LIVE_UPDATES_API_URL"),
		HomeDataAPIURL:      os.Getenv("HOME_DATA_API_URL"),
		BearerToken:         os.Getenv("POWER_USAGE_BEARER_TOKEN"),
		LowBalanceThreshold: getEnvFloat("LOW_BALANCE_THRESHOLD", 0),
		DatabasePath:        getEnvString("POWER_USAGE_DATABASE", defaultDatabasePath),
		FetchInterval:       getEnvDuration("POWER_USAGE_FETCH_INTERVAL_SECONDS", defaultFetchInterval),
		MeterTimezone:       getEnvString("METER_TIMEZONE", defaultMeterTimezone),
		CurrencySymbol:      getEnvString("CURRENCY_SYMBOL", defaultCurrency),
		HTTPAddr:            getEnvString("HTTP_ADDR", defaultHTTPAddr),
		TelegramBotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:      os.Getenv("TELEGRAM_CHAT_ID"),
		MQTTBroker:          os.Getenv("MQTT_BROKER"),
		MQTTTopic:           getEnvString("MQTT_TOPIC", defaultMQTTTopic),
		DesktopNotify:       getEnvBool("DESKTOP_NOTIFY", false),
		EnvFile:             envFile,
	}

	if cfg.LiveUpdatesAPIURL == "" || cfg.HomeDataAPIURL == "" || cfg.BearerToken == "" {
		return nil, fmt.Errorf(
			"LIVE_UPDATES_API_URL, HOME_DATA_API_URL and POWER_USAGE_BEARER_TOKEN must be set")
	}

	if _, err := time.LoadLocation(cfg.MeterTimezone); err != nil {
		return nil, fmt.Errorf("invalid METER_TIMEZONE %q: %w", cfg.MeterTimezone, err)
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MeterLocation returns the meter's civil timezone. Load has already
// validated the name, so failure is not expected.
func (c *Config) MeterLocation() *time.Location {
	loc, err := time.LoadLocation(c.MeterTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory location
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "elnet-dashboard", ".env"))
	}

	return paths
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
