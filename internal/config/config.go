package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gastos/internal/core"
)

type Config struct {
	// Telegram
	BotToken           string
	RateLimitPerMinute int

	// Parsing
	DateFallback string

	// Backend selection
	DataBackend     string
	StoreMaxRetries int
	MemorySeedFile  string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID         string
	GoogleSheetName             string
	GoogleServiceAccountJSON    string
	GoogleServiceAccountFile    string
	GoogleServiceAccountBase64  string
	GoogleApplicationCredential string

	// Worker
	SyncBatchSize int
	SyncInterval  time.Duration

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		BotToken:           getEnv("BOT_TOKEN", ""),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		DateFallback: getEnv("DATE_FALLBACK", core.FallbackToSubmission.String()),

		DataBackend:     getEnv("DATA_BACKEND", "memory"),
		StoreMaxRetries: getEnvInt("STORE_MAX_RETRIES", 3),
		MemorySeedFile:  getEnv("MEMORY_SEED_FILE", "./data/ledger.csv"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/gastos.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "gastos"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_records"),

		GoogleSpreadsheetID:         getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:             getEnv("GOOGLE_SHEET_NAME", "Gastos"),
		GoogleServiceAccountJSON:    getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile:    getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountBase64:  getEnv("GOOGLE_SERVICE_ACCOUNT_BASE64", ""),
		GoogleApplicationCredential: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),

		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 10),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", 30*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	validBackends := []string{"memory", "sheets", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if _, err := core.ParseDateFallback(c.DateFallback); err != nil {
		errors = append(errors, fmt.Sprintf("invalid date fallback '%s': must be 'submission' or 'reject'", c.DateFallback))
	}

	if c.StoreMaxRetries < 0 || c.StoreMaxRetries > 10 {
		errors = append(errors, fmt.Sprintf("invalid store max retries %d: must be between 0 and 10", c.StoreMaxRetries))
	}

	if c.RateLimitPerMinute < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must not be negative", c.RateLimitPerMinute))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
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

	if c.DataBackend == "sheets" {
		errors = append(errors, c.sheetsErrors()...)
	}

	if c.SyncBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateBot is Validate plus the settings only the chat bot needs.
func (c *Config) ValidateBot() error {
	err := c.Validate()
	if strings.TrimSpace(c.BotToken) == "" {
		if err != nil {
			return fmt.Errorf("%w\n- BOT_TOKEN is required", err)
		}
		return fmt.Errorf("configuration validation failed:\n- BOT_TOKEN is required")
	}
	return err
}

// ValidateWorker is Validate plus the settings the sync worker needs: it
// reads SQLite, consumes AMQP and writes to the spreadsheet.
func (c *Config) ValidateWorker() error {
	var errors []string
	if err := c.Validate(); err != nil {
		errors = append(errors, strings.TrimPrefix(err.Error(), "configuration validation failed:\n- "))
	}
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLITE_DB_PATH is required for the sync worker")
	}
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the sync worker")
	}
	if c.DataBackend != "sheets" {
		errors = append(errors, c.sheetsErrors()...)
	}
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// HasSheetsCredentials reports whether any service account source is set.
func (c *Config) HasSheetsCredentials() bool {
	return c.GoogleServiceAccountJSON != "" ||
		c.GoogleServiceAccountFile != "" ||
		c.GoogleServiceAccountBase64 != "" ||
		c.GoogleApplicationCredential != ""
}

func (c *Config) sheetsErrors() []string {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required when using sheets backend")
	}
	if !c.HasSheetsCredentials() {
		errors = append(errors, "one of GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, GOOGLE_SERVICE_ACCOUNT_BASE64 or GOOGLE_APPLICATION_CREDENTIALS must be provided for sheets backend")
	}
	for _, f := range []string{c.GoogleServiceAccountFile, c.GoogleApplicationCredential} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", f))
		}
	}
	return errors
}

// ParserOptions builds parser options from the validated config.
func (c *Config) ParserOptions() core.ParserOptions {
	fallback, _ := core.ParseDateFallback(c.DateFallback)
	return core.ParserOptions{DateFallback: fallback}
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
