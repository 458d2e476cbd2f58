package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export (optional)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// 10bis
	TenbisAPIURL  string
	TenbisTimeout time.Duration

	// Budget rules
	TimeZone         string
	DailyLunchBudget decimal.Decimal
	MaxLunchLimit    decimal.Decimal
	LunchCutoffHour  int
	// HolidayNames overrides the default holiday allowlist when non-empty.
	HolidayNames []string
	ParsePolicy  string

	// Caching and refresh
	CacheTTL           time.Duration
	RefreshInterval    time.Duration
	RefreshConcurrency int

	// Backend selection
	DataBackend string
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/lunchbudget.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "lunchbudget"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "report_updates"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Lunch"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		TenbisAPIURL:  getEnv("TENBIS_API_URL", "https://www.10bis.co.il/api"),
		TenbisTimeout: getEnvDuration("TENBIS_TIMEOUT", 15*time.Second),

		TimeZone:         getEnv("TIME_ZONE", "Asia/Jerusalem"),
		DailyLunchBudget: getEnvDecimal("DAILY_LUNCH_BUDGET", decimal.NewFromInt(40)),
		MaxLunchLimit:    getEnvDecimal("MAX_LUNCH_LIMIT", decimal.NewFromInt(150)),
		LunchCutoffHour:  getEnvInt("LUNCH_CUTOFF_HOUR", 17),
		HolidayNames:     getEnvList("HOLIDAY_NAMES"),
		ParsePolicy:      getEnv("PARSE_POLICY", "skip"),

		CacheTTL:           getEnvDuration("CACHE_TTL", 5*time.Minute),
		RefreshInterval:    getEnvDuration("REFRESH_INTERVAL", time.Hour),
		RefreshConcurrency: getEnvInt("REFRESH_CONCURRENCY", 4),

		DataBackend: getEnv("DATA_BACKEND", "sqlite"),
	}

	return cfg
}

// SheetsEnabled reports whether reports should be mirrored to Google Sheets.
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

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
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

	// Validate SQLite configuration if backend is sqlite
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

	// Sheets export needs a sheet name and credentials
	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when GOOGLE_SPREADSHEET_ID is set")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets export")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	// 10bis upstream
	if u, err := url.Parse(c.TenbisAPIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errors = append(errors, fmt.Sprintf("invalid 10bis API URL '%s': must be an http(s) URL", c.TenbisAPIURL))
	}
	if c.TenbisTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid 10bis timeout %v: must be positive", c.TenbisTimeout))
	}

	// Budget rules
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid time zone '%s': %v", c.TimeZone, err))
	}
	if !c.DailyLunchBudget.IsPositive() {
		errors = append(errors, fmt.Sprintf("invalid daily lunch budget %s: must be positive", c.DailyLunchBudget))
	}
	if !c.MaxLunchLimit.IsPositive() {
		errors = append(errors, fmt.Sprintf("invalid max lunch limit %s: must be positive", c.MaxLunchLimit))
	}
	if c.LunchCutoffHour < 1 || c.LunchCutoffHour > 24 {
		errors = append(errors, fmt.Sprintf("invalid lunch cutoff hour %d: must be between 1 and 24", c.LunchCutoffHour))
	}
	if c.ParsePolicy != "skip" && c.ParsePolicy != "fail" {
		errors = append(errors, fmt.Sprintf("invalid parse policy '%s': must be 'skip' or 'fail'", c.ParsePolicy))
	}

	// Caching and refresh
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}
	if c.RefreshInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at least 1 minute", c.RefreshInterval))
	} else if c.RefreshInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at most 24 hours", c.RefreshInterval))
	}
	if c.RefreshConcurrency < 1 || c.RefreshConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("invalid refresh concurrency %d: must be between 1 and 64", c.RefreshConcurrency))
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

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
