package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"mifi/internal/budget"
)

// FileEnv names the optional TOML file overlaid under the environment.
const FileEnv = "MIFI_CONFIG"

type Config struct {
	// Logging
	LogLevel  string
	LogFormat string

	// Backend selection
	DataBackend string
	DataDir     string

	// Database
	SQLiteDBPath string
	PostgresURL  string

	// REST backend
	RESTBaseURL string
	RESTTimeout time.Duration

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	TransactionsSheet        string
	CategoriesSheet          string

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	MetricsPort  string
	SyncSource   string
	SyncInterval time.Duration

	// Dashboard
	FixedPolicy    string
	TrailingMonths int
	CacheSize      int
	CacheTTL       time.Duration
}

// values resolves a key from the environment first and the config file
// second.
type values struct {
	file map[string]string
	bad  []string
}

func (v *values) get(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value, ok := v.file[key]; ok && value != "" {
		return value
	}
	return def
}

func (v *values) getInt(key string, def int) int {
	raw := v.get(key, "")
	if raw == "" {
		return def
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		v.bad = append(v.bad, fmt.Sprintf("%s: %q is not a number", key, raw))
		return def
	}
	return i
}

func (v *values) getDuration(key string, def time.Duration) time.Duration {
	raw := v.get(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		v.bad = append(v.bad, fmt.Sprintf("%s: %q is not a duration", key, raw))
		return def
	}
	return d
}

// Load reads the configuration from the environment, falling back to the
// TOML file named by MIFI_CONFIG. Keys in the file are the environment
// names, in any case. Unparseable numbers and durations are reported.
func Load() (*Config, error) {
	file, err := readFile(os.Getenv(FileEnv))
	if err != nil {
		return nil, err
	}
	v := &values{file: file}

	cfg := &Config{
		LogLevel:  v.get("LOG_LEVEL", "info"),
		LogFormat: v.get("LOG_FORMAT", "text"),

		DataBackend: v.get("DATA_BACKEND", "memory"),
		DataDir:     v.get("DATA_DIR", "data"),

		SQLiteDBPath: v.get("SQLITE_DB_PATH", "./data/mifi.db"),
		PostgresURL:  v.get("POSTGRES_URL", ""),

		RESTBaseURL: v.get("REST_BASE_URL", ""),
		RESTTimeout: v.getDuration("REST_TIMEOUT", 15*time.Second),

		GoogleSpreadsheetID:      v.get("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountFile: v.get("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: v.get("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		TransactionsSheet:        v.get("TRANSACTIONS_SHEET_NAME", "Transactions"),
		CategoriesSheet:          v.get("CATEGORIES_SHEET_NAME", "Categories"),

		AMQPURL:      v.get("AMQP_URL", ""),
		AMQPExchange: v.get("AMQP_EXCHANGE", "mifi"),
		AMQPQueue:    v.get("AMQP_QUEUE_NAME", "budget_snapshots"),

		MetricsPort:  v.get("METRICS_PORT", "9090"),
		SyncSource:   v.get("SYNC_SOURCE", ""),
		SyncInterval: v.getDuration("SYNC_INTERVAL", 15*time.Minute),

		FixedPolicy:    v.get("MIFI_FIXED_POLICY", string(budget.FixedAllTransfers)),
		TrailingMonths: v.getInt("MIFI_TRAILING_MONTHS", 6),
		CacheSize:      v.getInt("CACHE_SIZE", 32),
		CacheTTL:       v.getDuration("CACHE_TTL", 10*time.Minute),
	}
	if len(v.bad) > 0 {
		return cfg, fmt.Errorf("configuration parse failed:\n- %s", strings.Join(v.bad, "\n- "))
	}
	return cfg, nil
}

func readFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	var raw map[string]any
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s does not exist", path)
		}
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	out := make(map[string]string, len(raw))
	for k, val := range raw {
		out[strings.ToUpper(k)] = fmt.Sprint(val)
	}
	return out, nil
}

var validBackends = []string{"memory", "sqlite", "postgres", "sheets", "rest"}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if !contains(validBackends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "memory":
		if c.DataDir == "" {
			errs = append(errs, "DATA_DIR cannot be empty when using memory backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		}
	case "postgres":
		if c.PostgresURL == "" {
			errs = append(errs, "POSTGRES_URL is required when using postgres backend")
		}
	case "rest":
		errs = append(errs, validateHTTPURL("REST_BASE_URL", c.RESTBaseURL)...)
		if c.RESTTimeout <= 0 {
			errs = append(errs, fmt.Sprintf("invalid REST timeout %v: must be positive", c.RESTTimeout))
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if port, err := strconv.Atoi(c.MetricsPort); err != nil {
		errs = append(errs, fmt.Sprintf("invalid metrics port '%s': must be a number", c.MetricsPort))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid metrics port %d: must be between 1 and 65535", port))
	}

	if c.SyncSource != "" {
		if c.SyncSource != "sheets" && c.SyncSource != "rest" {
			errs = append(errs, fmt.Sprintf("invalid sync source '%s': must be 'sheets' or 'rest'", c.SyncSource))
		}
		if c.SyncSource == c.DataBackend {
			errs = append(errs, fmt.Sprintf("sync source '%s' cannot be the data backend itself", c.SyncSource))
		}
		if c.SyncSource == "rest" && c.DataBackend != "rest" {
			errs = append(errs, validateHTTPURL("REST_BASE_URL", c.RESTBaseURL)...)
		}
		if c.SyncSource == "sheets" && c.GoogleSpreadsheetID == "" {
			errs = append(errs, "Google Spreadsheet ID is required when syncing from sheets")
		}
		if c.SyncInterval < time.Minute {
			errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be at least 1 minute", c.SyncInterval))
		} else if c.SyncInterval > 24*time.Hour {
			errs = append(errs, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
		}
	}

	if _, err := budget.ParseFixedPolicy(c.FixedPolicy); err != nil {
		errs = append(errs, err.Error())
	}
	if c.TrailingMonths < 1 || c.TrailingMonths > 120 {
		errs = append(errs, fmt.Sprintf("invalid trailing months %d: must be between 1 and 120", c.TrailingMonths))
	}
	if c.CacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Sprintf("invalid cache TTL %v: must be positive", c.CacheTTL))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Policy returns the parsed fixed-expense policy. Call it after Validate.
func (c *Config) Policy() budget.FixedPolicy {
	p, err := budget.ParseFixedPolicy(c.FixedPolicy)
	if err != nil {
		return budget.FixedAllTransfers
	}
	return p
}

func validateHTTPURL(key, raw string) []string {
	if raw == "" {
		return []string{key + " is required"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return []string{fmt.Sprintf("invalid %s '%s': %v", key, raw, err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return []string{fmt.Sprintf("invalid %s scheme '%s': must be 'http' or 'https'", key, u.Scheme)}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
