package backend

import (
	"errors"
	"fmt"

	"mifi/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	return fromAppConfig(appConfig, BackendType(appConfig.DataBackend))
}

// SyncSourceConfig is the backend config of the configured sync source,
// or false when syncing is off.
func SyncSourceConfig(appConfig *config.Config) (Config, bool, error) {
	if appConfig == nil || appConfig.SyncSource == "" {
		return Config{}, false, nil
	}
	cfg, err := fromAppConfig(appConfig, BackendType(appConfig.SyncSource))
	return cfg, err == nil, err
}

func fromAppConfig(appConfig *config.Config, backendType BackendType) (Config, error) {
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", backendType)
	}
	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		PostgresURL:  appConfig.PostgresURL,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		RESTBaseURL: appConfig.RESTBaseURL,
		RESTTimeout: appConfig.RESTTimeout,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		TransactionsSheet:        appConfig.TransactionsSheet,
		CategoriesSheet:          appConfig.CategoriesSheet,

		DataDirectory: appConfig.DataDir,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case PostgresBackend:
		if c.PostgresURL == "" {
			return errors.New("Postgres URL is required for postgres backend")
		}
	case RESTBackend:
		if c.RESTBaseURL == "" {
			return errors.New("REST base URL is required for rest backend")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
	case MemoryBackend:
		// DataDirectory defaults to "data"
	}
	return nil
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := []BackendType{MemoryBackend, SQLiteBackend, PostgresBackend, SheetsBackend, RESTBackend}
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
