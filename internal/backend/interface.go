// Package backend builds the data backend selected by configuration.
package backend

import (
	"context"
	"time"

	"mifi/internal/ports"
	"mifi/internal/storage"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// BackendResult is a ready backend plus what only some backends offer.
type BackendResult struct {
	Backend ports.Backend
	// Writer is nil for read-only backends (sheets, rest).
	Writer ports.TransactionWriter
	// Repository is set for the SQL backends; the snapshot worker needs it.
	Repository *storage.Repository
	// Ready checks the backend for the readiness probe.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Close runs Cleanup if there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// sqlite and postgres
	SQLiteDBPath string
	PostgresURL  string

	// Budget saves on the SQL backends are announced here when set.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// rest
	RESTBaseURL string
	RESTTimeout time.Duration

	// sheets
	GoogleSpreadsheetID      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	TransactionsSheet        string
	CategoriesSheet          string

	// memory; also holds the budget seed files for sheets
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	SheetsBackend   BackendType = "sheets"
	RESTBackend     BackendType = "rest"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend, SheetsBackend, RESTBackend:
		return true
	default:
		return false
	}
}
