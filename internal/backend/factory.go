package backend

import (
	"context"
	"errors"
	"fmt"

	"mifi/internal/adapters"
	"mifi/internal/adapters/rest"
	"mifi/internal/amqp"
	"mifi/internal/log"
	"mifi/internal/memory"
	"mifi/internal/services"
	"mifi/internal/sheets"
	"mifi/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	return &DefaultFactory{logger: log.OrDefault(logger).WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend, PostgresBackend:
		return f.createSQLBackend(ctx, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case RESTBackend:
		return f.createRESTBackend(config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLBackend(ctx context.Context, config Config) (*BackendResult, error) {
	var (
		repo *storage.Repository
		err  error
	)
	if config.Type == PostgresBackend {
		repo, err = storage.NewPostgresRepository(ctx, config.PostgresURL, f.logger)
	} else {
		repo, err = storage.NewSQLiteRepository(ctx, config.SQLiteDBPath, f.logger)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s repository: %w", config.Type, err)
	}

	// AMQP is optional: without it budgets are saved but no snapshots are taken.
	var (
		publisher  services.Publisher
		amqpClient *amqp.Client
	)
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("failed to initialize AMQP client, continuing without budget events", log.FieldError, err)
		} else {
			publisher = amqpClient
			f.logger.Info("initialized AMQP client", "exchange", config.AMQPExchange, "queue", config.AMQPQueue)
		}
	}

	backend := &adapters.Composite{
		Transactions: repo,
		Categories:   repo,
		Budgets:      services.NewBudgetService(repo, publisher, f.logger),
	}

	f.logger.Info("initialized SQL backend", log.FieldBackend, config.Type.String(), "amqp_enabled", amqpClient != nil)

	return &BackendResult{
		Backend:    backend,
		Writer:     repo,
		Repository: repo,
		Ready:      repo.Ping,
		Cleanup: func() error {
			var errs []error
			if amqpClient != nil {
				errs = append(errs, amqpClient.Close())
			}
			errs = append(errs, repo.Close())
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		ServiceAccountFile: config.GoogleServiceAccountFile,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		TransactionsSheet:  config.TransactionsSheet,
		CategoriesSheet:    config.CategoriesSheet,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	// The sheet has no budget tab; budgets live in process, seeded from
	// the data directory.
	budgets, err := memory.NewFromFiles(dataDir(config))
	if err != nil {
		return nil, fmt.Errorf("failed to load budget seed files: %w", err)
	}

	f.logger.Info("initialized Google Sheets backend", "budgets", "memory")

	return &BackendResult{
		Backend: &adapters.Composite{Transactions: cli, Categories: cli, Budgets: budgets},
	}, nil
}

func (f *DefaultFactory) createRESTBackend(config Config) (*BackendResult, error) {
	cli, err := rest.New(config.RESTBaseURL, config.RESTTimeout, rest.WithLogger(f.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize REST client: %w", err)
	}
	f.logger.Info("initialized REST backend", log.FieldPath, config.RESTBaseURL)
	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromFiles(dataDir(config))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.Info("initialized memory backend", "data_directory", dataDir(config))

	return &BackendResult{Backend: store, Writer: store}, nil
}

func dataDir(config Config) string {
	if config.DataDirectory == "" {
		return "data"
	}
	return config.DataDirectory
}
