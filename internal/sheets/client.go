// Package sheets reads transactions and categories from a Google
// spreadsheet. It is read-only; budgets live in another store.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"mifi/internal/categories"
	"mifi/internal/core"
	"mifi/internal/log"
	"mifi/internal/ports"
)

var (
	_ ports.TransactionSource = (*Client)(nil)
	_ ports.CategorySource    = (*Client)(nil)
)

// ErrMissingSpreadsheet is returned when no spreadsheet id is configured.
var ErrMissingSpreadsheet = errors.New("missing spreadsheet id")

type Config struct {
	SpreadsheetID      string
	ServiceAccountFile string
	ServiceAccountJSON string
	TransactionsSheet  string
	CategoriesSheet    string
}

// valueReader is the one Sheets call the client needs.
type valueReader interface {
	Values(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
}

type serviceReader struct {
	svc *gsheet.Service
}

func (r serviceReader) Values(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	resp, err := r.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

type Client struct {
	values            valueReader
	spreadsheetID     string
	transactionsSheet string
	categoriesSheet   string
	logger            *log.Logger
}

// New creates a client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, ErrMissingSpreadsheet
	}
	logger = log.OrDefault(logger).WithComponent(log.ComponentSheets)
	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(serviceReader{svc: svc}, cfg, logger), nil
}

func newClient(values valueReader, cfg Config, logger *log.Logger) *Client {
	c := &Client{
		values:            values,
		spreadsheetID:     strings.TrimSpace(cfg.SpreadsheetID),
		transactionsSheet: strings.TrimSpace(cfg.TransactionsSheet),
		categoriesSheet:   strings.TrimSpace(cfg.CategoriesSheet),
		logger:            log.OrDefault(logger).WithComponent(log.ComponentSheets),
	}
	if c.transactionsSheet == "" {
		c.transactionsSheet = "Transactions"
	}
	if c.categoriesSheet == "" {
		c.categoriesSheet = "Categories"
	}
	return c
}

// newSheetsService prefers inline JSON, then the file, then
// GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	credentialsJSON := []byte(strings.TrimSpace(cfg.ServiceAccountJSON))
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	if len(credentialsJSON) == 0 && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if len(credentialsJSON) == 0 {
		if file == "" {
			return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
		}
		var err error
		credentialsJSON, err = os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		logger.InfoContext(ctx, "read credentials file", log.FieldPath, file)
	}

	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.RawTransaction, error) {
	rng := c.transactionsSheet + "!A:Z"
	values, err := c.values.Values(ctx, c.spreadsheetID, rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	txs, err := parseTransactions(values)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", c.transactionsSheet, err)
	}
	c.logger.DebugContext(ctx, "transactions read", log.FieldCount, len(txs))
	return txs, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]categories.Category, error) {
	rng := c.categoriesSheet + "!A:C"
	values, err := c.values.Values(ctx, c.spreadsheetID, rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	cats, err := parseCategories(values)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", c.categoriesSheet, err)
	}
	return cats, nil
}
