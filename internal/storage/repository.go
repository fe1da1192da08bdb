// Package storage keeps transactions, categories and budgets in SQLite or
// Postgres. Budgets are stored whole as JSON, scratch included.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"mifi/internal/budget"
	"mifi/internal/categories"
	"mifi/internal/core"
	"mifi/internal/log"
	"mifi/internal/ports"
)

// TemplateKey is the budgets row that holds the default template.
const TemplateKey = "default"

type Repository struct {
	db      *sql.DB
	queries *Queries
	dialect Dialect
	logger  *log.Logger
	now     func() time.Time
}

// Open connects, migrates and seeds the default categories.
func Open(ctx context.Context, d Dialect, dsn string, logger *log.Logger) (*Repository, error) {
	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if d == DialectSQLite {
		// one writer at a time; avoids SQLITE_BUSY under concurrent imports
		db.SetMaxOpenConns(1)
	}
	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	r := &Repository{
		db:      db,
		queries: NewQueries(db, d),
		dialect: d,
		logger:  log.OrDefault(logger).WithComponent(log.ComponentStorage),
		now:     time.Now,
	}
	if err := r.seedCategories(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// NewSQLiteRepository opens the database file at dbPath, creating its
// directory when needed.
func NewSQLiteRepository(ctx context.Context, dbPath string, logger *log.Logger) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return Open(ctx, DialectSQLite, dbPath, logger)
}

func NewPostgresRepository(ctx context.Context, url string, logger *log.Logger) (*Repository, error) {
	return Open(ctx, DialectPostgres, url, logger)
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) seedCategories(ctx context.Context) error {
	for _, c := range categories.DefaultList() {
		if err := r.queries.SeedCategory(ctx, CategoryRow(c)); err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context) ([]core.RawTransaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.RawTransaction, 0, len(rows))
	for _, row := range rows {
		raw := core.RawTransaction{
			ID:          core.FlexString(row.ID),
			Title:       core.FlexString(row.Title),
			Description: core.FlexString(row.Description),
			Type:        core.FlexString(row.Type),
			Category:    core.FlexString(row.Category),
			Bank:        core.FlexString(row.Bank),
		}
		if row.OccurredAt.Valid {
			raw.Date = core.ParseFlexTime(row.OccurredAt.String)
		}
		if row.AmountCents.Valid {
			raw.Amount = core.Amount(core.Money{Cents: row.AmountCents.Int64})
		}
		out = append(out, raw)
	}
	return out, nil
}

// AppendTransactions inserts txs in one transaction. Rows whose id exists
// are skipped; rows without an id get a random one.
func (r *Repository) AppendTransactions(ctx context.Context, txs []core.RawTransaction) (int, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	importedAt := r.now().UTC().Format(time.RFC3339)
	var inserted, skipped int
	for _, t := range txs {
		row := toRow(t, importedAt)
		ok, err := q.InsertTransaction(ctx, row)
		if err != nil {
			return 0, 0, fmt.Errorf("insert transaction %s: %w", row.ID, err)
		}
		if ok {
			inserted++
		} else {
			skipped++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit: %w", err)
	}
	r.logger.InfoContext(ctx, "transactions appended",
		log.FieldOperation, log.OpImport,
		log.FieldCount, inserted,
		log.FieldSkipped, skipped)
	return inserted, skipped, nil
}

func toRow(t core.RawTransaction, importedAt string) TransactionRow {
	id := strings.TrimSpace(string(t.ID))
	if id == "" {
		id = uuid.NewString()
	}
	row := TransactionRow{
		ID:          id,
		Title:       string(t.Title),
		Description: string(t.Description),
		Type:        string(t.Type),
		Category:    string(t.Category),
		Bank:        string(t.Bank),
		ImportedAt:  importedAt,
	}
	// the table has one label and one date column; fold the fallbacks in
	// with the precedence Normalize applies
	if strings.TrimSpace(row.Title) == "" && strings.TrimSpace(row.Description) == "" {
		row.Title = string(t.Name)
	}
	for _, when := range []core.FlexTime{t.Date, t.CreatedAt, t.Timestamp} {
		if when.Valid {
			row.OccurredAt = sql.NullString{String: when.Time.Format(time.RFC3339Nano), Valid: true}
			break
		}
	}
	if t.Amount.Valid {
		row.AmountCents = sql.NullInt64{Int64: t.Amount.Money().Cents, Valid: true}
	}
	return row
}

// ListCategories returns the categories ordered by numeric id where ids are
// numeric.
func (r *Repository) ListCategories(ctx context.Context) ([]categories.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]categories.Category, len(rows))
	for i, row := range rows {
		out[i] = categories.Category(row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, errA := strconv.Atoi(out[i].ID)
		b, errB := strconv.Atoi(out[j].ID)
		if errA == nil && errB == nil {
			return a < b
		}
		if (errA == nil) != (errB == nil) {
			return errA == nil
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetBudgetVersion returns the stored budget with its version.
func (r *Repository) GetBudgetVersion(ctx context.Context, month core.MonthKey) (budget.Payload, int64, error) {
	return r.getPayload(ctx, month.String())
}

func (r *Repository) GetBudget(ctx context.Context, month core.MonthKey) (budget.Payload, error) {
	p, _, err := r.getPayload(ctx, month.String())
	return p, err
}

func (r *Repository) GetDefaultTemplate(ctx context.Context) (budget.Payload, error) {
	p, _, err := r.getPayload(ctx, TemplateKey)
	return p, err
}

func (r *Repository) getPayload(ctx context.Context, key string) (budget.Payload, int64, error) {
	row, err := r.queries.GetBudget(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return budget.Payload{}, 0, fmt.Errorf("budget %s: %w", key, ports.ErrNotFound)
	}
	if err != nil {
		return budget.Payload{}, 0, fmt.Errorf("get budget %s: %w", key, err)
	}
	var p budget.Payload
	if err := json.Unmarshal([]byte(row.Payload), &p); err != nil {
		return budget.Payload{}, 0, fmt.Errorf("decode budget %s: %w", key, err)
	}
	return p, row.Version, nil
}

func (r *Repository) SaveBudget(ctx context.Context, month core.MonthKey, p budget.Payload) error {
	_, err := r.SaveBudgetVersion(ctx, month, p)
	return err
}

// SaveBudgetVersion upserts the month's budget and returns its new version.
func (r *Repository) SaveBudgetVersion(ctx context.Context, month core.MonthKey, p budget.Payload) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	version, err := r.putPayload(ctx, month.String(), p)
	if err != nil {
		return 0, err
	}
	r.logger.InfoContext(ctx, "budget stored",
		log.FieldOperation, log.OpSave,
		log.FieldMonth, month.String(),
		log.FieldVersion, version)
	return version, nil
}

// SetDefaultTemplate stores p with its period cleared.
func (r *Repository) SetDefaultTemplate(ctx context.Context, p budget.Payload) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := r.putPayload(ctx, TemplateKey, p.AsTemplate())
	return err
}

func (r *Repository) putPayload(ctx context.Context, key string, p budget.Payload) (int64, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return 0, fmt.Errorf("encode budget %s: %w", key, err)
	}
	version, err := r.queries.UpsertBudget(ctx, key, string(raw), r.now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("upsert budget %s: %w", key, err)
	}
	return version, nil
}
