package storage

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// Dialect names the SQL flavour of the connection.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// rebind rewrites ? placeholders into $n for postgres.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db      DBTX
	dialect Dialect
}

func NewQueries(db DBTX, d Dialect) *Queries {
	return &Queries{db: db, dialect: d}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect}
}

type (
	TransactionRow struct {
		ID          string
		OccurredAt  sql.NullString
		Title       string
		Description string
		Type        string
		AmountCents sql.NullInt64
		Category    string
		Bank        string
		ImportedAt  string
	}

	CategoryRow struct {
		ID          string
		Name        string
		Description string
	}

	BudgetRow struct {
		MonthKey  string
		Payload   string
		Version   int64
		UpdatedAt string
	}

	SnapshotRow struct {
		ID                 string
		MonthKey           string
		Version            int64
		Policy             string
		TotalIncomeCents   int64
		TotalFixedCents    int64
		RemainingCents     int64
		TotalBudgetedCents int64
		OverAllocated      int64
		TakenAt            string
	}
)

const insertTransaction = `INSERT INTO transactions
	(id, occurred_at, title, description, tx_type, amount_cents, category, bank, imported_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING`

// InsertTransaction reports false when the id already existed.
func (q *Queries) InsertTransaction(ctx context.Context, r TransactionRow) (bool, error) {
	res, err := q.db.ExecContext(ctx, q.dialect.rebind(insertTransaction),
		r.ID, r.OccurredAt, r.Title, r.Description, r.Type, r.AmountCents, r.Category, r.Bank, r.ImportedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const listTransactions = `SELECT id, occurred_at, title, description, tx_type, amount_cents, category, bank, imported_at
FROM transactions ORDER BY occurred_at, id`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var r TransactionRow
		if err := rows.Scan(&r.ID, &r.OccurredAt, &r.Title, &r.Description, &r.Type,
			&r.AmountCents, &r.Category, &r.Bank, &r.ImportedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const upsertCategory = `INSERT INTO categories (id, name, description) VALUES (?, ?, ?)
ON CONFLICT (id) DO NOTHING`

// SeedCategory inserts a category unless its id exists; edits made in the
// database are kept.
func (q *Queries) SeedCategory(ctx context.Context, c CategoryRow) error {
	_, err := q.db.ExecContext(ctx, q.dialect.rebind(upsertCategory), c.ID, c.Name, c.Description)
	return err
}

const listCategories = `SELECT id, name, description FROM categories`

func (q *Queries) ListCategories(ctx context.Context) ([]CategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategoryRow
	for rows.Next() {
		var c CategoryRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const getBudget = `SELECT month_key, payload, version, updated_at FROM budgets WHERE month_key = ?`

func (q *Queries) GetBudget(ctx context.Context, key string) (BudgetRow, error) {
	var b BudgetRow
	err := q.db.QueryRowContext(ctx, q.dialect.rebind(getBudget), key).
		Scan(&b.MonthKey, &b.Payload, &b.Version, &b.UpdatedAt)
	return b, err
}

const upsertBudget = `INSERT INTO budgets (month_key, payload, version, updated_at) VALUES (?, ?, 1, ?)
ON CONFLICT (month_key) DO UPDATE SET
	payload = excluded.payload,
	version = budgets.version + 1,
	updated_at = excluded.updated_at
RETURNING version`

// UpsertBudget stores the payload and returns the new version.
func (q *Queries) UpsertBudget(ctx context.Context, key, payload, updatedAt string) (int64, error) {
	var version int64
	err := q.db.QueryRowContext(ctx, q.dialect.rebind(upsertBudget), key, payload, updatedAt).Scan(&version)
	return version, err
}

const insertSnapshot = `INSERT INTO budget_snapshots
	(id, month_key, version, policy, total_income_cents, total_fixed_cents, remaining_cents,
	 total_budgeted_cents, over_allocated, taken_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (month_key, version) DO NOTHING`

// InsertSnapshot reports false when the month's version was already
// snapshotted.
func (q *Queries) InsertSnapshot(ctx context.Context, s SnapshotRow) (bool, error) {
	res, err := q.db.ExecContext(ctx, q.dialect.rebind(insertSnapshot),
		s.ID, s.MonthKey, s.Version, s.Policy, s.TotalIncomeCents, s.TotalFixedCents,
		s.RemainingCents, s.TotalBudgetedCents, s.OverAllocated, s.TakenAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const listSnapshots = `SELECT id, month_key, version, policy, total_income_cents, total_fixed_cents,
	remaining_cents, total_budgeted_cents, over_allocated, taken_at
FROM budget_snapshots WHERE month_key = ? ORDER BY version`

func (q *Queries) ListSnapshots(ctx context.Context, key string) ([]SnapshotRow, error) {
	rows, err := q.db.QueryContext(ctx, q.dialect.rebind(listSnapshots), key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SnapshotRow
	for rows.Next() {
		var s SnapshotRow
		if err := rows.Scan(&s.ID, &s.MonthKey, &s.Version, &s.Policy, &s.TotalIncomeCents,
			&s.TotalFixedCents, &s.RemainingCents, &s.TotalBudgetedCents, &s.OverAllocated, &s.TakenAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
