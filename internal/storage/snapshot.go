package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mifi/internal/budget"
	"mifi/internal/core"
	"mifi/internal/log"
)

// Snapshot records the waterfall totals of one saved budget version.
type Snapshot struct {
	ID            string
	Month         core.MonthKey
	Version       int64
	Policy        budget.FixedPolicy
	TotalIncome   core.Money
	TotalFixed    core.Money
	Remaining     core.Money
	TotalBudgeted core.Money
	OverAllocated int
	TakenAt       time.Time
}

func NewSnapshot(version int64, w budget.Waterfall, takenAt time.Time) Snapshot {
	return Snapshot{
		ID:            uuid.NewString(),
		Month:         w.Month,
		Version:       version,
		Policy:        w.Policy,
		TotalIncome:   w.TotalIncome,
		TotalFixed:    w.TotalFixed,
		Remaining:     w.RemainingAfterTransfers,
		TotalBudgeted: w.TotalBudgeted,
		OverAllocated: len(w.OverAllocated()),
		TakenAt:       takenAt,
	}
}

// SaveSnapshot stores s. It reports false when that version was already
// recorded, which makes redelivered events harmless.
func (r *Repository) SaveSnapshot(ctx context.Context, s Snapshot) (bool, error) {
	ok, err := r.queries.InsertSnapshot(ctx, SnapshotRow{
		ID:                 s.ID,
		MonthKey:           s.Month.String(),
		Version:            s.Version,
		Policy:             string(s.Policy),
		TotalIncomeCents:   s.TotalIncome.Cents,
		TotalFixedCents:    s.TotalFixed.Cents,
		RemainingCents:     s.Remaining.Cents,
		TotalBudgetedCents: s.TotalBudgeted.Cents,
		OverAllocated:      int64(s.OverAllocated),
		TakenAt:            s.TakenAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return false, fmt.Errorf("insert snapshot %s v%d: %w", s.Month, s.Version, err)
	}
	r.logger.InfoContext(ctx, "budget snapshot stored",
		log.FieldOperation, log.OpSnapshot,
		log.FieldMonth, s.Month.String(),
		log.FieldVersion, s.Version,
		"inserted", ok)
	return ok, nil
}

func (r *Repository) ListSnapshots(ctx context.Context, month core.MonthKey) ([]Snapshot, error) {
	rows, err := r.queries.ListSnapshots(ctx, month.String())
	if err != nil {
		return nil, fmt.Errorf("list snapshots %s: %w", month, err)
	}
	out := make([]Snapshot, 0, len(rows))
	for _, row := range rows {
		takenAt, _ := time.Parse(time.RFC3339, row.TakenAt)
		out = append(out, Snapshot{
			ID:            row.ID,
			Month:         month,
			Version:       row.Version,
			Policy:        budget.FixedPolicy(row.Policy),
			TotalIncome:   core.Money{Cents: row.TotalIncomeCents},
			TotalFixed:    core.Money{Cents: row.TotalFixedCents},
			Remaining:     core.Money{Cents: row.RemainingCents},
			TotalBudgeted: core.Money{Cents: row.TotalBudgetedCents},
			OverAllocated: int(row.OverAllocated),
			TakenAt:       takenAt,
		})
	}
	return out, nil
}
