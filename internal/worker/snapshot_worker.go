// Package worker runs the background consumers of budget events.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mifi/internal/amqp"
	"mifi/internal/budget"
	"mifi/internal/categories"
	"mifi/internal/core"
	"mifi/internal/log"
	"mifi/internal/ports"
	"mifi/internal/storage"
)

// ErrBehind means the store has not caught up with the event yet.
var ErrBehind = errors.New("stored budget is older than the event")

type SnapshotStore interface {
	GetBudgetVersion(ctx context.Context, month core.MonthKey) (budget.Payload, int64, error)
	SaveSnapshot(ctx context.Context, s storage.Snapshot) (bool, error)
}

type Consumer interface {
	ConsumeBudgetSaved(ctx context.Context, handler func(context.Context, *amqp.BudgetSavedMessage) error) error
}

// Recorder is told about every stored snapshot.
type Recorder interface {
	SnapshotStored(month core.MonthKey, overAllocated int)
}

// SnapshotWorker records the waterfall totals of every saved budget
// version.
type SnapshotWorker struct {
	store    SnapshotStore
	dir      func() *categories.Directory
	policy   budget.FixedPolicy
	recorder Recorder
	logger   *log.Logger
	now      func() time.Time
}

type Option func(*SnapshotWorker)

func WithPolicy(p budget.FixedPolicy) Option { return func(w *SnapshotWorker) { w.policy = p } }

func WithDirectory(dir func() *categories.Directory) Option {
	return func(w *SnapshotWorker) { w.dir = dir }
}

func WithRecorder(r Recorder) Option { return func(w *SnapshotWorker) { w.recorder = r } }

func WithLogger(l *log.Logger) Option {
	return func(w *SnapshotWorker) { w.logger = log.OrDefault(l).WithComponent(log.ComponentWorker) }
}

func NewSnapshotWorker(store SnapshotStore, opts ...Option) *SnapshotWorker {
	w := &SnapshotWorker{
		store:  store,
		dir:    categories.Default,
		policy: budget.FixedAllTransfers,
		logger: log.Default().WithComponent(log.ComponentWorker),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run consumes budget-saved events until ctx is done.
func (w *SnapshotWorker) Run(ctx context.Context, c Consumer) error {
	w.logger.InfoContext(ctx, "snapshot worker started", log.FieldPolicy, string(w.policy))
	return c.ConsumeBudgetSaved(ctx, w.HandleBudgetSaved)
}

// HandleBudgetSaved re-reads the month and stores a snapshot of its
// waterfall. A missing budget is a permanent failure; a store that lags
// behind the event is retried.
func (w *SnapshotWorker) HandleBudgetSaved(ctx context.Context, msg *amqp.BudgetSavedMessage) error {
	month, err := msg.MonthKey()
	if err != nil {
		return fmt.Errorf("%w: %v", amqp.ErrPermanent, err)
	}

	payload, version, err := w.store.GetBudgetVersion(ctx, month)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return fmt.Errorf("budget %s: %w", month, amqp.ErrPermanent)
	case err != nil:
		return fmt.Errorf("read budget %s: %w", month, err)
	case version < msg.Version:
		return fmt.Errorf("budget %s at v%d, event v%d: %w", month, version, msg.Version, ErrBehind)
	}

	wf := budget.ComputeWaterfall(budget.FromPayload(month, payload, w.dir()), w.policy)
	snap := storage.NewSnapshot(version, wf, w.now())
	inserted, err := w.store.SaveSnapshot(ctx, snap)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", month, err)
	}
	if !inserted {
		w.logger.DebugContext(ctx, "snapshot already stored", log.FieldMonth, month.String(), log.FieldVersion, version)
		return nil
	}
	if w.recorder != nil {
		w.recorder.SnapshotStored(month, snap.OverAllocated)
	}
	if snap.OverAllocated > 0 {
		w.logger.WarnContext(ctx, "budget has over-allocated envelopes", log.NewFields().
			WithOperation(log.OpSnapshot).
			WithMonth(month.String()).
			With(log.FieldCount, snap.OverAllocated).
			ToSlice()...)
	}
	return nil
}
