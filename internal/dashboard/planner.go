package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mifi/internal/budget"
	"mifi/internal/categories"
	"mifi/internal/core"
	"mifi/internal/log"
	"mifi/internal/ports"
)

// PlanStatus describes the month currently selected in the planner.
type PlanStatus int

const (
	StatusIdle PlanStatus = iota
	StatusLoading
	StatusReady
	// StatusNotFound means the month has no budget yet. The caller picks
	// StartFromTemplate or StartEmpty.
	StatusNotFound
	StatusFailed
)

func (s PlanStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusNotFound:
		return "not_found"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("PlanStatus(%d)", int(s))
}

// ErrNoPlan is returned by operations that need a ready month.
var ErrNoPlan = errors.New("no budget ready for editing")

// Planner is the single owner of the budget being edited. Fetches run
// without holding the lock; a response for a month that is no longer
// selected is discarded.
type Planner struct {
	budgets  ports.BudgetSource
	dir      func() *categories.Directory
	policy   budget.FixedPolicy
	logger   *log.Logger
	observer Observer

	mu       sync.Mutex
	selected core.MonthKey
	seq      uint64
	status   PlanStatus
	month    budget.Month
	dirty    bool
	err      error
}

type PlannerOption func(*Planner)

// WithDirectory makes the planner resolve category names through dir, e.g.
// Loader.Directory so names follow the loaded directory.
func WithDirectory(dir func() *categories.Directory) PlannerOption {
	return func(p *Planner) { p.dir = dir }
}

func WithPolicy(policy budget.FixedPolicy) PlannerOption {
	return func(p *Planner) { p.policy = policy }
}

func WithPlannerLogger(l *log.Logger) PlannerOption {
	return func(p *Planner) { p.logger = log.OrDefault(l).WithComponent(log.ComponentPlanner) }
}

func WithPlannerObserver(o Observer) PlannerOption {
	return func(p *Planner) { p.observer = o }
}

func NewPlanner(budgets ports.BudgetSource, opts ...PlannerOption) *Planner {
	p := &Planner{
		budgets: budgets,
		dir:     categories.Default,
		policy:  budget.FixedAllTransfers,
		logger:  log.Default().WithComponent(log.ComponentPlanner),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Select switches to month, dropping any unsaved edits, and fetches its
// budget. A missing budget yields StatusNotFound and no error.
func (p *Planner) Select(ctx context.Context, month core.MonthKey) (PlanStatus, error) {
	p.mu.Lock()
	if p.dirty {
		p.logger.InfoContext(ctx, "discarding unsaved budget edits", log.FieldMonth, p.selected.String())
	}
	p.seq++
	seq := p.seq
	p.selected = month
	p.status, p.month, p.dirty, p.err = StatusLoading, budget.Month{}, false, nil
	p.mu.Unlock()

	start := time.Now()
	payload, err := p.budgets.GetBudget(ctx, month)
	p.observe(SourceBudget, start, err)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq != seq {
		return p.status, ErrStale
	}
	switch {
	case errors.Is(err, ports.ErrNotFound):
		p.status = StatusNotFound
		return p.status, nil
	case err != nil:
		p.status, p.err = StatusFailed, err
		p.logger.ErrorContext(ctx, "budget load failed", log.FieldMonth, month.String(), log.FieldError, err)
		return p.status, fmt.Errorf("load budget %s: %w", month, err)
	}
	p.month = budget.FromPayload(month, payload, p.dir())
	p.status = StatusReady
	return p.status, nil
}

// StartFromTemplate fills a month that has no budget from the stored
// template, or from the built-in one when none is stored.
func (p *Planner) StartFromTemplate(ctx context.Context) (budget.Waterfall, error) {
	p.mu.Lock()
	if p.status != StatusNotFound {
		p.mu.Unlock()
		return budget.Waterfall{}, fmt.Errorf("start from template in state %s: %w", p.status, ErrNoPlan)
	}
	seq, month := p.seq, p.selected
	p.mu.Unlock()

	start := time.Now()
	payload, err := p.budgets.GetDefaultTemplate(ctx)
	p.observe(SourceTemplate, start, err)

	var m budget.Month
	switch {
	case errors.Is(err, ports.ErrNotFound):
		m = budget.DefaultTemplate(month, p.dir())
	case err != nil:
		return budget.Waterfall{}, fmt.Errorf("load template: %w", err)
	default:
		m = budget.FromPayload(month, payload, p.dir())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq != seq || p.status != StatusNotFound {
		return budget.Waterfall{}, ErrStale
	}
	p.month, p.status, p.dirty = m, StatusReady, true
	return budget.ComputeWaterfall(p.month, p.policy), nil
}

// StartEmpty fills a month that has no budget with zero amounts.
func (p *Planner) StartEmpty() (budget.Waterfall, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusNotFound {
		return budget.Waterfall{}, fmt.Errorf("start empty in state %s: %w", p.status, ErrNoPlan)
	}
	p.month, p.status, p.dirty = budget.Empty(p.selected, p.dir()), StatusReady, true
	return budget.ComputeWaterfall(p.month, p.policy), nil
}

// Edit applies one setter and returns the recomputed waterfall. A failing
// setter leaves the month unchanged.
func (p *Planner) Edit(fn func(budget.Month) (budget.Month, error)) (budget.Waterfall, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusReady {
		return budget.Waterfall{}, ErrNoPlan
	}
	next, err := fn(p.month)
	if err != nil {
		return budget.ComputeWaterfall(p.month, p.policy), err
	}
	p.month, p.dirty = next, true
	return budget.ComputeWaterfall(p.month, p.policy), nil
}

// Waterfall recomputes the view of the current month.
func (p *Planner) Waterfall() (budget.Waterfall, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusReady {
		return budget.Waterfall{}, ErrNoPlan
	}
	return budget.ComputeWaterfall(p.month, p.policy), nil
}

// Month returns a copy of the month being edited.
func (p *Planner) Month() (budget.Month, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusReady {
		return budget.Month{}, false
	}
	return p.month.Clone(), true
}

func (p *Planner) Status() (core.MonthKey, PlanStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected, p.status, p.err
}

func (p *Planner) Dirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty
}

// Save persists the current month. It is never called implicitly and is not
// retried; on failure the model stays as it was so the caller can try again.
// Envelopes that could not be mapped to a category id are returned.
func (p *Planner) Save(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	if p.status != StatusReady {
		p.mu.Unlock()
		return nil, ErrNoPlan
	}
	seq, month := p.seq, p.selected
	payload, unmapped := budget.BuildPayload(p.month, p.dir())
	p.mu.Unlock()

	for _, name := range unmapped {
		p.logger.WarnContext(ctx, "envelope has no category id and was left out", log.FieldMonth, month.String(), "envelope", name)
	}
	if err := p.budgets.SaveBudget(ctx, month, payload); err != nil {
		p.logger.ErrorContext(ctx, "budget save failed", log.FieldMonth, month.String(), log.FieldError, err)
		return unmapped, fmt.Errorf("save budget %s: %w", month, err)
	}

	p.mu.Lock()
	if p.seq == seq {
		p.dirty = false
	}
	p.mu.Unlock()
	p.logger.InfoContext(ctx, "budget saved", log.FieldMonth, month.String())
	return unmapped, nil
}

// SaveAsTemplate stores the current month as the default template.
func (p *Planner) SaveAsTemplate(ctx context.Context) error {
	p.mu.Lock()
	if p.status != StatusReady {
		p.mu.Unlock()
		return ErrNoPlan
	}
	payload, _ := budget.BuildPayload(p.month, p.dir())
	p.mu.Unlock()

	if err := p.budgets.SetDefaultTemplate(ctx, payload.AsTemplate()); err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

func (p *Planner) observe(source string, start time.Time, err error) {
	if p.observer == nil {
		return
	}
	if errors.Is(err, ports.ErrNotFound) {
		err = nil
	}
	p.observer.FetchFinished(source, time.Since(start), err)
}
