// Package dashboard drives the read side of mifi: it loads the transaction
// history and the category directory, computes derived views and runs the
// single-owner budget planner.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mifi/internal/cache"
	"mifi/internal/categories"
	"mifi/internal/core"
	"mifi/internal/log"
	"mifi/internal/ports"
)

// State is the load state of one source.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
	// StateFallback means the categories failed to load and the built-in
	// directory is in use.
	StateFallback
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	case StateFallback:
		return "fallback"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	// ErrNotLoaded is returned for views requested before a successful load.
	ErrNotLoaded = errors.New("transactions not loaded")
	// ErrStale is returned when a newer request superseded this one; its
	// result was discarded.
	ErrStale = errors.New("stale response discarded")
)

// Observer is told how each source fetch went.
type Observer interface {
	FetchFinished(source string, d time.Duration, err error)
}

const (
	SourceTransactions = "transactions"
	SourceCategories   = "categories"
	SourceBudget       = "budget"
	SourceTemplate     = "template"
)

// Status is a snapshot of the loader.
type Status struct {
	Transactions State
	Categories   State
	Generation   uint64
	Err          error // last transaction load error
}

// Loader owns the fetched history. Views are computed from it on demand
// and cached per filter set until the next load.
type Loader struct {
	txs      ports.TransactionSource
	cats     ports.CategorySource
	logger   *log.Logger
	observer Observer
	views    cache.Cache[string, core.DerivedViews]
	now      func() time.Time

	mu       sync.RWMutex
	gen      uint64
	txState  State
	catState State
	txErr    error
	history  []core.Transaction
	dir      *categories.Directory
}

type LoaderOption func(*Loader)

func WithLogger(l *log.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = log.OrDefault(l).WithComponent(log.ComponentDashboard) }
}

func WithObserver(o Observer) LoaderOption {
	return func(ld *Loader) { ld.observer = o }
}

// WithViewCache replaces the default cache of derived views.
func WithViewCache(c cache.Cache[string, core.DerivedViews]) LoaderOption {
	return func(ld *Loader) { ld.views = c }
}

// WithClock fixes "now" for the trailing windows.
func WithClock(now func() time.Time) LoaderOption {
	return func(ld *Loader) { ld.now = now }
}

func NewLoader(txs ports.TransactionSource, cats ports.CategorySource, opts ...LoaderOption) *Loader {
	l := &Loader{
		txs:    txs,
		cats:   cats,
		logger: log.Default().WithComponent(log.ComponentDashboard),
		views:  cache.NewLRUCache[string, core.DerivedViews](32, 10*time.Minute),
		now:    time.Now,
		dir:    categories.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches transactions and categories concurrently. A category
// failure installs the built-in directory; a transaction failure leaves the
// loader in StateFailed and is returned. If another Load started meanwhile
// the results are dropped and ErrStale is returned.
func (l *Loader) Load(ctx context.Context) error {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.txState, l.catState = StateLoading, StateLoading
	l.mu.Unlock()

	// The fetches are independent: neither failure cancels the other.
	var (
		raws   []core.RawTransaction
		list   []categories.Category
		txErr  error
		catErr error
		g      errgroup.Group
	)
	g.Go(func() error {
		start := time.Now()
		raws, txErr = l.txs.ListTransactions(ctx)
		l.observe(SourceTransactions, start, txErr)
		return nil
	})
	g.Go(func() error {
		if l.cats == nil {
			catErr = errors.New("no category source")
			return nil
		}
		start := time.Now()
		list, catErr = l.cats.ListCategories(ctx)
		l.observe(SourceCategories, start, catErr)
		return nil
	})
	_ = g.Wait()

	var dir *categories.Directory
	if catErr == nil {
		dir, catErr = categories.NewDirectory(list)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != gen {
		return ErrStale
	}

	if catErr != nil {
		l.logger.WarnContext(ctx, "category directory unavailable, using defaults", log.FieldError, catErr)
		l.dir, l.catState = categories.Default(), StateFallback
	} else {
		l.dir, l.catState = dir, StateLoaded
	}

	l.views.Purge()
	if txErr != nil {
		l.history, l.txState, l.txErr = nil, StateFailed, txErr
		l.logger.ErrorContext(ctx, "transaction load failed", log.FieldError, txErr)
		return fmt.Errorf("load transactions: %w", txErr)
	}
	l.history = core.NormalizeAll(raws)
	l.txState, l.txErr = StateLoaded, nil
	l.logger.InfoContext(ctx, "dashboard loaded",
		log.FieldCount, len(l.history),
		"categories", l.dir.Len(),
		"category_state", l.catState.String())
	return nil
}

func (l *Loader) observe(source string, start time.Time, err error) {
	if l.observer != nil {
		l.observer.FetchFinished(source, time.Since(start), err)
	}
}

func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Status{Transactions: l.txState, Categories: l.catState, Generation: l.gen, Err: l.txErr}
}

// Directory returns the category directory currently in use.
func (l *Loader) Directory() *categories.Directory {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dir
}

func (l *Loader) loaded() ([]core.Transaction, uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	switch l.txState {
	case StateLoaded:
		return l.history, l.gen, nil
	case StateFailed:
		return nil, 0, fmt.Errorf("%w: %v", ErrNotLoaded, l.txErr)
	default:
		return nil, 0, ErrNotLoaded
	}
}

// Views computes the derived views for f. The result is shared with the
// cache and must be treated as read-only.
func (l *Loader) Views(f core.Filters) (core.DerivedViews, error) {
	history, gen, err := l.loaded()
	if err != nil {
		return core.DerivedViews{}, err
	}
	if f.Now.IsZero() {
		f.Now = l.now()
	}
	f = f.Normalized()
	key := viewKey(gen, f)
	if v, ok := l.views.Get(key); ok {
		return v, nil
	}
	v, err := core.ComputeDerivedViews(history, f)
	if err != nil {
		return core.DerivedViews{}, err
	}
	l.views.Set(key, v)
	return v, nil
}

// Transactions returns the flat list filtered and sorted by opts.
func (l *Loader) Transactions(opts core.ListOptions) ([]core.Transaction, error) {
	history, _, err := l.loaded()
	if err != nil {
		return nil, err
	}
	return core.ListTransactions(history, opts), nil
}

func viewKey(gen uint64, f core.Filters) string {
	return fmt.Sprintf("%d|%s|%s|%d|%s", gen, f.Mode, f.Month, f.Periods, f.Now.Format("2006-01-02"))
}
