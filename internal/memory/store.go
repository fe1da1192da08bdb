// Package memory is an in-process backend seeded from TOML files. It backs
// local runs and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"mifi/internal/budget"
	"mifi/internal/categories"
	"mifi/internal/core"
	"mifi/internal/ports"
)

// Seed file names inside the data directory.
const (
	CategoriesFile   = "categories.toml"
	TemplateFile     = "template.toml"
	TransactionsFile = "transactions.toml"
)

type storedBudget struct {
	payload budget.Payload
	version int
}

// Store keeps everything in memory. Budgets are stored whole, scratch
// included.
type Store struct {
	mu       sync.RWMutex
	txs      []core.RawTransaction
	ids      map[string]struct{}
	cats     []categories.Category
	budgets  map[core.MonthKey]storedBudget
	template *budget.Payload
}

// New returns an empty store with the given categories, or the built-in
// ones when cats is empty.
func New(cats []categories.Category) *Store {
	if len(cats) == 0 {
		cats = categories.DefaultList()
	}
	return &Store{
		ids:     make(map[string]struct{}),
		cats:    append([]categories.Category(nil), cats...),
		budgets: make(map[core.MonthKey]storedBudget),
	}
}

type (
	categoriesSeed struct {
		Categories []categories.Category `toml:"categories"`
	}

	transactionSeed struct {
		ID          string     `toml:"id"`
		Date        string     `toml:"date"`
		Title       string     `toml:"title"`
		Description string     `toml:"description"`
		Type        string     `toml:"type"`
		Amount      core.Money `toml:"amount"`
		Category    string     `toml:"category"`
		Bank        string     `toml:"bank"`
	}

	transactionsSeed struct {
		Transactions []transactionSeed `toml:"transactions"`
	}
)

// NewFromFiles seeds a store from base. Missing files are fine; malformed
// ones are an error.
func NewFromFiles(base string) (*Store, error) {
	var cs categoriesSeed
	if _, err := decodeIfExists(filepath.Join(base, CategoriesFile), &cs); err != nil {
		return nil, err
	}
	if len(cs.Categories) > 0 {
		if _, err := categories.NewDirectory(cs.Categories); err != nil {
			return nil, fmt.Errorf("%s: %w", CategoriesFile, err)
		}
	}
	s := New(cs.Categories)

	var tpl budget.Payload
	found, err := decodeIfExists(filepath.Join(base, TemplateFile), &tpl)
	if err != nil {
		return nil, err
	}
	if found {
		if err := tpl.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", TemplateFile, err)
		}
		tpl = tpl.AsTemplate()
		s.template = &tpl
	}

	var ts transactionsSeed
	if _, err := decodeIfExists(filepath.Join(base, TransactionsFile), &ts); err != nil {
		return nil, err
	}
	raws := make([]core.RawTransaction, 0, len(ts.Transactions))
	for i, t := range ts.Transactions {
		id := t.ID
		if id == "" {
			id = fmt.Sprintf("seed-%d", i+1)
		}
		raws = append(raws, core.RawTransaction{
			ID:          core.FlexString(id),
			Date:        core.ParseFlexTime(t.Date),
			Title:       core.FlexString(t.Title),
			Description: core.FlexString(t.Description),
			Type:        core.FlexString(t.Type),
			Amount:      core.Amount(t.Amount),
			Category:    core.FlexString(t.Category),
			Bank:        core.FlexString(t.Bank),
		})
	}
	if _, _, err := s.AppendTransactions(context.Background(), raws); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeIfExists(path string, v any) (bool, error) {
	_, err := toml.DecodeFile(path, v)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("read seed %s: %w", path, err)
	}
}

func (s *Store) ListTransactions(_ context.Context) ([]core.RawTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.RawTransaction(nil), s.txs...), nil
}

// AppendTransactions stores rows whose id is new. Rows without an id are
// always stored.
func (s *Store) AppendTransactions(_ context.Context, txs []core.RawTransaction) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var inserted, skipped int
	for _, tx := range txs {
		id := strings.TrimSpace(string(tx.ID))
		if id != "" {
			if _, dup := s.ids[id]; dup {
				skipped++
				continue
			}
			s.ids[id] = struct{}{}
		}
		s.txs = append(s.txs, tx)
		inserted++
	}
	return inserted, skipped, nil
}

func (s *Store) ListCategories(_ context.Context) ([]categories.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]categories.Category(nil), s.cats...), nil
}

func (s *Store) GetBudget(_ context.Context, month core.MonthKey) (budget.Payload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[month]
	if !ok {
		return budget.Payload{}, fmt.Errorf("budget %s: %w", month, ports.ErrNotFound)
	}
	return b.payload.Clone(), nil
}

func (s *Store) GetDefaultTemplate(_ context.Context) (budget.Payload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.template == nil {
		return budget.Payload{}, fmt.Errorf("default template: %w", ports.ErrNotFound)
	}
	return s.template.Clone(), nil
}

// SaveBudget replaces the month's budget and bumps its version.
func (s *Store) SaveBudget(_ context.Context, month core.MonthKey, p budget.Payload) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.budgets[month]
	s.budgets[month] = storedBudget{payload: p.Clone(), version: prev.version + 1}
	return nil
}

func (s *Store) SetDefaultTemplate(_ context.Context, p budget.Payload) error {
	if err := p.Validate(); err != nil {
		return err
	}
	tpl := p.AsTemplate().Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.template = &tpl
	return nil
}

// Version returns how many times month was saved; zero if never.
func (s *Store) Version(month core.MonthKey) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.budgets[month].version
}

// WriteTemplateFile stores p as a template seed file under base.
func WriteTemplateFile(base string, p budget.Payload) error {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(base, TemplateFile))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(p.AsTemplate()); err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	return f.Close()
}
