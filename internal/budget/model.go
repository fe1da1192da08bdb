// Package budget is the monthly allocation model: incomes flow through fixed
// transfers into budgetable pools, pools fund envelopes and envelopes are
// split into sub-budgets.
package budget

import (
	"errors"
	"strings"

	"mifi/internal/core"
)

// Pool names. Envelopes can only draw from these three.
const (
	PoolLife      = "Życie"
	PoolIrregular = "Wydatki nieregularne"
	PoolRemaining = "Pozostałe"
)

// Sources lists the pools an envelope may draw from, in display order.
func Sources() []string {
	return []string{PoolLife, PoolIrregular, PoolRemaining}
}

// IsSource reports whether name is one of Sources.
func IsSource(name string) bool {
	switch name {
	case PoolLife, PoolIrregular, PoolRemaining:
		return true
	}
	return false
}

var (
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrUnknownSource  = errors.New("unknown envelope source")
	ErrNotFound       = errors.New("item not found")
	ErrDuplicate      = errors.New("item already exists")
	ErrEmptyName      = errors.New("name is required")
)

type (
	Income struct {
		Source string     `json:"source" toml:"source"`
		Amount core.Money `json:"amount" toml:"amount"`
	}

	// Transfer is a fixed monthly payment. Budgetable transfers also open a
	// pool of the same name; Custom marks items the user added for this month.
	Transfer struct {
		Name        string     `json:"name" toml:"name"`
		Description string     `json:"description,omitempty" toml:"description"`
		Bank        string     `json:"bank,omitempty" toml:"bank"`
		Amount      core.Money `json:"amount" toml:"amount"`
		Budgetable  bool       `json:"budgetable" toml:"budgetable"`
		Custom      bool       `json:"custom,omitempty" toml:"custom"`
	}

	// Split is a sub-budget inside an envelope.
	Split struct {
		Name   string     `json:"name" toml:"name"`
		Amount core.Money `json:"amount" toml:"amount"`
	}

	// Envelope is a spending limit for one category, funded by Source.
	Envelope struct {
		CategoryID string     `json:"categoryId" toml:"category_id"`
		Name       string     `json:"name" toml:"name"`
		Source     string     `json:"source" toml:"source"`
		Limit      core.Money `json:"limit" toml:"limit"`
		Splits     []Split    `json:"splits,omitempty" toml:"splits"`
	}

	// Month is the whole plan for one calendar month.
	Month struct {
		Key       core.MonthKey
		Incomes   []Income
		Transfers []Transfer
		Envelopes []Envelope
	}
)

// Clone returns a deep copy; setters never share slices with their input.
func (m Month) Clone() Month {
	out := Month{Key: m.Key}
	out.Incomes = append([]Income(nil), m.Incomes...)
	out.Transfers = append([]Transfer(nil), m.Transfers...)
	out.Envelopes = make([]Envelope, len(m.Envelopes))
	for i, e := range m.Envelopes {
		e.Splits = append([]Split(nil), e.Splits...)
		out.Envelopes[i] = e
	}
	return out
}

// Budgeted is the sum of the envelope's splits.
func (e Envelope) Budgeted() core.Money {
	var total core.Money
	for _, s := range e.Splits {
		total = total.Add(s.Amount)
	}
	return total
}

func (m Month) incomeIndex(source string) int {
	for i, in := range m.Incomes {
		if strings.EqualFold(in.Source, source) {
			return i
		}
	}
	return -1
}

func (m Month) transferIndex(name string) int {
	for i, t := range m.Transfers {
		if strings.EqualFold(t.Name, name) {
			return i
		}
	}
	return -1
}

func (m Month) envelopeIndex(name string) int {
	for i, e := range m.Envelopes {
		if strings.EqualFold(e.Name, name) {
			return i
		}
	}
	return -1
}

// Transfer returns the transfer with the given name.
func (m Month) Transfer(name string) (Transfer, bool) {
	if i := m.transferIndex(name); i >= 0 {
		return m.Transfers[i], true
	}
	return Transfer{}, false
}

// Envelope returns the envelope with the given category name.
func (m Month) Envelope(name string) (Envelope, bool) {
	if i := m.envelopeIndex(name); i >= 0 {
		e := m.Envelopes[i]
		e.Splits = append([]Split(nil), e.Splits...)
		return e, true
	}
	return Envelope{}, false
}
