package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

const (
	DefaultCategory = "Other"
	DefaultBank     = "Unknown"
	UnknownTitle    = "Unknown Transaction"

	// TitleSentinel marks metadata the bank appends to a transaction title.
	TitleSentinel = "DATA TRANSAKCJI:"
)

type (
	TxType string

	// Transaction is the canonical, read-only record every view is built from.
	Transaction struct {
		ID       string
		Date     time.Time // zero when the source carried no usable date
		Title    string
		Type     TxType
		Amount   Money // never negative; the sign is implied by Type
		Category string
		Bank     string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidViewMode = errors.New("invalid view mode")
	ErrInvalidPeriods  = errors.New("invalid number of periods")
)

// ParseTxType collapses any source spelling to the two-valued enum:
// only "income" (any case) is income.
func ParseTxType(s string) TxType {
	if strings.EqualFold(strings.TrimSpace(s), string(Income)) {
		return Income
	}
	return Expense
}

func (t Transaction) IsIncome() bool { return t.Type == Income }

// HasDate reports whether the transaction can be placed in a time bucket.
func (t Transaction) HasDate() bool { return !t.Date.IsZero() }

// Month returns the calendar month of the transaction date.
func (t Transaction) Month() MonthKey { return MonthOf(t.Date) }
