package core

import (
	"fmt"
	"sort"
	"strings"
)

const (
	SortByDate   SortField = "date"
	SortByAmount SortField = "amount"
	SortByTitle  SortField = "title"
)

type (
	SortField string

	// ListOptions drive the flat transaction list.
	ListOptions struct {
		Search    string // case-insensitive match on title, category or bank
		Type      string // "all", "income" or "expense"; empty means all
		SortBy    SortField
		Ascending bool
	}

	// MonthGroup is one month of the grouped transaction list.
	MonthGroup struct {
		Month        MonthKey
		Income       Money
		Expenses     Money
		Transactions []Transaction
	}
)

// ParseSortField accepts date, amount or title; empty means date.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return SortByDate, nil
	case SortByDate, SortByAmount, SortByTitle:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

// ListTransactions filters and sorts a copy of txs. The default order is
// newest first.
func ListTransactions(txs []Transaction, opts ListOptions) []Transaction {
	search := strings.ToLower(strings.TrimSpace(opts.Search))
	wantType := strings.ToLower(strings.TrimSpace(opts.Type))

	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if wantType != "" && wantType != "all" && string(tx.Type) != wantType {
			continue
		}
		if search != "" && !matches(tx, search) {
			continue
		}
		out = append(out, tx)
	}

	less := lessFunc(opts.SortBy)
	sort.SliceStable(out, func(i, j int) bool {
		if opts.Ascending {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return out
}

func matches(tx Transaction, needle string) bool {
	return strings.Contains(strings.ToLower(tx.Title), needle) ||
		strings.Contains(strings.ToLower(tx.Category), needle) ||
		strings.Contains(strings.ToLower(tx.Bank), needle)
}

func lessFunc(field SortField) func(a, b Transaction) bool {
	switch field {
	case SortByAmount:
		return func(a, b Transaction) bool { return a.Amount.Cents < b.Amount.Cents }
	case SortByTitle:
		return func(a, b Transaction) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		return func(a, b Transaction) bool { return a.Date.Before(b.Date) }
	}
}

// GroupByMonth groups dated transactions by month, newest month first,
// keeping the order of txs inside each group.
func GroupByMonth(txs []Transaction) []MonthGroup {
	byMonth := make(map[MonthKey]*MonthGroup)
	for _, tx := range txs {
		if !tx.HasDate() {
			continue
		}
		k := tx.Month()
		g, ok := byMonth[k]
		if !ok {
			g = &MonthGroup{Month: k}
			byMonth[k] = g
		}
		if tx.IsIncome() {
			g.Income = g.Income.Add(tx.Amount)
		} else {
			g.Expenses = g.Expenses.Add(tx.Amount)
		}
		g.Transactions = append(g.Transactions, tx)
	}

	out := make([]MonthGroup, 0, len(byMonth))
	for _, g := range byMonth {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Month.Before(out[i].Month) })
	return out
}
