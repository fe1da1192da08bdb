package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary holds the headline figures of a range.
type Summary struct {
	TotalIncome        Money
	TotalExpenses      Money
	NetSavings         Money
	AvgMonthlyIncome   Money
	AvgMonthlyExpenses Money
	SavingsRate        float64 // percent of income saved; 0 without income
}

// Summarize totals the buckets and spreads them over monthsInRange.
func Summarize(buckets []Bucket, monthsInRange int) Summary {
	var s Summary
	for _, b := range buckets {
		s.TotalIncome = s.TotalIncome.Add(b.Income)
		s.TotalExpenses = s.TotalExpenses.Add(b.Expenses)
	}
	s.NetSavings = s.TotalIncome.Sub(s.TotalExpenses)
	months := max(monthsInRange, 1)
	s.AvgMonthlyIncome = s.TotalIncome.DivRound(months)
	s.AvgMonthlyExpenses = s.TotalExpenses.DivRound(months)
	s.SavingsRate = SavingsRate(s.NetSavings, s.TotalIncome)
	return s
}

// SavingsRate returns net/income as a percentage rounded to two decimals,
// or 0 when there is no income.
func SavingsRate(net, income Money) float64 {
	if income.Cents <= 0 {
		return 0
	}
	rate := decimal.NewFromInt(net.Cents).
		Div(decimal.NewFromInt(income.Cents)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return rate.InexactFloat64()
}

// OverallSince is the first month covered by the overall averages.
var OverallSince = MonthKey{Year: 2025, Month: time.January}

// Averages are whole-history monthly figures, independent of the view.
type Averages struct {
	Since              MonthKey
	MonthsActive       int
	TotalIncome        Money
	TotalExpenses      Money
	AvgMonthlyIncome   Money
	AvgMonthlyExpenses Money
}

// Net is the average monthly surplus.
func (a Averages) Net() Money { return a.AvgMonthlyIncome.Sub(a.AvgMonthlyExpenses) }

// OverallAverages spreads everything dated on or after since over the
// months from since through now, both inclusive.
func OverallAverages(history []Transaction, since MonthKey, now time.Time) Averages {
	a := Averages{Since: since, MonthsActive: since.MonthsUntil(MonthOf(now))}
	start := since.First()
	for _, tx := range history {
		if !tx.HasDate() || tx.Date.Before(start) {
			continue
		}
		if tx.IsIncome() {
			a.TotalIncome = a.TotalIncome.Add(tx.Amount)
		} else {
			a.TotalExpenses = a.TotalExpenses.Add(tx.Amount)
		}
	}
	a.AvgMonthlyIncome = a.TotalIncome.DivRound(a.MonthsActive)
	a.AvgMonthlyExpenses = a.TotalExpenses.DivRound(a.MonthsActive)
	return a
}
