package core

import "sort"

const (
	// TopCategoriesLimit bounds the ranked list used by pie charts.
	TopCategoriesLimit = 8
	// ActiveMonthThreshold is the number of expense transactions that makes a month active.
	ActiveMonthThreshold = 10
)

// CategoryTotal is one category's share of the expenses in a range.
type CategoryTotal struct {
	Category          string
	Total             Money
	AveragePerMonth   Money
	TransactionCount  int
	ActiveMonthsCount int
}

// ActiveMonths counts, over the whole history, the months holding at
// least ActiveMonthThreshold expense transactions. All categories share
// this one denominator, so a category with sparse history is not shown an
// inflated average.
func ActiveMonths(history []Transaction) int {
	perMonth := make(map[MonthKey]int)
	for _, tx := range history {
		if tx.IsIncome() || !tx.HasDate() {
			continue
		}
		perMonth[tx.Month()]++
	}
	active := 0
	for _, n := range perMonth {
		if n >= ActiveMonthThreshold {
			active++
		}
	}
	return active
}

// RollupCategories sums the expenses of inRange per category and ranks
// them by total, largest first. Averages divide the all-time category
// total from history by the shared active-month count; with no active
// months they fall back to the range total spread over monthsInRange.
func RollupCategories(inRange, history []Transaction, monthsInRange int) []CategoryTotal {
	byCategory := make(map[string]*CategoryTotal)
	for _, tx := range inRange {
		if tx.IsIncome() {
			continue
		}
		ct, ok := byCategory[tx.Category]
		if !ok {
			ct = &CategoryTotal{Category: tx.Category}
			byCategory[tx.Category] = ct
		}
		ct.Total = ct.Total.Add(tx.Amount)
		ct.TransactionCount++
	}

	active := ActiveMonths(history)
	allTime := make(map[string]Money)
	if active > 0 {
		for _, tx := range history {
			if tx.IsIncome() {
				continue
			}
			allTime[tx.Category] = allTime[tx.Category].Add(tx.Amount)
		}
	}

	out := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		ct.ActiveMonthsCount = active
		if active > 0 {
			ct.AveragePerMonth = allTime[ct.Category].DivRound(active)
		} else {
			ct.AveragePerMonth = ct.Total.DivRound(max(monthsInRange, 1))
		}
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopCategories keeps the n largest totals. The rest are dropped, not merged.
func TopCategories(ranked []CategoryTotal, n int) []CategoryTotal {
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return append([]CategoryTotal(nil), ranked...)
}
