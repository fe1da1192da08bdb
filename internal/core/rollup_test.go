package core

import (
	"fmt"
	"testing"
	"time"
)

// busyMonth returns n expense transactions of 10.00 each in the given month.
func busyMonth(y int, m time.Month, n int, category string) []Transaction {
	out := make([]Transaction, n)
	for i := range out {
		out[i] = expense(day(y, m, 1+i%28), 1000, category)
	}
	return out
}

func TestActiveMonths(t *testing.T) {
	var history []Transaction
	history = append(history, busyMonth(2025, time.January, 10, "A")...)
	history = append(history, busyMonth(2025, time.February, 9, "A")...)
	// income never counts toward activity
	for i := 0; i < 5; i++ {
		history = append(history, income(day(2025, time.February, 2), 100))
	}
	history = append(history, busyMonth(2025, time.March, 12, "B")...)

	if got := ActiveMonths(history); got != 2 {
		t.Fatalf("ActiveMonths = %d, want 2", got)
	}
}

func TestActiveMonths_MonotonicWhenAddingBusyMonths(t *testing.T) {
	var history []Transaction
	prev := ActiveMonths(history)
	for m := time.January; m <= time.December; m++ {
		history = append(history, busyMonth(2024, m, 10+int(m)%3, "A")...)
		history = append(history, busyMonth(2023, m, 3, "B")...)
		got := ActiveMonths(history)
		if got < prev {
			t.Fatalf("active months decreased from %d to %d after adding %s", prev, got, m)
		}
		prev = got
	}
	if prev != 12 {
		t.Fatalf("final active months = %d, want 12", prev)
	}
}

func TestRollupCategories_PartitionsExpenses(t *testing.T) {
	inRange := []Transaction{
		expense(day(2025, time.January, 1), 12000, "GROCERIES"),
		expense(day(2025, time.January, 2), 8000, "GROCERIES"),
		expense(day(2025, time.January, 3), 4500, "FUEL"),
		expense(day(2025, time.January, 4), 4500, "CAFE"),
		income(day(2025, time.January, 5), 700000),
	}
	ranked := RollupCategories(inRange, inRange, 1)

	var sum int64
	for _, ct := range ranked {
		sum += ct.Total.Cents
	}
	if sum != 29000 {
		t.Fatalf("category totals sum to %d, want 29000", sum)
	}
	if ranked[0].Category != "GROCERIES" || ranked[0].TransactionCount != 2 {
		t.Errorf("first = %+v", ranked[0])
	}
	// ties broken by name
	if ranked[1].Category != "CAFE" || ranked[2].Category != "FUEL" {
		t.Errorf("tie order = %s, %s", ranked[1].Category, ranked[2].Category)
	}
}

func TestRollupCategories_SharedDenominator(t *testing.T) {
	var history []Transaction
	history = append(history, busyMonth(2025, time.January, 10, "GROCERIES")...) // 100.00
	history = append(history, busyMonth(2025, time.February, 10, "GROCERIES")...)
	history = append(history, expense(day(2025, time.February, 20), 6000, "GIFTS"))

	inRange := []Transaction{history[len(history)-1], history[10]}
	ranked := RollupCategories(inRange, history, 6)

	for _, ct := range ranked {
		if ct.ActiveMonthsCount != 2 {
			t.Errorf("%s active months = %d, want 2", ct.Category, ct.ActiveMonthsCount)
		}
	}
	got := map[string]int64{}
	for _, ct := range ranked {
		got[ct.Category] = ct.AveragePerMonth.Cents
	}
	// GIFTS only appeared once but is still divided by the shared count.
	if got["GIFTS"] != 3000 {
		t.Errorf("GIFTS average = %d, want 3000", got["GIFTS"])
	}
	if got["GROCERIES"] != 10000 {
		t.Errorf("GROCERIES average = %d, want 10000", got["GROCERIES"])
	}
}

func TestRollupCategories_FallbackWithoutActiveMonths(t *testing.T) {
	inRange := []Transaction{expense(day(2025, time.January, 1), 12000, "FUEL")}

	tests := []struct {
		months int
		want   int64
	}{
		{1, 12000}, // single-month view uses the range total
		{6, 2000},
		{12, 1000},
		{0, 12000},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("months_%d", tt.months), func(t *testing.T) {
			ranked := RollupCategories(inRange, inRange, tt.months)
			if ranked[0].ActiveMonthsCount != 0 {
				t.Fatalf("unexpected active months %d", ranked[0].ActiveMonthsCount)
			}
			if ranked[0].AveragePerMonth.Cents != tt.want {
				t.Errorf("average = %d, want %d", ranked[0].AveragePerMonth.Cents, tt.want)
			}
		})
	}
}

func TestTopCategories_DropsRemainder(t *testing.T) {
	var inRange []Transaction
	for i := 0; i < 11; i++ {
		inRange = append(inRange, expense(day(2025, time.January, 1), int64(100*(i+1)), fmt.Sprintf("C%02d", i)))
	}
	ranked := RollupCategories(inRange, inRange, 1)
	top := TopCategories(ranked, TopCategoriesLimit)
	if len(top) != 8 {
		t.Fatalf("top has %d entries", len(top))
	}
	if top[0].Category != "C10" || top[7].Category != "C03" {
		t.Errorf("unexpected top: first=%s last=%s", top[0].Category, top[7].Category)
	}
	for _, ct := range top {
		if ct.Category == "Other" {
			t.Fatalf("remainder must not be merged into Other")
		}
	}
	if len(TopCategories(ranked[:3], TopCategoriesLimit)) != 3 {
		t.Errorf("short list should be returned whole")
	}
}
