package core

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func expense(date time.Time, cents int64, category string) Transaction {
	return Transaction{Date: date, Type: Expense, Amount: Money{Cents: cents}, Category: category, Title: category}
}

func income(date time.Time, cents int64) Transaction {
	return Transaction{Date: date, Type: Income, Amount: Money{Cents: cents}, Category: "Salary", Title: "Salary"}
}

func TestEmptyBuckets_DayViewLeapYears(t *testing.T) {
	tests := []struct {
		month MonthKey
		want  int
	}{
		{MonthKey{2024, time.February}, 29},
		{MonthKey{2025, time.February}, 28},
		{MonthKey{1900, time.February}, 28},
		{MonthKey{2000, time.February}, 29},
		{MonthKey{2025, time.April}, 30},
		{MonthKey{2025, time.December}, 31},
	}
	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			buckets := EmptyBuckets(Filters{Mode: ViewDay, Month: tt.month})
			if len(buckets) != tt.want {
				t.Fatalf("got %d buckets, want %d", len(buckets), tt.want)
			}
			if buckets[0].Key != tt.month.String()+"-01" {
				t.Errorf("first key = %q", buckets[0].Key)
			}
			for i := 1; i < len(buckets); i++ {
				if buckets[i-1].Key >= buckets[i].Key {
					t.Fatalf("keys not ascending: %q then %q", buckets[i-1].Key, buckets[i].Key)
				}
			}
		})
	}
}

func TestBuildBuckets_DayViewZeroFill(t *testing.T) {
	f := Filters{Mode: ViewDay, Month: MonthKey{2025, time.March}}.Normalized()
	history := []Transaction{expense(day(2025, time.February, 10), 500, "FUEL")}

	buckets, inRange := BuildBuckets(history, f)
	if len(buckets) != 31 {
		t.Fatalf("got %d buckets, want 31", len(buckets))
	}
	for _, b := range buckets {
		if !b.Income.IsZero() || !b.Expenses.IsZero() || len(b.Transactions) != 0 {
			t.Fatalf("bucket %s not zero: %+v", b.Key, b)
		}
	}
	if len(inRange) != 0 {
		t.Fatalf("out-of-range transaction leaked: %v", inRange)
	}
}

func TestBuildBuckets_MonthViewAcrossYearBoundary(t *testing.T) {
	f := Filters{Mode: ViewMonth, Periods: 6, Now: day(2025, time.March, 15)}.Normalized()
	buckets := EmptyBuckets(f)

	wantKeys := []string{"2024-10", "2024-11", "2024-12", "2025-01", "2025-02", "2025-03"}
	wantLabels := []string{"Oct 24", "Nov 24", "Dec 24", "Jan 25", "Feb 25", "Mar 25"}
	if len(buckets) != len(wantKeys) {
		t.Fatalf("got %d buckets", len(buckets))
	}
	for i, b := range buckets {
		if b.Key != wantKeys[i] || b.Label != wantLabels[i] {
			t.Errorf("bucket %d = %s/%s, want %s/%s", i, b.Key, b.Label, wantKeys[i], wantLabels[i])
		}
	}
}

func TestBuildBuckets_YearView(t *testing.T) {
	f := Filters{Mode: ViewYear, Periods: 3, Now: day(2025, time.June, 1)}.Normalized()
	history := []Transaction{
		expense(day(2022, time.December, 31), 100, "A"),
		expense(day(2023, time.January, 1), 200, "A"),
		income(day(2025, time.May, 1), 1000),
	}
	buckets, inRange := BuildBuckets(history, f)
	if len(buckets) != 3 || buckets[0].Key != "2023" || buckets[2].Key != "2025" {
		t.Fatalf("unexpected buckets: %+v", buckets)
	}
	if buckets[0].Expenses.Cents != 200 || buckets[2].Income.Cents != 1000 {
		t.Errorf("unexpected sums: %+v", buckets)
	}
	if len(inRange) != 2 {
		t.Errorf("in range = %d, want 2", len(inRange))
	}
}

func TestBuildBuckets_SumEqualsInRangeTotal(t *testing.T) {
	history := []Transaction{
		income(day(2025, time.January, 5), 500000),
		expense(day(2025, time.January, 10), 12000, "GROCERIES"),
		expense(day(2025, time.February, 3), 8000, "GROCERIES"),
		expense(day(2024, time.June, 3), 999, "OLD"),
		{Title: "undated", Type: Expense, Amount: Money{Cents: 777}},
		expense(day(2025, time.February, 28), 1, "FUEL"),
	}
	modes := []Filters{
		{Mode: ViewDay, Month: MonthKey{2025, time.February}},
		{Mode: ViewMonth, Periods: 6, Now: day(2025, time.February, 28)},
		{Mode: ViewMonth, Periods: 12, Now: day(2025, time.February, 28)},
		{Mode: ViewYear, Periods: 1, Now: day(2025, time.February, 28)},
	}
	for _, f := range modes {
		t.Run(string(f.Mode), func(t *testing.T) {
			f = f.Normalized()
			buckets, inRange := BuildBuckets(history, f)
			var bucketSum, txSum int64
			for _, b := range buckets {
				bucketSum += b.Income.Cents + b.Expenses.Cents
			}
			for _, tx := range inRange {
				txSum += tx.Amount.Cents
			}
			if bucketSum != txSum {
				t.Fatalf("bucket sum %d != in-range sum %d", bucketSum, txSum)
			}
		})
	}
}

func TestFilters_Validate(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		wantErr error
	}{
		{"default month view", Filters{}, nil},
		{"twelve months", Filters{Mode: ViewMonth, Periods: 12}, nil},
		{"negative periods", Filters{Mode: ViewMonth, Periods: -1}, ErrInvalidPeriods},
		{"too many years", Filters{Mode: ViewYear, Periods: MaxPeriods + 1}, ErrInvalidPeriods},
		{"unknown mode", Filters{Mode: "week"}, ErrInvalidViewMode},
		{"bad anchor month", Filters{Mode: ViewDay, Month: MonthKey{2025, 13}}, ErrInvalidMonth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filters.Normalized().Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
