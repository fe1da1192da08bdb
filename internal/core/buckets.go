package core

import (
	"fmt"
	"strconv"
	"time"
)

const (
	ViewDay   ViewMode = "day"
	ViewMonth ViewMode = "month"
	ViewYear  ViewMode = "year"
)

const (
	DefaultTrailingMonths = 6
	DefaultTrailingYears  = 5
	MaxPeriods            = 120
)

type ViewMode string

// ParseViewMode accepts "day", "month" or "year".
func ParseViewMode(s string) (ViewMode, error) {
	switch m := ViewMode(s); m {
	case ViewDay, ViewMonth, ViewYear:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidViewMode, s)
}

// Bucket aggregates the transactions of one day, month or year.
type Bucket struct {
	Key          string // YYYY-MM-DD, YYYY-MM or YYYY
	Label        string
	Income       Money
	Expenses     Money
	Transactions []Transaction
}

// Net is income minus expenses.
func (b Bucket) Net() Money { return b.Income.Sub(b.Expenses) }

// Filters select the range a set of derived views covers.
type Filters struct {
	Mode ViewMode
	// Month anchors the day view. Zero means the month of Now.
	Month MonthKey
	// Periods is the number of trailing months in month view (the
	// dashboard offers 6 and 12), or trailing years in year view.
	Periods int
	// Now anchors the trailing windows. Zero means time.Now().
	Now time.Time
}

// Normalized fills defaults without validating.
func (f Filters) Normalized() Filters {
	if f.Mode == "" {
		f.Mode = ViewMonth
	}
	if f.Now.IsZero() {
		f.Now = time.Now()
	}
	if f.Month.IsZero() {
		f.Month = MonthOf(f.Now)
	}
	if f.Periods == 0 {
		switch f.Mode {
		case ViewMonth:
			f.Periods = DefaultTrailingMonths
		case ViewYear:
			f.Periods = DefaultTrailingYears
		}
	}
	return f
}

// Validate checks a normalized filter set.
func (f Filters) Validate() error {
	switch f.Mode {
	case ViewDay:
		if f.Month.Month < time.January || f.Month.Month > time.December {
			return fmt.Errorf("%w: %s", ErrInvalidMonth, f.Month)
		}
	case ViewMonth, ViewYear:
		if f.Periods < 1 || f.Periods > MaxPeriods {
			return fmt.Errorf("%w: %s view needs 1 to %d, got %d", ErrInvalidPeriods, f.Mode, MaxPeriods, f.Periods)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidViewMode, f.Mode)
	}
	return nil
}

// MonthsInRange is the number of calendar months the range spans, used to
// turn range totals into monthly figures.
func (f Filters) MonthsInRange() int {
	switch f.Mode {
	case ViewMonth:
		return f.Periods
	case ViewYear:
		return f.Periods * 12
	default:
		return 1
	}
}

// BucketKey truncates t to the granularity of mode.
func BucketKey(mode ViewMode, t time.Time) string {
	switch mode {
	case ViewDay:
		return t.Format("2006-01-02")
	case ViewYear:
		return yearKey(t.Year())
	default:
		return MonthOf(t).String()
	}
}

// EmptyBuckets returns the zero-filled, ascending buckets of the range.
func EmptyBuckets(f Filters) []Bucket {
	var out []Bucket
	switch f.Mode {
	case ViewDay:
		out = make([]Bucket, 0, f.Month.Days())
		for d := 1; d <= f.Month.Days(); d++ {
			out = append(out, Bucket{Key: f.Month.Day(d), Label: strconv.Itoa(d)})
		}
	case ViewMonth:
		now := MonthOf(f.Now)
		out = make([]Bucket, 0, f.Periods)
		for i := f.Periods - 1; i >= 0; i-- {
			k := now.AddMonths(-i)
			out = append(out, Bucket{Key: k.String(), Label: k.First().Format("Jan 06")})
		}
	case ViewYear:
		year := f.Now.Year()
		out = make([]Bucket, 0, f.Periods)
		for y := year - f.Periods + 1; y <= year; y++ {
			out = append(out, Bucket{Key: yearKey(y), Label: yearKey(y)})
		}
	}
	return out
}

// BuildBuckets places every dated transaction whose truncated date matches
// a bucket key. The second result holds the in-range transactions in input order.
func BuildBuckets(txs []Transaction, f Filters) ([]Bucket, []Transaction) {
	buckets := EmptyBuckets(f)
	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b.Key] = i
	}

	var inRange []Transaction
	for _, tx := range txs {
		if !tx.HasDate() {
			continue
		}
		i, ok := index[BucketKey(f.Mode, tx.Date)]
		if !ok {
			continue
		}
		b := &buckets[i]
		if tx.IsIncome() {
			b.Income = b.Income.Add(tx.Amount)
		} else {
			b.Expenses = b.Expenses.Add(tx.Amount)
		}
		b.Transactions = append(b.Transactions, tx)
		inRange = append(inRange, tx)
	}
	return buckets, inRange
}
