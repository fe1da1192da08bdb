package core

import (
	"fmt"
	"strconv"
	"time"
)

// MonthKey identifies a calendar month. Its string form is YYYY-MM.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month t falls in, using t's own location.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// ParseMonthKey parses "YYYY-MM".
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return MonthKey{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthOf(t), nil
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

func (k MonthKey) IsZero() bool { return k.Year == 0 && k.Month == 0 }

// First returns midnight UTC on the first day of the month.
func (k MonthKey) First() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Last returns midnight UTC on the last day of the month.
func (k MonthKey) Last() time.Time {
	return k.First().AddDate(0, 1, -1)
}

// Days returns the number of days in the month, leap years included.
func (k MonthKey) Days() int {
	return k.Last().Day()
}

// AddMonths moves the key by n months, crossing year boundaries.
func (k MonthKey) AddMonths(n int) MonthKey {
	return MonthOf(k.First().AddDate(0, n, 0))
}

func (k MonthKey) Before(o MonthKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

// MonthsUntil counts the months from k to o inclusive; it is zero when o is before k.
func (k MonthKey) MonthsUntil(o MonthKey) int {
	n := (o.Year-k.Year)*12 + int(o.Month) - int(k.Month) + 1
	if n < 0 {
		return 0
	}
	return n
}

// Day formats the ISO date of the given day in this month.
func (k MonthKey) Day(day int) string {
	return fmt.Sprintf("%s-%02d", k, day)
}

func (k MonthKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MonthKey) UnmarshalText(text []byte) error {
	parsed, err := ParseMonthKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// yearKey is the bucket key of a year view.
func yearKey(year int) string {
	return strconv.Itoa(year)
}
