package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RawTransaction is a transaction as upstream sources deliver it. Every
// field is optional and loosely typed; Normalize turns it into a Transaction.
type RawTransaction struct {
	ID          FlexString `json:"id"`
	Date        FlexTime   `json:"date"`
	CreatedAt   FlexTime   `json:"createdAt"`
	Timestamp   FlexTime   `json:"timestamp"`
	Title       FlexString `json:"title"`
	Description FlexString `json:"description"`
	Name        FlexString `json:"name"`
	Type        FlexString `json:"type"`
	Amount      FlexAmount `json:"amount"`
	Category    FlexString `json:"category"`
	Bank        FlexString `json:"bank"`
}

// Normalize never fails: every missing or malformed field falls back to its default.
func Normalize(r RawTransaction) Transaction {
	return Transaction{
		ID:       strings.TrimSpace(string(r.ID)),
		Date:     firstTime(r.Date, r.CreatedAt, r.Timestamp),
		Title:    normalizeTitle(firstNonBlank(string(r.Title), string(r.Description), string(r.Name))),
		Type:     ParseTxType(string(r.Type)),
		Amount:   r.Amount.Money().Abs(),
		Category: orDefault(string(r.Category), DefaultCategory),
		Bank:     orDefault(string(r.Bank), DefaultBank),
	}
}

// NormalizeAll normalizes a whole batch, preserving order.
func NormalizeAll(raws []RawTransaction) []Transaction {
	out := make([]Transaction, len(raws))
	for i, r := range raws {
		out[i] = Normalize(r)
	}
	return out
}

// CleanTitle cuts the title at the bank's metadata sentinel and trims it.
func CleanTitle(title string) string {
	if idx := strings.Index(title, TitleSentinel); idx >= 0 {
		title = title[:idx]
	}
	return strings.TrimSpace(title)
}

func normalizeTitle(title string) string {
	if title = CleanTitle(title); title == "" {
		return UnknownTitle
	}
	return title
}

func firstTime(candidates ...FlexTime) time.Time {
	for _, c := range candidates {
		if c.Valid {
			return c.Time
		}
	}
	return time.Time{}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

// FlexString accepts a JSON string, number, boolean or null.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*s = ""
			return nil
		}
		*s = FlexString(v)
	default:
		*s = FlexString(data)
	}
	return nil
}

// FlexTime accepts RFC 3339 timestamps, ISO dates, zone-less ISO date-times
// and epoch milliseconds. Unparseable input leaves Valid false.
type FlexTime struct {
	Time  time.Time
	Valid bool
}

// At wraps a known time.
func At(t time.Time) FlexTime {
	return FlexTime{Time: t, Valid: !t.IsZero()}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseFlexTime parses a textual date in any of the accepted layouts.
// Zone-less values are read as UTC.
func ParseFlexTime(s string) FlexTime {
	s = strings.TrimSpace(s)
	if s == "" {
		return FlexTime{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return At(t)
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return At(time.UnixMilli(ms).UTC())
	}
	return FlexTime{}
}

func (f *FlexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || len(data) == 0 {
		*f = FlexTime{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = FlexTime{}
			return nil
		}
		*f = ParseFlexTime(s)
		return nil
	}
	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*f = FlexTime{}
		return nil
	}
	*f = At(time.UnixMilli(int64(ms)).UTC())
	return nil
}

func (f FlexTime) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Time.Format(time.RFC3339))
}

// FlexAmount accepts a JSON number, a numeric string or null.
type FlexAmount struct {
	Value decimal.Decimal
	Valid bool
}

// Amount wraps a known amount.
func Amount(m Money) FlexAmount {
	return FlexAmount{Value: m.Decimal(), Valid: true}
}

// Money returns the amount rounded to cents, or zero when absent.
func (a FlexAmount) Money() Money {
	if !a.Valid {
		return Money{}
	}
	return MoneyFromDecimal(a.Value)
}

func (a *FlexAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = FlexAmount{}
		return nil
	}
	m, err := ParseMoney(strings.Trim(string(data), `"`))
	if err != nil {
		*a = FlexAmount{}
		return nil
	}
	*a = Amount(m)
	return nil
}

func (a FlexAmount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(a.Value.String()), nil
}
