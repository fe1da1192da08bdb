package sheets

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"mifi/internal/categories"
	"mifi/internal/core"
)

// ErrUnexpectedHeader is returned when a required column is missing.
var ErrUnexpectedHeader = errors.New("unexpected sheet header")

// Column headers, matched without case. The first alias found wins.
var (
	colID          = []string{"id"}
	colDate        = []string{"date", "data"}
	colTitle       = []string{"title", "tytuł", "tytul"}
	colDescription = []string{"description", "opis"}
	colType        = []string{"type", "typ"}
	colAmount      = []string{"amount", "kwota"}
	colCategory    = []string{"category", "kategoria"}
	colBank        = []string{"bank"}
	colName        = []string{"name", "nazwa"}
)

var sheetDateLayouts = []string{"02.01.2006", "02/01/2006", "2006/01/02"}

// parseTransactions turns a values matrix with a header row into raw
// transactions. Only date and amount columns are required.
func parseTransactions(values [][]any) ([]core.RawTransaction, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	date, amount := indexOf(headers, colDate...), indexOf(headers, colAmount...)
	if err := requireColumns(headers, map[string]int{"date": date, "amount": amount}); err != nil {
		return nil, err
	}
	id, title, desc := indexOf(headers, colID...), indexOf(headers, colTitle...), indexOf(headers, colDescription...)
	typ, cat, bank := indexOf(headers, colType...), indexOf(headers, colCategory...), indexOf(headers, colBank...)

	out := make([]core.RawTransaction, 0, len(values)-1)
	for _, row := range values[1:] {
		cols := toStrings(row)
		if isBlank(cols) {
			continue
		}
		raw := core.RawTransaction{
			ID:          core.FlexString(safeGet(cols, id)),
			Date:        parseSheetDate(safeGet(cols, date)),
			Title:       core.FlexString(safeGet(cols, title)),
			Description: core.FlexString(safeGet(cols, desc)),
			Type:        core.FlexString(safeGet(cols, typ)),
			Category:    core.FlexString(safeGet(cols, cat)),
			Bank:        core.FlexString(safeGet(cols, bank)),
		}
		if m, err := core.ParseMoney(safeGet(cols, amount)); err == nil {
			raw.Amount = core.Amount(m)
		}
		out = append(out, raw)
	}
	return out, nil
}

// parseCategories reads id, name and an optional description column.
func parseCategories(values [][]any) ([]categories.Category, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	id, name := indexOf(headers, colID...), indexOf(headers, colName...)
	if err := requireColumns(headers, map[string]int{"id": id, "name": name}); err != nil {
		return nil, err
	}
	desc := indexOf(headers, colDescription...)

	var out []categories.Category
	for _, row := range values[1:] {
		cols := toStrings(row)
		c := categories.Category{ID: safeGet(cols, id), Name: safeGet(cols, name), Description: safeGet(cols, desc)}
		if c.ID == "" && c.Name == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func parseSheetDate(s string) core.FlexTime {
	if t := core.ParseFlexTime(s); t.Valid {
		return t
	}
	for _, layout := range sheetDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return core.At(t)
		}
	}
	return core.FlexTime{}
}

func requireColumns(headers []string, cols map[string]int) error {
	var missing []string
	for name, idx := range cols {
		if idx == -1 {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: missing %s; got headers=%v", ErrUnexpectedHeader, strings.Join(missing, ","), headers)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, targets ...string) int {
	for _, target := range targets {
		for i, v := range arr {
			if strings.EqualFold(strings.TrimSpace(v), target) {
				return i
			}
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func isBlank(cols []string) bool {
	for _, c := range cols {
		if c != "" {
			return false
		}
	}
	return true
}
