package sheets

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mifi/internal/core"
)

func TestParseTransactions(t *testing.T) {
	values := [][]any{
		{"ID", "Date", "Title", "Type", "Amount", "Category", "Bank"},
		{"t1", "2024-02-03", "Lidl", "expense", "45,20", "GROCERIES", "MBANK"},
		{"t2", "10.02.2024", "Salary", "Income", 7000.0},
		{"", "", "", "", ""},
		{"t3", "not a date", "Broken", "expense", "abc"},
	}
	raws, err := parseTransactions(values)
	if err != nil {
		t.Fatal(err)
	}
	if len(raws) != 3 {
		t.Fatalf("len = %d, want 3 (blank rows skipped)", len(raws))
	}
	txs := core.NormalizeAll(raws)

	if txs[0].Amount != (core.Money{Cents: 4520}) || txs[0].Category != "GROCERIES" {
		t.Errorf("t1 = %+v", txs[0])
	}
	if !txs[1].Date.Equal(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)) || txs[1].Type != core.Income {
		t.Errorf("t2 = %+v", txs[1])
	}
	if txs[1].Bank != core.DefaultBank {
		t.Errorf("short rows fall back to defaults, got bank %q", txs[1].Bank)
	}
	if txs[2].HasDate() || !txs[2].Amount.IsZero() {
		t.Errorf("t3 should have no date and zero amount, got %+v", txs[2])
	}
}

func TestParseTransactions_MissingColumns(t *testing.T) {
	_, err := parseTransactions([][]any{{"Title", "Category"}})
	if !errors.Is(err, ErrUnexpectedHeader) {
		t.Fatalf("err = %v, want ErrUnexpectedHeader", err)
	}
	if !strings.Contains(err.Error(), "missing amount,date") {
		t.Errorf("error should name the missing columns: %v", err)
	}
}

func TestParseCategories(t *testing.T) {
	values := [][]any{
		{"id", "Nazwa", "Description"},
		{"1", "GROCERIES", "Zakupy spożywcze"},
		{},
		{"2", "FUEL"},
	}
	cats, err := parseCategories(values)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 || cats[0].Description != "Zakupy spożywcze" || cats[1].Name != "FUEL" {
		t.Fatalf("categories = %+v", cats)
	}
}

type fakeValues struct {
	ranges []string
	values map[string][][]any
	err    error
}

func (f *fakeValues) Values(_ context.Context, _ string, rng string) ([][]any, error) {
	f.ranges = append(f.ranges, rng)
	if f.err != nil {
		return nil, f.err
	}
	return f.values[rng], nil
}

func TestClient_Reads(t *testing.T) {
	fake := &fakeValues{values: map[string][][]any{
		"Transactions!A:Z": {{"date", "amount"}, {"2024-02-03", "-10"}},
		"Categories!A:C":   {{"id", "name"}, {"1", "GROCERIES"}},
	}}
	c := newClient(fake, Config{SpreadsheetID: "sheet"}, nil)
	ctx := context.Background()

	txs, err := c.ListTransactions(ctx)
	if err != nil || len(txs) != 1 {
		t.Fatalf("ListTransactions = %v, %v", txs, err)
	}
	cats, err := c.ListCategories(ctx)
	if err != nil || len(cats) != 1 {
		t.Fatalf("ListCategories = %v, %v", cats, err)
	}

	fake.err = errors.New("quota exceeded")
	if _, err := c.ListTransactions(ctx); err == nil || !strings.Contains(err.Error(), "Transactions!A:Z") {
		t.Errorf("error should name the range, got %v", err)
	}
}

func TestNew_MissingSpreadsheet(t *testing.T) {
	if _, err := New(context.Background(), Config{}, nil); !errors.Is(err, ErrMissingSpreadsheet) {
		t.Fatalf("err = %v", err)
	}
}
