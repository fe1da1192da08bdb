package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"mifi/internal/core"
	"mifi/internal/dashboard"
	"mifi/internal/memory"
)

type summaryRecorder struct {
	calls int
	last  core.Summary
}

func (s *summaryRecorder) SummaryUpdated(_ core.Filters, sum core.Summary) {
	s.calls++
	s.last = sum
}

type failingSource struct{}

func (failingSource) ListTransactions(context.Context) ([]core.RawTransaction, error) {
	return nil, errors.New("sheet quota exceeded")
}

func tx(id, date, typ string, units int64) core.RawTransaction {
	return core.RawTransaction{
		ID:     core.FlexString(id),
		Date:   core.ParseFlexTime(date),
		Title:  core.FlexString(id),
		Type:   core.FlexString(typ),
		Amount: core.Amount(core.NewMoney(units, 0)),
	}
}

func TestRefresher_RefreshOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	_, _, err := store.AppendTransactions(ctx, []core.RawTransaction{
		tx("salary", "2025-02-01", "income", 5000),
		tx("rent", "2025-02-03", "expense", 2000),
	})
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)
	loader := dashboard.NewLoader(store, store, dashboard.WithClock(func() time.Time { return now }))
	rec := &summaryRecorder{}
	r := NewRefresher(loader, core.Filters{Mode: core.ViewMonth, Periods: 1}, time.Minute, rec, nil)

	sum, err := r.RefreshOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalIncome != core.NewMoney(5000, 0) || sum.TotalExpenses != core.NewMoney(2000, 0) {
		t.Errorf("summary = %+v", sum)
	}
	if rec.calls != 1 || rec.last.NetSavings != core.NewMoney(3000, 0) {
		t.Errorf("recorder saw %d calls, last %+v", rec.calls, rec.last)
	}
}

func TestRefresher_RunSurvivesFailures(t *testing.T) {
	loader := dashboard.NewLoader(failingSource{}, memory.New(nil))
	rec := &summaryRecorder{}
	r := NewRefresher(loader, core.Filters{}, 5*time.Millisecond, rec, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if rec.calls != 0 {
		t.Errorf("failed loads must not be recorded, got %d", rec.calls)
	}
	if st := loader.Status(); st.Generation < 2 {
		t.Errorf("expected retries, generation = %d", st.Generation)
	}
}
