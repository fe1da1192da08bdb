package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mifi/internal/core"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.FetchFinished("transactions", 20*time.Millisecond, nil)
	m.FetchFinished("transactions", 10*time.Millisecond, errors.New("boom"))
	m.SnapshotStored(core.MonthKey{Year: 2024, Month: time.March}, 2)
	m.RowsWritten(3, 1)
	m.SummaryUpdated(core.Filters{Mode: core.ViewMonth, Periods: 6}, core.Summary{
		TotalIncome: core.NewMoney(1200, 50),
		SavingsRate: 12.5,
	})

	out := scrape(t, reg)
	for _, want := range []string{
		`mifi_source_fetch_errors_total{source="transactions"} 1`,
		`mifi_source_fetch_duration_seconds_count{source="transactions"} 2`,
		`mifi_budget_snapshots_total 1`,
		`mifi_budget_over_allocated_envelopes{month="2024-03"} 2`,
		`mifi_transactions_imported_total{outcome="inserted"} 3`,
		`mifi_transactions_imported_total{outcome="skipped"} 1`,
		`mifi_dashboard_summary{figure="income",window="month_6"} 1200.5`,
		`mifi_dashboard_summary{figure="savings_rate",window="month_6"} 12.5`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output does not contain %s", want)
		}
	}
}

func TestServer_Routes(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg).SnapshotStored(core.MonthKey{Year: 2024, Month: time.January}, 0)

	var readyErr error
	s := NewServer(":0", reg, func(context.Context) error { return readyErr }, nil)
	ts := httptest.NewServer(s.Handler)
	defer ts.Close()

	get := func(path string) (int, string) {
		t.Helper()
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	tests := []struct {
		name     string
		path     string
		readyErr error
		status   int
		contains string
	}{
		{"health", "/healthz", nil, http.StatusOK, "ok"},
		{"ready", "/readyz", nil, http.StatusOK, "ready"},
		{"not ready", "/readyz", errors.New("db down"), http.StatusServiceUnavailable, "not ready"},
		{"metrics", "/metrics", nil, http.StatusOK, "mifi_budget_snapshots_total 1"},
		{"unknown", "/nope", nil, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readyErr = tt.readyErr
			status, body := get(tt.path)
			if status != tt.status {
				t.Fatalf("status = %d, want %d", status, tt.status)
			}
			if !strings.Contains(body, tt.contains) {
				t.Errorf("body %q does not contain %q", body, tt.contains)
			}
		})
	}
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s := NewServer("127.0.0.1:0", prometheus.NewRegistry(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
