package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mifi/internal/budget"
	"mifi/internal/core"
	"mifi/internal/ports"
)

var feb = core.MonthKey{Year: 2024, Month: time.February}

type recorded struct {
	method string
	path   string
	body   string
}

func newTestServer(t *testing.T, routes map[string]func(w http.ResponseWriter)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, body: string(body)})
		h, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w)
	}))
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/", time.Second, WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatal(err)
	}
	return c, &calls
}

func writeJSON(body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestNew_InvalidURL(t *testing.T) {
	for _, in := range []string{"", "localhost:8080", "://x"} {
		if _, err := New(in, 0); err == nil {
			t.Errorf("New(%q) should fail", in)
		}
	}
}

func TestClient_ListTransactions(t *testing.T) {
	c, _ := newTestServer(t, map[string]func(http.ResponseWriter){
		"GET /transactions": writeJSON(`[
			{"id": 1, "date": "2024-02-03", "title": "Lidl", "type": "EXPENSE", "amount": "-45.20", "category": "GROCERIES", "account": "MBANK"},
			{"id": "x", "createdAt": 1706745600000, "name": "Salary", "type": "income", "amount": 7000},
			{"id": "y", "date": "2024-02-04", "title": "Fee", "bank": "PKO", "account": "MBANK"}
		]`),
	})
	raws, err := c.ListTransactions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	txs := core.NormalizeAll(raws)
	if len(txs) != 3 || txs[0].ID != "1" || txs[0].Amount != (core.Money{Cents: 4520}) {
		t.Fatalf("transactions = %+v", txs)
	}
	if txs[1].Title != "Salary" || txs[1].Type != core.Income || !txs[1].HasDate() {
		t.Errorf("loose fields not normalized: %+v", txs[1])
	}
	for i, want := range []string{"MBANK", core.DefaultBank, "PKO"} {
		if txs[i].Bank != want {
			t.Errorf("transaction %d bank = %q, want %q", i, txs[i].Bank, want)
		}
	}
}

func TestClient_ListCategories(t *testing.T) {
	c, _ := newTestServer(t, map[string]func(http.ResponseWriter){
		"GET /budget/categories/all": writeJSON(`[{"id": 1, "name": "GROCERIES", "description": "Zakupy"}]`),
	})
	cats, err := c.ListCategories(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 1 || cats[0].ID != "1" || cats[0].Name != "GROCERIES" {
		t.Fatalf("categories = %+v", cats)
	}
}

func TestClient_GetBudget(t *testing.T) {
	tests := []struct {
		name     string
		handler  func(http.ResponseWriter)
		notFound bool
		wantErr  bool
	}{
		{
			name: "entity form",
			handler: writeJSON(`{"title": "luty 2024 Budget", "type": "MONTHLY", "periodStart": "2024-02-01",
				"incomes": [{"amount": 7000, "source": "Salary"}],
				"fixedExpenses": [{"amount": 2800, "description": "Hipoteka"}],
				"envelopes": [{"limit": 1200, "category": {"id": 1, "name": "GROCERIES"}}]}`),
		},
		{
			name: "missing month error",
			handler: func(w http.ResponseWriter) {
				http.Error(w, `{"message":"No budget for month: 2024-02"}`, http.StatusInternalServerError)
			},
			notFound: true,
		},
		{
			name:     "empty body",
			handler:  func(w http.ResponseWriter) { w.WriteHeader(http.StatusOK) },
			notFound: true,
		},
		{
			name:    "server failure",
			handler: func(w http.ResponseWriter) { http.Error(w, "boom", http.StatusBadGateway) },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, map[string]func(http.ResponseWriter){"GET /budget/monthly/2024-02": tt.handler})
			p, err := c.GetBudget(context.Background(), feb)
			switch {
			case tt.notFound:
				if !errors.Is(err, ports.ErrNotFound) {
					t.Fatalf("err = %v, want ErrNotFound", err)
				}
			case tt.wantErr:
				var se *StatusError
				if !errors.As(err, &se) || se.Code != http.StatusBadGateway || errors.Is(err, ports.ErrNotFound) {
					t.Fatalf("err = %v, want a 502 StatusError", err)
				}
			default:
				if err != nil {
					t.Fatal(err)
				}
				if p.Start != "2024-02-01" || len(p.Envelopes) != 1 || p.Envelopes[0].CategoryID != "1" || p.Envelopes[0].Limit != core.NewMoney(1200, 0) {
					t.Errorf("payload = %+v", p)
				}
				m := budget.FromPayload(feb, p, nil)
				if m.Envelopes[0].Name != "GROCERIES" || len(m.Transfers) != 1 {
					t.Errorf("month = %+v", m)
				}
			}
		})
	}
}

func TestClient_SaveDropsScratch(t *testing.T) {
	ok := func(w http.ResponseWriter) { w.WriteHeader(http.StatusOK) }
	c, calls := newTestServer(t, map[string]func(http.ResponseWriter){
		"POST /budget":        ok,
		"PUT /budget/default": ok,
	})
	ctx := context.Background()
	p, _ := budget.BuildPayload(budget.DefaultTemplate(feb, nil), nil)

	if err := c.SaveBudget(ctx, feb, p); err != nil {
		t.Fatal(err)
	}
	if err := c.SetDefaultTemplate(ctx, p); err != nil {
		t.Fatal(err)
	}
	if len(*calls) != 2 {
		t.Fatalf("calls = %+v", *calls)
	}
	for _, call := range *calls {
		if strings.Contains(call.body, "scratch") {
			t.Errorf("%s %s sent scratch data", call.method, call.path)
		}
	}
	var sent budget.Payload
	if err := json.Unmarshal([]byte((*calls)[0].body), &sent); err != nil {
		t.Fatal(err)
	}
	if sent.Type != budget.TypeMonthly || sent.Start != "2024-02-01" {
		t.Errorf("monthly save lost its period: %+v", sent)
	}
	var tpl budget.Payload
	if err := json.Unmarshal([]byte((*calls)[1].body), &tpl); err != nil {
		t.Fatal(err)
	}
	if tpl.Type != "" || tpl.Start != "" {
		t.Errorf("template kept its period: %+v", tpl)
	}
}
