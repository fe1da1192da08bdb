package backend

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mifi/internal/budget"
	"mifi/internal/config"
	"mifi/internal/core"
	"mifi/internal/ports"
)

func TestBackendType_IsValid(t *testing.T) {
	for _, s := range GetBackendTypeStrings() {
		if !BackendType(s).IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if BackendType("excel").IsValid() {
		t.Error("excel should be invalid")
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("nil config must fail")
	}

	app := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/x.db",
		DataDir:      "seed",
		SyncSource:   "rest",
		RESTBaseURL:  "http://localhost:8080",
		RESTTimeout:  time.Second,
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "/tmp/x.db" || cfg.DataDirectory != "seed" {
		t.Errorf("cfg = %+v", cfg)
	}

	sync, ok, err := SyncSourceConfig(app)
	if err != nil || !ok {
		t.Fatalf("SyncSourceConfig() = %v, %v", ok, err)
	}
	if sync.Type != RESTBackend || sync.RESTBaseURL != "http://localhost:8080" {
		t.Errorf("sync cfg = %+v", sync)
	}

	app.SyncSource = ""
	if _, ok, _ := SyncSourceConfig(app); ok {
		t.Error("no sync source configured, want ok = false")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"unknown", Config{Type: "excel"}, "invalid backend type"},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path"},
		{"postgres without url", Config{Type: PostgresBackend}, "Postgres URL"},
		{"rest without url", Config{Type: RESTBackend}, "REST base URL"},
		{"sheets without id", Config{Type: SheetsBackend}, "Spreadsheet ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestFactory_Memory(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()
	if res.Writer == nil || res.Repository != nil {
		t.Errorf("memory result = %+v", res)
	}
	cats, err := res.Backend.ListCategories(context.Background())
	if err != nil || len(cats) != 18 {
		t.Errorf("categories = %d, %v", len(cats), err)
	}
}

func TestFactory_SQLite(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "db", "mifi.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if res.Writer == nil || res.Repository == nil || res.Ready == nil {
		t.Fatalf("sqlite result = %+v", res)
	}
	if err := res.Ready(ctx); err != nil {
		t.Fatalf("Ready() = %v", err)
	}

	month := core.MonthKey{Year: 2024, Month: time.June}
	if _, err := res.Backend.GetBudget(ctx, month); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("GetBudget() = %v, want ErrNotFound", err)
	}
	p, _ := budget.BuildPayload(budget.DefaultTemplate(month, nil), nil)
	if err := res.Backend.SaveBudget(ctx, month, p); err != nil {
		t.Fatalf("SaveBudget() without AMQP = %v", err)
	}
	_, version, err := res.Repository.GetBudgetVersion(ctx, month)
	if err != nil || version != 1 {
		t.Errorf("version = %d, %v", version, err)
	}
}

func TestFactory_REST(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:        RESTBackend,
		RESTBaseURL: "http://localhost:8080",
		RESTTimeout: time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Writer != nil {
		t.Error("rest backend is read-only for transactions")
	}
}
