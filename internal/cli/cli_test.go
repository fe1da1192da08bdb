package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mifi/internal/backend"
	"mifi/internal/config"
	"mifi/internal/log"
)

func testApp(t *testing.T, dataBackend string) *App {
	t.Helper()
	dir := t.TempDir()
	app := &App{
		Config: &config.Config{
			DataBackend:    dataBackend,
			DataDir:        dir,
			SQLiteDBPath:   filepath.Join(dir, "mifi.db"),
			FixedPolicy:    "all",
			TrailingMonths: 6,
			CacheSize:      8,
			CacheTTL:       time.Minute,
		},
		Logger: log.New(log.Config{Output: &bytes.Buffer{}}),
	}
	app.openBackend = func(ctx context.Context, cfg backend.Config) (*backend.BackendResult, error) {
		return backend.NewFactory(app.Logger).CreateBackend(ctx, cfg)
	}
	return app
}

func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

const statement = "\ufeff#Data operacji;#Tytuł;#Kwota\n" +
	"2025-01-02;Spotify P2F0;-19,99\n" +
	"2025-01-10;Wynagrodzenie;7 000,00\n"

func TestImportAndReport(t *testing.T) {
	app := testApp(t, "sqlite")
	file := filepath.Join(t.TempDir(), "statement.csv")
	if err := os.WriteFile(file, []byte(statement), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, app, "import", "mbank", file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "parsed 2, inserted 2, skipped 0") {
		t.Errorf("first import output = %q", out)
	}
	out, err = run(t, app, "import", "mbank", file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "inserted 0, skipped 2") {
		t.Errorf("second import output = %q", out)
	}

	out, err = run(t, app, "report", "--mode", "day", "--month", "2025-01", "--search", "spotify")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Day view of 2025-01", "Income 7000.00", "1 transactions", "19.99"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output does not contain %q:\n%s", want, out)
		}
	}
}

func TestImport_ReadOnlyBackend(t *testing.T) {
	app := testApp(t, "memory")
	inner := app.openBackend
	app.openBackend = func(ctx context.Context, cfg backend.Config) (*backend.BackendResult, error) {
		res, err := inner(ctx, cfg)
		if err != nil {
			return nil, err
		}
		res.Writer = nil
		return res, nil
	}
	file := filepath.Join(t.TempDir(), "statement.csv")
	if err := os.WriteFile(file, []byte(statement), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := run(t, app, "import", "mbank", file)
	if err == nil || !strings.Contains(err.Error(), "does not accept imported transactions") {
		t.Fatalf("err = %v", err)
	}
}

func TestReport_InvalidFlags(t *testing.T) {
	app := testApp(t, "memory")
	tests := [][]string{
		{"report", "--mode", "week"},
		{"report", "--month", "2025-13", "--mode", "day"},
		{"report", "--sort", "colour"},
		{"report", "--periods", "500"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args[1:], " "), func(t *testing.T) {
			if _, err := run(t, app, args...); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestBudgetCommands(t *testing.T) {
	app := testApp(t, "sqlite")

	out, err := run(t, app, "budget", "show", "2025-03")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "not found") {
		t.Errorf("missing budget output = %q", out)
	}

	out, err = run(t, app, "budget", "show", "2025-03", "--template")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "showing the default template") || !strings.Contains(out, "Income                    7000.00") {
		t.Errorf("template preview output = %q", out)
	}

	if _, err := run(t, app, "budget", "save-template", "2025-03"); err == nil {
		t.Error("save-template of a missing month should fail")
	}

	out, err = run(t, app, "budget", "init", "2025-03")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Saved budget for 2025-03") {
		t.Errorf("init output = %q", out)
	}
	if _, err := run(t, app, "budget", "init", "2025-03"); err == nil {
		t.Error("init of an existing month should fail")
	}

	out, err = run(t, app, "budget", "show", "2025-03")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "marzec 2025 Budget") || !strings.Contains(out, "Total budgeted") {
		t.Errorf("show output = %q", out)
	}

	out, err = run(t, app, "budget", "save-template", "2025-03")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Default template replaced") {
		t.Errorf("save-template output = %q", out)
	}

	out, err = run(t, app, "budget", "init", "2025-04", "--empty")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Income                    0.00") {
		t.Errorf("empty init output = %q", out)
	}
}

func TestBudgetShow_InvalidMonth(t *testing.T) {
	if _, err := run(t, testApp(t, "memory"), "budget", "show", "March"); err == nil {
		t.Fatal("expected an error for a malformed month")
	}
}

func TestBudgetExportTemplate(t *testing.T) {
	app := testApp(t, "memory")

	out, err := run(t, app, "budget", "export-template")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(app.Config.DataDir, "template.toml")
	if !strings.Contains(out, path) {
		t.Errorf("export output = %q", out)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "Przychód - pensja") {
		t.Errorf("template file does not carry the default income:\n%s", raw)
	}

	// the next run seeds the store from the exported file
	out, err = run(t, app, "budget", "show", "2025-03", "--template")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Income                    7000.00") {
		t.Errorf("show from exported template = %q", out)
	}
}
