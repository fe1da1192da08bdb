package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mifi/internal/backend"
	"mifi/internal/categories"
	"mifi/internal/config"
	"mifi/internal/log"
	"mifi/internal/ports"
)

// App carries what every command needs once start-up is done.
type App struct {
	Config *config.Config
	Logger *log.Logger

	// openBackend builds the configured backend. Tests replace it.
	openBackend func(ctx context.Context, cfg backend.Config) (*backend.BackendResult, error)
}

func (a *App) backend(ctx context.Context) (*backend.BackendResult, error) {
	cfg, err := backend.FromAppConfig(a.Config)
	if err != nil {
		return nil, err
	}
	return a.openBackend(ctx, cfg)
}

// NewRootCommand builds the mifi command tree.
func NewRootCommand() *cobra.Command {
	app := &App{}
	app.openBackend = func(ctx context.Context, cfg backend.Config) (*backend.BackendResult, error) {
		return backend.NewFactory(app.Logger).CreateBackend(ctx, cfg)
	}
	return newRootCommand(app)
}

func newRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "mifi",
		Short: "Personal finance dashboard and monthly budget planner",
		Long: `mifi aggregates bank transactions into day, month and year views,
ranks spending categories against their historical averages and plans
monthly budgets as a waterfall from income to envelopes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if app.Config != nil {
				return nil
			}
			LoadEnvFile()
			cfg, err := LoadAndValidateConfig()
			if err != nil {
				return err
			}
			logger, err := SetupLogger(cfg)
			if err != nil {
				return err
			}
			app.Config, app.Logger = cfg, logger
			return nil
		},
	}

	root.AddCommand(newImportCmd(app))
	root.AddCommand(newReportCmd(app))
	root.AddCommand(newBudgetCmd(app))
	root.AddCommand(newWorkerCmd(app))
	return root
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// loadDirectory fetches the category directory, falling back to the
// built-in one like the dashboard does.
func loadDirectory(ctx context.Context, src ports.CategorySource, logger *log.Logger) *categories.Directory {
	list, err := src.ListCategories(ctx)
	if err == nil {
		var dir *categories.Directory
		if dir, err = categories.NewDirectory(list); err == nil {
			return dir
		}
	}
	logger.WarnContext(ctx, "category directory unavailable, using defaults", log.FieldError, err)
	return categories.Default()
}

func closeBackend(w io.Writer, res *backend.BackendResult) {
	if err := res.Close(); err != nil {
		fmt.Fprintf(w, "warning: closing backend: %v\n", err)
	}
}
