package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mifi/internal/backend"
	"mifi/internal/budget"
	"mifi/internal/categories"
	"mifi/internal/core"
	"mifi/internal/dashboard"
	"mifi/internal/memory"
	"mifi/internal/ports"
)

func newBudgetCmd(app *App) *cobra.Command {
	budgetCmd := &cobra.Command{
		Use:   "budget",
		Short: "Show and manage monthly budgets",
	}

	var fromTemplate bool
	showCmd := &cobra.Command{
		Use:   "show YYYY-MM",
		Short: "Print the budget waterfall of a month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBudgetShow(cmd, app, args[0], fromTemplate)
		},
	}
	showCmd.Flags().BoolVar(&fromTemplate, "template", false, "preview the default template when the month has no budget")

	var empty bool
	initCmd := &cobra.Command{
		Use:   "init YYYY-MM",
		Short: "Create a month's budget from the default template and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBudgetInit(cmd, app, args[0], empty)
		},
	}
	initCmd.Flags().BoolVar(&empty, "empty", false, "start from zero amounts instead of the template")

	saveTemplateCmd := &cobra.Command{
		Use:   "save-template YYYY-MM",
		Short: "Store a month's budget as the default template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBudgetSaveTemplate(cmd, app, args[0])
		},
	}

	var exportDir string
	exportCmd := &cobra.Command{
		Use:   "export-template",
		Short: "Write the default template as a seed file for the memory backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBudgetExportTemplate(cmd, app, exportDir)
		},
	}
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "target directory (default DATA_DIR)")

	budgetCmd.AddCommand(showCmd, initCmd, saveTemplateCmd, exportCmd)
	return budgetCmd
}

// openPlanner opens the backend and selects month in a new planner.
func openPlanner(ctx context.Context, app *App, rawMonth string) (*dashboard.Planner, dashboard.PlanStatus, *backend.BackendResult, error) {
	month, err := core.ParseMonthKey(rawMonth)
	if err != nil {
		return nil, 0, nil, err
	}
	res, err := app.backend(ctx)
	if err != nil {
		return nil, 0, nil, err
	}
	dir := loadDirectory(ctx, res.Backend, app.Logger)
	planner := dashboard.NewPlanner(res.Backend,
		dashboard.WithDirectory(func() *categories.Directory { return dir }),
		dashboard.WithPolicy(app.Config.Policy()),
		dashboard.WithPlannerLogger(app.Logger))
	status, err := planner.Select(ctx, month)
	if err != nil {
		res.Close()
		return nil, status, nil, err
	}
	return planner, status, res, nil
}

func runBudgetShow(cmd *cobra.Command, app *App, rawMonth string, fromTemplate bool) error {
	ctx := cmd.Context()
	planner, status, res, err := openPlanner(ctx, app, rawMonth)
	if err != nil {
		return err
	}
	defer closeBackend(cmd.ErrOrStderr(), res)

	out := cmd.OutOrStdout()
	var w budget.Waterfall
	switch {
	case status == dashboard.StatusReady:
		if w, err = planner.Waterfall(); err != nil {
			return err
		}
	case fromTemplate:
		if w, err = planner.StartFromTemplate(ctx); err != nil {
			return err
		}
		fmt.Fprintf(out, "No budget for %s yet; showing the default template.\n\n", rawMonth)
	default:
		fmt.Fprintf(out, "No budget for %s (not found). Use --template to preview the default template or 'mifi budget init %s'.\n", rawMonth, rawMonth)
		return nil
	}
	printWaterfall(out, w)
	return nil
}

func runBudgetInit(cmd *cobra.Command, app *App, rawMonth string, empty bool) error {
	ctx := cmd.Context()
	planner, status, res, err := openPlanner(ctx, app, rawMonth)
	if err != nil {
		return err
	}
	defer closeBackend(cmd.ErrOrStderr(), res)

	if status == dashboard.StatusReady {
		return fmt.Errorf("budget for %s already exists", rawMonth)
	}
	var w budget.Waterfall
	if empty {
		w, err = planner.StartEmpty()
	} else {
		w, err = planner.StartFromTemplate(ctx)
	}
	if err != nil {
		return err
	}
	unmapped, err := planner.Save(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Saved budget for %s.\n", rawMonth)
	for _, name := range unmapped {
		fmt.Fprintf(out, "  envelope %q has no category id and was not saved\n", name)
	}
	fmt.Fprintln(out)
	printWaterfall(out, w)
	return nil
}

func runBudgetSaveTemplate(cmd *cobra.Command, app *App, rawMonth string) error {
	ctx := cmd.Context()
	planner, status, res, err := openPlanner(ctx, app, rawMonth)
	if err != nil {
		return err
	}
	defer closeBackend(cmd.ErrOrStderr(), res)

	if status != dashboard.StatusReady {
		return fmt.Errorf("budget for %s: %s", rawMonth, status)
	}
	if err := planner.SaveAsTemplate(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Default template replaced with the budget of %s.\n", rawMonth)
	return nil
}

func runBudgetExportTemplate(cmd *cobra.Command, app *App, dir string) error {
	ctx := cmd.Context()
	if dir == "" {
		dir = app.Config.DataDir
	}
	res, err := app.backend(ctx)
	if err != nil {
		return err
	}
	defer closeBackend(cmd.ErrOrStderr(), res)

	tpl, err := res.Backend.GetDefaultTemplate(ctx)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		tpl = budget.DefaultTemplatePayload(loadDirectory(ctx, res.Backend, app.Logger))
	case err != nil:
		return fmt.Errorf("load template: %w", err)
	}
	if err := memory.WriteTemplateFile(dir, tpl); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s.\n", filepath.Join(dir, memory.TemplateFile))
	return nil
}

func printWaterfall(out io.Writer, w budget.Waterfall) {
	fmt.Fprintf(out, "%s (fixed expenses: %s)\n", budget.Title(w.Month), w.Policy)
	fmt.Fprintf(out, "Income                    %s\n", w.TotalIncome)
	fmt.Fprintf(out, "Fixed expenses            %s\n", w.TotalFixed)
	fmt.Fprintf(out, "Remaining after transfers %s\n", w.RemainingAfterTransfers)
	fmt.Fprintf(out, "Budgetable                %s\n\n", w.TotalBudgetable)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tAMOUNT\tUSED\tREMAINING")
	for _, s := range w.Sources {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, s.Amount, s.Used, s.Remaining)
	}
	tw.Flush()

	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ENVELOPE\tSOURCE\tLIMIT\tSPLITS\tREMAINING\t")
	for _, e := range w.Envelopes {
		flag := ""
		if e.OverAllocated {
			flag = "over-allocated"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", e.Name, e.Source, e.Limit, e.Budgeted, e.Remaining, flag)
	}
	tw.Flush()
	fmt.Fprintf(out, "\nTotal budgeted %s\n", w.TotalBudgeted)
}
