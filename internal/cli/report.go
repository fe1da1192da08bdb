package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mifi/internal/cache"
	"mifi/internal/core"
	"mifi/internal/dashboard"
)

type reportOptions struct {
	mode      string
	month     string
	periods   int
	list      bool
	search    string
	txType    string
	sortBy    string
	ascending bool
}

func newReportCmd(app *App) *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print income, expenses and top categories for a range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, app, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.mode, "mode", "month", "view mode: day, month or year")
	f.StringVar(&opts.month, "month", "", "month of the day view (YYYY-MM), default current")
	f.IntVar(&opts.periods, "periods", 0, "trailing months (month view) or years (year view)")
	f.BoolVar(&opts.list, "list", false, "also print the transaction list")
	f.StringVar(&opts.search, "search", "", "filter the list by title, category or bank")
	f.StringVar(&opts.txType, "type", "all", "filter the list by type: all, income or expense")
	f.StringVar(&opts.sortBy, "sort", "date", "sort the list by date, amount or title")
	f.BoolVar(&opts.ascending, "asc", false, "sort the list ascending")
	return cmd
}

func (o *reportOptions) filters(defaultPeriods int) (core.Filters, error) {
	mode, err := core.ParseViewMode(o.mode)
	if err != nil {
		return core.Filters{}, err
	}
	f := core.Filters{Mode: mode, Periods: o.periods}
	if f.Periods == 0 && mode == core.ViewMonth {
		f.Periods = defaultPeriods
	}
	if o.month != "" {
		if f.Month, err = core.ParseMonthKey(o.month); err != nil {
			return core.Filters{}, err
		}
	}
	return f, nil
}

func runReport(cmd *cobra.Command, app *App, opts *reportOptions) error {
	filters, err := opts.filters(app.Config.TrailingMonths)
	if err != nil {
		return err
	}
	sortBy, err := core.ParseSortField(opts.sortBy)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	res, err := app.backend(ctx)
	if err != nil {
		return err
	}
	defer closeBackend(cmd.ErrOrStderr(), res)

	loader := dashboard.NewLoader(res.Backend, res.Backend,
		dashboard.WithLogger(app.Logger),
		dashboard.WithViewCache(cache.NewLRUCache[string, core.DerivedViews](app.Config.CacheSize, app.Config.CacheTTL)))
	if err := loader.Load(ctx); err != nil {
		return err
	}
	views, err := loader.Views(filters)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if st := loader.Status(); st.Categories == dashboard.StateFallback {
		fmt.Fprintln(out, "note: category directory unavailable, using built-in categories")
	}
	printViews(out, views)

	if opts.list || opts.search != "" {
		txs, err := loader.Transactions(core.ListOptions{
			Search:    opts.search,
			Type:      opts.txType,
			SortBy:    sortBy,
			Ascending: opts.ascending,
		})
		if err != nil {
			return err
		}
		printTransactions(out, txs)
	}
	return nil
}

func printViews(out io.Writer, v core.DerivedViews) {
	f := v.Filters
	switch f.Mode {
	case core.ViewDay:
		fmt.Fprintf(out, "Day view of %s\n\n", f.Month)
	default:
		fmt.Fprintf(out, "%s view, %d trailing periods to %s\n\n", f.Mode, f.Periods, core.MonthOf(f.Now))
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PERIOD\tINCOME\tEXPENSES\tNET\t")
	for _, b := range v.Buckets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", b.Label, b.Income, b.Expenses, b.Net())
	}
	tw.Flush()

	fmt.Fprintf(out, "\nTop categories (active months: %d)\n", v.ActiveMonths)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "CATEGORY\tTOTAL\tAVG/MONTH\tCOUNT\t")
	for _, c := range v.TopCategories {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t\n", c.Category, c.Total, c.AveragePerMonth, c.TransactionCount)
	}
	tw.Flush()

	s := v.Summary
	fmt.Fprintf(out, "\nIncome %s, expenses %s, net %s, savings rate %.2f%%\n",
		s.TotalIncome, s.TotalExpenses, s.NetSavings, s.SavingsRate)
	fmt.Fprintf(out, "Monthly average: income %s, expenses %s\n", s.AvgMonthlyIncome, s.AvgMonthlyExpenses)
	o := v.Overall
	fmt.Fprintf(out, "Since %s (%d months): income %s/month, expenses %s/month\n",
		o.Since, o.MonthsActive, o.AvgMonthlyIncome, o.AvgMonthlyExpenses)
}

func printTransactions(out io.Writer, txs []core.Transaction) {
	fmt.Fprintf(out, "\n%d transactions\n", len(txs))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tCATEGORY\tBANK\tTITLE")
	for _, tx := range txs {
		date := "-"
		if !tx.Date.IsZero() {
			date = tx.Date.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", date, tx.Type, tx.Amount, tx.Category, tx.Bank, tx.Title)
	}
	tw.Flush()
}
