package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mifi/internal/importer"
)

func newImportCmd(app *App) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import bank statements",
	}
	importCmd.AddCommand(&cobra.Command{
		Use:   "mbank FILE",
		Short: "Import an mBank CSV statement",
		Long: `Parse an mBank CSV export (windows-1250, semicolon separated) and append
its rows to the data backend. Rows imported before are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			res, err := app.backend(ctx)
			if err != nil {
				return err
			}
			defer closeBackend(cmd.ErrOrStderr(), res)
			if res.Writer == nil {
				return fmt.Errorf("backend %s does not accept imported transactions", app.Config.DataBackend)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc := importer.NewService(nil, res.Writer, app.Logger)
			sum, err := svc.ImportMBank(ctx, filepath.Base(args[0]), f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "parsed %d, inserted %d, skipped %d\n", sum.Parsed, sum.Inserted, sum.Skipped)
			for _, w := range sum.Warnings {
				fmt.Fprintf(out, "  warning: %s\n", w)
			}
			return nil
		},
	})
	return importCmd
}
