package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/payroll"
	"github.com/warp/attendance-engine/store"
)

func newCloseCmd() *cobra.Command {
	var (
		driver string
		dbPath string
		dbURL  string
		month  string
	)

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a pay month: snapshot every worker's result",
		Long: `Compute every stored worker for the month and save a payroll snapshot.
Workers already closed for the month are skipped. Defaults come from the same
.env and environment the server reads.`,
		Example: `
  reconcile close --month 2025-03
  reconcile close --driver postgres --url postgres://localhost/attendance --month 2025-03
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := generic.ParseMonth(month)
			if err != nil {
				return err
			}

			cfg, err := config.Load(nil)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("driver") {
				cfg.Database.Driver = driver
			}
			if cmd.Flags().Changed("db") {
				cfg.Database.Path = dbPath
			}
			if cmd.Flags().Changed("url") {
				cfg.Database.URL = dbURL
			}

			backend, err := store.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer backend.Close()

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
			summary, err := payroll.NewService(backend, logger).ClosePeriod(cmd.Context(), period, generic.SnapshotManual)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Close completed for %s to %s. Closed: %d, Skipped: %d, Failed: %d\n",
				summary.From, summary.To, summary.Closed, summary.Skipped, summary.Failed)
			if summary.Failed > 0 {
				return fmt.Errorf("%d workers failed to close", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "driver", config.DriverSQLite, "Store driver: sqlite or postgres")
	cmd.Flags().StringVar(&dbPath, "db", "attendance.db", "SQLite database path")
	cmd.Flags().StringVar(&dbURL, "url", "", "PostgreSQL connection string")
	cmd.Flags().StringVar(&month, "month", "", "Pay month, YYYY-MM")
	cmd.MarkFlagRequired("month")
	return cmd
}
