package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/nursechart/internal/common"
	"github.com/joseph-ayodele/nursechart/internal/export"
	"github.com/joseph-ayodele/nursechart/internal/repository"
)

const dateLayout = "2006-01-02"

func parseDateFlag(name, v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, time.Local)
	if err != nil {
		return nil, common.NewAppError("USAGE_ERROR", fmt.Sprintf("--%s must be YYYY-MM-DD", name), common.ErrInvalidInput)
	}
	return &t, nil
}

func newExportCmd(a *app) *cobra.Command {
	var from, to, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored results to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fromT, err := parseDateFlag("from", from)
			if err != nil {
				return err
			}
			toT, err := parseDateFlag("to", to)
			if err != nil {
				return err
			}
			if fromT != nil && toT != nil && toT.Before(*fromT) {
				return common.NewAppError("USAGE_ERROR", "--to is before --from", common.ErrInvalidInput)
			}

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := export.NewService(repository.NewResultRepository(db, a.logger), a.logger)
			data, err := svc.ExportResultsXLSX(ctx, fromT, toT)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			a.logger.Info("export written", "path", out, "bytes", len(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day to include (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&out, "out", "o", "charts.xlsx", "workbook path")
	return cmd
}

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}
	var timeout time.Duration
	ping := &cobra.Command{
		Use:   "ping",
		Short: "Check that the database answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := repository.HealthCheck(ctx, db, timeout, a.logger); err != nil {
				return fmt.Errorf("db health: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "DB health: OK (%s)\n", db.Dialect())
			return nil
		},
	}
	ping.Flags().DurationVar(&timeout, "timeout", time.Second, "health check timeout")

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create the chart_records table if it is missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			db.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	cmd.AddCommand(ping, migrate)
	return cmd
}
