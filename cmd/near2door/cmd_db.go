package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vancyferns/near2door/database/seeders"
	"github.com/vancyferns/near2door/pkg/app"
)

// boot opens the application for a one-shot command.
func boot(ctx context.Context) (*app.Application, error) {
	return app.Boot(ctx, app.Options{Memory: memoryFlag})
}

// near2door seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.Background()) //nolint:errcheck

		fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
		return seeders.RunAll(ctx, a.Services, cmd.OutOrStdout())
	},
}

// near2door reconcile
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Approve owners of open shops and report orphan shops",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.Background()) //nolint:errcheck

		report, err := a.Services.Reconcile.Run(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "owners approved: %d\n", len(report.OwnersApproved))
		fmt.Fprintf(out, "owners linked:   %d\n", len(report.OwnersLinked))
		fmt.Fprintf(out, "orphan shops:    %d\n", len(report.OrphanShops))
		for _, id := range report.OrphanShops {
			fmt.Fprintln(out, "  •", id)
		}
		if report.Failures > 0 {
			return fmt.Errorf("reconcile: %d repairs failed", report.Failures)
		}
		return nil
	},
}

// near2door db:indexes
var indexesCmd = &cobra.Command{
	Use:   "db:indexes",
	Short: "Create the MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.Background()) //nolint:errcheck

		if err := a.EnsureIndexes(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Indexes are up to date.")
		return nil
	},
}
