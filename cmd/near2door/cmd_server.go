package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vancyferns/near2door/config"
	"github.com/vancyferns/near2door/pkg/app"
	"github.com/vancyferns/near2door/pkg/storage"
	"github.com/vancyferns/near2door/pkg/store"
)

// near2door serve — start the HTTP server.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.Boot(ctx, app.Options{Memory: memoryFlag})
		if err != nil {
			return err
		}
		defer a.Close(context.Background()) //nolint:errcheck

		return a.Serve(ctx, ":"+config.AppPort())
	},
}

// near2door route:list — print all registered routes. No backing services
// are contacted.
var routeListCmd = &cobra.Command{
	Use:     "route:list",
	Aliases: []string{"routes"},
	Short:   "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.New(store.NewMemory(), storage.NewLocalDisk(os.TempDir(), "/storage"))
		return app.PrintRoutes(cmd.OutOrStdout(), a.Router)
	},
}
