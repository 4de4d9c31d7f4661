package app

import (
	"context"

	"github.com/vancyferns/near2door/config"
	"github.com/vancyferns/near2door/internal/server"
	"github.com/vancyferns/near2door/pkg/logger"
	"github.com/vancyferns/near2door/pkg/middleware"
	"github.com/vancyferns/near2door/pkg/schedule"
)

// Serve runs the HTTP server on addr until ctx is done. While serving it
// also sweeps idle rate-limit buckets and runs the reconcile pass on
// RECONCILE_SCHEDULE.
func (a *Application) Serve(ctx context.Context, addr string) error {
	if mem, ok := a.limiter.(*middleware.MemoryLimiter); ok {
		go mem.RunSweeper(ctx, limiterSweepInterval)
	}

	if spec := config.ReconcileSchedule(); spec != "" {
		sched := schedule.New()
		err := sched.Add("reconcile", spec, func(ctx context.Context) error {
			_, err := a.Services.Reconcile.Run(ctx)
			return err
		})
		if err != nil {
			return err
		}
		sched.Start(ctx)
		if next, ok := sched.Next("reconcile"); ok {
			logger.Info("reconcile scheduled", "spec", spec, "next", next)
		}
	}

	return server.Run(ctx, addr, a.Handler())
}
