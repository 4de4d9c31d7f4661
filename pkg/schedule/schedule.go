// Package schedule runs recurring jobs on robfig/cron.
//
// Usage:
//
//	s := schedule.New()
//	_ = s.Add("reconcile", "@every 15m", func(ctx context.Context) error {
//	    _, err := reconciler.Run(ctx)
//	    return err
//	})
//	s.Start(ctx) // stops when ctx is done
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vancyferns/near2door/pkg/logger"
)

// Task is one scheduled unit of work.
type Task func(ctx context.Context) error

// Scheduler owns a cron instance. Runs of the same job never overlap and a
// panicking job is logged, not fatal.
type Scheduler struct {
	cron *cron.Cron
	mu   sync.Mutex
	ctx  context.Context
	jobs map[string]cron.EntryID
}

func New() *Scheduler {
	cl := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		ctx:  context.Background(),
		jobs: map[string]cron.EntryID{},
	}
}

// Add registers task under name. spec accepts standard 5-field expressions
// and descriptors such as "@hourly" or "@every 15m".
func (s *Scheduler) Add(name, spec string, task Task) error {
	id, err := s.cron.AddFunc(spec, func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()

		start := time.Now()
		log := logger.L.With("job", name)
		if err := task(ctx); err != nil {
			log.Error("schedule: job failed", "error", err, "duration", time.Since(start))
			return
		}
		log.Info("schedule: job finished", "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("schedule: %s: %w", name, err)
	}

	s.mu.Lock()
	s.jobs[name] = id
	s.mu.Unlock()
	return nil
}

// Next reports the next activation of name.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// Start runs the scheduler in the background until ctx is done, then waits
// for running jobs to return.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	logger.Info("schedule: scheduler started", "jobs", len(s.cron.Entries()))

	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		logger.Info("schedule: scheduler stopped")
	}()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logger.L.Log(context.Background(), slog.LevelDebug, "cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.L.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
