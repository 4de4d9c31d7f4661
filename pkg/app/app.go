// Package app is the Near2Door composition root. It boots the store, cache,
// storage disk and services from configuration, builds the HTTP kernel and
// runs the server:
//
//	a, err := app.Boot(ctx, app.Options{})
//	if err != nil { ... }
//	defer a.Close(context.Background())
//	return a.Serve(ctx, ":"+config.AppPort())
//
// Tests build an Application over an in-memory store instead:
//
//	a := app.New(store.NewMemory(), storage.NewLocalDisk(dir, "/storage"))
//	srv := httptest.NewServer(a.Handler())
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vancyferns/near2door/app/repositories"
	"github.com/vancyferns/near2door/app/routes"
	"github.com/vancyferns/near2door/app/services"
	"github.com/vancyferns/near2door/config"
	"github.com/vancyferns/near2door/pkg/cache"
	"github.com/vancyferns/near2door/pkg/event"
	"github.com/vancyferns/near2door/pkg/logger"
	"github.com/vancyferns/near2door/pkg/middleware"
	"github.com/vancyferns/near2door/pkg/router"
	"github.com/vancyferns/near2door/pkg/storage"
	"github.com/vancyferns/near2door/pkg/store"
)

// Options controls Boot.
type Options struct {
	// Memory replaces MongoDB with the in-process store.
	Memory bool
}

// Application holds every booted component.
type Application struct {
	Store    store.Store
	Repos    *repositories.Repositories
	Services *services.Services
	Events   *event.Bus
	Cache    *cache.Redis
	Disk     storage.Disk
	Router   *router.Router

	limiter middleware.Limiter
	closers []func(context.Context) error
}

// Option customises New.
type Option func(*Application)

// WithCache attaches a Redis connection for the finance cache and the
// distributed rate limiter.
func WithCache(c *cache.Redis) Option {
	return func(a *Application) { a.Cache = c }
}

// WithLimiter overrides the rate limiter.
func WithLimiter(l middleware.Limiter) Option {
	return func(a *Application) { a.limiter = l }
}

// New wires repositories, services and the HTTP kernel over st and disk.
func New(st store.Store, disk storage.Disk, opts ...Option) *Application {
	a := &Application{Store: st, Disk: disk, Events: event.New()}
	for _, opt := range opts {
		opt(a)
	}

	if a.limiter == nil {
		if a.Cache != nil {
			a.limiter = middleware.NewRedisLimiter(a.Cache.Client(), config.RateLimit(), time.Minute)
		} else {
			a.limiter = middleware.NewMemoryLimiter(config.RateLimit(), time.Minute)
		}
	}

	svcOpts := services.Options{Events: a.Events, Disk: disk}
	if a.Cache != nil {
		svcOpts.Cache = a.Cache
	}

	a.Repos = repositories.New(st)
	a.Services = services.New(a.Repos, svcOpts)
	registerListeners(a.Events)
	a.Router = buildRouter(a, routes.Options{MaxUploadBytes: config.MaxUploadBytes()})
	return a
}

// Boot connects every backing service named by the configuration. Redis is
// optional: when it is unreachable the app runs without cache and with the
// in-memory rate limiter.
func Boot(ctx context.Context, opts Options) (*Application, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	env := config.AppEnv()
	logger.Setup(env)

	var (
		st      store.Store
		closers []func(context.Context) error
	)
	if opts.Memory {
		st = store.NewMemory()
		logger.Warn("using in-memory store; data is lost on exit")
	} else {
		m, err := store.Connect(ctx, config.MongoURI(), config.MongoDatabase(), config.MongoTimeout())
		if err != nil {
			return nil, err
		}
		if err := m.EnsureIndexes(ctx); err != nil {
			logger.Warn("index creation failed", "error", err)
		}
		if config.LogToMongo() {
			h := logger.NewMongoHandler(m.Client().Database(m.Database()).Collection(store.Logs), logger.Level(env))
			logger.Setup(env, h)
			closers = append(closers, func(context.Context) error { h.Close(); return nil })
		}
		st = m
	}

	var appOpts []Option
	if addr := config.RedisAddr(); addr != "" {
		rc, err := cache.Connect(ctx, addr, config.RedisPassword())
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache", "addr", addr, "error", err)
		} else {
			appOpts = append(appOpts, WithCache(rc))
			closers = append(closers, func(context.Context) error { return rc.Close() })
		}
	}

	disk, err := storage.Open(ctx, storage.FromConfig())
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}

	a := New(st, disk, appOpts...)
	a.closers = append(closers, a.Store.Close)
	logger.Info("near2door booted", "env", env, "memory", opts.Memory, "cache", a.Cache != nil, "storage", config.StorageDefault())
	return a, nil
}

// Close releases everything Boot opened, in reverse order.
func (a *Application) Close(ctx context.Context) error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
