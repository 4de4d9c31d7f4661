package app

import (
	"net/http"

	"github.com/vancyferns/near2door/app/routes"
	"github.com/vancyferns/near2door/config"
	"github.com/vancyferns/near2door/pkg/metrics"
	"github.com/vancyferns/near2door/pkg/middleware"
	"github.com/vancyferns/near2door/pkg/reqid"
	"github.com/vancyferns/near2door/pkg/response"
	"github.com/vancyferns/near2door/pkg/router"
	"github.com/vancyferns/near2door/pkg/storage"
)

// Handler returns the root HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.Router.Handler()
}

// buildRouter assembles the global middleware stack and every route.
func buildRouter(a *Application, opts routes.Options) *router.Router {
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics — outermost for accurate total latency
	//  2. Recovery          — catches panics before they kill the goroutine
	//  3. Request ID        — inject unique ID before anything logs
	//  4. Logger            — logs request_id from context
	//  5. CORS              — set CORS headers, answer preflights
	//  6. Rate limiter      — reject abusers early
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(config.CORSOrigins()...)))
	r.Use(middleware.RateLimit(a.limiter))

	r.NotFound(response.NotFound)
	r.MethodNotAllowed(response.MethodNotAllowed)

	r.HandleFunc("/metrics", metrics.Handler())
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := a.Store.Ping(req.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		response.Success(w, map[string]string{"status": "ok"})
	})

	if local, ok := a.Disk.(*storage.LocalDisk); ok {
		r.Handle("/storage/*", http.StripPrefix("/storage/", http.FileServer(http.Dir(local.Root()))))
	}

	routes.RegisterAPI(r, a.Services, opts)
	return r
}
