// Package httptransport assembles the HTTP surface: middleware, probes,
// metrics and the credential routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"credverify/internal/platform/health"
	"credverify/pkg/platform/middleware/caller"
	"credverify/pkg/platform/middleware/request"
	"credverify/pkg/platform/middleware/requesttime"
)

const (
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 64 << 10
)

// RouteRegistrar is implemented by domain handlers.
type RouteRegistrar interface {
	RegisterPublic(r chi.Router)
	RegisterAuthenticated(r chi.Router)
}

// Deps carries everything the router mounts.
type Deps struct {
	Logger   *slog.Logger
	Verifier caller.TokenVerifier
	Health   *health.Handler
	// Gatherer serves /metrics; nil leaves the route unmounted.
	Gatherer prometheus.Gatherer
	Metrics  *request.Metrics
	Handlers []RouteRegistrar
}

// NewRouter wires all endpoints with the shared middleware chain.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(d.Logger))
	r.Use(request.LatencyMiddleware(d.Metrics, routePattern))
	r.Use(request.Timeout(requestTimeout))
	r.Use(request.ContentTypeJSON)
	r.Use(request.BodyLimit(maxBodyBytes))

	if d.Health != nil {
		d.Health.Register(r)
	}
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	for _, h := range d.Handlers {
		h.RegisterPublic(r)
	}
	r.Group(func(r chi.Router) {
		r.Use(caller.RequireCaller(d.Verifier, d.Logger))
		for _, h := range d.Handlers {
			h.RegisterAuthenticated(r)
		}
	})

	return r
}

// routePattern keeps the latency label cardinality bounded by route, not path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
