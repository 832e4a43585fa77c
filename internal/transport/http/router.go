package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	credentialhandler "sbt/internal/credential/handler"
	gatehandler "sbt/internal/gate/handler"
	"sbt/internal/platform/health"
	"sbt/pkg/platform/middleware/auth"
	"sbt/pkg/platform/middleware/request"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxBodyBytes          = 16 << 10
)

// Deps carries everything the router mounts. Metrics and Gatherer are optional.
type Deps struct {
	Logger         *slog.Logger
	Credentials    *credentialhandler.Handler
	Gate           *gatehandler.Handler
	Health         *health.Handler
	Validator      auth.JWTValidator
	Metrics        *request.Metrics
	Gatherer       prometheus.Gatherer
	RequestTimeout time.Duration
}

// NewRouter wires all endpoints with the middleware stack.
// Reads are public; mutations run behind bearer authentication.
func NewRouter(d Deps) http.Handler {
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(request.ClientMetadata)
	r.Use(request.Logger(d.Logger))
	if d.Metrics != nil {
		r.Use(request.LatencyMiddleware(d.Metrics))
	}
	r.Use(request.Timeout(timeout))

	if d.Health != nil {
		d.Health.Register(r)
	}
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(request.BodyLimit(maxBodyBytes))
		d.Credentials.Register(r)
		d.Gate.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(d.Validator, d.Logger))
			d.Credentials.RegisterProtected(r)
			d.Gate.RegisterProtected(r)
		})
	})

	return r
}
