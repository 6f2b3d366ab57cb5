package router

import (
	"context"
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domainerror "github.com/fleetlog/fleetlog/domain/error"
	"github.com/fleetlog/fleetlog/infrastructure/http/handler"
	"github.com/fleetlog/fleetlog/infrastructure/http/middleware"
	"github.com/fleetlog/fleetlog/infrastructure/http/response"
	"github.com/fleetlog/fleetlog/infrastructure/service/metrics"
)

type Config struct {
	Auth           *handler.AuthHandler
	ChangeRequests *handler.ChangeRequestHandler
	Fleet          *handler.FleetHandler
	// Events streams change request events to admins; nil disables the route
	Events         http.Handler

	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
	LoginPolicy         middleware.RateLimitPolicy

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// HealthCheck reports whether backing stores are reachable
	HealthCheck func(ctx context.Context) error
}

const eventsPath = "/v1/requests/events"

// New builds the HTTP handler of the service
func New(cfg Config) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	if cfg.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(cfg.Metrics))
	}

	auth := cfg.AuthMiddleware

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/auth/login", cfg.RateLimitMiddleware.Limit(cfg.LoginPolicy, cfg.Auth.Login)).Methods(http.MethodPost)
	v1.HandleFunc("/auth/me", auth.RequireAuth(cfg.Auth.Me)).Methods(http.MethodGet)

	requests := cfg.ChangeRequests
	v1.HandleFunc("/requests", auth.RequireAdmin(requests.ListAll)).Methods(http.MethodGet)
	v1.HandleFunc("/requests", auth.RequireAuth(requests.Create)).Methods(http.MethodPost)
	v1.HandleFunc("/requests/pending", auth.RequireAdmin(requests.ListPending)).Methods(http.MethodGet)
	v1.HandleFunc("/requests/mine", auth.RequireAuth(requests.ListMine)).Methods(http.MethodGet)
	v1.HandleFunc("/requests/processed", auth.RequireAdmin(requests.ClearProcessed)).Methods(http.MethodDelete)
	if cfg.Events != nil {
		v1.HandleFunc("/requests/events", auth.RequireAdmin(cfg.Events.ServeHTTP)).Methods(http.MethodGet)
	}
	v1.HandleFunc("/requests/{id:[0-9]+}", auth.RequireAuth(requests.Get)).Methods(http.MethodGet)
	v1.HandleFunc("/requests/{id:[0-9]+}/diff", auth.RequireAuth(requests.Diff)).Methods(http.MethodGet)
	v1.HandleFunc("/requests/{id:[0-9]+}/resolve", auth.RequireAdmin(requests.Resolve)).Methods(http.MethodPost)

	fleet := cfg.Fleet
	v1.HandleFunc("/drivers", auth.RequireAuth(fleet.ListDrivers)).Methods(http.MethodGet)
	v1.HandleFunc("/drivers/{id:[0-9]+}", auth.RequireAuth(fleet.GetDriver)).Methods(http.MethodGet)
	v1.HandleFunc("/vehicles", auth.RequireAuth(fleet.ListVehicles)).Methods(http.MethodGet)
	v1.HandleFunc("/vehicles/{id:[0-9]+}", auth.RequireAuth(fleet.GetVehicle)).Methods(http.MethodGet)

	r.HandleFunc("/health", health(cfg.HealthCheck)).Methods(http.MethodGet)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	var h http.Handler = r
	h = compress(h)
	h = middleware.CORSMiddleware(h, cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials)
	return middleware.CorrelationIDMiddleware(h)
}

// compress gzips every response except the event stream, whose frames must
// reach the client as they are flushed
func compress(next http.Handler) http.Handler {
	gzipped := gziphandler.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == eventsPath {
			next.ServeHTTP(w, r)
			return
		}
		gzipped.ServeHTTP(w, r)
	})
}

func health(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				response.FromError(w, domainerror.ErrDatabaseUnavailable(err), map[string]string{"status": "unhealthy"})
				return
			}
		}
		response.Success(w, http.StatusOK, "healthy", map[string]string{"status": "healthy"})
	}
}
