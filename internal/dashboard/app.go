package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"MiniPOS/internal/auth"
	"MiniPOS/internal/billing"
	"MiniPOS/internal/catalog"
	"MiniPOS/internal/sale"
	"MiniPOS/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Deps struct {
	Auth    *auth.Server
	JWT     *auth.TokenMaker
	Catalog *catalog.Server
	Sales   *sale.Server
	Bills   *billing.Server
}

const (
	readyTimeout = 1 * time.Second

	loginLimit  = 5
	loginWindow = time.Minute
)

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps.Catalog.Store, httpDeps.Log))

	loginLimiter := kit.NewIPRateLimiter(loginLimit, loginWindow)
	r.With(loginLimiter.Middleware).Post("/auth/login", deps.Auth.HandleLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.Require(deps.JWT))

		pr.Get("/auth/whoami", deps.Auth.HandleWhoAmI)
		pr.Mount("/products", deps.Catalog.Routes())
		pr.Mount("/sales", deps.Sales.Routes())
		pr.Mount("/bills", deps.Bills.Routes())
	})

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware)

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

type pinger interface {
	Ping(ctx context.Context) error
}

func readyz(store pinger, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			kit.OrNop(log).Warn("readyz failed: catalog", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "catalog not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
