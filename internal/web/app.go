package web

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ShopFront/internal/account"
	"ShopFront/internal/cart"
	"ShopFront/internal/catalog"
	"ShopFront/internal/manager"
	"ShopFront/internal/session"
	"ShopFront/internal/store"
	"ShopFront/pkg/kit"
)

type Deps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	Users    store.UserStore
	Products store.ProductStore
	Sessions *session.Manager

	// Publisher may be nil; checkout then skips order events.
	Publisher *cart.Publisher
}

const (
	loginLimitPerMin  = 5
	signupLimitPerMin = 3
	limitWindow       = time.Minute

	readyTimeout = 1 * time.Second
)

func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)
	setupRoutes(r, deps)

	return r
}

func setupMiddleware(r *chi.Mux, deps Deps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer(deps.Log))
	r.Use(kit.Logging(deps.Log))
	r.Use(deps.Sessions.Middleware)
}

func setupMetrics(r *chi.Mux, deps Deps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePattern))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func setupRoutes(r *chi.Mux, deps Deps) {
	catalogSvc := &catalog.Service{Products: deps.Products}

	catalogSrv := &catalog.Server{Log: deps.Log, Svc: catalogSvc, Sessions: deps.Sessions}
	accountSrv := &account.Server{
		Log:      deps.Log,
		Svc:      &account.Service{Users: deps.Users},
		Sessions: deps.Sessions,
	}
	cartSrv := &cart.Server{
		Log:       deps.Log,
		Catalog:   catalogSvc,
		Engine:    &cart.Engine{Products: deps.Products},
		Sessions:  deps.Sessions,
		Publisher: deps.Publisher,
	}
	managerSrv := &manager.Server{
		Log:      deps.Log,
		Svc:      &manager.Service{Products: deps.Products},
		Sessions: deps.Sessions,
	}

	loginLimiter := kit.NewIPRateLimiter(loginLimitPerMin, limitWindow)
	signupLimiter := kit.NewIPRateLimiter(signupLimitPerMin, limitWindow)

	r.Get("/", catalogSrv.Home)
	r.Get("/catalogue", catalogSrv.Catalogue)
	r.Get("/about", catalogSrv.About)

	r.Get("/signup", accountSrv.SignupPage)
	r.With(signupLimiter.Middleware).Post("/signup", accountSrv.Signup)
	r.Get("/login", accountSrv.LoginPage)
	r.With(loginLimiter.Middleware).Post("/login", accountSrv.Login)
	r.Get("/logout", accountSrv.Logout)

	r.Get("/cart", cartSrv.View)
	r.Post("/add_to_cart/{id}", cartSrv.Add)
	r.Post("/remove_from_cart/{id}", cartSrv.Remove)
	r.Post("/checkout", cartSrv.Checkout)

	r.Route("/manager", func(mr chi.Router) {
		mr.Use(managerSrv.RequireManager)
		mr.Get("/", managerSrv.List)
		mr.Get("/add", managerSrv.AddPage)
		mr.Post("/add", managerSrv.Add)
		mr.Get("/edit/{id}", managerSrv.EditPage)
		mr.Post("/edit/{id}", managerSrv.Edit)
		mr.Post("/delete/{id}", managerSrv.Delete)
	})

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteText(w, http.StatusOK, "PING OK")
	})
	r.Get("/routes", routeList(r))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", readyz(deps))
}

// routeList renders the live route table, one "METHOD path" per line.
func routeList(mux *chi.Mux) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var lines []string
		walker := func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			lines = append(lines, method+" "+strings.TrimSuffix(route, "/*"))
			return nil
		}
		if err := chi.Walk(mux, walker); err != nil {
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
			return
		}
		sort.Strings(lines)
		kit.WriteText(w, http.StatusOK, strings.Join(lines, "\n"))
	}
}

func readyz(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		for name, ping := range map[string]func(context.Context) error{
			"users":    deps.Users.Ping,
			"products": deps.Products.Ping,
			"sessions": deps.Sessions.Store.Ping,
		} {
			if err := ping(ctx); err != nil {
				deps.Log.Warn("readyz failed", zap.String("dep", name), zap.Error(err))
				kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", map[string]any{"dep": name})
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
