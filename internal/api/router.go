package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/api/handlers"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/api/middleware"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/config"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/media"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/metrics"
	"github.com/rs/zerolog"
)

// Deps is everything the router needs. Services are interfaces so the router
// can be exercised without a database.
type Deps struct {
	Config      config.Config
	Logger      zerolog.Logger
	Users       handlers.UserService
	Events      handlers.EventService
	Tokens      middleware.TokenVerifier
	Accounts    middleware.UserLoader
	Media       media.Store
	Health      *handlers.HealthChecker
	RateLimiter *middleware.RateLimiter

	Version   string
	GitCommit string
	BuildDate string
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	requireAuth := middleware.RequireAuth(deps.Tokens, deps.Accounts)
	limit := func(tier middleware.RateLimitTier, h http.Handler) http.Handler {
		if deps.RateLimiter == nil {
			return h
		}
		return deps.RateLimiter.Limit(tier)(h)
	}

	public := func(h http.HandlerFunc) http.Handler {
		return limit(middleware.TierPublic, h)
	}
	login := func(h http.HandlerFunc) http.Handler {
		return limit(middleware.TierLogin, h)
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return limit(middleware.TierAuthenticated, requireAuth(h))
	}

	usersHandler := handlers.NewUsersHandler(deps.Users, deps.Media, cfg.Server.BaseURL)
	eventsHandler := handlers.NewEventsHandler(deps.Events, deps.Media, cfg.Server.BaseURL)

	mux := http.NewServeMux()
	route := func(pattern string, methods map[string]http.Handler) {
		mux.Handle(pattern, metrics.Instrument(pattern, methodMux(methods)))
	}

	route("/api/v1/users/register", map[string]http.Handler{
		http.MethodPost: public(usersHandler.Register),
	})
	route("/api/v1/users/login", map[string]http.Handler{
		http.MethodPost: login(usersHandler.Login),
	})
	route("/api/v1/users/forgot-password", map[string]http.Handler{
		http.MethodPost: login(usersHandler.ForgotPassword),
	})
	route("/api/v1/users/reset-password", map[string]http.Handler{
		http.MethodPost: login(usersHandler.ResetPassword),
	})
	// GET looks the segment up as a user name, PUT and DELETE as a user id.
	route("/api/v1/users/{id}", map[string]http.Handler{
		http.MethodGet:    authed(usersHandler.Profile),
		http.MethodPut:    authed(usersHandler.Update),
		http.MethodDelete: authed(usersHandler.Delete),
	})

	route("/api/v1/events", map[string]http.Handler{
		http.MethodGet:  public(eventsHandler.List),
		http.MethodPost: authed(eventsHandler.Create),
	})
	route("/api/v1/events/{id}", map[string]http.Handler{
		http.MethodGet:    public(eventsHandler.Get),
		http.MethodPut:    authed(eventsHandler.Update),
		http.MethodDelete: authed(eventsHandler.Delete),
	})
	route("/api/v1/events/{id}/attend", map[string]http.Handler{
		http.MethodPost:   authed(eventsHandler.Attend),
		http.MethodDelete: authed(eventsHandler.Unattend),
	})

	mux.Handle("/api/v1/openapi.json", OpenAPIHandler())
	mux.Handle("/version", VersionHandler(deps.Version, deps.GitCommit, deps.BuildDate))
	mux.Handle("/healthz", handlers.Healthz())
	if deps.Health != nil {
		mux.Handle("/readyz", deps.Health.Readyz())
		mux.Handle("/health", deps.Health.Health())
	}
	mux.Handle("/metrics", metrics.Handler())
	if cfg.Uploads.Dir != "" {
		mux.Handle("/uploads/", http.StripPrefix("/uploads/", uploadsHandler(cfg.Uploads.Dir)))
	}

	var handler http.Handler = mux
	handler = middleware.RequestSize(cfg.Uploads.MaxBytes)(handler)
	handler = middleware.CORS(cfg.CORS, deps.Logger)(handler)
	handler = middleware.SecurityHeaders(cfg.IsProduction())(handler)
	handler = middleware.RequestLogging(deps.Logger)(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(deps.Logger)(handler)
	return handler
}

// uploadsHandler serves stored files without directory listings.
func uploadsHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
