package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/financeguardian/dashboard/internal/database"
	"github.com/financeguardian/dashboard/internal/modules/auth"
	"github.com/financeguardian/dashboard/internal/modules/catalog"
	"github.com/financeguardian/dashboard/internal/modules/marketdata"
	"github.com/financeguardian/dashboard/internal/modules/news"
	"github.com/financeguardian/dashboard/internal/modules/trends"
	"github.com/financeguardian/dashboard/internal/session"
)

// Config holds server configuration
type Config struct {
	Port    int
	Log     zerolog.Logger
	DevMode bool

	DB         *database.DB
	Sessions   *session.Store
	SessionTTL time.Duration

	Auth    *auth.Client
	Lookup  marketdata.Backend
	Trends  *trends.Service
	News    *news.Client
	Catalog *catalog.Catalog

	NewsEnabled bool
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger

	db         *database.DB
	sessions   *session.Store
	sessionTTL time.Duration

	auth    *auth.Client
	lookup  marketdata.Backend
	trends  *trends.Service
	news    *news.Client
	catalog *catalog.Catalog

	newsEnabled bool
	views       *views
	startedAt   time.Time
}

// New creates a new HTTP server
func New(cfg Config) (*Server, error) {
	v, err := newViews()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		db:          cfg.DB,
		sessions:    cfg.Sessions,
		sessionTTL:  cfg.SessionTTL,
		auth:        cfg.Auth,
		lookup:      cfg.Lookup,
		trends:      cfg.Trends,
		news:        cfg.News,
		catalog:     cfg.Catalog,
		newsEnabled: cfg.NewsEnabled,
		views:       v,
		startedAt:   time.Now(),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health and system status
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/system/status", s.handleSystemStatus)

	// Views, gated by the route guard
	s.router.Get(PathLogin, s.guarded(s.handleLoginPage))
	s.router.Post(PathLogin, s.guarded(s.handleLoginSubmit))
	s.router.Post("/logout", s.handleLogout)
	s.router.Get(PathDashboard, s.guarded(s.handleDashboard))
	s.router.Get(PathTicker, s.guarded(s.handleTicker))

	// Data API for the views
	s.router.Get("/api/trends/{symbol}", s.handleTrendsAPI)

	// Everything else resolves through the guard (always to login)
	s.router.NotFound(s.guarded(func(w http.ResponseWriter, r *http.Request, _ *session.Session) {
		http.Redirect(w, r, PathLogin, http.StatusSeeOther)
	}))
}

// guarded applies ResolveRoute before invoking the view handler, passing
// the loaded session (nil when logged out) through to it.
func (s *Server) guarded(next func(http.ResponseWriter, *http.Request, *session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := s.currentSession(r)

		switch ResolveRoute(r.URL.Path, sess != nil) {
		case DecisionRedirectLogin:
			http.Redirect(w, r, PathLogin, http.StatusSeeOther)
		case DecisionRedirectDashboard:
			http.Redirect(w, r, PathDashboard, http.StatusSeeOther)
		default:
			next(w, r, sess)
		}
	}
}

// currentSession loads the session named by the request cookie. Expired or
// unknown sessions read as nil; store errors are logged and treated as
// logged-out rather than failing the request.
func (s *Server) currentSession(r *http.Request) *session.Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}

	sess, err := s.sessions.Get(cookie.Value)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load session")
		return nil
	}
	return sess
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
