package http

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"driverdash/internal/auth"
	"driverdash/internal/dashboard"
	applog "driverdash/internal/log"
	"driverdash/internal/middleware/ratelimit"
	"driverdash/internal/middleware/security"
	"driverdash/internal/middleware/trace"
	"driverdash/internal/services"
	appweb "driverdash/web"
)

// ReadinessFunc reports whether the credential backend can serve logins.
type ReadinessFunc func(ctx context.Context) error

type Server struct {
	http.Server
	templates *template.Template
	dashboard *dashboard.Service
	logins    *services.LoginService
	sessions  *auth.SessionManager
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	logger    *applog.Logger
	ready     ReadinessFunc
	broker    func() bool
	demoCreds []auth.Credential

	shutdownOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithReadiness sets the /readyz check.
func WithReadiness(f ReadinessFunc) Option {
	return func(s *Server) { s.ready = f }
}

// WithBrokerHealth reports login activity publishing health on /readyz.
// It never fails readiness.
func WithBrokerHealth(healthy func() bool) Option {
	return func(s *Server) { s.broker = healthy }
}

// WithDemoCredentials lists credentials as hints on the login page.
func WithDemoCredentials(creds []auth.Credential) Option {
	return func(s *Server) { s.demoCreds = creds }
}

// WithLoginRateLimit limits login attempts per client per minute.
func WithLoginRateLimit(perMinute int) Option {
	return func(s *Server) {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{Requests: perMinute, Window: time.Minute})
	}
}

// WithLogger sets the request logger.
func WithLogger(l *applog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, dash *dashboard.Service, logins *services.LoginService, sessions *auth.SessionManager, opts ...Option) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		dashboard: dash,
		logins:    logins,
		sessions:  sessions,
		detector:  security.NewDetector(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentHTTP})
	}
	if s.limiter == nil {
		s.limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
	}

	t, err := appweb.Templates()
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	if sub, err := appweb.Static(); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssets(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	limitLogin := s.limiter.Middleware(s.detector.ClientIP, s.handleLoginLimited)
	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.Handle("POST /login", limitLogin(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("POST /logout", s.handleLogout)

	signedIn := func(h http.HandlerFunc) http.Handler {
		return s.sessions.RequireSignedIn(security.NoStore(h))
	}
	mux.Handle("GET /{$}", signedIn(s.handleIndex))
	mux.Handle("GET /ui/period", signedIn(s.handlePeriodPartial))
	mux.Handle("GET /api/period", signedIn(s.handlePeriodJSON))
	mux.Handle("GET /api/months", signedIn(s.handleMonthsJSON))

	var h http.Handler = mux
	h = s.sessions.LoadSession(h)
	h = s.detector.Middleware(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = trace.NewMiddleware(s.logger, s.detector.ClientIP).Handler(h)
	return h
}

// Shutdown gracefully shuts down the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(r.Context()).Warn("Readiness check failed", applog.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	events := "disabled"
	if s.broker != nil {
		events = "ok"
		if !s.broker() {
			events = "degraded"
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "ready\nactivity_events=%s\nlogin_clients=%d\nsuspicious_requests=%d\n",
		events, s.limiter.ActiveClients(), s.detector.SuspiciousCount())
}

// render executes a template, answering 500 when templates are missing or fail.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		applog.FromContext(r.Context()).Error("Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		applog.FromContext(r.Context()).Error("Template execution failed", applog.FieldError, err, "template", name)
	}
}
