package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/session"
	"budget/internal/state"
	appweb "budget/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const sessionCookie = "budget_session"

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	templates  *template.Template
	store      state.Container
	sessions   *session.Registry
	categories core.Categories
	logger     *log.Logger
	now        func() time.Time

	corsOrigins  []string
	shutdownOnce sync.Once
}

type Option func(*Server)

// WithLogger sets the request and handler logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock overrides the time source used for fresh expense drafts.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithCORSOrigins sets the origins allowed to call the JSON API.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, store state.Container, sessions *session.Registry, categories core.Categories, opts ...Option) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
		},
		store:       store,
		sessions:    sessions,
		categories:  categories,
		logger:      log.Discard(),
		now:         time.Now,
		corsOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentHTTP)

	t, err := parseTemplates()
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err.Error())
	}
	s.templates = t

	s.Handler = s.routes()
	return s
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}))
	r.Use(s.requestLogger)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.Get("/static/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		})
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	r.Group(func(ui chi.Router) {
		ui.Use(securityHeaders)

		ui.Get("/", s.handleIndex)

		ui.Post("/budget/input", s.handleBudgetInput)
		ui.Post("/budget", s.handleBudgetSubmit)

		ui.Post("/expense/field", s.handleExpenseField)
		ui.Post("/expense/date", s.handleExpenseDate)
		ui.Post("/expense", s.handleExpenseSubmit)
		ui.Post("/expense/cancel", s.handleExpenseCancel)

		ui.Post("/expenses/new", s.handleExpenseNew)
		ui.Post("/expenses/{id}/edit", s.handleExpenseEdit)
		ui.Post("/expenses/{id}/delete", s.handleExpenseDelete)

		ui.Post("/filter", s.handleFilter)
		ui.Post("/reset", s.handleReset)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		api.Get("/state", s.handleAPIState)
		api.Get("/categories", s.handleAPICategories)
		api.Post("/budget", s.handleAPIBudget)
		api.Post("/expenses", s.handleAPICreateExpense)
		api.Delete("/expenses/{id}", s.handleAPIDeleteExpense)
	})

	return r
}

// requestLogger logs request start and completion with the captured status.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		ctx := r.Context()
		sl := log.NewStructuredLogger(log.FromContext(ctx))

		sl.LogHTTPStart(ctx, r, clientIP)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		sl.LogHTTPEnd(ctx, r, status, time.Since(start).Milliseconds(), clientIP)
	})
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusServiceUnavailable)
		return
	}
	if p, ok := s.store.(Pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Store not ready", log.FieldError, err.Error())
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
