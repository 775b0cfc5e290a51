// Package server exposes a template session over HTTP: upload a template,
// fill its placeholders in an HTML form, preview the result and download it
// as output.html. Each browser gets its own workspace, tracked with a cookie
// session.
package server

import (
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-tplform/pkg/logging"
	rendertemplate "github.com/goliatone/go-tplform/pkg/render/template"
	"github.com/goliatone/go-tplform/pkg/render/template/gotemplate"
)

//go:embed templates/page.html
var pageSource string

const (
	workspaceKey = "workspace"

	// DefaultMaxUploadBytes caps uploaded template size.
	DefaultMaxUploadBytes int64 = 8 << 20
	// DefaultLifetime bounds how long an idle workspace is kept.
	DefaultLifetime = 12 * time.Hour
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and diagnostics logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		s.logger = logging.OrNop(logger)
	}
}

// WithSessionManager replaces the default in-memory cookie session manager.
func WithSessionManager(sm *scs.SessionManager) Option {
	return func(s *Server) {
		if sm != nil {
			s.sessions = sm
		}
	}
}

// WithLifetime sets both the cookie lifetime and the idle workspace TTL.
func WithLifetime(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.lifetime = d
		}
	}
}

// WithMaxUploadBytes caps multipart upload size.
func WithMaxUploadBytes(limit int64) Option {
	return func(s *Server) {
		if limit > 0 {
			s.maxUpload = limit
		}
	}
}

// Server serves the template workspace UI and JSON API.
type Server struct {
	sessions   *scs.SessionManager
	workspaces *workspaces
	page       rendertemplate.Executable
	logger     logging.Logger
	lifetime   time.Duration
	maxUpload  int64
}

// New constructs a Server. factory builds one controller per workspace.
func New(factory ControllerFactory, options ...Option) (*Server, error) {
	if factory == nil {
		return nil, errors.New("server: controller factory is required")
	}

	s := &Server{
		logger:    logging.NewNop(),
		lifetime:  DefaultLifetime,
		maxUpload: DefaultMaxUploadBytes,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	if s.sessions == nil {
		sm := scs.New()
		sm.Lifetime = s.lifetime
		sm.Cookie.Name = "tplform_session"
		sm.Cookie.HttpOnly = true
		sm.Cookie.SameSite = http.SameSiteLaxMode
		s.sessions = sm
	}

	engine, err := gotemplate.New()
	if err != nil {
		return nil, fmt.Errorf("server: page engine: %w", err)
	}
	page, err := engine.Compile(pageSource)
	if err != nil {
		return nil, fmt.Errorf("server: compile page: %w", err)
	}
	s.page = page
	s.workspaces = newWorkspaces(factory, s.lifetime)
	return s, nil
}

// Handler assembles the chi router with middleware and routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.sessions.LoadAndSave)
	r.Use(s.withWorkspace)

	r.Get("/", s.showPage)
	r.Post("/template", s.uploadTemplate)
	r.Post("/render", s.renderForm)
	r.Get("/download", s.download)

	r.Route("/api", func(r chi.Router) {
		r.Get("/session", s.apiSession)
		r.Post("/template", s.apiUpload)
		r.Post("/render", s.apiRender)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
