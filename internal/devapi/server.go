package devapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/yndnr/sessiongate/internal/gateway"
	"github.com/yndnr/sessiongate/internal/telemetry/logger"
	"github.com/yndnr/sessiongate/internal/telemetry/metric"
)

// Config configures the dev API server.
type Config struct {
	// Addr is the listen address. Default: 127.0.0.1:8000.
	Addr string
	// Secret signs tokens. Empty generates a random key per process.
	Secret []byte
	// TokenTTL is the lifetime of issued tokens. Default: 24h.
	TokenTTL time.Duration
	// MinPasswordLength is enforced on registration and reset. Default: 8.
	MinPasswordLength int
	// ResetTTL is the lifetime of a password reset token. Default: 30m.
	ResetTTL time.Duration
	// BcryptCost is the password hashing cost. Default: bcrypt.DefaultCost.
	BcryptCost int
	// Paths are the endpoint paths. Empty entries use the gateway defaults.
	Paths gateway.Paths
}

// DefaultConfig returns the default dev API configuration.
func DefaultConfig() Config {
	return Config{
		Addr:              "127.0.0.1:8000",
		TokenTTL:          24 * time.Hour,
		MinPasswordLength: 8,
		ResetTTL:          30 * time.Minute,
		BcryptCost:        bcrypt.DefaultCost,
		Paths:             gateway.DefaultPaths(),
	}
}

// Server is the dev auth API.
type Server struct {
	cfg     Config
	users   *directory
	tokens  *tokenIssuer
	router  chi.Router
	http    *http.Server
	logger  logger.Logger
	metrics *metric.Registry
	mailbox ResetSink

	resets atomic.Int64
}

// ResetSink receives each issued password reset token in place of an email.
type ResetSink func(email, token string)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics exposes reg at /metrics.
func WithMetrics(reg *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = reg
	}
}

// WithResetSink delivers reset tokens to fn. The default logs the reset
// link at info level.
func WithResetSink(fn ResetSink) Option {
	return func(s *Server) {
		s.mailbox = fn
	}
}

// New creates a dev API server.
func New(cfg Config, opts ...Option) (*Server, error) {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = def.TokenTTL
	}
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = def.MinPasswordLength
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = def.ResetTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = def.BcryptCost
	}
	cfg.Paths = cfg.Paths.WithDefaults()

	s := &Server{cfg: cfg, logger: logger.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "devapi")
	if s.mailbox == nil {
		s.mailbox = func(email, tok string) {
			s.logger.Info("password reset requested", "email", email, "link", "/reset-password?token="+tok)
		}
	}

	tokens, err := newTokenIssuer(cfg.Secret, cfg.TokenTTL, time.Now)
	if err != nil {
		return nil, err
	}
	s.tokens = tokens
	s.users = newDirectory(cfg.BcryptCost, cfg.ResetTTL, time.Now)
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "accounts": s.users.count()})
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Post(s.cfg.Paths.Login, s.login)
	r.Post(s.cfg.Paths.Register, s.register)
	r.Post(s.cfg.Paths.ForgotPassword, s.forgotPassword)
	r.Post(s.cfg.Paths.ResetPassword, s.resetPassword)
	r.Post(s.cfg.Paths.Verify, s.verify)
	r.Get(s.cfg.Paths.Profile, s.profile)
	return r
}

// requestLogger logs each request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", r.Header.Get("X-Request-ID"),
			"duration", time.Since(start),
		)
	})
}

// Handler returns the HTTP handler, for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ResetRequests returns how many reset emails would have been sent.
func (s *Server) ResetRequests() int64 {
	return s.resets.Load()
}

// CheckResetToken reports whether tok is the live reset token for email.
func (s *Server) CheckResetToken(email, tok string) bool {
	return s.users.checkReset(email, tok)
}

// ListenAndServe serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("dev api listening", "addr", ln.Addr().String())
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
