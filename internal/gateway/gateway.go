package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/sessiongate/internal/core/domain"
	"github.com/yndnr/sessiongate/internal/telemetry/logger"
)

// Operation names used in errors, logs and metric labels.
const (
	OpLogin         = "login"
	OpRegister      = "register"
	OpPasswordReset = "password_reset"
	OpResetPassword = "reset_password"
	OpVerify        = "verify"
	OpProfile       = "profile"
)

// MessageRegistered is returned when a successful registration carries no message.
const MessageRegistered = "Account created successfully."

// SessionStore is the part of the session store the gateway reads and clears.
type SessionStore interface {
	Get() (*domain.Session, bool)
	// ClearIf removes the session only while it still holds token.
	ClearIf(token string) (bool, error)
}

// Metrics receives call observations. *metric.Registry implements it.
type Metrics interface {
	ObserveGatewayCall(op, outcome string, seconds float64)
	IncSessionClear()
}

type nopMetrics struct{}

func (nopMetrics) ObserveGatewayCall(string, string, float64) {}
func (nopMetrics) IncSessionClear()                           {}

// Gateway is the auth API client.
type Gateway struct {
	mu  sync.RWMutex
	cfg Config

	client  *http.Client
	store   SessionStore
	limiter *rate.Limiter
	metrics Metrics
	logger  logger.Logger
	now     func() time.Time
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the HTTP client. Config.Timeout is ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		g.client = c
	}
}

// WithTLSConfig sets the client TLS settings, typically to trust a private
// CA. It keeps Config.Timeout.
func WithTLSConfig(tc *tls.Config) Option {
	return func(g *Gateway) {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = tc
		g.client = &http.Client{Timeout: g.cfg.Timeout, Transport: t}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(g *Gateway) {
		if m != nil {
			g.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) {
		g.logger = l
	}
}

// WithClock replaces time.Now for session issuance timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// New creates a gateway bound to store.
func New(cfg Config, store SessionStore, opts ...Option) (*Gateway, error) {
	if store == nil {
		return nil, errors.New("gateway: session store is required")
	}

	base, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	cfg.BaseURL = base
	cfg.Paths = cfg.Paths.WithDefaults()
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}

	g := &Gateway{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		store:   store,
		metrics: nopMetrics{},
		logger:  logger.Default(),
		now:     time.Now,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "gateway")
	return g, nil
}

// BaseURL returns the current API address.
func (g *Gateway) BaseURL() string {
	return g.config().BaseURL
}

// SetBaseURL switches the API address for subsequent calls.
func (g *Gateway) SetBaseURL(raw string) error {
	base, err := normalizeBaseURL(raw)
	if err != nil {
		return err
	}

	g.mu.Lock()
	old := g.cfg.BaseURL
	g.cfg.BaseURL = base
	g.mu.Unlock()

	if old != base {
		g.logger.Info("api address changed", "from", old, "to", base)
	}
	return nil
}

func (g *Gateway) config() Config {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cfg
}

// authHeader returns the Authorization value for the current session, if any.
func (g *Gateway) authHeader() string {
	if sess, ok := g.store.Get(); ok {
		return sess.AuthorizationHeader()
	}
	return ""
}

type loginResponse struct {
	Token     string     `json:"token"`
	SubjectID string     `json:"subjectId"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// Login exchanges credentials for a session. The caller decides whether to
// store it.
func (g *Gateway) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	var resp loginResponse
	status, err := g.do(ctx, request{
		op:     OpLogin,
		method: http.MethodPost,
		path:   g.config().Paths.Login,
		body:   creds,
		auth:   g.authHeader(),
	}, &resp)
	if err != nil {
		return domain.Session{}, err
	}
	if resp.Token == "" {
		return domain.Session{}, normalizePayload(OpLogin, status, errors.New("login response has no token"))
	}

	sess := domain.Session{
		Token:     resp.Token,
		SubjectID: resp.SubjectID,
		IssuedAt:  g.now(),
	}
	if resp.ExpiresAt != nil {
		sess.ExpiresAt = *resp.ExpiresAt
	}
	return sess, nil
}

// Register creates an account.
func (g *Gateway) Register(ctx context.Context, reg domain.Registration) (domain.Confirmation, error) {
	var resp domain.Confirmation
	_, err := g.do(ctx, request{
		op:     OpRegister,
		method: http.MethodPost,
		path:   g.config().Paths.Register,
		body:   reg,
		auth:   g.authHeader(),
	}, &resp)
	if err != nil {
		return domain.Confirmation{}, err
	}
	if resp.Message == "" {
		resp.Message = MessageRegistered
	}
	return resp, nil
}

// RequestPasswordReset asks the server to email a reset link.
//
// With NonEnumeratingReset a 404 is reported as the generic confirmation.
func (g *Gateway) RequestPasswordReset(ctx context.Context, email string) (domain.Confirmation, error) {
	cfg := g.config()

	var resp domain.Confirmation
	_, err := g.do(ctx, request{
		op:     OpPasswordReset,
		method: http.MethodPost,
		path:   cfg.Paths.ForgotPassword,
		body:   map[string]string{"email": email},
		auth:   g.authHeader(),
	}, &resp)
	if err != nil {
		if cfg.NonEnumeratingReset && domain.IsKind(err, domain.KindNotFound) {
			return domain.Confirmation{Message: domain.MessageResetRequested}, nil
		}
		return domain.Confirmation{}, err
	}
	if resp.Message == "" {
		resp.Message = domain.MessageResetRequested
	}
	return resp, nil
}

// ResetPassword redeems a reset token for a new password. An invalid or
// expired token is reported by the server as a validation failure.
func (g *Gateway) ResetPassword(ctx context.Context, token, newPassword string) (domain.Confirmation, error) {
	var resp domain.Confirmation
	_, err := g.do(ctx, request{
		op:     OpResetPassword,
		method: http.MethodPost,
		path:   g.config().Paths.ResetPassword,
		body:   domain.PasswordReset{Token: token, NewPassword: newPassword},
	}, &resp)
	if err != nil {
		return domain.Confirmation{}, err
	}
	if resp.Message == "" {
		resp.Message = domain.MessagePasswordReset
	}
	return resp, nil
}

// VerifySession checks the stored token with the server and returns its
// subject. Without a local session it fails with KindAuth and makes no call.
// A rejected token clears the store.
func (g *Gateway) VerifySession(ctx context.Context) (string, error) {
	sess, ok := g.store.Get()
	if !ok {
		return "", domain.NewAuthError(domain.KindAuth, OpVerify, domain.MessageNoSession)
	}

	var resp struct {
		SubjectID string `json:"subjectId"`
	}
	_, err := g.do(ctx, request{
		op:     OpVerify,
		method: http.MethodPost,
		path:   g.config().Paths.Verify,
		body:   map[string]string{"token": sess.Token},
		auth:   sess.AuthorizationHeader(),
	}, &resp)
	if err != nil {
		g.clearOnAuthFailure(OpVerify, sess.Token, err)
		return "", err
	}
	if resp.SubjectID == "" {
		return sess.SubjectID, nil
	}
	return resp.SubjectID, nil
}

// FetchProfile returns the signed-in user's profile. A rejected token
// clears the store before the error is returned.
func (g *Gateway) FetchProfile(ctx context.Context) (domain.Profile, error) {
	sess, ok := g.store.Get()
	if !ok {
		return domain.Profile{}, domain.NewAuthError(domain.KindAuth, OpProfile, domain.MessageNoSession)
	}

	var resp domain.Profile
	_, err := g.do(ctx, request{
		op:     OpProfile,
		method: http.MethodGet,
		path:   g.config().Paths.Profile,
		auth:   sess.AuthorizationHeader(),
	}, &resp)
	if err != nil {
		g.clearOnAuthFailure(OpProfile, sess.Token, err)
		return domain.Profile{}, err
	}
	return resp, nil
}

// clearOnAuthFailure clears the session that sent token when the server
// rejected it. A session stored while the call was in flight is kept.
func (g *Gateway) clearOnAuthFailure(op, token string, err error) {
	if !isAuthFailure(err) {
		return
	}
	cleared, cerr := g.store.ClearIf(token)
	if cerr != nil {
		g.logger.Error("failed to clear rejected session", "op", op, "error", cerr)
		return
	}
	if !cleared {
		g.logger.Debug("rejected token already replaced, keeping session", "op", op)
		return
	}
	g.metrics.IncSessionClear()
	g.logger.Info("session rejected by server, cleared", "op", op)
}
