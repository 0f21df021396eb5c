package guard

import (
	"context"

	"github.com/yndnr/sessiongate/internal/core/domain"
	"github.com/yndnr/sessiongate/internal/telemetry/logger"
)

// Access is the session requirement of a page.
type Access int

const (
	// Public pages render regardless of session state.
	Public Access = iota
	// PublicOnly pages are for signed-out users (login, signup, reset).
	PublicOnly
	// AuthenticatedOnly pages require a valid session.
	AuthenticatedOnly
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case PublicOnly:
		return "public-only"
	case AuthenticatedOnly:
		return "authenticated-only"
	default:
		return "unknown"
	}
}

// Well-known page paths.
const (
	PathLogin          = "/login"
	PathSignup         = "/signup"
	PathForgotPassword = "/forgot-password"
	PathResetPassword  = "/reset-password"
	PathHome           = "/home"
)

// Decision is the outcome of a guard check.
type Decision struct {
	Allow    bool
	Redirect string // set when Allow is false
}

// SessionReader reads the current session.
type SessionReader interface {
	Get() (*domain.Session, bool)
}

// Verifier confirms a local session with the server.
type Verifier interface {
	VerifySession(ctx context.Context) (string, error)
}

// Guard evaluates page access.
type Guard struct {
	store     SessionReader
	verifier  Verifier
	homePath  string
	loginPath string
	logger    logger.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithVerifier enables server verification of local sessions.
func WithVerifier(v Verifier) Option {
	return func(g *Guard) {
		g.verifier = v
	}
}

// WithHomePath sets where signed-in users are sent from PublicOnly pages.
func WithHomePath(path string) Option {
	return func(g *Guard) {
		g.homePath = path
	}
}

// WithLoginPath sets where signed-out users are sent from AuthenticatedOnly pages.
func WithLoginPath(path string) Option {
	return func(g *Guard) {
		g.loginPath = path
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Guard) {
		g.logger = l
	}
}

// New creates a guard reading store.
func New(store SessionReader, opts ...Option) *Guard {
	g := &Guard{
		store:     store,
		homePath:  PathHome,
		loginPath: PathLogin,
		logger:    logger.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "guard")
	return g
}

// Check decides whether a page with the given access level may render.
//
// With a verifier, a local session on a restricted page is confirmed with
// the server first. A rejected token counts as signed out. Any other
// verification failure keeps the local decision.
func (g *Guard) Check(ctx context.Context, access Access) Decision {
	if access == Public {
		return Decision{Allow: true}
	}

	_, authenticated := g.store.Get()
	if authenticated && g.verifier != nil {
		if _, err := g.verifier.VerifySession(ctx); err != nil {
			if domain.IsKind(err, domain.KindAuth) {
				g.logger.Info("server rejected local session")
				authenticated = false
			} else {
				g.logger.Warn("session verification unavailable, trusting local session", "error", err)
			}
		}
	}

	return g.decide(access, authenticated)
}

func (g *Guard) decide(access Access, authenticated bool) Decision {
	switch {
	case access == PublicOnly && authenticated:
		return Decision{Redirect: g.homePath}
	case access == AuthenticatedOnly && !authenticated:
		return Decision{Redirect: g.loginPath}
	default:
		return Decision{Allow: true}
	}
}
