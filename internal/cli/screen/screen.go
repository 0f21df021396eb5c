package screen

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yndnr/sessiongate/internal/core/domain"
	"github.com/yndnr/sessiongate/internal/form"
	"github.com/yndnr/sessiongate/internal/guard"
	"github.com/yndnr/sessiongate/internal/telemetry/logger"
)

// ErrNoForm is returned by form operations on a page without a form.
var ErrNoForm = errors.New("screen: current page has no form")

// Store is the session store surface pages need.
type Store interface {
	form.SessionWriter
	guard.SessionReader
	Clear() error
}

// Gateway is the auth API surface pages need.
type Gateway interface {
	form.Gateway
	FetchProfile(ctx context.Context) (domain.Profile, error)
}

// Config wires an App.
type Config struct {
	Store   Store
	Gateway Gateway
	Guard   *guard.Guard

	// MinPassword is the signup and reset password minimum. Zero uses the
	// default.
	MinPassword int
	Observer    form.Observer
	Logger      logger.Logger
}

// App is the set of pages behind one router.
type App struct {
	router *guard.Router
	store  Store
	gw     Gateway
	cfg    Config
	logger logger.Logger

	mu   sync.Mutex
	form *form.Controller
}

// New registers the pages. Nothing is mounted until Navigate.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil || cfg.Gateway == nil || cfg.Guard == nil {
		return nil, errors.New("screen: store, gateway and guard are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	a := &App{
		store:  cfg.Store,
		gw:     cfg.Gateway,
		cfg:    cfg,
		logger: cfg.Logger.With("component", "screen"),
	}
	a.router = guard.NewRouter(cfg.Guard, guard.WithRouterLogger(cfg.Logger))

	pages := []guard.Page{
		a.formPage(guard.PathLogin, func() form.Flow {
			return form.LoginFlow(a.gw, a.store, a)
		}),
		a.formPage(guard.PathSignup, func() form.Flow {
			return form.SignupFlow(a.gw, a, a.cfg.MinPassword)
		}),
		a.formPage(guard.PathForgotPassword, func() form.Flow {
			return form.ForgotPasswordFlow(a.gw)
		}),
		a.formPage(guard.PathResetPassword, func() form.Flow {
			return form.ResetPasswordFlow(a.gw, a, a.cfg.MinPassword)
		}),
		{Path: guard.PathHome, Access: guard.AuthenticatedOnly},
	}
	for _, p := range pages {
		if err := a.router.Register(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *App) formPage(path string, flow func() form.Flow) guard.Page {
	return guard.Page{
		Path:   path,
		Access: guard.PublicOnly,
		Mount: func(context.Context) error {
			c := form.New(flow(), form.WithObserver(a.cfg.Observer), form.WithLogger(a.cfg.Logger))
			a.mu.Lock()
			a.form = c
			a.mu.Unlock()
			return nil
		},
		Unmount: func() {
			a.mu.Lock()
			c := a.form
			a.form = nil
			a.mu.Unlock()
			if c != nil {
				c.Unmount()
			}
		},
	}
}

// Navigate shows the page at path, applying the guard. It returns the page
// actually shown.
func (a *App) Navigate(ctx context.Context, path string) (string, error) {
	return a.router.Navigate(ctx, path)
}

// Current returns the shown page path.
func (a *App) Current() string {
	return a.router.Current()
}

// Paths returns every page path.
func (a *App) Paths() []string {
	return a.router.Paths()
}

// Form returns the mounted form controller, or nil on a page without one.
func (a *App) Form() *form.Controller {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.form
}

// Edit sets a field on the mounted form.
func (a *App) Edit(field, value string) error {
	c := a.Form()
	if c == nil {
		return ErrNoForm
	}
	return c.Edit(field, value)
}

// Submit submits the mounted form. The returned state is the form's outcome
// even if a successful submission navigated away.
func (a *App) Submit(ctx context.Context) (form.State, error) {
	c := a.Form()
	if c == nil {
		return form.State{}, ErrNoForm
	}
	return c.Submit(ctx)
}

// Profile fetches the signed-in user's profile. An auth failure means the
// gateway cleared the session, so the app returns to the login page.
func (a *App) Profile(ctx context.Context) (domain.Profile, error) {
	p, err := a.gw.FetchProfile(ctx)
	if err != nil {
		if domain.IsKind(err, domain.KindAuth) {
			a.navigateOrLog(ctx, guard.PathLogin)
		}
		return domain.Profile{}, err
	}
	return p, nil
}

// Logout clears the session and shows the login page.
func (a *App) Logout(ctx context.Context) error {
	if err := a.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	a.logger.Info("signed out")
	if _, err := a.Navigate(ctx, guard.PathLogin); err != nil {
		return err
	}
	return nil
}

// Close unmounts the current page.
func (a *App) Close() {
	a.router.Leave()
}

func (a *App) navigateOrLog(ctx context.Context, path string) {
	if _, err := a.Navigate(ctx, path); err != nil {
		a.logger.Warn("navigation failed", "path", path, "error", err)
	}
}
