package guard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/yndnr/sessiongate/internal/telemetry/logger"
)

// DefaultMaxRedirects bounds redirect chains in Navigate.
const DefaultMaxRedirects = 4

var (
	// ErrUnknownPage is returned when navigating to an unregistered path.
	ErrUnknownPage = errors.New("guard: unknown page")
	// ErrRedirectLoop is returned when redirects exceed the hop limit.
	ErrRedirectLoop = errors.New("guard: too many redirects")
	// ErrDuplicatePage is returned when a path is registered twice.
	ErrDuplicatePage = errors.New("guard: page already registered")
)

// Page is a screen the router can show.
type Page struct {
	Path   string
	Access Access
	// Mount renders the page. It runs only after the guard allowed it.
	Mount func(ctx context.Context) error
	// Unmount tears the page down before another one mounts.
	Unmount func()
}

// Router applies the guard on every navigation.
type Router struct {
	guard *Guard

	mu           sync.Mutex
	pages        map[string]Page
	current      *Page
	maxRedirects int
	logger       logger.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithMaxRedirects sets the redirect hop limit.
func WithMaxRedirects(n int) RouterOption {
	return func(r *Router) {
		if n > 0 {
			r.maxRedirects = n
		}
	}
}

// WithRouterLogger sets the logger.
func WithRouterLogger(l logger.Logger) RouterOption {
	return func(r *Router) {
		r.logger = l
	}
}

// NewRouter creates a router using g.
func NewRouter(g *Guard, opts ...RouterOption) *Router {
	r := &Router{
		guard:        g,
		pages:        make(map[string]Page),
		maxRedirects: DefaultMaxRedirects,
		logger:       logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "router")
	return r
}

// Register adds a page.
func (r *Router) Register(p Page) error {
	if p.Path == "" {
		return fmt.Errorf("%w: empty path", ErrUnknownPage)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pages[p.Path]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePage, p.Path)
	}
	r.pages[p.Path] = p
	return nil
}

// Navigate shows the page at path, following guard redirects. It returns
// the path that was finally mounted.
func (r *Router) Navigate(ctx context.Context, path string) (string, error) {
	page, err := r.resolve(ctx, path)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	prev := r.current
	r.current = &page
	r.mu.Unlock()

	if prev != nil && prev.Unmount != nil {
		prev.Unmount()
	}

	r.logger.Debug("page mounted", "path", page.Path)
	if page.Mount != nil {
		if err := page.Mount(ctx); err != nil {
			return page.Path, fmt.Errorf("mount %s: %w", page.Path, err)
		}
	}
	return page.Path, nil
}

// resolve runs the guard until a page is allowed.
func (r *Router) resolve(ctx context.Context, path string) (Page, error) {
	for hops := 0; ; hops++ {
		if hops > r.maxRedirects {
			return Page{}, fmt.Errorf("%w: last target %s", ErrRedirectLoop, path)
		}

		page, ok := r.lookup(path)
		if !ok {
			return Page{}, fmt.Errorf("%w: %s", ErrUnknownPage, path)
		}

		d := r.guard.Check(ctx, page.Access)
		if d.Allow {
			return page, nil
		}
		r.logger.Debug("navigation redirected", "from", path, "to", d.Redirect)
		path = d.Redirect
	}
}

func (r *Router) lookup(path string) (Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[path]
	return p, ok
}

// Current returns the mounted page path, or "" before the first navigation.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return ""
	}
	return r.current.Path
}

// Leave unmounts the current page without mounting another.
func (r *Router) Leave() {
	r.mu.Lock()
	prev := r.current
	r.current = nil
	r.mu.Unlock()

	if prev != nil && prev.Unmount != nil {
		prev.Unmount()
	}
}

// Paths returns the registered page paths in order.
func (r *Router) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.pages))
	for p := range r.pages {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
