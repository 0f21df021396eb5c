package form

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/yndnr/sessiongate/internal/core/domain"
	"github.com/yndnr/sessiongate/internal/telemetry/logger"
)

var (
	// ErrSubmitInFlight is returned by Submit and Edit while a submission runs.
	ErrSubmitInFlight = errors.New("form: submission already in flight")
	// ErrUnmounted is returned by calls on an unmounted controller.
	ErrUnmounted = errors.New("form: controller unmounted")
	// ErrUnknownField is returned by Edit for a field the flow does not declare.
	ErrUnknownField = errors.New("form: unknown field")
)

// Result is what a flow's submit action produced.
type Result struct {
	Session      *domain.Session
	Confirmation string
}

// Flow describes one form.
type Flow struct {
	Name        string
	Fields      []string
	Rules       []Rule
	Normalizers map[string]Normalizer
	// Sensitive fields are blanked after a successful submission.
	Sensitive []string

	// Submit performs the network call with the normalized field values.
	Submit func(ctx context.Context, fields map[string]string) (Result, error)
	// Commit applies a successful result while the controller is still
	// current. An error turns the submission into a failure.
	Commit func(Result) error
	// Then runs after a committed success, outside the controller lock.
	// Navigation belongs here.
	Then func(ctx context.Context, res Result)
}

// Observer receives submission results. *metric.Registry implements it.
type Observer interface {
	ObserveSubmission(flow, result string)
}

type nopObserver struct{}

func (nopObserver) ObserveSubmission(string, string) {}

// Controller is the state machine for one mounted form.
type Controller struct {
	flow     Flow
	observer Observer
	logger   logger.Logger

	mu        sync.Mutex
	state     State
	gen       uint64
	cancel    context.CancelFunc
	unmounted bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver sets the metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// New mounts a controller for flow with every field empty.
func New(flow Flow, opts ...Option) *Controller {
	fields := make(map[string]string, len(flow.Fields))
	for _, f := range flow.Fields {
		fields[f] = ""
	}

	c := &Controller{
		flow:     flow,
		observer: nopObserver{},
		logger:   logger.Default(),
		state: State{
			Fields:      fields,
			FieldErrors: map[string]string{},
			Status:      Idle,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "form", "flow", flow.Name)
	return c
}

// Name returns the flow name.
func (c *Controller) Name() string {
	return c.flow.Name
}

// Fields returns the declared field names in order.
func (c *Controller) Fields() []string {
	return slices.Clone(c.flow.Fields)
}

// IsSensitive reports whether field holds a secret.
func (c *Controller) IsSensitive(field string) bool {
	return slices.Contains(c.flow.Sensitive, field)
}

// State returns a snapshot of the form.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Edit sets a field value and clears that field's error.
func (c *Controller) Edit(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unmounted {
		return ErrUnmounted
	}
	if !slices.Contains(c.flow.Fields, field) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if c.state.Status == Submitting {
		return ErrSubmitInFlight
	}

	c.state.Fields[field] = value
	delete(c.state.FieldErrors, field)
	return nil
}

// Submit validates the form and, when valid, runs the flow's action.
//
// Local validation failures leave the form Idle with FieldErrors set, drop
// the previous outcome message and make no call. Gateway failures leave it Failed with TopLevelError set.
// Neither is returned as an error: the returned State carries the outcome.
// A second Submit during Submitting returns ErrSubmitInFlight at once.
func (c *Controller) Submit(ctx context.Context) (State, error) {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return State{}, ErrUnmounted
	}
	if c.state.Status == Submitting {
		snap := c.state.clone()
		c.mu.Unlock()
		return snap, ErrSubmitInFlight
	}

	c.state.Status = Validating
	for field, norm := range c.flow.Normalizers {
		if v, ok := c.state.Fields[field]; ok {
			c.state.Fields[field] = norm(v)
		}
	}
	if errs := Validate(c.flow.Rules, c.state.Fields); len(errs) > 0 {
		c.state.FieldErrors = errs
		c.state.TopLevelError = ""
		c.state.Confirmation = ""
		c.state.Status = Idle
		snap := c.state.clone()
		c.mu.Unlock()

		c.observer.ObserveSubmission(c.flow.Name, "invalid")
		c.logger.Debug("form rejected locally", "fields", len(errs))
		return snap, nil
	}

	c.state.FieldErrors = map[string]string{}
	c.state.TopLevelError = ""
	c.state.Confirmation = ""
	c.state.Status = Submitting
	c.gen++
	gen := c.gen
	callCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	input := c.state.clone().Fields
	c.mu.Unlock()

	res, err := c.flow.Submit(callCtx, input)
	cancel()

	c.mu.Lock()
	if c.unmounted || gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("dropping result for unmounted form")
		return State{}, nil
	}
	c.cancel = nil

	if err == nil && c.flow.Commit != nil {
		err = c.flow.Commit(res)
	}
	if err != nil {
		c.state.Status = Failed
		c.state.TopLevelError = domain.UserMessage(err)
		snap := c.state.clone()
		c.mu.Unlock()

		c.observer.ObserveSubmission(c.flow.Name, "failed")
		c.logger.Debug("form submission failed", "kind", domain.KindOf(err), "error", err)
		return snap, nil
	}

	c.state.Status = Succeeded
	c.state.Confirmation = res.Confirmation
	for _, f := range c.flow.Sensitive {
		if _, ok := c.state.Fields[f]; ok {
			c.state.Fields[f] = ""
		}
	}
	snap := c.state.clone()
	c.mu.Unlock()

	c.observer.ObserveSubmission(c.flow.Name, "succeeded")
	if c.flow.Then != nil {
		c.flow.Then(ctx, res)
	}
	return snap, nil
}

// Unmount discards the form. An in-flight call is canceled and its result
// ignored. Unmount is idempotent.
func (c *Controller) Unmount() {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	c.unmounted = true
	c.gen++
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Unmounted reports whether Unmount was called.
func (c *Controller) Unmounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unmounted
}
