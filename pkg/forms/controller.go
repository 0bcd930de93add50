// Package forms holds the per-form state machines and the modal shell that
// opens, closes and resets them.
package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"pharmacy-site/pkg/errs"
	"pharmacy-site/pkg/models"
)

// Status is the submission state of a form
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

var (
	// ErrSubmitInFlight is returned when Submit is called while a submission
	// is still being checked or sent.
	ErrSubmitInFlight = errors.New("submission already in progress")
	// ErrAlreadySubmitted is returned when Submit is called after a success.
	// The form accepts a new submission only after a reset.
	ErrAlreadySubmitted = errors.New("form already submitted")
	// ErrFormReset is returned when the form was reset while its values were
	// being validated.
	ErrFormReset = errors.New("form was reset during submission")
)

// ValidateFunc reports field errors for a set of values
type ValidateFunc[T any] func(values T) models.FieldErrors

// SubmitFunc sends validated values to their destination and returns a
// reference for the created record.
type SubmitFunc[T any] func(ctx context.Context, values T) (string, error)

// View is a snapshot of a controller
type View[T any] struct {
	Status    Status             `json:"status"`
	Values    T                  `json:"values"`
	Errors    models.FieldErrors `json:"errors"`
	Message   string             `json:"message,omitempty"`
	Reference string             `json:"reference,omitempty"`
	CanSubmit bool               `json:"canSubmit"`
}

// Controller owns one form's values, field errors and submission status.
type Controller[T any] struct {
	mu        sync.Mutex
	values    T
	errors    models.FieldErrors
	status    Status
	busy      bool
	message   string
	reference string
	// gen changes on Reset so a submission that finishes after the form was
	// reset does not write into the fresh state.
	gen uint64

	validate ValidateFunc[T]
	submit   SubmitFunc[T]
	ready    func(T) bool
	success  string
}

// Option configures a Controller
type Option[T any] func(*Controller[T])

// WithReady sets the extra condition for the submit button to be enabled.
// It is never enabled while submitting or after a success. Consent forms use
// it to require the checkbox.
func WithReady[T any](ready func(T) bool) Option[T] {
	return func(c *Controller[T]) { c.ready = ready }
}

// WithSuccessMessage sets the confirmation shown after a successful submit.
func WithSuccessMessage[T any](msg string) Option[T] {
	return func(c *Controller[T]) { c.success = msg }
}

// NewController creates a controller in the idle state with zero values.
func NewController[T any](validate ValidateFunc[T], submit SubmitFunc[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		validate: validate,
		submit:   submit,
		errors:   models.FieldErrors{},
		status:   StatusIdle,
		success:  "Thank you! Your request has been received.",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Edit applies fn to the values and clears the errors of the named fields.
// Other fields keep their errors until the next submit.
func (c *Controller[T]) Edit(fn func(*T), fields ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.values)
	for _, f := range fields {
		delete(c.errors, f)
	}
}

// Submit validates the current values and, when they pass, hands them to the
// adapter. The returned error is nil on success; a *errs.ValidationError
// means nothing was sent. Validators may read storage, so they run without
// the lock, like the adapter.
func (c *Controller[T]) Submit(ctx context.Context) (View[T], error) {
	c.mu.Lock()
	switch {
	case c.busy:
		v := c.viewLocked()
		c.mu.Unlock()
		return v, ErrSubmitInFlight
	case c.status == StatusSuccess:
		v := c.viewLocked()
		c.mu.Unlock()
		return v, ErrAlreadySubmitted
	}
	c.busy = true
	values := c.values
	gen := c.gen
	c.mu.Unlock()

	fieldErrs := c.validate(values)

	c.mu.Lock()
	if gen != c.gen {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, ErrFormReset
	}
	if !fieldErrs.Valid() {
		c.busy = false
		c.errors = fieldErrs
		c.status = StatusIdle
		c.message = ""
		v := c.viewLocked()
		c.mu.Unlock()
		return v, &errs.ValidationError{Fields: fieldErrs.Clone()}
	}
	c.status = StatusSubmitting
	c.message = ""
	c.mu.Unlock()

	ref, err := c.submit(ctx, values)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return c.viewLocked(), err
	}
	c.busy = false

	var fieldErr *errs.FieldError
	switch {
	case err == nil:
		c.status = StatusSuccess
		c.errors = models.FieldErrors{}
		c.message = c.success
		c.reference = ref
	case errors.As(err, &fieldErr):
		c.status = StatusIdle
		c.errors = models.FieldErrors{fieldErr.Field: fieldErr.Message}
	default:
		c.status = StatusError
		c.message = errs.UserMessage(err)
	}
	return c.viewLocked(), err
}

// Reset returns the form to zero values, no errors and idle.
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.values = zero
	c.errors = models.FieldErrors{}
	c.status = StatusIdle
	c.busy = false
	c.message = ""
	c.reference = ""
	c.gen++
}

// View returns a snapshot of the controller.
func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller[T]) viewLocked() View[T] {
	ready := !c.busy && c.status != StatusSuccess
	if ready && c.ready != nil {
		ready = c.ready(c.values)
	}
	return View[T]{
		Status:    c.status,
		Values:    c.values,
		Errors:    c.errors.Clone(),
		Message:   c.message,
		Reference: c.reference,
		CanSubmit: ready,
	}
}

// Snapshot implements Form.
func (c *Controller[T]) Snapshot() any { return c.View() }

// ApplyJSON implements Form. Only the keys present in raw are changed, and
// only their errors are cleared. Nested objects clear "parent.child" keys.
func (c *Controller[T]) ApplyJSON(raw []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("error parsing form fields: %w", err)
	}

	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		keys = append(keys, k)
		var nested map[string]json.RawMessage
		if json.Unmarshal(v, &nested) == nil {
			for nk := range nested {
				keys = append(keys, k+"."+nk)
			}
		}
	}

	// Decode into a copy first so a type error leaves the values untouched.
	c.mu.Lock()
	next := c.values
	c.mu.Unlock()
	if err := json.Unmarshal(raw, &next); err != nil {
		return fmt.Errorf("error parsing form fields: %w", err)
	}

	c.Edit(func(v *T) { *v = next }, keys...)
	return nil
}

// Run implements Form.
func (c *Controller[T]) Run(ctx context.Context) (any, error) {
	return c.Submit(ctx)
}
