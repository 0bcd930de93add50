// Package errs defines the failure kinds a form submission can end in and the
// sentences shown to users for each of them.
package errs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pharmacy-site/pkg/models"
)

// DuplicateEmailMessage is shown inline under the waitlist email field.
const DuplicateEmailMessage = "This email is already on the waitlist."

// ErrDuplicateEmail is returned by the waitlist store when the address is
// already present.
var ErrDuplicateEmail = errors.New("email already on waitlist")

// ValidationError carries field-level problems. It never leaves the service.
type ValidationError struct {
	Fields models.FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return "validation failed: " + strings.Join(keys, ", ")
}

// FieldError is a submission outcome that belongs next to a single field
// rather than in the form-level error banner.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }
func (e *FieldError) Unwrap() error { return e.Err }

// ConfigurationError means required credentials are missing from the
// deployment.
type ConfigurationError struct {
	Service string
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured: missing %s", e.Service, strings.Join(e.Missing, ", "))
}

// TransportError wraps a failure to reach an external service.
type TransportError struct {
	Service string
	Err     error
}

func (e *TransportError) Error() string { return fmt.Sprintf("error reaching %s: %v", e.Service, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// VendorError is a documented failure reported by the pharmacy API.
type VendorError struct {
	Status  int
	Code    string
	Message string
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("pharmacy API error (status %d, code %q): %s", e.Status, e.Code, e.Message)
}

// RxFailure is one prescription number the pharmacy did not accept.
type RxFailure struct {
	RxNumber int64
	Status   string
	Reason   string
}

// PartialFailure reports refill entries that failed while others may have
// gone through.
type PartialFailure struct {
	Failures []RxFailure
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("%d prescription(s) could not be refilled", len(e.Failures))
}

// UserMessage turns a submission failure into a sentence for the form.
func UserMessage(err error) string {
	var (
		verr *ValidationError
		ferr *FieldError
		cerr *ConfigurationError
		terr *TransportError
		vend *VendorError
		part *PartialFailure
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return "Please correct the highlighted fields."
	case errors.As(err, &ferr):
		return ferr.Message
	case errors.Is(err, ErrDuplicateEmail):
		return DuplicateEmailMessage
	case errors.As(err, &cerr):
		return "This service is temporarily unavailable due to a service configuration issue. Please call the pharmacy."
	case errors.As(err, &terr):
		return "We couldn't reach the pharmacy system. Please check your connection and try again."
	case errors.As(err, &vend):
		return vend.Message
	case errors.As(err, &part):
		return partialMessage(part)
	}
	return "Something went wrong while sending your request. Please try again or call the pharmacy."
}

func partialMessage(p *PartialFailure) string {
	var b strings.Builder
	b.WriteString("Some prescriptions could not be refilled: ")
	for i, f := range p.Failures {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString("Rx #")
		b.WriteString(strconv.FormatInt(f.RxNumber, 10))
		reason := f.Reason
		if reason == "" {
			reason = f.Status
		}
		if reason != "" {
			b.WriteString(" (")
			b.WriteString(reason)
			b.WriteString(")")
		}
	}
	b.WriteString(". Please call the pharmacy for help with these.")
	return b.String()
}
