// Package validation checks form records against the site's field rules and
// returns a human-readable message for every field that fails.
//
// The functions are pure: they never touch the network and never panic. Date
// rules are evaluated against now's calendar day in now's location.
package validation

import (
	"fmt"
	"strings"
	"time"

	"pharmacy-site/pkg/errs"
	"pharmacy-site/pkg/models"
)

// Contact validates the contact form.
func Contact(c models.ContactRequest) models.FieldErrors {
	return translate(validate.Struct(c))
}

// Refill validates the refill form. The date of birth may be today but not
// later.
func Refill(r models.RefillRequest, now time.Time) models.FieldErrors {
	out := translate(validate.Struct(r))
	checkPastDate(out, models.FieldDOB, r.DOB, now, 0)
	return out
}

// Transfer validates the transfer form. The fill date must fall within the
// last two years.
func Transfer(t models.TransferRequest, now time.Time) models.FieldErrors {
	out := translate(validate.Struct(t))
	checkPastDate(out, models.FieldRxFillDate, t.RxFillDate, now, 2)
	return out
}

// Waitlist validates the waitlist form against the entries already stored.
func Waitlist(w models.WaitlistSignup, existing []models.WaitlistEntry) models.FieldErrors {
	out := translate(validate.Struct(w))
	if _, bad := out[models.FieldEmail]; !bad && EmailTaken(w.Email, existing) {
		out[models.FieldEmail] = errs.DuplicateEmailMessage
	}
	return out
}

// Promotion validates the promotional opt-in.
func Promotion(p models.PromotionalSignup) models.FieldErrors {
	return translate(validate.Struct(p))
}

// EmailTaken reports whether email matches any entry, ignoring case and
// surrounding whitespace.
func EmailTaken(email string, entries []models.WaitlistEntry) bool {
	email = strings.TrimSpace(email)
	for _, e := range entries {
		if strings.EqualFold(strings.TrimSpace(e.Email), email) {
			return true
		}
	}
	return false
}

// checkPastDate rejects dates after today and, when maxYears > 0, dates more
// than maxYears before today. Format problems are already reported by the
// struct rules, so a field that has an error is left alone.
func checkPastDate(out models.FieldErrors, field, value string, now time.Time, maxYears int) {
	if _, bad := out[field]; bad {
		return
	}
	d, err := ParseDate(value, now.Location())
	if err != nil {
		out[field] = "Please enter a valid date (YYYY-MM-DD)."
		return
	}
	today := Today(now)
	if d.After(today) {
		out[field] = label(field) + " can't be in the future."
		return
	}
	if maxYears > 0 && d.Before(today.AddDate(-maxYears, 0, 0)) {
		out[field] = fmt.Sprintf("%s must be within the last %d years.", label(field), maxYears)
	}
}
