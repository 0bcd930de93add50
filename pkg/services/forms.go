package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pharmacy-site/pkg/forms"
	"pharmacy-site/pkg/models"
	"pharmacy-site/pkg/store/waitlist"
	"pharmacy-site/pkg/validation"
)

// Form kinds as they appear in URLs
const (
	FormContact   = "contact"
	FormRefill    = "refill"
	FormTransfer  = "transfer"
	FormWaitlist  = "waitlist"
	FormPromotion = "promotion"
)

const listTimeout = 5 * time.Second

// RegisterForms wires a controller factory for every form into sessions.
// now must return the pharmacy's local time.
func RegisterForms(sessions *forms.Sessions, svc SubmissionService, store waitlist.Store, now func() time.Time, logger *zap.Logger) {
	sessions.Register(FormContact, func() forms.Form {
		return forms.NewController(validation.Contact, svc.SubmitContact,
			forms.WithReady(func(c models.ContactRequest) bool { return c.Consent }),
			forms.WithSuccessMessage[models.ContactRequest]("Thanks for reaching out! We'll get back to you within one business day."),
		)
	})

	sessions.Register(FormRefill, func() forms.Form {
		return forms.NewController(
			func(r models.RefillRequest) models.FieldErrors { return validation.Refill(r, now()) },
			svc.SubmitRefill,
			forms.WithReady(func(r models.RefillRequest) bool { return r.Consent }),
			forms.WithSuccessMessage[models.RefillRequest]("Your refill request was sent to the pharmacy. We'll contact you when it's ready."),
		)
	})

	sessions.Register(FormTransfer, func() forms.Form {
		return forms.NewController(
			func(t models.TransferRequest) models.FieldErrors { return validation.Transfer(t, now()) },
			svc.SubmitTransfer,
			forms.WithReady(func(t models.TransferRequest) bool { return t.Consent }),
			forms.WithSuccessMessage[models.TransferRequest]("Your transfer request was accepted. The receiving pharmacy will have your prescription shortly."),
		)
	})

	sessions.Register(FormWaitlist, func() forms.Form {
		return forms.NewController(
			func(w models.WaitlistSignup) models.FieldErrors {
				return validation.Waitlist(w, existingEntries(store, logger))
			},
			svc.SubmitWaitlist,
			forms.WithReady(func(w models.WaitlistSignup) bool { return w.Consent }),
			forms.WithSuccessMessage[models.WaitlistSignup]("You're on the waitlist! We'll be in touch."),
		)
	})

	sessions.Register(FormPromotion, func() forms.Form {
		return forms.NewController(validation.Promotion, svc.SubmitPromotion,
			forms.WithSuccessMessage[models.PromotionalSignup]("You're subscribed! Watch your inbox for offers."),
		)
	})
}

// existingEntries reads the store for the pre-submit duplicate check. A read
// failure only skips that check; the append repeats it.
func existingEntries(store waitlist.Store, logger *zap.Logger) []models.WaitlistEntry {
	ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
	defer cancel()
	entries, err := store.List(ctx)
	if err != nil {
		logger.Warn("waitlist read failed, deferring duplicate check to write", zap.Error(err))
		return nil
	}
	return entries
}
