package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pharmacy-site/pkg/clients/pharmacy"
	"pharmacy-site/pkg/config"
	"pharmacy-site/pkg/errs"
	"pharmacy-site/pkg/models"
	"pharmacy-site/pkg/notify"
	"pharmacy-site/pkg/store/waitlist"
	"pharmacy-site/pkg/utils"
)

// Backend tables, one per form
const (
	TableContact   = "contact_requests"
	TableWaitlist  = "waitlist_entries"
	TableRefill    = "refill_requests"
	TableTransfer  = "transfer_requests"
	TablePromotion = "promotional_signups"
)

// RecordStore is the generic insert-one-row backend
type RecordStore interface {
	Insert(ctx context.Context, table string, row map[string]any) (string, error)
}

// SubmissionService defines the interface for sending validated forms to
// their destinations. Each method returns a reference for the created record
// when the destination provides one.
type SubmissionService interface {
	SubmitContact(ctx context.Context, c models.ContactRequest) (string, error)
	SubmitRefill(ctx context.Context, r models.RefillRequest) (string, error)
	SubmitTransfer(ctx context.Context, t models.TransferRequest) (string, error)
	SubmitWaitlist(ctx context.Context, w models.WaitlistSignup) (string, error)
	SubmitPromotion(ctx context.Context, p models.PromotionalSignup) (string, error)
	WaitlistEntries(ctx context.Context) ([]models.WaitlistEntry, error)
}

type submissionServiceImpl struct {
	records     RecordStore
	pharmacy    pharmacy.Client
	waitlist    waitlist.Store
	notifier    notify.Notifier
	destination string
	logger      *zap.Logger
	now         func() time.Time
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	records RecordStore,
	pharmacyClient pharmacy.Client,
	waitlistStore waitlist.Store,
	notifier notify.Notifier,
	cfg *config.Config,
	logger *zap.Logger,
	now func() time.Time,
) SubmissionService {
	return &submissionServiceImpl{
		records:     records,
		pharmacy:    pharmacyClient,
		waitlist:    waitlistStore,
		notifier:    notifier,
		destination: cfg.Pharmacy.Destination,
		logger:      logger.Named("submission"),
		now:         now,
	}
}

func (s *submissionServiceImpl) SubmitContact(ctx context.Context, c models.ContactRequest) (string, error) {
	record := map[string]any{
		"name":    strings.TrimSpace(c.Name),
		"phone":   strings.TrimSpace(c.Phone),
		"email":   strings.TrimSpace(c.Email),
		"reason":  string(c.Reason),
		"message": strings.TrimSpace(c.Message),
		"consent": c.Consent,
	}

	id, err := s.records.Insert(ctx, TableContact, record)
	if err != nil {
		s.logger.Error("error saving contact request", zap.String("reason", string(c.Reason)), zap.Error(err))
		return "", fmt.Errorf("error saving contact request: %w", err)
	}
	s.logger.Info("contact request saved", zap.String("id", id), zap.String("reason", string(c.Reason)))

	if err := s.notifier.ContactReceived(ctx, id, c); err != nil {
		s.logger.Warn("contact notification failed", zap.String("id", id), zap.Error(err))
	}
	return id, nil
}

func (s *submissionServiceImpl) SubmitRefill(ctx context.Context, r models.RefillRequest) (string, error) {
	if s.destination == config.DestinationBackend {
		return s.insert(ctx, TableRefill, map[string]any{
			"patient_name":         strings.TrimSpace(r.PatientName),
			"dob":                  strings.TrimSpace(r.DOB),
			"phone":                strings.TrimSpace(r.Phone),
			"email":                strings.TrimSpace(r.Email),
			"prescription_numbers": strings.TrimSpace(r.PrescriptionNumbers),
			"medication_names":     strings.TrimSpace(r.MedicationNames),
			"preferred_service":    string(r.PreferredService),
			"notes":                strings.TrimSpace(r.Notes),
			"consent":              r.Consent,
		})
	}

	resp, err := s.pharmacy.SubmitRefill(ctx, r)
	if err != nil {
		s.logFailure("refill", err)
		return "", fmt.Errorf("error submitting refill: %w", err)
	}
	s.logger.Info("refill accepted", zap.Int("rx_count", len(resp.Results)))
	return "", nil
}

func (s *submissionServiceImpl) SubmitTransfer(ctx context.Context, t models.TransferRequest) (string, error) {
	if s.destination == config.DestinationBackend {
		p := t.Pharmacy
		return s.insert(ctx, TableTransfer, map[string]any{
			"rx_number":          strings.TrimSpace(t.RxNumber),
			"rx_fill_date":       strings.TrimSpace(t.RxFillDate),
			"pharmacy_name":      strings.TrimSpace(p.Name),
			"pharmacy_address1":  strings.TrimSpace(p.Address1),
			"pharmacy_address2":  strings.TrimSpace(p.Address2),
			"pharmacy_city":      strings.TrimSpace(p.City),
			"pharmacy_state":     strings.ToUpper(strings.TrimSpace(p.State)),
			"pharmacy_zip":       strings.TrimSpace(p.Zip),
			"pharmacy_phone":     strings.TrimSpace(p.Phone),
			"pharmacy_ncpdp":     strings.TrimSpace(p.NCPDP),
			"transfer_rx_remark": strings.TrimSpace(t.TransferRxRemark),
			"consent":            t.Consent,
		})
	}

	if _, err := s.pharmacy.SubmitTransfer(ctx, t); err != nil {
		s.logFailure("transfer", err)
		return "", fmt.Errorf("error submitting transfer: %w", err)
	}
	s.logger.Info("transfer accepted")
	return "", nil
}

// SubmitWaitlist writes the signup to the backend, then appends it to the
// local store. The append repeats the duplicate check made during
// validation, closing the gap between the two reads.
func (s *submissionServiceImpl) SubmitWaitlist(ctx context.Context, w models.WaitlistSignup) (string, error) {
	entry := models.WaitlistEntry{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(w.Name),
		Email:     strings.TrimSpace(w.Email),
		Phone:     strings.TrimSpace(w.Phone),
		CreatedAt: s.now(),
		Status:    models.WaitlistActive,
	}
	ref := utils.EmailRef(entry.Email)

	if _, err := s.records.Insert(ctx, TableWaitlist, map[string]any{
		"id":         entry.ID,
		"name":       entry.Name,
		"email":      entry.Email,
		"phone":      entry.Phone,
		"status":     string(entry.Status),
		"created_at": entry.CreatedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		s.logger.Error("error saving waitlist signup", zap.String("email_ref", ref), zap.Error(err))
		return "", fmt.Errorf("error saving waitlist signup: %w", err)
	}

	if err := s.waitlist.Append(ctx, entry); err != nil {
		if errors.Is(err, errs.ErrDuplicateEmail) {
			s.logger.Info("duplicate waitlist signup", zap.String("email_ref", ref))
			return "", &errs.FieldError{Field: models.FieldEmail, Message: errs.DuplicateEmailMessage, Err: err}
		}
		s.logger.Error("error storing waitlist entry", zap.String("email_ref", ref), zap.Error(err))
		return "", fmt.Errorf("error storing waitlist entry: %w", err)
	}
	s.logger.Info("waitlist signup saved", zap.String("id", entry.ID), zap.String("email_ref", ref))

	if err := s.notifier.WaitlistJoined(ctx, entry); err != nil {
		s.logger.Warn("waitlist notification failed", zap.String("id", entry.ID), zap.Error(err))
	}
	return entry.ID, nil
}

func (s *submissionServiceImpl) SubmitPromotion(ctx context.Context, p models.PromotionalSignup) (string, error) {
	return s.insert(ctx, TablePromotion, map[string]any{
		"email": strings.TrimSpace(p.Email),
	})
}

func (s *submissionServiceImpl) WaitlistEntries(ctx context.Context) ([]models.WaitlistEntry, error) {
	return s.waitlist.List(ctx)
}

func (s *submissionServiceImpl) insert(ctx context.Context, table string, record map[string]any) (string, error) {
	id, err := s.records.Insert(ctx, table, record)
	if err != nil {
		s.logger.Error("error creating record", zap.String("table", table), zap.Error(err))
		return "", fmt.Errorf("error creating %s record: %w", table, err)
	}
	s.logger.Info("record created", zap.String("table", table), zap.String("id", id))
	return id, nil
}

// logFailure records pharmacy API failures without patient data. Missing
// credentials are logged at error level so operators notice them.
func (s *submissionServiceImpl) logFailure(kind string, err error) {
	var (
		cerr *errs.ConfigurationError
		vend *errs.VendorError
		part *errs.PartialFailure
	)
	switch {
	case errors.As(err, &cerr):
		s.logger.Error("pharmacy API not configured", zap.String("kind", kind), zap.Strings("missing", cerr.Missing))
	case errors.As(err, &vend):
		s.logger.Warn("pharmacy API rejected request", zap.String("kind", kind),
			zap.Int("status", vend.Status), zap.String("code", vend.Code))
	case errors.As(err, &part):
		s.logger.Warn("pharmacy API partially rejected refill", zap.Int("failed", len(part.Failures)))
	default:
		s.logger.Error("pharmacy API request failed", zap.String("kind", kind), zap.Error(err))
	}
}
