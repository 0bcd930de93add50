package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"pharmacy-site/pkg/clients/pharmacy"
	"pharmacy-site/pkg/config"
	"pharmacy-site/pkg/errs"
	"pharmacy-site/pkg/forms"
	"pharmacy-site/pkg/models"
	"pharmacy-site/pkg/store/waitlist"
)

var (
	eastern  = time.FixedZone("EDT", -4*60*60)
	fixedNow = time.Date(2026, time.October, 19, 22, 30, 0, 0, eastern)
)

func clock() time.Time { return fixedNow }

type insertCall struct {
	table string
	row   map[string]any
}

type fakeRecords struct {
	mu    sync.Mutex
	calls []insertCall
	err   error
}

func (f *fakeRecords) Insert(_ context.Context, table string, row map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, insertCall{table, row})
	if f.err != nil {
		return "", f.err
	}
	return "row-1", nil
}

func (f *fakeRecords) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePharmacy struct {
	refills   []models.RefillRequest
	transfers []models.TransferRequest
	err       error
}

func (f *fakePharmacy) SubmitRefill(_ context.Context, r models.RefillRequest) (*pharmacy.RefillResponse, error) {
	f.refills = append(f.refills, r)
	if f.err != nil {
		return nil, f.err
	}
	return &pharmacy.RefillResponse{Results: []pharmacy.RefillResult{{RxNumber: 123, Status: pharmacy.StatusOK}}}, nil
}

func (f *fakePharmacy) SubmitTransfer(_ context.Context, t models.TransferRequest) (*pharmacy.TransferResponse, error) {
	f.transfers = append(f.transfers, t)
	if f.err != nil {
		return nil, f.err
	}
	return &pharmacy.TransferResponse{IsValid: true, Transferred: true}, nil
}

type fakeNotifier struct {
	contacts int
	joined   []models.WaitlistEntry
}

func (f *fakeNotifier) ContactReceived(context.Context, string, models.ContactRequest) error {
	f.contacts++
	return nil
}

func (f *fakeNotifier) WaitlistJoined(_ context.Context, e models.WaitlistEntry) error {
	f.joined = append(f.joined, e)
	return errors.New("sms down")
}

type harness struct {
	records  *fakeRecords
	pharmacy *fakePharmacy
	notifier *fakeNotifier
	store    waitlist.Store
	sessions *forms.Sessions
	svc      SubmissionService
}

func newHarness(t *testing.T, destination string) *harness {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	store, err := waitlist.NewSQLiteStore(context.Background(), db)
	require.NoError(t, err)

	h := &harness{
		records:  &fakeRecords{},
		pharmacy: &fakePharmacy{},
		notifier: &fakeNotifier{},
		store:    store,
		sessions: forms.NewSessions(time.Millisecond),
	}
	cfg := &config.Config{Pharmacy: config.PharmacyConfig{Destination: destination}}
	h.svc = NewSubmissionService(h.records, h.pharmacy, store, h.notifier, cfg, zap.NewNop(), clock)
	RegisterForms(h.sessions, h.svc, store, clock, zap.NewNop())
	return h
}

func (h *harness) submit(t *testing.T, kind, body string) (any, error) {
	t.Helper()
	form, err := h.sessions.New(kind)
	require.NoError(t, err)
	require.NoError(t, form.ApplyJSON([]byte(body)))
	return form.Run(context.Background())
}

const (
	contactJSON   = `{"name":"Jane Smith","phone":"(614) 349-5140","email":"jane@example.com","reason":"general","consent":true}`
	refillJSON    = `{"patientName":"Jane Smith","dob":"1980-02-29","phone":"614-349-5140","prescriptionNumbers":"123, 456 789","preferredService":"pickup","consent":true}`
	transferJSON  = `{"rxNumber":"7654321","rxFillDate":"2026-09-01","pharmacy":{"name":"Main Street Drug","address1":"100 Main St","city":"Columbus","state":"oh","zip":"43215","phone":"614-555-0100"},"consent":true}`
	waitlistJSON  = `{"name":"Jane Smith","email":"A@x.com","phone":"614-349-5140","consent":true}`
	promotionJSON = `{"email":"jane@example.com"}`
)

func TestEveryFormSubmits(t *testing.T) {
	h := newHarness(t, config.DestinationPharmacyAPI)
	for kind, body := range map[string]string{
		FormContact:   contactJSON,
		FormRefill:    refillJSON,
		FormTransfer:  transferJSON,
		FormWaitlist:  waitlistJSON,
		FormPromotion: promotionJSON,
	} {
		_, err := h.submit(t, kind, body)
		assert.NoError(t, err, kind)
	}
	assert.Equal(t, 3, h.records.count(), "contact, waitlist and promotion go to the backend")
	assert.Len(t, h.pharmacy.refills, 1)
	assert.Len(t, h.pharmacy.transfers, 1)
	assert.Equal(t, 1, h.notifier.contacts)
}

func TestConsentFalseBlocksWithoutNetwork(t *testing.T) {
	h := newHarness(t, config.DestinationPharmacyAPI)
	for kind, body := range map[string]string{
		FormContact:  contactJSON,
		FormRefill:   refillJSON,
		FormTransfer: transferJSON,
		FormWaitlist: waitlistJSON,
	} {
		form, err := h.sessions.New(kind)
		require.NoError(t, err)
		require.NoError(t, form.ApplyJSON([]byte(body)))
		require.NoError(t, form.ApplyJSON([]byte(`{"consent":false}`)))

		_, err = form.Run(context.Background())
		var verr *errs.ValidationError
		require.ErrorAs(t, err, &verr, kind)
		assert.Equal(t, []string{models.FieldConsent}, keys(verr.Fields), kind)
	}
	assert.Zero(t, h.records.count())
	assert.Empty(t, h.pharmacy.refills)
	assert.Empty(t, h.pharmacy.transfers)
}

func keys(f models.FieldErrors) []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	return out
}

func TestWaitlistDuplicateAcrossCase(t *testing.T) {
	h := newHarness(t, config.DestinationPharmacyAPI)

	out, err := h.submit(t, FormWaitlist, waitlistJSON)
	require.NoError(t, err)
	view := out.(forms.View[models.WaitlistSignup])
	assert.Equal(t, forms.StatusSuccess, view.Status)
	assert.NotEmpty(t, view.Reference)

	out, err = h.submit(t, FormWaitlist, `{"name":"Jane Again","email":"a@X.com","consent":true}`)
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	view = out.(forms.View[models.WaitlistSignup])
	assert.Equal(t, forms.StatusIdle, view.Status)
	assert.Equal(t, errs.DuplicateEmailMessage, view.Errors[models.FieldEmail])

	entries, err := h.svc.WaitlistEntries(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, h.records.count())
	require.Len(t, h.notifier.joined, 1, "notification failure does not fail the signup")
}

func TestWaitlistWriteTimeDuplicateIsFieldError(t *testing.T) {
	h := newHarness(t, config.DestinationPharmacyAPI)
	ctx := context.Background()

	_, err := h.svc.SubmitWaitlist(ctx, models.WaitlistSignup{Name: "A", Email: "A@x.com", Consent: true})
	require.NoError(t, err)

	// Skips validation, as a second tab racing the first would.
	_, err = h.svc.SubmitWaitlist(ctx, models.WaitlistSignup{Name: "B", Email: "a@X.com", Consent: true})
	var ferr *errs.FieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, models.FieldEmail, ferr.Field)
	assert.ErrorIs(t, err, errs.ErrDuplicateEmail)

	entries, err := h.store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPharmacyFailureKeepsValues(t *testing.T) {
	h := newHarness(t, config.DestinationPharmacyAPI)
	h.pharmacy.err = &errs.ConfigurationError{Service: "pharmacy API", Missing: []string{"PHARMACY_ID"}}

	out, err := h.submit(t, FormRefill, refillJSON)
	var cerr *errs.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	view := out.(forms.View[models.RefillRequest])
	assert.Equal(t, forms.StatusError, view.Status)
	assert.Contains(t, view.Message, "service configuration")
	assert.Equal(t, "123, 456 789", view.Values.PrescriptionNumbers)
}

func TestTransferVendorErrorSurfaces(t *testing.T) {
	h := newHarness(t, config.DestinationPharmacyAPI)
	h.pharmacy.err = errs.NewVendorError(200, "ERROR0082")

	out, err := h.submit(t, FormTransfer, transferJSON)
	var vend *errs.VendorError
	require.ErrorAs(t, err, &vend)
	view := out.(forms.View[models.TransferRequest])
	assert.Equal(t, forms.StatusError, view.Status)
	assert.Equal(t, vend.Message, view.Message)
}

func TestBackendDestinationStoresRefillAndTransfer(t *testing.T) {
	h := newHarness(t, config.DestinationBackend)

	_, err := h.submit(t, FormRefill, refillJSON)
	require.NoError(t, err)
	_, err = h.submit(t, FormTransfer, transferJSON)
	require.NoError(t, err)

	require.Equal(t, 2, h.records.count())
	assert.Equal(t, TableRefill, h.records.calls[0].table)
	assert.Equal(t, TableTransfer, h.records.calls[1].table)
	assert.Equal(t, "OH", h.records.calls[1].row["pharmacy_state"])
	assert.Empty(t, h.pharmacy.refills)
}

func TestBackendFailureIsErrorState(t *testing.T) {
	h := newHarness(t, config.DestinationPharmacyAPI)
	h.records.err = &errs.TransportError{Service: "backend", Err: errors.New("timeout")}

	out, err := h.submit(t, FormPromotion, promotionJSON)
	require.Error(t, err)
	view := out.(forms.View[models.PromotionalSignup])
	assert.Equal(t, forms.StatusError, view.Status)
	assert.Equal(t, "jane@example.com", view.Values.Email)
}
