package pharmacy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pharmacy-site/pkg/config"
	"pharmacy-site/pkg/errs"
	"pharmacy-site/pkg/models"
)

var (
	eastern  = time.FixedZone("EDT", -4*60*60)
	fixedNow = time.Date(2026, time.October, 19, 21, 15, 0, 0, eastern)
)

func clock() time.Time { return fixedNow }

type vendorStub struct {
	server   *httptest.Server
	requests atomic.Int32
	lastBody []byte
	lastReq  *http.Request
}

func newVendorStub(t *testing.T, status int, body any) *vendorStub {
	t.Helper()
	s := &vendorStub{}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.lastReq = r
		var raw json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&raw)
		s.lastBody = raw
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(s.server.Close)
	return s
}

func fullConfig(baseURL string) config.PharmacyConfig {
	return config.PharmacyConfig{
		BaseURL:    baseURL,
		APIKey:     "key-123",
		Username:   "site",
		Password:   "secret",
		PharmacyID: "PH-42",
		Timeout:    2 * time.Second,
	}
}

func refillForm() models.RefillRequest {
	return models.RefillRequest{
		PatientName:         "Jane Q Smith",
		DOB:                 "1980-02-29",
		Phone:               "(614) 349-5140",
		PrescriptionNumbers: "123, 456 789",
		MedicationNames:     "Lisinopril",
		PreferredService:    models.ServiceDelivery,
		Notes:               "Leave at side door",
		Consent:             true,
	}
}

func transferForm() models.TransferRequest {
	return models.TransferRequest{
		RxNumber:   "7654321",
		RxFillDate: "2026-09-01",
		Pharmacy: models.DestinationPharmacy{
			Name:     "Main Street Drug",
			Address1: "100 Main St",
			City:     "Columbus",
			State:    "oh",
			Zip:      "43215",
			Phone:    "614.555.0100",
			NCPDP:    "1234567",
		},
		TransferRxRemark: "Moving",
		Consent:          true,
	}
}

func TestSubmitRefillMapsFields(t *testing.T) {
	stub := newVendorStub(t, http.StatusOK, RefillResponse{Results: []RefillResult{
		{RxNumber: 123, Status: "OK"}, {RxNumber: 456, Status: "OK"}, {RxNumber: 789, Status: "OK"},
	}})
	c := NewClient(fullConfig(stub.server.URL), zap.NewNop(), clock)

	resp, err := c.SubmitRefill(context.Background(), refillForm())
	require.NoError(t, err)
	assert.Len(t, resp.Results, 3)

	require.NotNil(t, stub.lastReq)
	assert.Equal(t, "/refills", stub.lastReq.URL.Path)
	assert.Equal(t, "key-123", stub.lastReq.Header.Get("X-API-Key"))

	var got RefillPayload
	require.NoError(t, json.Unmarshal(stub.lastBody, &got))
	want := RefillPayload{
		PharmacyID:      "PH-42",
		PatientLastName: "Smith",
		DateOfBirth:     "1980-02-29",
		PhoneNumber:     "6143495140",
		RequestDate:     "2026-10-19T21:15:00-04:00",
		DeliveryOption:  2,
		RequestType:     1,
		RxNumbers:       []int64{123, 456, 789},
		Notes:           "Medications: Lisinopril\nLeave at side door",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("refill payload mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitRefillPartialFailure(t *testing.T) {
	stub := newVendorStub(t, http.StatusOK, RefillResponse{Results: []RefillResult{
		{RxNumber: 123, Status: "OK"},
		{RxNumber: 456, Status: "NO_REFILLS", Message: "No refills remaining"},
	}})
	c := NewClient(fullConfig(stub.server.URL), zap.NewNop(), clock)

	_, err := c.SubmitRefill(context.Background(), refillForm())
	var partial *errs.PartialFailure
	require.ErrorAs(t, err, &partial)
	require.Len(t, partial.Failures, 1)
	assert.Equal(t, int64(456), partial.Failures[0].RxNumber)
}

func TestSubmitRefillEmptyResultsIsFailure(t *testing.T) {
	stub := newVendorStub(t, http.StatusOK, RefillResponse{})
	c := NewClient(fullConfig(stub.server.URL), zap.NewNop(), clock)

	_, err := c.SubmitRefill(context.Background(), refillForm())
	var vendor *errs.VendorError
	require.ErrorAs(t, err, &vendor)
	assert.Equal(t, errs.GenericVendorMessage, vendor.Message)
}

func TestSubmitRefillVendorError(t *testing.T) {
	stub := newVendorStub(t, http.StatusBadRequest, RefillResponse{ErrorCode: "ERROR0010"})
	c := NewClient(fullConfig(stub.server.URL), zap.NewNop(), clock)

	_, err := c.SubmitRefill(context.Background(), refillForm())
	var vendor *errs.VendorError
	require.ErrorAs(t, err, &vendor)
	assert.Equal(t, http.StatusBadRequest, vendor.Status)
	assert.Equal(t, "ERROR0010", vendor.Code)
}

func TestMissingCredentialsSkipNetwork(t *testing.T) {
	stub := newVendorStub(t, http.StatusOK, TransferResponse{IsValid: true, Transferred: true})

	cfg := fullConfig(stub.server.URL)
	cfg.APIKey = ""
	cfg.Password = ""
	c := NewClient(cfg, zap.NewNop(), clock)

	_, err := c.SubmitRefill(context.Background(), refillForm())
	var cerr *errs.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{"PHARMACY_API_KEY"}, cerr.Missing)

	_, err = c.SubmitTransfer(context.Background(), transferForm())
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{"PHARMACY_API_PASSWORD"}, cerr.Missing)

	assert.Zero(t, stub.requests.Load(), "no request may be dispatched")
}

func TestSubmitTransferMapsFields(t *testing.T) {
	stub := newVendorStub(t, http.StatusOK, TransferResponse{IsValid: true, Transferred: true})
	c := NewClient(fullConfig(stub.server.URL), zap.NewNop(), clock)

	_, err := c.SubmitTransfer(context.Background(), transferForm())
	require.NoError(t, err)

	user, pass, ok := stub.lastReq.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "site", user)
	assert.Equal(t, "secret", pass)
	assert.Equal(t, "/transfers", stub.lastReq.URL.Path)

	var got TransferPayload
	require.NoError(t, json.Unmarshal(stub.lastBody, &got))
	want := TransferPayload{
		PharmacyID: "PH-42",
		RxNumber:   7654321,
		FillDate:   "2026-09-01",
		ToPharmacy: ToPharmacy{
			Name:     "Main Street Drug",
			Address1: "100 Main St",
			City:     "Columbus",
			State:    "OH",
			Zip:      "43215",
			NCPDP:    "1234567",
			Phone:    "6145550100",
		},
		TransferDate:     "2026-10-19",
		TransferRxRemark: "Moving",
		TransferType:     "OUT",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("transfer payload mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitTransferErrorCodeUnderHTTP200(t *testing.T) {
	stub := newVendorStub(t, http.StatusOK, TransferResponse{IsValid: true, Transferred: true, ErrorCode: "ERROR0082"})
	c := NewClient(fullConfig(stub.server.URL), zap.NewNop(), clock)

	resp, err := c.SubmitTransfer(context.Background(), transferForm())
	assert.Nil(t, resp)
	var vendor *errs.VendorError
	require.ErrorAs(t, err, &vendor)
	assert.Equal(t, "ERROR0082", vendor.Code)
	assert.Equal(t, errs.VendorMessage(http.StatusOK, "ERROR0082"), vendor.Message)
}

func TestSubmitTransferNotTransferred(t *testing.T) {
	stub := newVendorStub(t, http.StatusOK, TransferResponse{IsValid: true, Transferred: false})
	c := NewClient(fullConfig(stub.server.URL), zap.NewNop(), clock)

	_, err := c.SubmitTransfer(context.Background(), transferForm())
	var vendor *errs.VendorError
	assert.ErrorAs(t, err, &vendor)
}

func TestTransportError(t *testing.T) {
	stub := newVendorStub(t, http.StatusOK, nil)
	url := stub.server.URL
	stub.server.Close()

	c := NewClient(fullConfig(url), zap.NewNop(), clock)
	_, err := c.SubmitTransfer(context.Background(), transferForm())
	var terr *errs.TransportError
	require.ErrorAs(t, err, &terr)
	assert.False(t, errors.Is(err, context.Canceled))
}
