package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVendorMessageLookupOrder(t *testing.T) {
	assert.Contains(t, VendorMessage(http.StatusOK, "ERROR0082"), "can't be transferred")
	assert.Contains(t, VendorMessage(http.StatusBadRequest, "ERROR0035"), "no refills remaining")
	assert.Contains(t, VendorMessage(http.StatusTooManyRequests, "ERROR9999"), "busy")
	assert.Equal(t, GenericVendorMessage, VendorMessage(http.StatusBadRequest, "ERROR9999"))
	assert.Equal(t, GenericVendorMessage, VendorMessage(http.StatusBadRequest, ""))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"config", &ConfigurationError{Service: "pharmacy API", Missing: []string{"PHARMACY_ID"}}, "service configuration"},
		{"transport", fmt.Errorf("refill: %w", &TransportError{Service: "pharmacy API", Err: errors.New("dial tcp")}), "couldn't reach"},
		{"vendor", NewVendorError(http.StatusOK, "ERROR0082"), "can't be transferred"},
		{"duplicate", ErrDuplicateEmail, DuplicateEmailMessage},
		{"unknown", errors.New("boom"), "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.want == "" {
				assert.Empty(t, UserMessage(tt.err))
				return
			}
			assert.Contains(t, UserMessage(tt.err), tt.want)
		})
	}
}

func TestPartialFailureListsEachRx(t *testing.T) {
	err := &PartialFailure{Failures: []RxFailure{
		{RxNumber: 456, Status: "NO_REFILLS", Reason: "No refills remaining"},
		{RxNumber: 789, Status: "NOT_FOUND"},
	}}
	msg := UserMessage(err)
	assert.Contains(t, msg, "Rx #456 (No refills remaining)")
	assert.Contains(t, msg, "Rx #789 (NOT_FOUND)")
	assert.NotContains(t, msg, "123")
}
