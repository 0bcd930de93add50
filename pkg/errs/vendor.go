package errs

import "net/http"

// GenericVendorMessage is used for vendor codes that are not in the table.
const GenericVendorMessage = "The pharmacy system could not accept this request. Please check your information and try again."

type vendorKey struct {
	status int
	code   string
}

// anyStatus matches a vendor code regardless of the HTTP status it came with.
const anyStatus = 0

// vendorMessages is shared by the refill and transfer endpoints. Lookups try
// (status, code), then (any, code), then (status, "").
var vendorMessages = map[vendorKey]string{
	{anyStatus, "ERROR0010"}: "We couldn't find a patient matching that name and date of birth.",
	{anyStatus, "ERROR0021"}: "One or more prescription numbers were not found at our pharmacy.",
	{anyStatus, "ERROR0035"}: "This prescription has no refills remaining. Please contact your prescriber.",
	{anyStatus, "ERROR0041"}: "It's too soon to refill this prescription. Please try again closer to your refill date.",
	{anyStatus, "ERROR0052"}: "This prescription has expired and can't be refilled. Please contact your prescriber.",
	{anyStatus, "ERROR0067"}: "The destination pharmacy information could not be verified. Please check the NCPDP ID and address.",
	{anyStatus, "ERROR0071"}: "Controlled substance prescriptions can't be transferred online. Please call the pharmacy.",
	{anyStatus, "ERROR0082"}: "This prescription can't be transferred online. Please call the pharmacy so we can help.",
	{anyStatus, "ERROR0090"}: "A request for this prescription is already being processed.",

	{http.StatusUnauthorized, ""}:        "This service is temporarily unavailable due to a service configuration issue. Please call the pharmacy.",
	{http.StatusForbidden, ""}:           "This service is temporarily unavailable due to a service configuration issue. Please call the pharmacy.",
	{http.StatusNotFound, ""}:            "The pharmacy system could not find a matching record. Please check your information.",
	{http.StatusTooManyRequests, ""}:     "The pharmacy system is busy right now. Please wait a minute and try again.",
	{http.StatusInternalServerError, ""}: "The pharmacy system had a problem processing your request. Please try again later.",
	{http.StatusBadGateway, ""}:          "The pharmacy system is temporarily unavailable. Please try again later.",
	{http.StatusServiceUnavailable, ""}:  "The pharmacy system is temporarily unavailable. Please try again later.",
}

// VendorMessage looks up the user-facing sentence for a vendor failure.
func VendorMessage(status int, code string) string {
	if code != "" {
		if m, ok := vendorMessages[vendorKey{status, code}]; ok {
			return m
		}
		if m, ok := vendorMessages[vendorKey{anyStatus, code}]; ok {
			return m
		}
	}
	if m, ok := vendorMessages[vendorKey{status, ""}]; ok {
		return m
	}
	return GenericVendorMessage
}

// NewVendorError builds a VendorError with its message resolved from the table.
func NewVendorError(status int, code string) *VendorError {
	return &VendorError{Status: status, Code: code, Message: VendorMessage(status, code)}
}
