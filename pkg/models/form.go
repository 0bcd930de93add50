package models

import "time"

// ContactReason is the topic picked on the contact form
type ContactReason string

const (
	ReasonGeneral  ContactReason = "general"
	ReasonNew      ContactReason = "new"
	ReasonTransfer ContactReason = "transfer"
	ReasonRefill   ContactReason = "refill"
	ReasonRPM      ContactReason = "rpm"
)

// RequiresMessage reports whether the reason needs a message body.
func (r ContactReason) RequiresMessage() bool {
	return r == ReasonNew || r == ReasonTransfer || r == ReasonRefill
}

// ServiceOption is how a refill gets to the patient
type ServiceOption string

const (
	ServicePickup   ServiceOption = "pickup"
	ServiceDelivery ServiceOption = "delivery"
)

// WaitlistStatus tracks outreach progress for a waitlist entry
type WaitlistStatus string

const (
	WaitlistActive    WaitlistStatus = "active"
	WaitlistContacted WaitlistStatus = "contacted"
	WaitlistEnrolled  WaitlistStatus = "enrolled"
)

// ContactRequest represents the data coming from the contact form
type ContactRequest struct {
	Name    string        `json:"name" validate:"notblank"`
	Phone   string        `json:"phone" validate:"usphone"`
	Email   string        `json:"email" validate:"required,emailish"`
	Reason  ContactReason `json:"reason" validate:"required,oneof=general new transfer refill rpm"`
	Message string        `json:"message" validate:"max=500"`
	Consent bool          `json:"consent" validate:"required"`
}

// RefillRequest represents the data coming from the refill form
type RefillRequest struct {
	PatientName         string        `json:"patientName" validate:"notblank"`
	DOB                 string        `json:"dob" validate:"required,caldate"`
	Phone               string        `json:"phone" validate:"usphone"`
	Email               string        `json:"email" validate:"optemailish"`
	PrescriptionNumbers string        `json:"prescriptionNumbers" validate:"notblank,max=1000,rxlist"`
	MedicationNames     string        `json:"medicationNames" validate:"max=500"`
	PreferredService    ServiceOption `json:"preferredService" validate:"required,oneof=pickup delivery"`
	Notes               string        `json:"notes" validate:"max=500"`
	Consent             bool          `json:"consent" validate:"required"`
}

// DestinationPharmacy is where a transferred prescription should go
type DestinationPharmacy struct {
	Name     string `json:"name" validate:"notblank"`
	Address1 string `json:"address1" validate:"notblank"`
	Address2 string `json:"address2"`
	City     string `json:"city" validate:"notblank"`
	State    string `json:"state" validate:"required,statecode"`
	Zip      string `json:"zip" validate:"required,zip"`
	Phone    string `json:"phone" validate:"usphone"`
	NCPDP    string `json:"ncpdp" validate:"optncpdp"`
}

// TransferRequest represents the data coming from the transfer form
type TransferRequest struct {
	RxNumber         string              `json:"rxNumber" validate:"required,rxnumber"`
	RxFillDate       string              `json:"rxFillDate" validate:"required,caldate"`
	Pharmacy         DestinationPharmacy `json:"pharmacy"`
	TransferRxRemark string              `json:"transferRxRemark" validate:"max=500"`
	Consent          bool                `json:"consent" validate:"required"`
}

// WaitlistSignup represents the data coming from the waitlist form
type WaitlistSignup struct {
	Name    string `json:"name" validate:"notblank,max=100"`
	Email   string `json:"email" validate:"required,emailish"`
	Phone   string `json:"phone" validate:"optusphone"`
	Consent bool   `json:"consent" validate:"required"`
}

// WaitlistEntry is a stored waitlist signup
type WaitlistEntry struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	Status    WaitlistStatus `json:"status"`
}

// PromotionalSignup represents the promotional opt-in form
type PromotionalSignup struct {
	Email string `json:"email" validate:"required,emailish"`
}
