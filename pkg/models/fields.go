package models

// Field identifiers used as keys in FieldErrors. They match the JSON names of
// the form records; nested pharmacy fields are prefixed with "pharmacy.".
const (
	FieldName                = "name"
	FieldPhone               = "phone"
	FieldEmail               = "email"
	FieldReason              = "reason"
	FieldMessage             = "message"
	FieldConsent             = "consent"
	FieldPatientName         = "patientName"
	FieldDOB                 = "dob"
	FieldPrescriptionNumbers = "prescriptionNumbers"
	FieldMedicationNames     = "medicationNames"
	FieldPreferredService    = "preferredService"
	FieldNotes               = "notes"
	FieldRxNumber            = "rxNumber"
	FieldRxFillDate          = "rxFillDate"
	FieldTransferRxRemark    = "transferRxRemark"
	FieldPharmacyName        = "pharmacy.name"
	FieldPharmacyAddress1    = "pharmacy.address1"
	FieldPharmacyAddress2    = "pharmacy.address2"
	FieldPharmacyCity        = "pharmacy.city"
	FieldPharmacyState       = "pharmacy.state"
	FieldPharmacyZip         = "pharmacy.zip"
	FieldPharmacyPhone       = "pharmacy.phone"
	FieldPharmacyNCPDP       = "pharmacy.ncpdp"
)

// FieldErrors maps a field identifier to a human-readable error. A missing
// key means the field is valid.
type FieldErrors map[string]string

// Valid reports whether no field has an error.
func (f FieldErrors) Valid() bool {
	return len(f) == 0
}

// Clone returns a copy that can be handed out without sharing the map.
func (f FieldErrors) Clone() FieldErrors {
	out := make(FieldErrors, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
