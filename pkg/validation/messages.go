package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"pharmacy-site/pkg/models"
)

var labels = map[string]string{
	models.FieldName:                "Name",
	models.FieldPhone:               "Phone number",
	models.FieldEmail:               "Email",
	models.FieldReason:              "Reason",
	models.FieldMessage:             "Message",
	models.FieldPatientName:         "Patient name",
	models.FieldDOB:                 "Date of birth",
	models.FieldPrescriptionNumbers: "Prescription numbers",
	models.FieldMedicationNames:     "Medication names",
	models.FieldPreferredService:    "Preferred service",
	models.FieldNotes:               "Notes",
	models.FieldRxNumber:            "Rx number",
	models.FieldRxFillDate:          "Fill date",
	models.FieldTransferRxRemark:    "Remark",
	models.FieldPharmacyName:        "Pharmacy name",
	models.FieldPharmacyAddress1:    "Address",
	models.FieldPharmacyCity:        "City",
	models.FieldPharmacyState:       "State",
	models.FieldPharmacyZip:         "ZIP code",
	models.FieldPharmacyPhone:       "Pharmacy phone number",
	models.FieldPharmacyNCPDP:       "NCPDP ID",
}

const consentMessage = "Please confirm your consent before submitting."

func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}

// fieldKey strips the root struct name from a namespace,
// e.g. "TransferRequest.pharmacy.zip" -> "pharmacy.zip".
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func isBlank(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.String && strings.TrimSpace(rv.String()) == ""
}

func message(field string, fe validator.FieldError) string {
	if field == models.FieldConsent {
		return consentMessage
	}
	if isBlank(fe.Value()) && fe.Tag() != "max" {
		return label(field) + " is required."
	}

	switch fe.Tag() {
	case "usphone", "optusphone":
		return "Please enter a valid US phone number."
	case "emailish", "optemailish":
		return "Please enter a valid email address."
	case "caldate":
		return "Please enter a valid date (YYYY-MM-DD)."
	case "rxlist":
		return "Enter one or more prescription numbers separated by commas or spaces."
	case "rxnumber":
		return "Rx number must be a positive whole number."
	case "statecode":
		return "Use the 2-letter state code."
	case "zip":
		return "Please enter a valid ZIP code."
	case "ncpdp", "optncpdp":
		return "NCPDP ID must be exactly 7 digits."
	case "oneof":
		return fmt.Sprintf("Please choose a valid %s.", strings.ToLower(label(field)))
	case "max":
		return fmt.Sprintf("%s must be %s characters or fewer.", label(field), fe.Param())
	}
	return label(field) + " is invalid."
}

func translate(err error) models.FieldErrors {
	out := models.FieldErrors{}
	if err == nil {
		return out
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// Only reachable when a non-struct is passed in.
		out["form"] = "The form could not be checked."
		return out
	}
	for _, fe := range verrs {
		key := fieldKey(fe)
		if _, seen := out[key]; seen {
			continue
		}
		out[key] = message(key, fe)
	}
	return out
}
