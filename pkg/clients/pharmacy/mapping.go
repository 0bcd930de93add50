package pharmacy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pharmacy-site/pkg/models"
	"pharmacy-site/pkg/utils"
	"pharmacy-site/pkg/validation"
)

// NewRefillPayload maps a validated refill form onto the vendor schema.
func NewRefillPayload(pharmacyID string, r models.RefillRequest, now time.Time) (RefillPayload, error) {
	rxNumbers, ok := utils.ParseRxNumbers(r.PrescriptionNumbers)
	if !ok {
		return RefillPayload{}, fmt.Errorf("invalid prescription numbers")
	}

	delivery := deliveryPickup
	if r.PreferredService == models.ServiceDelivery {
		delivery = deliveryDelivery
	}

	return RefillPayload{
		PharmacyID:      pharmacyID,
		PatientLastName: utils.LastToken(r.PatientName),
		DateOfBirth:     strings.TrimSpace(r.DOB),
		PhoneNumber:     utils.DigitsOnly(r.Phone),
		RequestDate:     now.Format(time.RFC3339),
		DeliveryOption:  delivery,
		RequestType:     requestTypeRefill,
		RxNumbers:       rxNumbers,
		Notes:           refillNotes(r.MedicationNames, r.Notes),
	}, nil
}

func refillNotes(medications, notes string) string {
	var parts []string
	if m := strings.TrimSpace(medications); m != "" {
		parts = append(parts, "Medications: "+m)
	}
	if n := strings.TrimSpace(notes); n != "" {
		parts = append(parts, n)
	}
	return strings.Join(parts, "\n")
}

// NewTransferPayload maps a validated transfer form onto the vendor schema.
func NewTransferPayload(pharmacyID string, t models.TransferRequest, now time.Time) (TransferPayload, error) {
	rx, err := strconv.ParseInt(strings.TrimSpace(t.RxNumber), 10, 64)
	if err != nil {
		return TransferPayload{}, fmt.Errorf("invalid rx number: %w", err)
	}

	p := t.Pharmacy
	return TransferPayload{
		PharmacyID: pharmacyID,
		RxNumber:   rx,
		FillDate:   strings.TrimSpace(t.RxFillDate),
		ToPharmacy: ToPharmacy{
			Name:     strings.TrimSpace(p.Name),
			Address1: strings.TrimSpace(p.Address1),
			Address2: strings.TrimSpace(p.Address2),
			City:     strings.TrimSpace(p.City),
			State:    strings.ToUpper(strings.TrimSpace(p.State)),
			Zip:      strings.TrimSpace(p.Zip),
			NCPDP:    strings.TrimSpace(p.NCPDP),
			Phone:    utils.DigitsOnly(p.Phone),
		},
		TransferDate:     validation.Today(now).Format(validation.DateLayout),
		TransferRxRemark: strings.TrimSpace(t.TransferRxRemark),
		TransferType:     transferTypeOutbound,
	}, nil
}
