package pharmacy

// Wire shapes of the pharmacy-management API. Field names follow the vendor's
// documented schema.

// RefillPayload is the body of POST /refills
type RefillPayload struct {
	PharmacyID      string  `json:"PharmacyId"`
	PatientLastName string  `json:"PatientLastName"`
	DateOfBirth     string  `json:"DateOfBirth"`
	PhoneNumber     string  `json:"PhoneNumber"`
	RequestDate     string  `json:"RequestDate"`
	DeliveryOption  int     `json:"DeliveryOption"`
	RequestType     int     `json:"RequestType"`
	RxNumbers       []int64 `json:"RxNumbers"`
	Notes           string  `json:"Notes"`
}

// RefillResult is the vendor's verdict for one prescription number
type RefillResult struct {
	RxNumber int64  `json:"RxNumber"`
	Status   string `json:"Status"`
	Message  string `json:"Message"`
}

// RefillResponse is the body returned by POST /refills
type RefillResponse struct {
	Results      []RefillResult `json:"Results"`
	ErrorCode    string         `json:"ErrorCode"`
	ErrorMessage string         `json:"ErrorMessage"`
}

// ToPharmacy describes the pharmacy receiving a transfer
type ToPharmacy struct {
	Name     string `json:"Name"`
	Address1 string `json:"Address1"`
	Address2 string `json:"Address2"`
	City     string `json:"City"`
	State    string `json:"State"`
	Zip      string `json:"Zip"`
	NCPDP    string `json:"NCPDP"`
	Phone    string `json:"Phone"`
}

// TransferPayload is the body of POST /transfers
type TransferPayload struct {
	PharmacyID       string     `json:"PharmacyId"`
	RxNumber         int64      `json:"RxNumber"`
	FillDate         string     `json:"FillDate"`
	ToPharmacy       ToPharmacy `json:"ToPharmacy"`
	TransferDate     string     `json:"TransferDate"`
	TransferRxRemark string     `json:"TransferRxRemark"`
	TransferType     string     `json:"TransferType"`
}

// TransferResponse is the body returned by POST /transfers
type TransferResponse struct {
	IsValid      bool   `json:"IsValid"`
	Transferred  bool   `json:"Transferred"`
	ErrorCode    string `json:"ErrorCode"`
	ErrorMessage string `json:"ErrorMessage"`
}

// StatusOK is the per-prescription status of an accepted refill
const StatusOK = "OK"

const (
	deliveryPickup   = 1
	deliveryDelivery = 2

	requestTypeRefill    = 1
	transferTypeOutbound = "OUT"
)
