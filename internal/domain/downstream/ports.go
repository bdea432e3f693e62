// Package downstream declares the ports onto the external collaborators of
// the origination workflow: the role-scoped customer/loan backend, the
// interest calculator, photo storage and the receipt renderer. Adapters
// live under internal/adapter/downstream.
package downstream

import (
	"context"
	"time"

	"goldloan-origination/internal/domain/draft"
)

// CustomerProfile is the editable subset of a customer record returned by
// a national-ID lookup; it overwrites the draft's fields when found.
type CustomerProfile struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	PrimaryMobile     string `json:"phoneNumber"`
	SecondaryMobile   string `json:"secondaryPhoneNumber"`
	EmergencyMobile   string `json:"emergencyContactNumber"`
	EmergencyRelation string `json:"emergencyContactRelation"`
	PresentAddress    string `json:"presentAddress"`
	PermanentAddress  string `json:"permanentAddress"`
}

type LookupResult struct {
	Exists  bool
	Profile *CustomerProfile
}

// CreateCustomerInput carries the draft contact fields; Purpose is always
// "loan_creation" for this workflow. Creating the customer also triggers
// the out-of-band OTP dispatch.
type CreateCustomerInput struct {
	NationalID    string `json:"aadharNumber"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	PrimaryMobile string `json:"phoneNumber"`
	Purpose       string `json:"purpose"`
}

type CustomerAPI interface {
	// CheckNationalID looks a customer up once the ID field reaches the
	// full fixed length.
	CheckNationalID(ctx context.Context, nationalID string) (LookupResult, error)
	// Create creates the customer server-side if absent and triggers OTP
	// dispatch.
	Create(ctx context.Context, in CreateCustomerInput) error
	// VerifyOTP validates the code against the contact channel and returns
	// the verified customer identifier.
	VerifyOTP(ctx context.Context, email, otp, phone string) (string, error)
}

// LoanItem mirrors one pledged article in the loan creation payload.
type LoanItem struct {
	Description string  `json:"description"`
	GrossWeight float64 `json:"grossWeight"`
	NetWeight   float64 `json:"netWeight"`
}

// LoanPayload is the full assembled loan record posted on final submit.
type LoanPayload struct {
	CustomerID          string     `json:"customerId"`
	NationalID          string     `json:"aadharNumber"`
	Name                string     `json:"name"`
	Email               string     `json:"email,omitempty"`
	PrimaryMobile       string     `json:"phoneNumber"`
	SecondaryMobile     string     `json:"secondaryPhoneNumber,omitempty"`
	EmergencyMobile     string     `json:"emergencyContactNumber"`
	EmergencyRelation   string     `json:"emergencyContactRelation"`
	PresentAddress      string     `json:"presentAddress"`
	PermanentAddress    string     `json:"permanentAddress"`
	GoldItems           []LoanItem `json:"goldItems"`
	InterestRatePercent float64    `json:"interestRate"`
	PrincipalAmount     float64    `json:"loanAmount"`
	TermMonths          int        `json:"termMonths"`
	MonthlyPayment      float64    `json:"monthlyPayment"`
	TotalPayable        float64    `json:"totalPayable"`
}

type CreatedLoan struct {
	LoanID      string
	DisbursedAt time.Time
}

type LoanAPI interface {
	CreateLoan(ctx context.Context, p LoanPayload) (CreatedLoan, error)
}

type QuoteRequest struct {
	Principal        float64   `json:"principal"`
	AnnualRate       float64   `json:"annualRate"`
	DisbursementDate time.Time `json:"disbursementDate"`
	ClosureDate      time.Time `json:"closureDate"`
	TermMonths       int       `json:"termMonths"`
}

type Quote struct {
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalAmount    float64 `json:"totalAmount"`
}

// InterestQuoter is the remote interest calculator. The server may use
// daily or compounding interest; divergence from the local fallback is
// expected, not a defect.
type InterestQuoter interface {
	Quote(ctx context.Context, req QuoteRequest) (Quote, error)
}

type UploadFile struct {
	Name        string
	ContentType string
	Content     []byte
}

type StoredPhoto struct {
	ID            string `json:"_id"`
	GoldItemIndex int    `json:"goldItemIndex"`
	URL           string `json:"url,omitempty"`
}

type PhotoStore interface {
	// Upload sends one group's pending files in a single call, tagged with
	// the group's wire index.
	Upload(ctx context.Context, loanID string, group draft.PhotoGroup, description string, files []UploadFile) ([]StoredPhoto, error)
	Fetch(ctx context.Context, loanID string) ([]StoredPhoto, error)
}

// PaymentSummary feeds the receipt document; derived from the accepted
// quote at submission time.
type PaymentSummary struct {
	Principal      float64
	RatePercent    float64
	TermMonths     int
	MonthlyPayment float64
	TotalPayable   float64
	DisbursedAt    time.Time
}

type Installment struct {
	Sequence int       `json:"sequence"`
	DueDate  time.Time `json:"due_date"`
	Amount   float64   `json:"amount"`
}

// ReceiptDocument is the data record behind the printable artifact; visual
// layout is outside this service.
type ReceiptDocument struct {
	LoanID         string        `json:"loan_id"`
	CustomerName   string        `json:"customer_name"`
	NationalID     string        `json:"national_id"`
	Principal      float64       `json:"principal"`
	RatePercent    float64       `json:"rate_percent"`
	TermMonths     int           `json:"term_months"`
	MonthlyPayment float64       `json:"monthly_payment"`
	TotalPayable   float64       `json:"total_payable"`
	DisbursedAt    time.Time     `json:"disbursed_at"`
	Schedule       []Installment `json:"schedule"`
}

type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, loan CreatedLoan, d *draft.Draft, pay PaymentSummary) (ReceiptDocument, error)
}
