package downstreammock

import (
	"context"
	"errors"

	"goldloan-origination/internal/domain/downstream"
	"goldloan-origination/internal/domain/draft"
)

// Function-backed mocks for the downstream ports, one per collaborator.

type CustomerAPI struct {
	CheckNationalIDFn func(ctx context.Context, nationalID string) (downstream.LookupResult, error)
	CreateFn          func(ctx context.Context, in downstream.CreateCustomerInput) error
	VerifyOTPFn       func(ctx context.Context, email, otp, phone string) (string, error)
}

func (m *CustomerAPI) CheckNationalID(ctx context.Context, nationalID string) (downstream.LookupResult, error) {
	if m.CheckNationalIDFn != nil {
		return m.CheckNationalIDFn(ctx, nationalID)
	}
	return downstream.LookupResult{}, nil
}

func (m *CustomerAPI) Create(ctx context.Context, in downstream.CreateCustomerInput) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, in)
	}
	return nil
}

func (m *CustomerAPI) VerifyOTP(ctx context.Context, email, otp, phone string) (string, error) {
	if m.VerifyOTPFn != nil {
		return m.VerifyOTPFn(ctx, email, otp, phone)
	}
	return "", errors.New("not implemented")
}

type LoanAPI struct {
	CreateLoanFn func(ctx context.Context, p downstream.LoanPayload) (downstream.CreatedLoan, error)
}

func (m *LoanAPI) CreateLoan(ctx context.Context, p downstream.LoanPayload) (downstream.CreatedLoan, error) {
	if m.CreateLoanFn != nil {
		return m.CreateLoanFn(ctx, p)
	}
	return downstream.CreatedLoan{}, errors.New("not implemented")
}

type Quoter struct {
	QuoteFn func(ctx context.Context, req downstream.QuoteRequest) (downstream.Quote, error)
}

func (m *Quoter) Quote(ctx context.Context, req downstream.QuoteRequest) (downstream.Quote, error) {
	if m.QuoteFn != nil {
		return m.QuoteFn(ctx, req)
	}
	return downstream.Quote{}, downstream.ErrNetwork
}

type PhotoStore struct {
	UploadFn func(ctx context.Context, loanID string, group draft.PhotoGroup, description string, files []downstream.UploadFile) ([]downstream.StoredPhoto, error)
	FetchFn  func(ctx context.Context, loanID string) ([]downstream.StoredPhoto, error)
}

func (m *PhotoStore) Upload(ctx context.Context, loanID string, group draft.PhotoGroup, description string, files []downstream.UploadFile) ([]downstream.StoredPhoto, error) {
	if m.UploadFn != nil {
		return m.UploadFn(ctx, loanID, group, description, files)
	}
	return nil, nil
}

func (m *PhotoStore) Fetch(ctx context.Context, loanID string) ([]downstream.StoredPhoto, error) {
	if m.FetchFn != nil {
		return m.FetchFn(ctx, loanID)
	}
	return nil, nil
}

type Renderer struct {
	RenderReceiptFn func(ctx context.Context, loan downstream.CreatedLoan, d *draft.Draft, pay downstream.PaymentSummary) (downstream.ReceiptDocument, error)
}

func (m *Renderer) RenderReceipt(ctx context.Context, loan downstream.CreatedLoan, d *draft.Draft, pay downstream.PaymentSummary) (downstream.ReceiptDocument, error) {
	if m.RenderReceiptFn != nil {
		return m.RenderReceiptFn(ctx, loan, d, pay)
	}
	return downstream.ReceiptDocument{LoanID: loan.LoanID}, nil
}
