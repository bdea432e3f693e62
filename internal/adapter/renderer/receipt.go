// Package renderer assembles the pledge receipt record handed back to
// the caller after a successful submission.
package renderer

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"goldloan-origination/internal/domain/downstream"
	"goldloan-origination/internal/domain/draft"
)

type Receipt struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Receipt {
	return &Receipt{log: log}
}

// RenderReceipt derives the installment schedule from the disbursement
// date: one due date per month, with the final installment absorbing the
// rounding remainder so the schedule sums to the total payable.
func (r *Receipt) RenderReceipt(ctx context.Context, loan downstream.CreatedLoan, d *draft.Draft, pay downstream.PaymentSummary) (downstream.ReceiptDocument, error) {
	disbursed := loan.DisbursedAt
	if disbursed.IsZero() {
		disbursed = pay.DisbursedAt
	}

	doc := downstream.ReceiptDocument{
		LoanID:         loan.LoanID,
		CustomerName:   d.Name,
		NationalID:     d.NationalID,
		Principal:      pay.Principal,
		RatePercent:    pay.RatePercent,
		TermMonths:     pay.TermMonths,
		MonthlyPayment: pay.MonthlyPayment,
		TotalPayable:   pay.TotalPayable,
		DisbursedAt:    disbursed,
		Schedule:       schedule(disbursed, pay),
	}
	r.log.Info().Str("loan_id", loan.LoanID).Int("installments", len(doc.Schedule)).Msg("receipt rendered")
	return doc, nil
}

func schedule(disbursed time.Time, pay downstream.PaymentSummary) []downstream.Installment {
	if pay.TermMonths < 1 || pay.MonthlyPayment <= 0 {
		return nil
	}
	out := make([]downstream.Installment, pay.TermMonths)
	for i := range out {
		out[i] = downstream.Installment{
			Sequence: i + 1,
			DueDate:  disbursed.AddDate(0, i+1, 0),
			Amount:   pay.MonthlyPayment,
		}
	}
	last := pay.TotalPayable - pay.MonthlyPayment*float64(pay.TermMonths-1)
	out[pay.TermMonths-1].Amount = math.Round(last*100) / 100
	return out
}
